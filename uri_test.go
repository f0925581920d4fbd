package jsonschema

import "testing"

func TestSplitFragment(t *testing.T) {
	tests := []struct {
		uri      string
		base     string
		fragment string
	}{
		{"http://example.com/schema", "http://example.com/schema", ""},
		{"http://example.com/schema#", "http://example.com/schema", ""},
		{"http://example.com/schema#/properties/foo", "http://example.com/schema", "/properties/foo"},
		{"http://example.com/schema#node", "http://example.com/schema", "node"},
		{"http://example.com/schema#/a%20b", "http://example.com/schema", "/a b"},
		{"urn:example#/items", "urn:example", "/items"},
		{"#/$defs/x", "", "/$defs/x"},
	}
	for _, test := range tests {
		cu, err := SplitFragment(test.uri)
		if err != nil {
			t.Errorf("SplitFragment(%q): unexpected error %v", test.uri, err)
			continue
		}
		if cu.Base != test.base || cu.Fragment != test.fragment {
			t.Errorf("SplitFragment(%q) = {%q %q}, want {%q %q}", test.uri, cu.Base, cu.Fragment, test.base, test.fragment)
		}
	}
}

func TestCompoundUriIsAnchor(t *testing.T) {
	tests := []struct {
		fragment string
		anchor   bool
	}{
		{"", false},
		{"/properties/foo", false},
		{"node", true},
		{"root", true},
	}
	for _, test := range tests {
		cu := CompoundUri{Base: "http://example.com/s", Fragment: test.fragment}
		if got := cu.IsAnchor(); got != test.anchor {
			t.Errorf("IsAnchor(%q) = %v, want %v", test.fragment, got, test.anchor)
		}
	}
}

func TestResolveUri(t *testing.T) {
	tests := []struct {
		base string
		ref  string
		want string
	}{
		{"http://example.com/dir/schema", "other", "http://example.com/dir/other#"},
		{"http://example.com/dir/schema", "/abs", "http://example.com/abs#"},
		{"http://example.com/dir/schema", "#/items", "http://example.com/dir/schema#/items"},
		{"http://example.com/dir/schema", "#node", "http://example.com/dir/schema#node"},
		{"http://example.com/dir/schema", "http://other.com/x#/y", "http://other.com/x#/y"},
		{"urn:example:vehicle", "#/$defs/wheel", "urn:example:vehicle#/$defs/wheel"},
		{"urn:example:vehicle", "", "urn:example:vehicle#"},
		{"https://json-schema.org/draft/2020-12/schema", "meta/core", "https://json-schema.org/draft/2020-12/meta/core#"},
	}
	for _, test := range tests {
		cu, err := resolveUri(test.base, test.ref)
		if err != nil {
			t.Errorf("resolveUri(%q, %q): unexpected error %v", test.base, test.ref, err)
			continue
		}
		if got := cu.String(); got != test.want {
			t.Errorf("resolveUri(%q, %q) = %q, want %q", test.base, test.ref, got, test.want)
		}
	}
}

func TestPointerTokens(t *testing.T) {
	tests := []struct {
		ptr    string
		tokens []string
		valid  bool
	}{
		{"", nil, true},
		{"/a/b", []string{"a", "b"}, true},
		{"/a~1b/c~0d", []string{"a/b", "c~d"}, true},
		{"/", []string{""}, true},
		{"a/b", nil, false},
		{"/bad~2", nil, false},
		{"/trailing~", nil, false},
	}
	for _, test := range tests {
		tokens, err := pointerTokens(test.ptr)
		if valid := err == nil; valid != test.valid {
			t.Errorf("pointerTokens(%q) valid: got %v, want %v", test.ptr, valid, test.valid)
			continue
		}
		if !test.valid {
			continue
		}
		if len(tokens) != len(test.tokens) {
			t.Errorf("pointerTokens(%q) = %v, want %v", test.ptr, tokens, test.tokens)
			continue
		}
		for i := range tokens {
			if tokens[i] != test.tokens[i] {
				t.Errorf("pointerTokens(%q)[%d] = %q, want %q", test.ptr, i, tokens[i], test.tokens[i])
			}
		}
	}
}

func TestEncodePointerToken(t *testing.T) {
	tests := []struct{ in, out string }{
		{"plain", "plain"},
		{"a/b", "a~1b"},
		{"a~b", "a~0b"},
		{"~/", "~0~1"},
	}
	for _, test := range tests {
		if got := encodePointerToken(test.in); got != test.out {
			t.Errorf("encodePointerToken(%q) = %q, want %q", test.in, got, test.out)
		}
	}
}
