package jsonschema

import "testing"

func TestFormatValidators(t *testing.T) {
	tests := []struct {
		format string
		value  string
		valid  bool
	}{
		{"date", "2024-02-29", true},
		{"date", "2023-02-29", false},
		{"date", "2024-13-01", false},
		{"date", "2024-1-01", false},

		{"time", "23:59:59Z", true},
		{"time", "23:59:60Z", true},
		{"time", "22:59:60Z", false},
		{"time", "23:59:60+01:00", false},
		{"time", "12:30:00+05:30", true},
		{"time", "12:30:00", false},
		{"time", "24:00:00Z", false},

		{"date-time", "2024-06-01T12:30:00Z", true},
		{"date-time", "2024-06-01t12:30:00z", true},
		{"date-time", "2024-06-01 12:30:00Z", false},
		{"date-time", "2024-06-01T12:30:00", false},

		{"duration", "P1Y2M3DT4H5M6S", true},
		{"duration", "PT0.5S", false},
		{"duration", "P1W", true},
		{"duration", "P", false},
		{"duration", "PT", false},
		{"duration", "P1Y1W", false},

		{"email", "joe@example.com", true},
		{"email", "joe..bloggs@example.com", false},
		{"email", `"joe bloggs"@example.com`, true},
		{"email", "joe", false},

		{"hostname", "example.com", true},
		{"hostname", "EXAMPLE.com", true},
		{"hostname", "-bad.com", false},
		{"hostname", "bad-.com", false},
		{"hostname", "exa_mple.com", false},

		{"ipv4", "192.168.0.1", true},
		{"ipv4", "256.0.0.1", false},
		{"ipv4", "192.168.0.01", false},
		{"ipv4", "192.168.0", false},

		{"ipv6", "::1", true},
		{"ipv6", "2001:db8::8a2e:370:7334", true},
		{"ipv6", "::ffff:192.168.0.1", true},
		{"ipv6", "12345::", false},
		{"ipv6", "fe80::1%eth0", false},

		{"uri", "https://example.com/path?q=1", true},
		{"uri", "urn:isbn:0451450523", true},
		{"uri", "/relative", false},
		{"uri", "https://example.com/sp ace", false},

		{"uri-reference", "/relative", true},
		{"uri-reference", "#fragment", true},
		{"uri-reference", "https://example.com/sp ace", false},

		{"uri-template", "http://example.com/{id}", true},
		{"uri-template", "http://example.com/{id", false},

		{"uuid", "f81d4fae-7dec-11d0-a765-00a0c91e6bf6", true},
		{"uuid", "F81D4FAE-7DEC-11D0-A765-00A0C91E6BF6", true},
		{"uuid", "f81d4fae7dec11d0a76500a0c91e6bf6", false},
		{"uuid", "f81d4fae-7dec-11d0-a765-00a0c91e6bg6", false},

		{"json-pointer", "", true},
		{"json-pointer", "/a/b", true},
		{"json-pointer", "/a~1b/c~0d", true},
		{"json-pointer", "a/b", false},
		{"json-pointer", "/bad~2", false},

		{"relative-json-pointer", "0", true},
		{"relative-json-pointer", "1/a", true},
		{"relative-json-pointer", "0#", true},
		{"relative-json-pointer", "01", false},
		{"relative-json-pointer", "#", false},

		{"regex", "^a+$", true},
		{"regex", "(unclosed", false},
	}
	for _, test := range tests {
		validate, ok := formatValidators[test.format]
		if !ok {
			// regex is wired through the regexp engine instead
			if test.format != "regex" {
				t.Errorf("format %q not registered", test.format)
			}
			validate = func(s string) error {
				_, err := goRegexpCompile(s)
				return err
			}
		}
		err := validate(test.value)
		if valid := err == nil; valid != test.valid {
			t.Errorf("format %q value %q: got valid=%v (%v), want %v", test.format, test.value, valid, err, test.valid)
		}
	}
}

func TestFormatAnnotatesByDefault(t *testing.T) {
	v := NewValidator()
	uri, err := v.RegisterSchema(`{"format": "ipv4"}`)
	if err != nil {
		t.Fatal(err)
	}
	result, err := v.ValidateRawInstance(uri, `"not an ip"`)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Valid {
		t.Errorf("format should only annotate by default: %v", result.Errors)
	}
	found := false
	for _, ann := range result.Annotations {
		if ann.Keyword == "format" && ann.Value == "ipv4" {
			found = true
		}
	}
	if !found {
		t.Error("format did not produce an annotation")
	}
}

func TestFormatAssertion(t *testing.T) {
	v := NewValidator()
	v.AssertFormat()
	uri, err := v.RegisterSchema(`{"format": "ipv4"}`)
	if err != nil {
		t.Fatal(err)
	}
	result, err := v.ValidateRawInstance(uri, `"not an ip"`)
	if err != nil {
		t.Fatal(err)
	}
	if result.Valid {
		t.Error("asserting validator should reject a malformed ipv4")
	}
	result, err = v.ValidateRawInstance(uri, `"127.0.0.1"`)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Valid {
		t.Errorf("asserting validator should accept a well-formed ipv4: %v", result.Errors)
	}
	// non-strings are not subject to format
	result, err = v.ValidateRawInstance(uri, "42")
	if err != nil {
		t.Fatal(err)
	}
	if !result.Valid {
		t.Errorf("format applies to strings only: %v", result.Errors)
	}
}

func TestUnknownFormatIgnored(t *testing.T) {
	v := NewValidator()
	v.AssertFormat()
	uri, err := v.RegisterSchema(`{"format": "no-such-format"}`)
	if err != nil {
		t.Fatal(err)
	}
	result, err := v.ValidateRawInstance(uri, `"anything"`)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Valid {
		t.Errorf("unknown formats are not asserted: %v", result.Errors)
	}
}
