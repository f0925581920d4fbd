package jsonschema

import (
	"strings"
	"testing"
)

func TestUnmarshalJSON(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"{", false},
		{"{}", true},
		{"{}A", false},
		{"{}{}", false},
		{`[1, 2.5, "x", null, true]`, true},
	}
	for _, test := range tests {
		_, err := UnmarshalJSON(strings.NewReader(test.input))
		if valid := err == nil; valid != test.valid {
			t.Errorf("UnmarshalJSON(%q) valid: got %v, want %v", test.input, valid, test.valid)
		}
	}
}

func TestDefaultNodeFactoryParse(t *testing.T) {
	tests := []struct {
		input string
		typ   NodeType
	}{
		{"null", NullType},
		{"true", BooleanType},
		{`"hello"`, StringType},
		{"42", IntegerType},
		{"42.0", IntegerType},
		{"42.5", NumberType},
		{"[1,2]", ArrayType},
		{`{"a":1}`, ObjectType},
	}
	for _, test := range tests {
		node, err := DefaultNodeFactory{}.Parse(test.input)
		if err != nil {
			t.Errorf("Parse(%q): unexpected error %v", test.input, err)
			continue
		}
		if node.Type() != test.typ {
			t.Errorf("Parse(%q).Type() = %v, want %v", test.input, node.Type(), test.typ)
		}
	}
}

func TestNodeChildren(t *testing.T) {
	node, err := DefaultNodeFactory{}.Parse(`{"a": [10, {"b": "x"}]}`)
	if err != nil {
		t.Fatal(err)
	}
	obj := node.AsObject()
	a, ok := obj["a"]
	if !ok {
		t.Fatal("member a not found")
	}
	if a.JsonPointer() != "/a" {
		t.Errorf("a.JsonPointer() = %q, want %q", a.JsonPointer(), "/a")
	}
	arr := a.AsArray()
	if len(arr) != 2 {
		t.Fatalf("len(arr) = %d, want 2", len(arr))
	}
	if arr[1].JsonPointer() != "/a/1" {
		t.Errorf("arr[1].JsonPointer() = %q, want %q", arr[1].JsonPointer(), "/a/1")
	}
	b := arr[1].AsObject()["b"]
	if !b.IsString() || b.AsString() != "x" {
		t.Errorf("b = %v %q, want string x", b.Type(), b.AsString())
	}
}

func TestNodeEquals(t *testing.T) {
	tests := []struct {
		a, b  string
		equal bool
	}{
		{"1", "1.0", true},
		{"1", "1.5", false},
		{`"a"`, `"a"`, true},
		{`"a"`, `"b"`, false},
		{"null", "null", true},
		{"null", "false", false},
		{"[1,2]", "[1,2]", true},
		{"[1,2]", "[2,1]", false},
		{`{"a":1,"b":2}`, `{"b":2,"a":1}`, true},
		{`{"a":1}`, `{"a":2}`, false},
		{`{"a":1}`, `{"a":1,"b":2}`, false},
	}
	for _, test := range tests {
		na, err := DefaultNodeFactory{}.Parse(test.a)
		if err != nil {
			t.Fatal(err)
		}
		nb, err := DefaultNodeFactory{}.Parse(test.b)
		if err != nil {
			t.Fatal(err)
		}
		if got := nodeEquals(na, nb); got != test.equal {
			t.Errorf("nodeEquals(%s, %s) = %v, want %v", test.a, test.b, got, test.equal)
		}
	}
}

func TestLookupPointer(t *testing.T) {
	node, err := DefaultNodeFactory{}.Parse(`{"a/b": {"c~d": [1, 2, 3]}}`)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		ptr   string
		found bool
	}{
		{"", true},
		{"/a~1b", true},
		{"/a~1b/c~0d", true},
		{"/a~1b/c~0d/2", true},
		{"/a~1b/c~0d/3", false},
		{"/missing", false},
	}
	for _, test := range tests {
		got := lookupPointer(node, test.ptr)
		if found := got != nil; found != test.found {
			t.Errorf("lookupPointer(%q) found: got %v, want %v", test.ptr, found, test.found)
		}
	}
}

func TestWrapYAMLValues(t *testing.T) {
	// yaml decoders produce int and float64 rather than json.Number
	doc := map[string]any{
		"count": 3,
		"ratio": 1.5,
		"tags":  []any{"a", "b"},
	}
	node, err := DefaultNodeFactory{}.Wrap(doc)
	if err != nil {
		t.Fatal(err)
	}
	obj := node.AsObject()
	if !obj["count"].IsInteger() {
		t.Errorf("count: got %v, want integer", obj["count"].Type())
	}
	if obj["ratio"].Type() != NumberType {
		t.Errorf("ratio: got %v, want number", obj["ratio"].Type())
	}
	if len(obj["tags"].AsArray()) != 2 {
		t.Errorf("tags: got %d elements, want 2", len(obj["tags"].AsArray()))
	}
}
