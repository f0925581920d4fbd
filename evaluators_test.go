package jsonschema

import "testing"

// helper compiling one schema and validating a batch of instances
func testSchema(t *testing.T, schema string, tests []struct {
	instance string
	valid    bool
}) {
	t.Helper()
	v := NewValidator()
	uri, err := v.RegisterSchema(schema)
	if err != nil {
		t.Fatal(err)
	}
	for _, test := range tests {
		result, err := v.ValidateRawInstance(uri, test.instance)
		if err != nil {
			t.Fatal(err)
		}
		if result.Valid != test.valid {
			t.Errorf("schema %s instance %s: got valid=%v, want %v\nerrors: %v",
				schema, test.instance, result.Valid, test.valid, result.Errors)
		}
	}
}

func TestNumericKeywords(t *testing.T) {
	testSchema(t, `{"minimum": 2, "exclusiveMaximum": 10, "multipleOf": 0.5}`, []struct {
		instance string
		valid    bool
	}{
		{"2", true},
		{"9.5", true},
		{"10", false},
		{"1.5", false},
		{"2.3", false},
		{`"not a number"`, true},
	})
}

func TestMultipleOfPrecision(t *testing.T) {
	// floating point arithmetic would reject these
	testSchema(t, `{"multipleOf": 0.01}`, []struct {
		instance string
		valid    bool
	}{
		{"19.99", true},
		{"0.07", true},
		{"0.075", false},
	})
}

func TestStringKeywords(t *testing.T) {
	testSchema(t, `{"minLength": 2, "maxLength": 4, "pattern": "^a"}`, []struct {
		instance string
		valid    bool
	}{
		{`"ab"`, true},
		{`"abcd"`, true},
		{`"a"`, false},
		{`"abcde"`, false},
		{`"xbc"`, false},
		{`"aé"`, true},
	})
}

func TestEnumAndConst(t *testing.T) {
	testSchema(t, `{"enum": [1, "two", [3], {"four": 4}]}`, []struct {
		instance string
		valid    bool
	}{
		{"1", true},
		{"1.0", true},
		{`"two"`, true},
		{"[3]", true},
		{`{"four": 4}`, true},
		{"2", false},
		{`"three"`, false},
	})
	testSchema(t, `{"const": {"a": [1, 2]}}`, []struct {
		instance string
		valid    bool
	}{
		{`{"a": [1, 2]}`, true},
		{`{"a": [2, 1]}`, false},
	})
}

func TestArrayKeywords(t *testing.T) {
	testSchema(t, `{"minItems": 1, "maxItems": 3, "uniqueItems": true}`, []struct {
		instance string
		valid    bool
	}{
		{"[1]", true},
		{"[1, 2, 3]", true},
		{"[]", false},
		{"[1, 2, 3, 4]", false},
		{"[1, 1.0]", false},
		{`[{"a":1}, {"a":1}]`, false},
		{`[{"a":1}, {"a":2}]`, true},
	})
}

func TestObjectKeywords(t *testing.T) {
	testSchema(t, `{
		"required": ["a"],
		"minProperties": 1,
		"maxProperties": 2,
		"dependentRequired": {"b": ["c"]}
	}`, []struct {
		instance string
		valid    bool
	}{
		{`{"a": 1}`, true},
		{`{"a": 1, "d": 2}`, true},
		{`{}`, false},
		{`{"d": 1}`, false},
		{`{"a":1, "b":2}`, false},
		{`{"a":1, "b":2, "c":3}`, false},
	})
}

func TestPropertiesAndPatterns(t *testing.T) {
	testSchema(t, `{
		"properties": {"num": {"type": "number"}},
		"patternProperties": {"^s_": {"type": "string"}},
		"additionalProperties": {"type": "boolean"}
	}`, []struct {
		instance string
		valid    bool
	}{
		{`{"num": 1, "s_x": "y", "other": true}`, true},
		{`{"num": "x"}`, false},
		{`{"s_x": 1}`, false},
		{`{"other": 1}`, false},
		{`{}`, true},
	})
}

func TestPropertyNames(t *testing.T) {
	testSchema(t, `{"propertyNames": {"maxLength": 3}}`, []struct {
		instance string
		valid    bool
	}{
		{`{"ab": 1, "abc": 2}`, true},
		{`{"abcd": 1}`, false},
	})
}

func TestPrefixItemsAndItems(t *testing.T) {
	testSchema(t, `{
		"prefixItems": [{"type": "integer"}, {"type": "string"}],
		"items": {"type": "boolean"}
	}`, []struct {
		instance string
		valid    bool
	}{
		{"[]", true},
		{"[1]", true},
		{`[1, "a"]`, true},
		{`[1, "a", true, false]`, true},
		{`["a"]`, false},
		{`[1, "a", 3]`, false},
	})
}

func TestContains(t *testing.T) {
	testSchema(t, `{"contains": {"type": "integer"}, "minContains": 2, "maxContains": 3}`, []struct {
		instance string
		valid    bool
	}{
		{`[1, "a", 2]`, true},
		{`[1, 2, 3]`, true},
		{`[1]`, false},
		{`[1, 2, 3, 4]`, false},
		{`["a", "b"]`, false},
	})
	// minContains 0 accepts an empty match set
	testSchema(t, `{"contains": {"type": "integer"}, "minContains": 0}`, []struct {
		instance string
		valid    bool
	}{
		{`["a"]`, true},
		{`[]`, true},
	})
}

func TestAllAnyOneOf(t *testing.T) {
	testSchema(t, `{"allOf": [{"minimum": 2}, {"maximum": 5}]}`, []struct {
		instance string
		valid    bool
	}{
		{"3", true},
		{"1", false},
		{"6", false},
	})
	testSchema(t, `{"anyOf": [{"type": "integer"}, {"minLength": 2}]}`, []struct {
		instance string
		valid    bool
	}{
		{"3", true},
		{`"ab"`, true},
		{`"a"`, false},
	})
	testSchema(t, `{"oneOf": [{"type": "integer"}, {"type": "number", "minimum": 0}]}`, []struct {
		instance string
		valid    bool
	}{
		{"-3", true},
		{"0.5", true},
		{"5", false},
		{`"x"`, false},
	})
}

func TestNot(t *testing.T) {
	testSchema(t, `{"not": {"type": "string"}}`, []struct {
		instance string
		valid    bool
	}{
		{"1", true},
		{`"x"`, false},
	})
}

func TestIfThenElse(t *testing.T) {
	testSchema(t, `{
		"if": {"type": "integer"},
		"then": {"minimum": 0},
		"else": {"minLength": 2}
	}`, []struct {
		instance string
		valid    bool
	}{
		{"5", true},
		{"-1", false},
		{`"ab"`, true},
		{`"a"`, false},
		{"null", true},
	})
}

func TestDependentSchemas(t *testing.T) {
	testSchema(t, `{
		"dependentSchemas": {
			"credit": {"required": ["billing"]}
		}
	}`, []struct {
		instance string
		valid    bool
	}{
		{`{"credit": 1, "billing": "x"}`, true},
		{`{"credit": 1}`, false},
		{`{"other": 1}`, true},
	})
}

func TestUnevaluatedProperties(t *testing.T) {
	testSchema(t, `{
		"properties": {"a": true},
		"patternProperties": {"^p_": true},
		"unevaluatedProperties": false
	}`, []struct {
		instance string
		valid    bool
	}{
		{`{"a": 1, "p_x": 2}`, true},
		{`{"a": 1, "other": 2}`, false},
	})

	// annotations cross applicator boundaries
	testSchema(t, `{
		"anyOf": [
			{"properties": {"a": {"type": "integer"}}, "required": ["a"]},
			{"properties": {"b": {"type": "integer"}}, "required": ["b"]}
		],
		"unevaluatedProperties": false
	}`, []struct {
		instance string
		valid    bool
	}{
		{`{"a": 1}`, true},
		{`{"a": 1, "b": 2}`, true},
		{`{"a": 1, "c": 3}`, false},
	})

	// a failed branch contributes no annotations
	testSchema(t, `{
		"allOf": [{"properties": {"a": true}}],
		"oneOf": [
			{"properties": {"x": true}, "required": ["x"]},
			{"properties": {"y": true}, "required": ["y"]}
		],
		"unevaluatedProperties": false
	}`, []struct {
		instance string
		valid    bool
	}{
		{`{"a": 1, "x": 2}`, true},
		{`{"a": 1, "y": 2}`, true},
	})
}

func TestUnevaluatedItems(t *testing.T) {
	testSchema(t, `{
		"prefixItems": [{"type": "integer"}],
		"unevaluatedItems": false
	}`, []struct {
		instance string
		valid    bool
	}{
		{"[1]", true},
		{`[1, "x"]`, false},
		{"[]", true},
	})

	// items evaluated by an allOf subschema count as evaluated
	testSchema(t, `{
		"allOf": [{"prefixItems": [true, true]}],
		"unevaluatedItems": {"type": "string"}
	}`, []struct {
		instance string
		valid    bool
	}{
		{`[1, 2, "x"]`, true},
		{`[1, 2, 3]`, false},
		{"[1, 2]", true},
	})

	// contains claims matched indexes
	testSchema(t, `{
		"contains": {"type": "integer"},
		"unevaluatedItems": {"type": "string"}
	}`, []struct {
		instance string
		valid    bool
	}{
		{`[1, "a"]`, true},
		{`[1, true]`, false},
	})
}

func TestRefToDefs(t *testing.T) {
	testSchema(t, `{
		"$defs": {
			"positive": {"type": "integer", "minimum": 1}
		},
		"properties": {
			"count": {"$ref": "#/$defs/positive"}
		}
	}`, []struct {
		instance string
		valid    bool
	}{
		{`{"count": 3}`, true},
		{`{"count": 0}`, false},
		{`{"count": "x"}`, false},
	})
}

func TestRefToAnchor(t *testing.T) {
	testSchema(t, `{
		"$defs": {
			"name": {"$anchor": "name", "type": "string"}
		},
		"properties": {
			"first": {"$ref": "#name"}
		}
	}`, []struct {
		instance string
		valid    bool
	}{
		{`{"first": "ada"}`, true},
		{`{"first": 1}`, false},
	})
}

func TestUnknownKeywordAnnotates(t *testing.T) {
	v := NewValidator()
	uri, err := v.RegisterSchema(`{"x-custom": "hello", "type": "object"}`)
	if err != nil {
		t.Fatal(err)
	}
	result, err := v.ValidateRawInstance(uri, "{}")
	if err != nil {
		t.Fatal(err)
	}
	if !result.Valid {
		t.Fatalf("unexpected failure: %v", result.Errors)
	}
	found := false
	for _, ann := range result.Annotations {
		if ann.Keyword == "x-custom" {
			found = true
			if s, ok := ann.Value.(string); !ok || s != "hello" {
				t.Errorf("annotation value = %v, want %q", ann.Value, "hello")
			}
		}
	}
	if !found {
		t.Error("unknown keyword did not produce an annotation")
	}
}

func TestErrorLocations(t *testing.T) {
	v := NewValidator()
	uri, err := v.RegisterSchemaAt("http://example.com/loc", `{
		"properties": {
			"a": {"type": "integer"}
		}
	}`)
	if err != nil {
		t.Fatal(err)
	}
	result, err := v.ValidateRawInstance(uri, `{"a": "x"}`)
	if err != nil {
		t.Fatal(err)
	}
	if result.Valid {
		t.Fatal("expected failure")
	}
	found := false
	for _, e := range result.Errors {
		if e.Keyword == "type" && e.InstanceLocation == "/a" {
			found = true
			if e.SchemaLocation != "http://example.com/loc#/properties/a/type" {
				t.Errorf("SchemaLocation = %q", e.SchemaLocation)
			}
		}
	}
	if !found {
		t.Errorf("no type error at /a, got %v", result.Errors)
	}
}
