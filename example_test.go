package jsonschema_test

import (
	"fmt"
	"log"

	"github.com/jsonschema-dev/jsonschema"
)

func Example() {
	v := jsonschema.NewValidator()
	uri, err := v.RegisterSchema(`{
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"age": {"type": "integer", "minimum": 0}
		},
		"required": ["name"]
	}`)
	if err != nil {
		log.Fatal(err)
	}

	result, err := v.ValidateRawInstance(uri, `{"name": "ada", "age": -3}`)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("valid:", result.Valid)
	for _, e := range result.Errors {
		fmt.Println(e.String())
	}
	// Output:
	// valid: false
	// I[/age] S[/properties/age/minimum] -3 is not valid against minimum 0
	// I[/] S[/properties] properties 'age' do not match their schemas
}

func Example_resolver() {
	v := jsonschema.NewValidator()
	v.UseResolver(jsonschema.SchemaResolverFunc(func(uri string) jsonschema.ResolverResult {
		if uri == "http://example.com/size" {
			return jsonschema.ResolveString(`{"enum": ["small", "medium", "large"]}`)
		}
		return jsonschema.ResolverResult{}
	}))

	uri, err := v.RegisterSchema(`{"$ref": "http://example.com/size"}`)
	if err != nil {
		log.Fatal(err)
	}
	result, err := v.ValidateRawInstance(uri, `"medium"`)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("valid:", result.Valid)
	// Output:
	// valid: true
}

func Example_assertFormat() {
	v := jsonschema.NewValidator()
	v.AssertFormat()
	uri, err := v.RegisterSchema(`{"type": "string", "format": "date"}`)
	if err != nil {
		log.Fatal(err)
	}
	result, err := v.ValidateRawInstance(uri, `"2023-02-29"`)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("valid:", result.Valid)
	// Output:
	// valid: false
}
