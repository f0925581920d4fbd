// Package jsonschema implements json-schema validation for the
// draft 2020-12 and draft 2019-09 specifications.
//
// Schemas are registered with a [Validator] and addressed by uri:
//
//	v := jsonschema.NewValidator()
//	uri, err := v.RegisterSchema(`{"type": "object"}`)
//	if err != nil {
//		// the schema document itself is invalid
//	}
//	result, err := v.ValidateRawInstance(uri, `{"x": 1}`)
//	if err != nil {
//		// the uri is unknown or the instance is not json
//	}
//	if !result.Valid {
//		for _, e := range result.Errors {
//			fmt.Println(e)
//		}
//	}
//
// Registered documents are validated against their meta-schema
// first; a document that fails leaves the validator untouched.
// Evaluation failures are never go errors: they are reported as
// data in [Result].
package jsonschema
