package jsonschema_test

import (
	"fmt"
	"log"

	"github.com/dlclark/regexp2"

	"github.com/jsonschema-dev/jsonschema"
)

type dlclarkRegexp regexp2.Regexp

func (re *dlclarkRegexp) MatchString(s string) bool {
	matched, err := (*regexp2.Regexp)(re).MatchString(s)
	return err == nil && matched
}

func (re *dlclarkRegexp) String() string {
	return (*regexp2.Regexp)(re).String()
}

func dlclarkCompile(s string) (jsonschema.Regexp, error) {
	re, err := regexp2.Compile(s, regexp2.ECMAScript)
	if err != nil {
		return nil, err
	}
	return (*dlclarkRegexp)(re), nil
}

// Example_customRegexpEngine shows how to use dlclark/regexp2
// instead of regexp from standard library.
func Example_customRegexpEngine() {
	v := jsonschema.NewValidator()
	v.UseRegexpEngine(dlclarkCompile)

	// golang regexp does not support escape sequence: `\c`
	uri, err := v.RegisterSchema(`{
		"type": "string",
		"pattern": "^\\cc$"
	}`)
	if err != nil {
		log.Fatal(err)
	}
	result, err := v.ValidateRawInstance(uri, `"\u0003"`)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("valid:", result.Valid)
	// Output:
	// valid: true
}
