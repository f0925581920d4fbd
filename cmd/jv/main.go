// Command jv validates json documents against a json schema.
//
//	jv [flags] SCHEMA [INSTANCE...]
//
// Exit status is 1 when an instance does not conform and 2 when the
// schema itself cannot be loaded or is invalid.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jsonschema-dev/jsonschema"
	"github.com/jsonschema-dev/jsonschema/httploader"
)

const (
	exitInvalid = 1
	exitUsage   = 2
)

func main() {
	var (
		draft         string
		assertFormat  bool
		assertContent bool
		insecure      bool
		quiet         bool
	)

	cmd := &cobra.Command{
		Use:           "jv SCHEMA [INSTANCE...]",
		Short:         "validate json documents against a json schema",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args, draft, assertFormat, assertContent, insecure, quiet)
		},
	}
	cmd.Flags().StringVar(&draft, "draft", "2020", "draft used when $schema is missing (2019 or 2020)")
	cmd.Flags().BoolVar(&assertFormat, "assert-format", false, "treat format as an assertion")
	cmd.Flags().BoolVar(&assertContent, "assert-content", false, "treat content keywords as assertions")
	cmd.Flags().BoolVar(&insecure, "insecure", false, "skip tls certificate verification")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only validation failures")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if _, ok := err.(*invalidInstanceError); ok {
			os.Exit(exitInvalid)
		}
		os.Exit(exitUsage)
	}
}

type invalidInstanceError struct {
	location string
	result   *jsonschema.Result
}

func (e *invalidInstanceError) Error() string {
	s := fmt.Sprintf("%s does not conform to the schema", e.location)
	for _, err := range e.result.Errors {
		s += "\n  " + err.String()
	}
	return s
}

func run(args []string, draft string, assertFormat, assertContent, insecure, quiet bool) error {
	v := jsonschema.NewValidator()
	switch draft {
	case "2020":
		v.UseDialect(&jsonschema.Draft2020Dialect{})
	case "2019":
		v.UseDialect(&jsonschema.Draft2019Dialect{})
	default:
		return fmt.Errorf("draft must be 2019 or 2020, got %q", draft)
	}
	if assertFormat {
		v.AssertFormat()
	}
	if assertContent {
		v.AssertContent()
	}
	v.UseResolver(httploader.New(httpTimeout, insecure))
	v.UseResolver(fileResolver{})

	schemaLocation := args[0]
	uri, err := registerSchema(v, schemaLocation, insecure)
	if err != nil {
		return fmt.Errorf("cannot load schema %s: %w", schemaLocation, err)
	}
	if !quiet {
		fmt.Printf("schema %s: ok\n", schemaLocation)
	}

	for _, location := range args[1:] {
		instance, err := loadInstance(location)
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", location, err)
		}
		result, err := v.Validate(uri, instance)
		if err != nil {
			return err
		}
		if !result.Valid {
			return &invalidInstanceError{location: location, result: result}
		}
		if !quiet {
			fmt.Printf("instance %s: ok\n", location)
		}
	}
	return nil
}

// registerSchema loads the schema document from a file or url and
// registers it under its canonical uri.
func registerSchema(v *jsonschema.Validator, location string, insecure bool) (string, error) {
	var doc any
	var uri string
	var err error
	if isHTTPURL(location) {
		uri = location
		doc, err = loadHTTP(location, insecure)
	} else {
		uri, err = toFileURL(location)
		if err != nil {
			return "", err
		}
		doc, err = loadFile(location)
	}
	if err != nil {
		return "", err
	}
	node, err := jsonschema.DefaultNodeFactory{}.Wrap(doc)
	if err != nil {
		return "", err
	}
	return v.RegisterSchemaNodeAt(uri, node)
}

func loadInstance(location string) (any, error) {
	return loadFile(location)
}
