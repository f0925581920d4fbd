package jsonschema

import (
	"embed"
	"strings"
)

//go:embed metaschemas
var metaFS embed.FS

// SpecVersion identifies a supported json-schema specification
// release. Each version serves its official meta-schema documents
// from resources embedded in the binary.
type SpecVersion int

const (
	Draft2020 SpecVersion = iota
	Draft2019
)

func (v SpecVersion) String() string {
	switch v {
	case Draft2020:
		return "draft/2020-12"
	case Draft2019:
		return "draft/2019-09"
	}
	return "unknown"
}

// BaseURI returns the uri every document of this release lives under.
func (v SpecVersion) BaseURI() string {
	return "https://json-schema.org/" + v.String()
}

// MetaSchemaURI returns the uri of the release's root meta-schema.
func (v SpecVersion) MetaSchemaURI() string {
	return v.BaseURI() + "/schema"
}

// Resolve serves the embedded document registered at uri. Any
// document under the release's base uri is available, not just the
// root meta-schema.
func (v SpecVersion) Resolve(uri string) (string, bool) {
	uri = UriWithoutFragment(uri)
	rest, ok := strings.CutPrefix(uri, v.BaseURI()+"/")
	if !ok {
		return "", false
	}
	raw, err := metaFS.ReadFile("metaschemas/" + v.String() + "/" + rest + ".json")
	if err != nil {
		return "", false
	}
	return string(raw), true
}

// resolveSpecResource tries every known release.
func resolveSpecResource(uri string) (string, bool) {
	for _, v := range []SpecVersion{Draft2020, Draft2019} {
		if raw, ok := v.Resolve(uri); ok {
			return raw, true
		}
	}
	return "", false
}

// Dialect bundles everything version-specific: the meta-schema each
// registered document is validated against, the evaluator set and
// the vocabulary semantics.
type Dialect interface {
	MetaSchemaURI() string
	SpecVersion() SpecVersion
	EvaluatorFactory() EvaluatorFactory
	SupportedVocabularies() []string
	DefaultVocabularies() map[string]bool
	RequiredVocabularies() []string
}

const (
	vocab2020Core             = "https://json-schema.org/draft/2020-12/vocab/core"
	vocab2020Applicator       = "https://json-schema.org/draft/2020-12/vocab/applicator"
	vocab2020Unevaluated      = "https://json-schema.org/draft/2020-12/vocab/unevaluated"
	vocab2020Validation       = "https://json-schema.org/draft/2020-12/vocab/validation"
	vocab2020MetaData         = "https://json-schema.org/draft/2020-12/vocab/meta-data"
	vocab2020FormatAnnotation = "https://json-schema.org/draft/2020-12/vocab/format-annotation"
	vocab2020FormatAssertion  = "https://json-schema.org/draft/2020-12/vocab/format-assertion"
	vocab2020Content          = "https://json-schema.org/draft/2020-12/vocab/content"

	vocab2019Core       = "https://json-schema.org/draft/2019-09/vocab/core"
	vocab2019Applicator = "https://json-schema.org/draft/2019-09/vocab/applicator"
	vocab2019Validation = "https://json-schema.org/draft/2019-09/vocab/validation"
	vocab2019MetaData   = "https://json-schema.org/draft/2019-09/vocab/meta-data"
	vocab2019Format     = "https://json-schema.org/draft/2019-09/vocab/format"
	vocab2019Content    = "https://json-schema.org/draft/2019-09/vocab/content"
)

// Draft2020Dialect implements the 2020-12 release. It is the
// default dialect of [NewValidator].
type Draft2020Dialect struct{}

func (Draft2020Dialect) MetaSchemaURI() string { return Draft2020.MetaSchemaURI() }

func (Draft2020Dialect) SpecVersion() SpecVersion { return Draft2020 }

func (Draft2020Dialect) EvaluatorFactory() EvaluatorFactory {
	return Draft2020EvaluatorFactory{}
}

func (Draft2020Dialect) SupportedVocabularies() []string {
	return []string{
		vocab2020Core, vocab2020Applicator, vocab2020Unevaluated,
		vocab2020Validation, vocab2020MetaData,
		vocab2020FormatAnnotation, vocab2020FormatAssertion, vocab2020Content,
	}
}

func (Draft2020Dialect) DefaultVocabularies() map[string]bool {
	return map[string]bool{
		vocab2020Core:             true,
		vocab2020Applicator:       true,
		vocab2020Unevaluated:      true,
		vocab2020Validation:       true,
		vocab2020MetaData:         true,
		vocab2020FormatAnnotation: true,
		vocab2020Content:          true,
	}
}

func (Draft2020Dialect) RequiredVocabularies() []string {
	return []string{vocab2020Core}
}

// Draft2019Dialect implements the 2019-09 release.
type Draft2019Dialect struct{}

func (Draft2019Dialect) MetaSchemaURI() string { return Draft2019.MetaSchemaURI() }

func (Draft2019Dialect) SpecVersion() SpecVersion { return Draft2019 }

func (Draft2019Dialect) EvaluatorFactory() EvaluatorFactory {
	return Draft2019EvaluatorFactory{}
}

func (Draft2019Dialect) SupportedVocabularies() []string {
	return []string{
		vocab2019Core, vocab2019Applicator, vocab2019Validation,
		vocab2019MetaData, vocab2019Format, vocab2019Content,
	}
}

func (Draft2019Dialect) DefaultVocabularies() map[string]bool {
	return map[string]bool{
		vocab2019Core:       true,
		vocab2019Applicator: true,
		vocab2019Validation: true,
		vocab2019MetaData:   true,
		vocab2019Format:     true,
		vocab2019Content:    true,
	}
}

func (Draft2019Dialect) RequiredVocabularies() []string {
	return []string{vocab2019Core}
}
