package jsonschema

import (
	"fmt"
	"strings"
)

// Validator is the entry point of this package. It owns a schema
// registry, a dialect and the pluggable pieces around them.
//
// The zero value is not usable; create instances with
// [NewValidator]. A Validator may be configured only before the
// first schema is registered.
type Validator struct {
	registry    *schemaRegistry
	dialect     Dialect
	nodeFactory JsonNodeFactory

	resolvers []SchemaResolver
	factories []EvaluatorFactory

	disableSchemaValidation bool
	assertFormat            bool
	assertContent           bool
	regexpEngine            RegexpEngine

	anonCounter int
}

// NewValidator returns a validator speaking draft 2020-12 with the
// default node factory and the standard library regexp engine.
func NewValidator() *Validator {
	return &Validator{
		registry:     newSchemaRegistry(),
		dialect:      Draft2020Dialect{},
		nodeFactory:  DefaultNodeFactory{},
		regexpEngine: goRegexpCompile,
	}
}

// UseDialect switches the dialect new schemas are parsed with.
func (v *Validator) UseDialect(d Dialect) { v.dialect = d }

// UseResolver appends a resolver consulted for unregistered uris,
// after the built-in resolver serving the official meta-schemas.
func (v *Validator) UseResolver(r SchemaResolver) { v.resolvers = append(v.resolvers, r) }

// UseNodeFactory switches the json representation used for schema
// documents and wrapped instances.
func (v *Validator) UseNodeFactory(f JsonNodeFactory) { v.nodeFactory = f }

// UseEvaluatorFactory prepends a factory to the keyword evaluator
// chain, letting callers override or extend the dialect's keywords.
func (v *Validator) UseEvaluatorFactory(f EvaluatorFactory) { v.factories = append(v.factories, f) }

// DisableSchemaValidation skips validating registered documents
// against their meta-schema.
func (v *Validator) DisableSchemaValidation() { v.disableSchemaValidation = true }

// AssertFormat turns 'format' into an assertion.
func (v *Validator) AssertFormat() { v.assertFormat = true }

// AssertContent turns the content keywords into assertions.
func (v *Validator) AssertContent() { v.assertContent = true }

// UseRegexpEngine replaces the regexp implementation behind
// 'pattern', 'patternProperties' and the 'regex' format.
func (v *Validator) UseRegexpEngine(engine RegexpEngine) { v.regexpEngine = engine }

func (v *Validator) newParser() *SchemaParser {
	return v.parserFor(v.dialect)
}

func (v *Validator) parserFor(d Dialect) *SchemaParser {
	factories := append([]EvaluatorFactory{}, v.factories...)
	factories = append(factories, d.EvaluatorFactory())
	p := &SchemaParser{
		dialect:       d,
		factory:       composeFactories(factories...),
		registry:      v.registry,
		nodeFactory:   v.nodeFactory,
		assertFormat:  v.assertFormat,
		assertContent: v.assertContent,
		regexpEngine:  v.regexpEngine,
	}
	if !v.disableSchemaValidation {
		p.validateEmbedded = v.validateEmbeddedResource
	}
	return p
}

func (v *Validator) resolverChain() SchemaResolver {
	chain := append([]SchemaResolver{specResolver{}}, v.resolvers...)
	return composeResolvers(chain...)
}

// Result is the outcome of evaluating an instance. Violations are
// data here, never go errors.
type Result struct {
	Valid       bool
	Errors      []Error
	Annotations []Annotation
}

// RegisterSchema registers a schema document under a generated
// anonymous uri, or under its own '$id' when it has one. Returns
// the uri the document can be validated against.
func (v *Validator) RegisterSchema(rawSchema string) (string, error) {
	node, err := v.nodeFactory.Parse(rawSchema)
	if err != nil {
		return "", err
	}
	return v.RegisterSchemaNode(node)
}

// RegisterSchemaNode is [RegisterSchema] for a pre-parsed document.
func (v *Validator) RegisterSchemaNode(node JsonNode) (string, error) {
	v.anonCounter++
	return v.registerAt(fmt.Sprintf("urn:anonymous:%d", v.anonCounter), node)
}

// RegisterSchemaAt registers a schema document under uri. The
// registration is transactional: on any failure the registry is
// left exactly as it was.
func (v *Validator) RegisterSchemaAt(uri string, rawSchema string) (string, error) {
	node, err := v.nodeFactory.Parse(rawSchema)
	if err != nil {
		return "", err
	}
	return v.registerAt(uri, node)
}

// RegisterSchemaNodeAt is [RegisterSchemaAt] for a pre-parsed
// document.
func (v *Validator) RegisterSchemaNodeAt(uri string, node JsonNode) (string, error) {
	return v.registerAt(uri, node)
}

func (v *Validator) registerAt(uri string, node JsonNode) (string, error) {
	cu, err := SplitFragment(uri)
	if err != nil {
		return "", err
	}
	if cu.Fragment != "" {
		return "", &InvalidRefError{Ref: uri, Reason: "registration uri must not contain a fragment"}
	}
	snapshot := v.registry.createSnapshot()
	registered, err := v.register(cu.Base, node, map[string]bool{})
	if err != nil {
		v.registry.restoreSnapshot(snapshot)
		return "", err
	}
	return registered, nil
}

// register validates node against its meta-schema and parses it.
// inProgress guards against meta-schema cycles: a document whose
// '$schema' points at a document currently being registered skips
// the validation step. A document whose '$schema' points at itself
// registers first and then validates against its own registration.
func (v *Validator) register(uri string, node JsonNode, inProgress map[string]bool) (string, error) {
	if v.disableSchemaValidation {
		return v.newParser().parseDocument(uri, node)
	}
	metaUri := v.dialect.MetaSchemaURI()
	if node.IsObject() {
		if schemaNode, ok := node.AsObject()["$schema"]; ok {
			if !schemaNode.IsString() {
				return "", &ParseIDError{Location: schemaNode.JsonPointer(), Reason: "$schema must be a string"}
			}
			metaUri = UriWithoutFragment(schemaNode.AsString())
		}
	}
	if metaUri == uri || metaUri == v.documentID(uri, node) {
		registered, err := v.newParser().parseDocument(uri, node)
		if err != nil {
			return "", err
		}
		result := v.evaluateRegistered(metaUri, node)
		if result != nil && !result.Valid {
			return "", &InvalidSchemaError{URI: uri, Errors: result.Errors}
		}
		return registered, nil
	}
	if !inProgress[metaUri] {
		inProgress[uri] = true
		if err := v.ensureMetaSchema(metaUri, inProgress); err != nil {
			return "", err
		}
		delete(inProgress, uri)
		result := v.evaluateRegistered(metaUri, node)
		if result != nil && !result.Valid {
			return "", &InvalidSchemaError{URI: uri, Errors: result.Errors}
		}
	}
	return v.newParser().parseDocument(uri, node)
}

// documentID returns the base uri the root '$id' of node resolves
// to, or "" when there is none.
func (v *Validator) documentID(base string, node JsonNode) string {
	if !node.IsObject() {
		return ""
	}
	idNode, ok := node.AsObject()["$id"]
	if !ok || !idNode.IsString() {
		return ""
	}
	cu, err := resolveUri(base, idNode.AsString())
	if err != nil || cu.Fragment != "" {
		return ""
	}
	return cu.Base
}

// validateEmbeddedResource meta-validates an embedded schema
// resource that declares its own '$schema'. The parser calls it
// after the resource is registered, so a self-describing resource
// can validate against itself.
func (v *Validator) validateEmbeddedResource(metaUri, uri string, node JsonNode) error {
	if err := v.ensureMetaSchema(metaUri, map[string]bool{}); err != nil {
		return err
	}
	result := v.evaluateRegistered(metaUri, node)
	if result != nil && !result.Valid {
		return &InvalidSchemaError{URI: uri, Errors: result.Errors}
	}
	return nil
}

// ensureMetaSchema makes the document at metaUri available in the
// registry, resolving and registering it on demand.
func (v *Validator) ensureMetaSchema(metaUri string, inProgress map[string]bool) error {
	if v.registry.get(CompoundUri{Base: metaUri}) != nil {
		return nil
	}
	if inProgress[metaUri] {
		return nil
	}
	for _, version := range []SpecVersion{Draft2020, Draft2019} {
		if metaUri == version.MetaSchemaURI() || strings.HasPrefix(metaUri, version.BaseURI()+"/") {
			return v.registerSpecResources(version)
		}
	}
	inProgress[metaUri] = true
	defer delete(inProgress, metaUri)

	res := v.resolverChain().Resolve(metaUri)
	if res.isEmpty() {
		return &MetaSchemaResolvingError{URI: metaUri}
	}
	node, err := res.toNode(v.nodeFactory)
	if err != nil {
		return &MetaSchemaResolvingError{URI: metaUri, Cause: err}
	}
	if _, err := v.register(metaUri, node, inProgress); err != nil {
		return err
	}
	return nil
}

// specResources lists the embedded documents of each release. The
// root meta-schema references every vocabulary document, so they
// all register together.
var specResources = map[SpecVersion][]string{
	Draft2020: {
		"schema", "meta/core", "meta/applicator", "meta/unevaluated",
		"meta/validation", "meta/meta-data", "meta/format-annotation",
		"meta/content",
	},
	Draft2019: {
		"schema", "meta/core", "meta/applicator", "meta/validation",
		"meta/meta-data", "meta/format", "meta/content",
	},
}

// registerSpecResources parses the official documents of version
// into the registry. They are trusted and skip meta validation,
// which also breaks the self-reference of the root meta-schema.
func (v *Validator) registerSpecResources(version SpecVersion) error {
	dialect := Dialect(Draft2020Dialect{})
	if version == Draft2019 {
		dialect = Draft2019Dialect{}
	}
	parser := v.parserFor(dialect)
	for _, name := range specResources[version] {
		uri := version.BaseURI() + "/" + name
		if v.registry.get(CompoundUri{Base: uri}) != nil {
			continue
		}
		raw, ok := version.Resolve(uri)
		if !ok {
			panic(&Bug{"missing embedded resource " + uri})
		}
		node, err := DefaultNodeFactory{}.Parse(raw)
		if err != nil {
			return &MetaSchemaResolvingError{URI: uri, Cause: err}
		}
		if _, err := parser.parseDocument(uri, node); err != nil {
			return err
		}
	}
	return nil
}

// evaluateRegistered validates node against the schema at uri, or
// returns nil when the schema is not in the registry. The latter
// happens only on meta-schema cycles, which tolerate it.
func (v *Validator) evaluateRegistered(uri string, node JsonNode) *Result {
	sch := v.registry.get(CompoundUri{Base: uri})
	if sch == nil {
		return nil
	}
	return v.evaluate(sch, node)
}

func (v *Validator) evaluate(sch *Schema, node JsonNode) *Result {
	ctx := newEvaluationContext(v.registry)
	ctx.materialize = v.materialize
	valid := ctx.evaluateSchema(sch, node)
	return &Result{Valid: valid, Errors: ctx.errors, Annotations: ctx.annotations}
}

// materialize resolves and registers the document at base during
// evaluation, when a reference points outside the registry. It
// reports whether base became available.
func (v *Validator) materialize(base string) bool {
	if v.registry.get(CompoundUri{Base: base}) != nil {
		return false
	}
	res := v.resolverChain().Resolve(base)
	if res.isEmpty() {
		return false
	}
	node, err := res.toNode(v.nodeFactory)
	if err != nil {
		return false
	}
	if _, err := v.registerAt(base, node); err != nil {
		return false
	}
	return true
}

// Validate evaluates instance, wrapped by the node factory,
// against the schema registered at uri.
func (v *Validator) Validate(uri string, instance any) (*Result, error) {
	node, err := v.nodeFactory.Wrap(instance)
	if err != nil {
		return nil, err
	}
	return v.ValidateNode(uri, node)
}

// ValidateRawInstance parses rawInstance as json and evaluates it
// against the schema registered at uri.
func (v *Validator) ValidateRawInstance(uri string, rawInstance string) (*Result, error) {
	node, err := v.nodeFactory.Parse(rawInstance)
	if err != nil {
		return nil, err
	}
	return v.ValidateNode(uri, node)
}

// ValidateNode evaluates node against the schema registered at
// uri. The uri may carry a fragment addressing a subschema or an
// anchor.
func (v *Validator) ValidateNode(uri string, node JsonNode) (*Result, error) {
	cu, err := SplitFragment(uri)
	if err != nil {
		return nil, err
	}
	sch := v.registry.get(cu)
	if sch == nil {
		return nil, &SchemaNotFoundError{Ref: uri}
	}
	return v.evaluate(sch, node), nil
}

// ValidateRaw registers rawSchema under an anonymous uri and
// evaluates rawInstance against it in one step.
func ValidateRaw(rawSchema, rawInstance string) (*Result, error) {
	v := NewValidator()
	uri, err := v.RegisterSchema(rawSchema)
	if err != nil {
		return nil, err
	}
	return v.ValidateRawInstance(uri, rawInstance)
}
