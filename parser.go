package jsonschema

import (
	"fmt"
	"regexp"
)

// SchemaParser compiles schema documents into [Schema] values and
// records them in the registry. Parsing is transactional only at
// the [Validator] level; the parser itself mutates the registry as
// it walks the document.
type SchemaParser struct {
	dialect     Dialect
	factory     EvaluatorFactory
	registry    *schemaRegistry
	nodeFactory JsonNodeFactory

	assertFormat  bool
	assertContent bool
	regexpEngine  RegexpEngine

	// validateEmbedded meta-validates an embedded resource against
	// the '$schema' it declares; nil when schema validation is off
	validateEmbedded func(metaUri, uri string, node JsonNode) error
}

// ParsingContext is handed to [EvaluatorFactory] implementations
// while a schema object is compiled. It exposes the uris needed to
// address subschemas and the sibling keywords of the one being
// compiled.
type ParsingContext struct {
	parser *SchemaParser

	baseUri   string // registration base of the whole document
	parentUri string // nearest enclosing '$id' scope

	currentObject map[string]JsonNode
}

// BaseUri returns the uri the current document registers under.
func (ctx *ParsingContext) BaseUri() string { return ctx.baseUri }

// ParentUri returns the uri references in the current schema
// resource resolve against.
func (ctx *ParsingContext) ParentUri() string { return ctx.parentUri }

// AbsoluteUri returns the registry address of node.
func (ctx *ParsingContext) AbsoluteUri(node JsonNode) string {
	return ctx.baseUri + "#" + node.JsonPointer()
}

// ResolveRef resolves a uri-reference against the current scope.
func (ctx *ParsingContext) ResolveRef(ref string) (CompoundUri, error) {
	return resolveUri(ctx.parentUri, ref)
}

// CurrentSchemaObject returns the members of the schema object
// being compiled, so that a keyword can read its siblings.
func (ctx *ParsingContext) CurrentSchemaObject() map[string]JsonNode {
	return ctx.currentObject
}

func (ctx *ParsingContext) SpecVersion() SpecVersion { return ctx.parser.dialect.SpecVersion() }

func (ctx *ParsingContext) Dialect() Dialect { return ctx.parser.dialect }

func (ctx *ParsingContext) AssertFormat() bool  { return ctx.parser.assertFormat }
func (ctx *ParsingContext) AssertContent() bool { return ctx.parser.assertContent }

// CompileRegexp compiles pattern with the configured engine.
func (ctx *ParsingContext) CompileRegexp(pattern string) (Regexp, error) {
	return ctx.parser.regexpEngine(pattern)
}

func (ctx *ParsingContext) withParent(parentUri string) *ParsingContext {
	return &ParsingContext{
		parser:    ctx.parser,
		baseUri:   ctx.baseUri,
		parentUri: parentUri,
	}
}

// --

// parseDocument compiles the document rooted at node, registering
// it and every subschema under baseUri. If the root carries '$id',
// that uri becomes the registration base and baseUri turns into a
// read-only alias of it. Returns the effective base uri.
func (p *SchemaParser) parseDocument(baseUri string, node JsonNode) (string, error) {
	effectiveBase := baseUri
	if node.IsObject() {
		if idNode, ok := node.AsObject()["$id"]; ok {
			id, err := parseIDValue(idNode, baseUri)
			if err != nil {
				return "", err
			}
			effectiveBase = id
		}
	}
	ctx := &ParsingContext{parser: p, baseUri: effectiveBase, parentUri: effectiveBase}
	if _, err := p.parseNode(ctx, node, true); err != nil {
		return "", err
	}
	if effectiveBase != baseUri {
		p.registry.registerAlias(baseUri, effectiveBase)
	}
	return effectiveBase, nil
}

// parseIDValue validates and resolves the value of an '$id' member.
func parseIDValue(idNode JsonNode, base string) (string, error) {
	if !idNode.IsString() {
		return "", &ParseIDError{Location: idNode.JsonPointer(), Reason: "$id must be a string"}
	}
	cu, err := resolveUri(base, idNode.AsString())
	if err != nil {
		return "", &ParseIDError{Location: idNode.JsonPointer(), Reason: err.Error()}
	}
	if cu.Fragment != "" {
		return "", &ParseIDError{Location: idNode.JsonPointer(), Reason: "$id must not contain a non-empty fragment"}
	}
	return cu.Base, nil
}

// parseNode compiles one schema node, its subschemas first. root
// marks the document root, whose '$id' was consumed by
// parseDocument already.
func (p *SchemaParser) parseNode(ctx *ParsingContext, node JsonNode, root bool) (*Schema, error) {
	ptr := node.JsonPointer()
	uri := ctx.baseUri + "#" + ptr

	if node.IsBoolean() {
		b := node.AsBoolean()
		sch := &Schema{uri: uri, parentUri: ctx.parentUri, boolValue: &b}
		p.registry.registerSchema(ctx.baseUri, ptr, sch)
		return sch, nil
	}
	if !node.IsObject() {
		return nil, &ParseIDError{Location: ptr, Reason: fmt.Sprintf("schema must be object or boolean, got %s", node.Type())}
	}

	members := node.AsObject()
	embeddedBase := ""
	if !root {
		if idNode, ok := members["$id"]; ok {
			var err error
			embeddedBase, err = p.parseEmbeddedID(ctx, idNode)
			if err != nil {
				return nil, err
			}
			if embeddedBase != "" {
				ctx = ctx.withParent(embeddedBase)
			}
		}
	}

	if err := p.parseSubschemas(ctx, members); err != nil {
		return nil, err
	}

	sch := &Schema{uri: uri, parentUri: ctx.parentUri}
	if root {
		if vocabNode, ok := members["$vocabulary"]; ok && vocabNode.IsObject() {
			sch.vocabularies = map[string]bool{}
			for name, required := range vocabNode.AsObject() {
				sch.vocabularies[name] = required.IsBoolean() && required.AsBoolean()
			}
		}
	}

	evalCtx := &ParsingContext{
		parser:        p,
		baseUri:       ctx.baseUri,
		parentUri:     ctx.parentUri,
		currentObject: members,
	}
	for keyword, value := range members {
		ev, err := p.factory.Create(evalCtx, keyword, value)
		if err != nil {
			return nil, err
		}
		if ev == nil {
			if isStructuralKeyword(keyword) {
				continue
			}
			// unknown and annotation-only keywords survive as
			// annotations carrying their raw value
			ev = &annotationEvaluator{value: nodeToAny(value)}
		}
		sch.evaluators = append(sch.evaluators, boundEvaluator{
			keyword:  keyword,
			priority: keywordPriority(keyword),
			ev:       ev,
		})
	}
	sch.sortEvaluators()

	if embeddedBase != "" {
		p.registry.registerEmbeddedSchema(ctx.baseUri, embeddedBase, ptr, sch)
	} else {
		p.registry.registerSchema(ctx.baseUri, ptr, sch)
	}
	if err := p.registerAnchors(ctx, members, sch); err != nil {
		return nil, err
	}

	if embeddedBase != "" && p.validateEmbedded != nil {
		if schemaNode, ok := members["$schema"]; ok {
			if !schemaNode.IsString() {
				return nil, &ParseIDError{Location: schemaNode.JsonPointer(), Reason: "$schema must be a string"}
			}
			metaUri := UriWithoutFragment(schemaNode.AsString())
			if err := p.validateEmbedded(metaUri, embeddedBase, node); err != nil {
				return nil, err
			}
		}
	}
	return sch, nil
}

// parseEmbeddedID handles '$id' on a non-root schema. It returns
// the new base uri, or "" when the value acted as a plain anchor
// (the 2019-09 fragment form).
func (p *SchemaParser) parseEmbeddedID(ctx *ParsingContext, idNode JsonNode) (string, error) {
	if !idNode.IsString() {
		return "", &ParseIDError{Location: idNode.JsonPointer(), Reason: "$id must be a string"}
	}
	cu, err := resolveUri(ctx.parentUri, idNode.AsString())
	if err != nil {
		return "", &ParseIDError{Location: idNode.JsonPointer(), Reason: err.Error()}
	}
	if cu.Fragment == "" {
		return cu.Base, nil
	}
	if p.dialect.SpecVersion() == Draft2019 && cu.IsAnchor() {
		// draft 2019-09 spells anchors as fragment-only $id values
		return "", nil
	}
	return "", &ParseIDError{Location: idNode.JsonPointer(), Reason: "$id must not contain a non-empty fragment"}
}

var anchorPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9._-]*$`)

func (p *SchemaParser) registerAnchors(ctx *ParsingContext, members map[string]JsonNode, sch *Schema) error {
	registerPlain := func(node JsonNode) error {
		name := node.AsString()
		if !node.IsString() || !anchorPattern.MatchString(name) {
			return &ParseAnchorError{Location: node.JsonPointer()}
		}
		return p.registry.registerAnchor(ctx.parentUri, name, sch)
	}

	if p.dialect.SpecVersion() == Draft2019 {
		if idNode, ok := members["$id"]; ok && idNode.IsString() {
			if cu, err := SplitFragment(idNode.AsString()); err == nil && cu.IsAnchor() {
				if !anchorPattern.MatchString(cu.Fragment) {
					return &ParseAnchorError{Location: idNode.JsonPointer()}
				}
				if err := p.registry.registerAnchor(ctx.parentUri, cu.Fragment, sch); err != nil {
					return err
				}
			}
		}
		if recNode, ok := members["$recursiveAnchor"]; ok && recNode.IsBoolean() && recNode.AsBoolean() {
			p.registry.registerRecursiveRoot(ctx.parentUri, sch)
		}
	}

	if anchorNode, ok := members["$anchor"]; ok {
		if err := registerPlain(anchorNode); err != nil {
			return err
		}
	}
	if dynNode, ok := members["$dynamicAnchor"]; ok {
		name := dynNode.AsString()
		if !dynNode.IsString() || !anchorPattern.MatchString(name) {
			return &ParseAnchorError{Location: dynNode.JsonPointer()}
		}
		if err := p.registry.registerDynamicAnchor(ctx.parentUri, name, sch); err != nil {
			return err
		}
	}
	return nil
}

// subschema positions of a keyword within a schema object
type subschemaPosition int

const (
	posNone subschemaPosition = iota
	posSelf                   // value is a schema
	posProp                   // value is an object of schemas
	posItem                   // value is an array of schemas
)

func (v SpecVersion) subschemaPosition(keyword string, value JsonNode) subschemaPosition {
	switch keyword {
	case "additionalProperties", "propertyNames", "unevaluatedItems",
		"unevaluatedProperties", "contains", "if", "then", "else",
		"not", "contentSchema":
		return posSelf
	case "properties", "patternProperties", "dependentSchemas", "$defs", "definitions":
		return posProp
	case "allOf", "anyOf", "oneOf":
		return posItem
	case "items":
		if v == Draft2019 && value.IsArray() {
			return posItem
		}
		return posSelf
	case "prefixItems":
		if v == Draft2020 {
			return posItem
		}
	case "additionalItems":
		if v == Draft2019 {
			return posSelf
		}
	}
	return posNone
}

func (p *SchemaParser) parseSubschemas(ctx *ParsingContext, members map[string]JsonNode) error {
	version := p.dialect.SpecVersion()
	for keyword, value := range members {
		switch version.subschemaPosition(keyword, value) {
		case posSelf:
			if _, err := p.parseNode(ctx, value, false); err != nil {
				return err
			}
		case posProp:
			if !value.IsObject() {
				continue
			}
			for _, child := range value.AsObject() {
				if _, err := p.parseNode(ctx, child, false); err != nil {
					return err
				}
			}
		case posItem:
			if !value.IsArray() {
				continue
			}
			for _, child := range value.AsArray() {
				if _, err := p.parseNode(ctx, child, false); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
