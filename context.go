package jsonschema

import (
	"fmt"
	"strings"
)

// EvaluationContext carries all mutable state of a single Validate
// call: the error and annotation lists, the dynamic scope of
// traversed schema resources and the recursion guard. One context
// is created per call and discarded afterwards.
type EvaluationContext struct {
	registry *schemaRegistry

	// materialize loads an unregistered document mid-evaluation,
	// reporting whether its base uri became available
	materialize func(base string) bool

	errors      []Error
	annotations []Annotation

	dynamicScope []*Schema
	refStack     []refFrame
	evalPath     []string
}

type refFrame struct {
	schemaUri   string
	instancePtr string
}

func newEvaluationContext(registry *schemaRegistry) *EvaluationContext {
	return &EvaluationContext{registry: registry}
}

// pushRefFrame reports true if the (schema, instance) pair is
// already on the stack, which means evaluation entered a cycle.
func (ctx *EvaluationContext) pushRefFrame(schemaUri, instancePtr string) bool {
	for _, f := range ctx.refStack {
		if f.schemaUri == schemaUri && f.instancePtr == instancePtr {
			return true
		}
	}
	ctx.refStack = append(ctx.refStack, refFrame{schemaUri, instancePtr})
	return false
}

func (ctx *EvaluationContext) popRefFrame() {
	ctx.refStack = ctx.refStack[:len(ctx.refStack)-1]
}

func (ctx *EvaluationContext) pushDynamicScope(s *Schema) {
	ctx.dynamicScope = append(ctx.dynamicScope, s)
}

func (ctx *EvaluationContext) popDynamicScope() {
	ctx.dynamicScope = ctx.dynamicScope[:len(ctx.dynamicScope)-1]
}

func (ctx *EvaluationContext) pushEvalPath(segment string) {
	ctx.evalPath = append(ctx.evalPath, segment)
}

func (ctx *EvaluationContext) popEvalPath() {
	ctx.evalPath = ctx.evalPath[:len(ctx.evalPath)-1]
}

func (ctx *EvaluationContext) evalPathString() string {
	if len(ctx.evalPath) == 0 {
		return ""
	}
	return "/" + strings.Join(ctx.evalPath, "/")
}

func (ctx *EvaluationContext) addError(schemaUri, keyword string, v JsonNode, format string, args ...any) {
	loc := schemaUri
	if keyword != "" {
		loc += "/" + keyword
	}
	ctx.errors = append(ctx.errors, Error{
		InstanceLocation: v.JsonPointer(),
		EvaluationPath:   ctx.evalPathString(),
		SchemaLocation:   loc,
		Keyword:          keyword,
		Message:          fmt.Sprintf(format, args...),
	})
}

// evaluateSchema runs s against v. Annotations produced by a
// failing subschema are dropped so that unevaluatedProperties and
// unevaluatedItems only see annotations of passing branches.
func (ctx *EvaluationContext) evaluateSchema(s *Schema, v JsonNode) bool {
	annMark := len(ctx.annotations)
	ok := s.evaluate(ctx, v)
	if !ok {
		ctx.annotations = ctx.annotations[:annMark]
	}
	return ok
}

// resolveSchema fetches the schema registered at uri, or nil.
func (ctx *EvaluationContext) resolveSchema(uri string) *Schema {
	cu, err := SplitFragment(uri)
	if err != nil {
		return nil
	}
	return ctx.registry.get(cu)
}

// resolveRef fetches the schema at cu, materializing its document
// through the configured resolvers when it is not registered yet.
func (ctx *EvaluationContext) resolveRef(cu CompoundUri) *Schema {
	if sch := ctx.registry.get(cu); sch != nil {
		return sch
	}
	if ctx.materialize != nil && ctx.materialize(cu.Base) {
		return ctx.registry.get(cu)
	}
	return nil
}

// siblingAnnotations collects annotation values recorded at
// instancePtr by any of the given keywords.
func (ctx *EvaluationContext) siblingAnnotations(instancePtr string, keywords ...string) []any {
	var out []any
	for _, a := range ctx.annotations {
		if a.InstanceLocation != instancePtr {
			continue
		}
		for _, kw := range keywords {
			if a.Keyword == kw {
				out = append(out, a.Value)
				break
			}
		}
	}
	return out
}
