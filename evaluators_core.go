package jsonschema

// keywordPriority fixes the runtime order of keywords within one
// schema object, independent of their order in the source text.
func keywordPriority(keyword string) int {
	switch keyword {
	case "$ref", "$dynamicRef", "$recursiveRef":
		return priorityRef
	case "properties", "patternProperties", "additionalProperties",
		"propertyNames", "items", "prefixItems", "additionalItems",
		"contains", "allOf", "anyOf", "oneOf", "not", "if",
		"dependentSchemas", "contentSchema":
		return priorityApplicator
	case "unevaluatedItems":
		return priorityUnevaluatedItems
	case "unevaluatedProperties":
		return priorityUnevaluatedProperties
	}
	return priorityAssertion
}

// isStructuralKeyword tells whether a keyword is consumed by the
// parser or by a sibling evaluator and therefore produces neither
// an evaluator nor an annotation of its own.
func isStructuralKeyword(keyword string) bool {
	switch keyword {
	case "$id", "$schema", "$anchor", "$dynamicAnchor",
		"$recursiveAnchor", "$vocabulary", "$comment",
		"$defs", "definitions", "then", "else",
		"minContains", "maxContains":
		return true
	}
	return false
}

// annotationEvaluator preserves the value of a non-assertion
// keyword, such as 'title' or an unknown extension keyword, as an
// annotation.
type annotationEvaluator struct {
	value any
}

func (e *annotationEvaluator) Evaluate(ctx *EvaluationContext, v JsonNode) *EvaluationResult {
	return SuccessWith(e.value)
}

// nodeToAny converts a json tree back to plain Go values for use
// as annotation payloads.
func nodeToAny(n JsonNode) any {
	switch n.Type() {
	case NullType:
		return nil
	case BooleanType:
		return n.AsBoolean()
	case StringType:
		return n.AsString()
	case IntegerType:
		if num := n.AsNumber(); num.IsInt() {
			return num.Num().Int64()
		}
		return n.AsNumber()
	case NumberType:
		f, _ := n.AsNumber().Float64()
		return f
	case ArrayType:
		arr := n.AsArray()
		out := make([]any, len(arr))
		for i, item := range arr {
			out[i] = nodeToAny(item)
		}
		return out
	case ObjectType:
		obj := n.AsObject()
		out := make(map[string]any, len(obj))
		for pname, pvalue := range obj {
			out[pname] = nodeToAny(pvalue)
		}
		return out
	}
	panic(&Bug{"unhandled node type"})
}

// --

// refEvaluator implements '$ref'. The target is looked up lazily
// so that references may point at schemas registered later.
type refEvaluator struct {
	ref string      // as written in the source
	cu  CompoundUri // resolved against the enclosing scope
}

func newRefEvaluator(ctx *ParsingContext, v JsonNode) (Evaluator, error) {
	if !v.IsString() {
		return nil, &InvalidRefError{Ref: v.JsonPointer(), Reason: "$ref must be a string"}
	}
	cu, err := ctx.ResolveRef(v.AsString())
	if err != nil {
		return nil, err
	}
	return &refEvaluator{ref: v.AsString(), cu: cu}, nil
}

func (e *refEvaluator) Evaluate(ctx *EvaluationContext, v JsonNode) *EvaluationResult {
	sch := ctx.resolveRef(e.cu)
	if sch == nil {
		return Failure("cannot resolve %s", quote(e.ref))
	}
	if !ctx.evaluateSchema(sch, v) {
		return Failure("value does not match the referenced schema")
	}
	return Success()
}

// dynamicRefEvaluator implements '$dynamicRef'. When the initially
// resolved target carries a matching '$dynamicAnchor', the dynamic
// scope is searched outermost-in; otherwise the keyword degrades
// to a plain '$ref'.
type dynamicRefEvaluator struct {
	ref string
	cu  CompoundUri
}

func newDynamicRefEvaluator(ctx *ParsingContext, v JsonNode) (Evaluator, error) {
	if !v.IsString() {
		return nil, &InvalidRefError{Ref: v.JsonPointer(), Reason: "$dynamicRef must be a string"}
	}
	cu, err := ctx.ResolveRef(v.AsString())
	if err != nil {
		return nil, err
	}
	return &dynamicRefEvaluator{ref: v.AsString(), cu: cu}, nil
}

func (e *dynamicRefEvaluator) Evaluate(ctx *EvaluationContext, v JsonNode) *EvaluationResult {
	var sch *Schema
	if ctx.registry.getDynamic(e.cu) != nil {
		for _, scope := range ctx.dynamicScope {
			if found := ctx.registry.getDynamic(CompoundUri{Base: scope.parentUri, Fragment: e.cu.Fragment}); found != nil {
				sch = found
				break
			}
		}
	}
	if sch == nil {
		sch = ctx.resolveRef(e.cu)
	}
	if sch == nil {
		return Failure("cannot resolve %s", quote(e.ref))
	}
	if !ctx.evaluateSchema(sch, v) {
		return Failure("value does not match the referenced schema")
	}
	return Success()
}

// recursiveRefEvaluator implements the 2019-09 '$recursiveRef'. The
// only legal value is "#"; when the enclosing resource declares
// '$recursiveAnchor', the outermost scope entry that also declares
// it wins.
type recursiveRefEvaluator struct {
	cu CompoundUri // {enclosing resource, ""}
}

func newRecursiveRefEvaluator(ctx *ParsingContext, v JsonNode) (Evaluator, error) {
	if !v.IsString() || v.AsString() != "#" {
		return nil, &InvalidRefError{Ref: v.JsonPointer(), Reason: `$recursiveRef must be "#"`}
	}
	return &recursiveRefEvaluator{cu: CompoundUri{Base: ctx.ParentUri()}}, nil
}

func (e *recursiveRefEvaluator) Evaluate(ctx *EvaluationContext, v JsonNode) *EvaluationResult {
	var sch *Schema
	if ctx.registry.getDynamic(e.cu) != nil {
		for _, scope := range ctx.dynamicScope {
			if found := ctx.registry.getDynamic(CompoundUri{Base: scope.parentUri}); found != nil {
				sch = found
				break
			}
		}
	}
	if sch == nil {
		sch = ctx.registry.get(e.cu)
	}
	if sch == nil {
		return Failure("cannot resolve %s", quote(e.cu.String()))
	}
	if !ctx.evaluateSchema(sch, v) {
		return Failure("value does not match the referenced schema")
	}
	return Success()
}
