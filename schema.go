package jsonschema

import "sort"

// Schema is a compiled schema resource or subschema. It is immutable
// after parsing; all evaluation state lives in [EvaluationContext].
type Schema struct {
	uri       string // base uri + "#" + document json-pointer
	parentUri string // nearest enclosing '$id' scope

	boolValue  *bool // non-nil for boolean schemas
	evaluators []boundEvaluator

	// set only on meta-schema roots that declare '$vocabulary'
	vocabularies map[string]bool
}

type boundEvaluator struct {
	keyword  string
	priority int
	ev       Evaluator
}

func (s *Schema) Uri() string { return s.uri }

func (s *Schema) sortEvaluators() {
	sort.SliceStable(s.evaluators, func(i, j int) bool {
		return s.evaluators[i].priority < s.evaluators[j].priority
	})
}

// evaluate runs every keyword of s against v in priority order.
// All keywords run even after a failure so that the error list is
// complete. Returns false if any keyword failed.
func (s *Schema) evaluate(ctx *EvaluationContext, v JsonNode) bool {
	if s.boolValue != nil {
		if *s.boolValue {
			return true
		}
		ctx.addError(s.uri, "", v, "false schema always fails")
		return false
	}

	if ctx.pushRefFrame(s.uri, v.JsonPointer()) {
		ctx.addError(s.uri, "", v, "infinite recursion detected evaluating %s against %s", quote(s.uri), quote("#"+v.JsonPointer()))
		return false
	}
	defer ctx.popRefFrame()

	ctx.pushDynamicScope(s)
	defer ctx.popDynamicScope()

	valid := true
	for _, be := range s.evaluators {
		errMark := len(ctx.errors)
		annMark := len(ctx.annotations)
		ctx.pushEvalPath(be.keyword)
		res := be.ev.Evaluate(ctx, v)
		if res.valid {
			// errors collected by failed branches of a passing
			// keyword must not surface
			ctx.errors = ctx.errors[:errMark]
			if res.hasAnnotation {
				ctx.annotations = append(ctx.annotations, Annotation{
					InstanceLocation: v.JsonPointer(),
					EvaluationPath:   ctx.evalPathString(),
					SchemaLocation:   s.uri + "/" + be.keyword,
					Keyword:          be.keyword,
					Value:            res.annotation,
				})
			}
		} else {
			ctx.annotations = ctx.annotations[:annMark]
			ctx.errors = append(ctx.errors, Error{
				InstanceLocation: v.JsonPointer(),
				EvaluationPath:   ctx.evalPathString(),
				SchemaLocation:   s.uri + "/" + be.keyword,
				Keyword:          be.keyword,
				Message:          res.message,
			})
			valid = false
		}
		ctx.popEvalPath()
	}
	return valid
}
