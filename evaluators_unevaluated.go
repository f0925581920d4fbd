package jsonschema

import (
	"sort"
	"strings"
)

// unevaluatedPropertiesEvaluator applies its schema to members no
// sibling applicator claimed. It runs last within its schema
// object, so every annotation produced for the same instance
// location by keywords that passed is already recorded.
type unevaluatedPropertiesEvaluator struct {
	uri string
}

func (e *unevaluatedPropertiesEvaluator) Evaluate(ctx *EvaluationContext, v JsonNode) *EvaluationResult {
	if !v.IsObject() {
		return Success()
	}
	claimed := map[string]bool{}
	values := ctx.siblingAnnotations(v.JsonPointer(),
		"properties", "patternProperties", "additionalProperties", "unevaluatedProperties")
	for _, value := range values {
		names, ok := value.([]string)
		if !ok {
			continue
		}
		for _, name := range names {
			claimed[name] = true
		}
	}

	var evaluated, failed []string
	for pname, pvalue := range v.AsObject() {
		if claimed[pname] {
			continue
		}
		evaluated = append(evaluated, pname)
		if !ctx.evaluateSchema(mustResolve(ctx, e.uri), pvalue) {
			failed = append(failed, quote(pname))
		}
	}
	if len(failed) > 0 {
		sort.Strings(failed)
		return Failure("unevaluated properties %s do not match the schema", strings.Join(failed, ", "))
	}
	sort.Strings(evaluated)
	return SuccessWith(evaluated)
}

// unevaluatedItemsEvaluator applies its schema to items no sibling
// applicator reached. Annotation values of the item keywords are
// either an int prefix length, a list of matched indices, or true
// meaning the whole array.
type unevaluatedItemsEvaluator struct {
	uri string
}

func (e *unevaluatedItemsEvaluator) Evaluate(ctx *EvaluationContext, v JsonNode) *EvaluationResult {
	if !v.IsArray() {
		return Success()
	}
	arr := v.AsArray()
	prefix := 0
	claimed := map[int]bool{}
	values := ctx.siblingAnnotations(v.JsonPointer(),
		"prefixItems", "items", "additionalItems", "contains", "unevaluatedItems")
	for _, value := range values {
		switch value := value.(type) {
		case bool:
			if value {
				return Success()
			}
		case int:
			if value > prefix {
				prefix = value
			}
		case []int:
			for _, i := range value {
				claimed[i] = true
			}
		}
	}

	sch := mustResolve(ctx, e.uri)
	var failed []int
	evaluated := false
	for i := prefix; i < len(arr); i++ {
		if claimed[i] {
			continue
		}
		evaluated = true
		if !ctx.evaluateSchema(sch, arr[i]) {
			failed = append(failed, i)
		}
	}
	if len(failed) > 0 {
		return Failure("unevaluated items at %v do not match the schema", failed)
	}
	if !evaluated {
		return Success()
	}
	return SuccessWith(true)
}
