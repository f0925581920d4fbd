package jsonschema

import (
	"math/big"
	"strings"
	"unicode/utf8"
)

// typeEvaluator implements 'type' in both its string and array
// forms. "number" admits integers, "integer" admits any value that
// is mathematically integral.
type typeEvaluator struct {
	types []string
}

func newTypeEvaluator(v JsonNode) (Evaluator, error) {
	var types []string
	switch {
	case v.IsString():
		types = []string{v.AsString()}
	case v.IsArray():
		for _, t := range v.AsArray() {
			if !t.IsString() {
				return nil, &ParseIDError{Location: t.JsonPointer(), Reason: "type entries must be strings"}
			}
			types = append(types, t.AsString())
		}
	default:
		return nil, &ParseIDError{Location: v.JsonPointer(), Reason: "type must be a string or an array of strings"}
	}
	return &typeEvaluator{types: types}, nil
}

func typeMatches(want string, v JsonNode) bool {
	switch want {
	case "null":
		return v.IsNull()
	case "boolean":
		return v.IsBoolean()
	case "string":
		return v.IsString()
	case "integer":
		return v.IsInteger()
	case "number":
		return v.IsNumber()
	case "array":
		return v.IsArray()
	case "object":
		return v.IsObject()
	}
	return false
}

func (e *typeEvaluator) Evaluate(ctx *EvaluationContext, v JsonNode) *EvaluationResult {
	for _, t := range e.types {
		if typeMatches(t, v) {
			return Success()
		}
	}
	return Failure("got %s, want %s", v.Type(), strings.Join(e.types, " or "))
}

// --

type enumEvaluator struct {
	values []JsonNode
}

func (e *enumEvaluator) Evaluate(ctx *EvaluationContext, v JsonNode) *EvaluationResult {
	for _, allowed := range e.values {
		if nodeEquals(v, allowed) {
			return Success()
		}
	}
	return Failure("value must be one of the enum values")
}

type constEvaluator struct {
	value JsonNode
}

func (e *constEvaluator) Evaluate(ctx *EvaluationContext, v JsonNode) *EvaluationResult {
	if nodeEquals(v, e.value) {
		return Success()
	}
	return Failure("value must be the constant value")
}

// --

// numeric assertions. All comparisons use exact arithmetic.

type numberCompareEvaluator struct {
	keyword string
	limit   *big.Rat
}

func newNumberCompareEvaluator(keyword string, v JsonNode) (Evaluator, error) {
	if !v.IsNumber() {
		return nil, &ParseIDError{Location: v.JsonPointer(), Reason: keyword + " must be a number"}
	}
	return &numberCompareEvaluator{keyword: keyword, limit: v.AsNumber()}, nil
}

func (e *numberCompareEvaluator) Evaluate(ctx *EvaluationContext, v JsonNode) *EvaluationResult {
	if !v.IsNumber() {
		return Success()
	}
	cmp := v.AsNumber().Cmp(e.limit)
	var ok bool
	switch e.keyword {
	case "minimum":
		ok = cmp >= 0
	case "exclusiveMinimum":
		ok = cmp > 0
	case "maximum":
		ok = cmp <= 0
	case "exclusiveMaximum":
		ok = cmp < 0
	}
	if ok {
		return Success()
	}
	return Failure("%s is not valid against %s %s", v.AsNumber().RatString(), e.keyword, e.limit.RatString())
}

type multipleOfEvaluator struct {
	factor *big.Rat
}

func newMultipleOfEvaluator(v JsonNode) (Evaluator, error) {
	if !v.IsNumber() || v.AsNumber().Sign() <= 0 {
		return nil, &ParseIDError{Location: v.JsonPointer(), Reason: "multipleOf must be a positive number"}
	}
	return &multipleOfEvaluator{factor: v.AsNumber()}, nil
}

func (e *multipleOfEvaluator) Evaluate(ctx *EvaluationContext, v JsonNode) *EvaluationResult {
	if !v.IsNumber() {
		return Success()
	}
	if new(big.Rat).Quo(v.AsNumber(), e.factor).IsInt() {
		return Success()
	}
	return Failure("%s is not a multiple of %s", v.AsNumber().RatString(), e.factor.RatString())
}

// --

// string assertions. Lengths count unicode code points, not bytes.

type lengthEvaluator struct {
	keyword string
	limit   int
}

func newLengthEvaluator(keyword string, v JsonNode) (Evaluator, error) {
	limit, err := nonNegativeInteger(keyword, v)
	if err != nil {
		return nil, err
	}
	return &lengthEvaluator{keyword: keyword, limit: limit}, nil
}

func nonNegativeInteger(keyword string, v JsonNode) (int, error) {
	if !v.IsInteger() || v.AsNumber().Sign() < 0 {
		return 0, &ParseIDError{Location: v.JsonPointer(), Reason: keyword + " must be a non-negative integer"}
	}
	return int(v.AsNumber().Num().Int64()), nil
}

func (e *lengthEvaluator) Evaluate(ctx *EvaluationContext, v JsonNode) *EvaluationResult {
	if !v.IsString() {
		return Success()
	}
	length := utf8.RuneCountInString(v.AsString())
	switch e.keyword {
	case "minLength":
		if length >= e.limit {
			return Success()
		}
		return Failure("length must be >= %d, but got %d", e.limit, length)
	default:
		if length <= e.limit {
			return Success()
		}
		return Failure("length must be <= %d, but got %d", e.limit, length)
	}
}

type patternEvaluator struct {
	pattern string
	re      Regexp
}

func newPatternEvaluator(ctx *ParsingContext, v JsonNode) (Evaluator, error) {
	if !v.IsString() {
		return nil, &ParseIDError{Location: v.JsonPointer(), Reason: "pattern must be a string"}
	}
	re, err := ctx.CompileRegexp(v.AsString())
	if err != nil {
		return nil, &ParseIDError{Location: v.JsonPointer(), Reason: "invalid pattern: " + err.Error()}
	}
	return &patternEvaluator{pattern: v.AsString(), re: re}, nil
}

func (e *patternEvaluator) Evaluate(ctx *EvaluationContext, v JsonNode) *EvaluationResult {
	if !v.IsString() {
		return Success()
	}
	if e.re.MatchString(v.AsString()) {
		return Success()
	}
	return Failure("%s does not match pattern %s", quote(v.AsString()), quote(e.pattern))
}

// --

// array and object size assertions

type countEvaluator struct {
	keyword string
	limit   int
}

func newCountEvaluator(keyword string, v JsonNode) (Evaluator, error) {
	limit, err := nonNegativeInteger(keyword, v)
	if err != nil {
		return nil, err
	}
	return &countEvaluator{keyword: keyword, limit: limit}, nil
}

func (e *countEvaluator) Evaluate(ctx *EvaluationContext, v JsonNode) *EvaluationResult {
	var count int
	switch e.keyword {
	case "minItems", "maxItems":
		if !v.IsArray() {
			return Success()
		}
		count = len(v.AsArray())
	case "minProperties", "maxProperties":
		if !v.IsObject() {
			return Success()
		}
		count = len(v.AsObject())
	}
	min := strings.HasPrefix(e.keyword, "min")
	if min && count >= e.limit || !min && count <= e.limit {
		return Success()
	}
	if min {
		return Failure("%s must be >= %d, but got %d", e.keyword[3:], e.limit, count)
	}
	return Failure("%s must be <= %d, but got %d", e.keyword[3:], e.limit, count)
}

type uniqueItemsEvaluator struct{}

func (uniqueItemsEvaluator) Evaluate(ctx *EvaluationContext, v JsonNode) *EvaluationResult {
	if !v.IsArray() {
		return Success()
	}
	arr := v.AsArray()
	for i := 1; i < len(arr); i++ {
		for j := 0; j < i; j++ {
			if nodeEquals(arr[i], arr[j]) {
				return Failure("items at %d and %d are equal", j, i)
			}
		}
	}
	return Success()
}

// --

type requiredEvaluator struct {
	properties []string
}

func newRequiredEvaluator(v JsonNode) (Evaluator, error) {
	props, err := stringArray("required", v)
	if err != nil {
		return nil, err
	}
	return &requiredEvaluator{properties: props}, nil
}

func stringArray(keyword string, v JsonNode) ([]string, error) {
	if !v.IsArray() {
		return nil, &ParseIDError{Location: v.JsonPointer(), Reason: keyword + " must be an array of strings"}
	}
	var out []string
	for _, item := range v.AsArray() {
		if !item.IsString() {
			return nil, &ParseIDError{Location: item.JsonPointer(), Reason: keyword + " must be an array of strings"}
		}
		out = append(out, item.AsString())
	}
	return out, nil
}

func (e *requiredEvaluator) Evaluate(ctx *EvaluationContext, v JsonNode) *EvaluationResult {
	if !v.IsObject() {
		return Success()
	}
	obj := v.AsObject()
	var missing []string
	for _, p := range e.properties {
		if _, ok := obj[p]; !ok {
			missing = append(missing, quote(p))
		}
	}
	if len(missing) == 0 {
		return Success()
	}
	return Failure("missing properties %s", strings.Join(missing, ", "))
}

type dependentRequiredEvaluator struct {
	dependencies map[string][]string
}

func newDependentRequiredEvaluator(v JsonNode) (Evaluator, error) {
	if !v.IsObject() {
		return nil, &ParseIDError{Location: v.JsonPointer(), Reason: "dependentRequired must be an object"}
	}
	deps := map[string][]string{}
	for pname, pvalue := range v.AsObject() {
		props, err := stringArray("dependentRequired", pvalue)
		if err != nil {
			return nil, err
		}
		deps[pname] = props
	}
	return &dependentRequiredEvaluator{dependencies: deps}, nil
}

func (e *dependentRequiredEvaluator) Evaluate(ctx *EvaluationContext, v JsonNode) *EvaluationResult {
	if !v.IsObject() {
		return Success()
	}
	obj := v.AsObject()
	for pname, required := range e.dependencies {
		if _, ok := obj[pname]; !ok {
			continue
		}
		for _, p := range required {
			if _, ok := obj[p]; !ok {
				return Failure("property %s is required when %s is present", quote(p), quote(pname))
			}
		}
	}
	return Success()
}
