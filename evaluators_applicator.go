package jsonschema

import (
	"sort"
	"strings"
)

// mustResolve fetches a subschema parsed from the same document.
// A miss here means the parser failed to register a child it
// walked, which is a defect.
func mustResolve(ctx *EvaluationContext, uri string) *Schema {
	sch := ctx.resolveSchema(uri)
	if sch == nil {
		panic(&Bug{"subschema " + uri + " is not registered"})
	}
	return sch
}

// propertiesEvaluator applies the schema of each named property to
// the matching instance member. Annotates the set of matched names.
type propertiesEvaluator struct {
	schemas map[string]string // property name -> subschema uri
}

func newPropertiesEvaluator(ctx *ParsingContext, v JsonNode) (Evaluator, error) {
	if !v.IsObject() {
		return nil, &ParseIDError{Location: v.JsonPointer(), Reason: "properties must be an object"}
	}
	schemas := map[string]string{}
	for pname, pvalue := range v.AsObject() {
		schemas[pname] = ctx.AbsoluteUri(pvalue)
	}
	return &propertiesEvaluator{schemas: schemas}, nil
}

func (e *propertiesEvaluator) Evaluate(ctx *EvaluationContext, v JsonNode) *EvaluationResult {
	if !v.IsObject() {
		return Success()
	}
	var evaluated, failed []string
	for pname, pvalue := range v.AsObject() {
		uri, ok := e.schemas[pname]
		if !ok {
			continue
		}
		evaluated = append(evaluated, pname)
		if !ctx.evaluateSchema(mustResolve(ctx, uri), pvalue) {
			failed = append(failed, quote(pname))
		}
	}
	if len(failed) > 0 {
		sort.Strings(failed)
		return Failure("properties %s do not match their schemas", strings.Join(failed, ", "))
	}
	sort.Strings(evaluated)
	return SuccessWith(evaluated)
}

// patternPropertiesEvaluator applies a schema to every member whose
// name matches the pattern. Annotates the set of matched names.
type patternPropertiesEvaluator struct {
	patterns []patternSchema
}

type patternSchema struct {
	source string
	re     Regexp
	uri    string
}

func newPatternPropertiesEvaluator(ctx *ParsingContext, v JsonNode) (Evaluator, error) {
	if !v.IsObject() {
		return nil, &ParseIDError{Location: v.JsonPointer(), Reason: "patternProperties must be an object"}
	}
	var patterns []patternSchema
	for pattern, pvalue := range v.AsObject() {
		re, err := ctx.CompileRegexp(pattern)
		if err != nil {
			return nil, &ParseIDError{Location: pvalue.JsonPointer(), Reason: "invalid pattern: " + err.Error()}
		}
		patterns = append(patterns, patternSchema{source: pattern, re: re, uri: ctx.AbsoluteUri(pvalue)})
	}
	return &patternPropertiesEvaluator{patterns: patterns}, nil
}

func (e *patternPropertiesEvaluator) Evaluate(ctx *EvaluationContext, v JsonNode) *EvaluationResult {
	if !v.IsObject() {
		return Success()
	}
	evaluated := map[string]bool{}
	var failed []string
	for pname, pvalue := range v.AsObject() {
		for _, ps := range e.patterns {
			if !ps.re.MatchString(pname) {
				continue
			}
			evaluated[pname] = true
			if !ctx.evaluateSchema(mustResolve(ctx, ps.uri), pvalue) {
				failed = append(failed, quote(pname))
			}
		}
	}
	if len(failed) > 0 {
		sort.Strings(failed)
		return Failure("properties %s do not match their pattern schemas", strings.Join(failed, ", "))
	}
	return SuccessWith(sortedKeys(evaluated))
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// additionalPropertiesEvaluator applies its schema to members not
// claimed by the sibling 'properties' and 'patternProperties'.
// The sibling information is fixed at parse time.
type additionalPropertiesEvaluator struct {
	uri      string
	named    map[string]bool
	patterns []Regexp
}

func newAdditionalPropertiesEvaluator(ctx *ParsingContext, v JsonNode) (Evaluator, error) {
	e := &additionalPropertiesEvaluator{uri: ctx.AbsoluteUri(v), named: map[string]bool{}}
	siblings := ctx.CurrentSchemaObject()
	if props, ok := siblings["properties"]; ok && props.IsObject() {
		for pname := range props.AsObject() {
			e.named[pname] = true
		}
	}
	if patterns, ok := siblings["patternProperties"]; ok && patterns.IsObject() {
		for pattern := range patterns.AsObject() {
			re, err := ctx.CompileRegexp(pattern)
			if err != nil {
				return nil, &ParseIDError{Location: patterns.JsonPointer(), Reason: "invalid pattern: " + err.Error()}
			}
			e.patterns = append(e.patterns, re)
		}
	}
	return e, nil
}

func (e *additionalPropertiesEvaluator) Evaluate(ctx *EvaluationContext, v JsonNode) *EvaluationResult {
	if !v.IsObject() {
		return Success()
	}
	var evaluated, failed []string
	for pname, pvalue := range v.AsObject() {
		if e.named[pname] || matchesAny(e.patterns, pname) {
			continue
		}
		evaluated = append(evaluated, pname)
		if !ctx.evaluateSchema(mustResolve(ctx, e.uri), pvalue) {
			failed = append(failed, quote(pname))
		}
	}
	if len(failed) > 0 {
		sort.Strings(failed)
		return Failure("additional properties %s do not match the schema", strings.Join(failed, ", "))
	}
	sort.Strings(evaluated)
	return SuccessWith(evaluated)
}

func matchesAny(patterns []Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// propertyNamesEvaluator validates each member name, as a string,
// against its schema.
type propertyNamesEvaluator struct {
	uri string
}

func (e *propertyNamesEvaluator) Evaluate(ctx *EvaluationContext, v JsonNode) *EvaluationResult {
	if !v.IsObject() {
		return Success()
	}
	sch := mustResolve(ctx, e.uri)
	var failed []string
	for pname := range v.AsObject() {
		nameNode := &defaultNode{typ: StringType, str: pname, ptr: v.JsonPointer()}
		if !ctx.evaluateSchema(sch, nameNode) {
			failed = append(failed, quote(pname))
		}
	}
	if len(failed) > 0 {
		sort.Strings(failed)
		return Failure("property names %s do not match the schema", strings.Join(failed, ", "))
	}
	return Success()
}

// prefixItemsEvaluator applies the n-th schema to the n-th item.
// Annotates the number of covered items, or true when the whole
// array is covered.
type prefixItemsEvaluator struct {
	uris []string
}

func newSchemaArrayEvaluator(ctx *ParsingContext, keyword string, v JsonNode) ([]string, error) {
	if !v.IsArray() {
		return nil, &ParseIDError{Location: v.JsonPointer(), Reason: keyword + " must be an array of schemas"}
	}
	arr := v.AsArray()
	uris := make([]string, len(arr))
	for i, item := range arr {
		uris[i] = ctx.AbsoluteUri(item)
	}
	return uris, nil
}

func (e *prefixItemsEvaluator) Evaluate(ctx *EvaluationContext, v JsonNode) *EvaluationResult {
	if !v.IsArray() {
		return Success()
	}
	arr := v.AsArray()
	var failed []int
	count := len(e.uris)
	if len(arr) < count {
		count = len(arr)
	}
	for i := 0; i < count; i++ {
		if !ctx.evaluateSchema(mustResolve(ctx, e.uris[i]), arr[i]) {
			failed = append(failed, i)
		}
	}
	if len(failed) > 0 {
		return Failure("items at %v do not match their schemas", failed)
	}
	if count == len(arr) {
		return SuccessWith(true)
	}
	return SuccessWith(count)
}

// itemsEvaluator applies one schema to every item after the prefix
// covered by a sibling 'prefixItems' (2020-12) or array-form
// 'items' (2019-09, via 'additionalItems').
type itemsEvaluator struct {
	keyword   string
	uri       string
	prefixLen int
}

func (e *itemsEvaluator) Evaluate(ctx *EvaluationContext, v JsonNode) *EvaluationResult {
	if !v.IsArray() {
		return Success()
	}
	arr := v.AsArray()
	if len(arr) <= e.prefixLen {
		return Success()
	}
	sch := mustResolve(ctx, e.uri)
	var failed []int
	for i := e.prefixLen; i < len(arr); i++ {
		if !ctx.evaluateSchema(sch, arr[i]) {
			failed = append(failed, i)
		}
	}
	if len(failed) > 0 {
		return Failure("items at %v do not match the schema", failed)
	}
	return SuccessWith(true)
}

// containsEvaluator counts matching items. The sibling
// 'minContains' and 'maxContains' bounds are folded in here; the
// default lower bound is one. Annotates the matched indices, or
// true when every item matched.
type containsEvaluator struct {
	uri     string
	min     int
	max     int
	bounded bool // max is meaningful
}

func newContainsEvaluator(ctx *ParsingContext, v JsonNode) (Evaluator, error) {
	e := &containsEvaluator{uri: ctx.AbsoluteUri(v), min: 1}
	siblings := ctx.CurrentSchemaObject()
	if minNode, ok := siblings["minContains"]; ok {
		limit, err := nonNegativeInteger("minContains", minNode)
		if err != nil {
			return nil, err
		}
		e.min = limit
	}
	if maxNode, ok := siblings["maxContains"]; ok {
		limit, err := nonNegativeInteger("maxContains", maxNode)
		if err != nil {
			return nil, err
		}
		e.max = limit
		e.bounded = true
	}
	return e, nil
}

func (e *containsEvaluator) Evaluate(ctx *EvaluationContext, v JsonNode) *EvaluationResult {
	if !v.IsArray() {
		return Success()
	}
	arr := v.AsArray()
	var matched []int
	for i, item := range arr {
		if ctx.evaluateSchema(mustResolve(ctx, e.uri), item) {
			matched = append(matched, i)
		}
	}
	if len(matched) < e.min {
		return Failure("array must contain at least %d matching items, but got %d", e.min, len(matched))
	}
	if e.bounded && len(matched) > e.max {
		return Failure("array must contain at most %d matching items, but got %d", e.max, len(matched))
	}
	if len(matched) == len(arr) {
		return SuccessWith(true)
	}
	return SuccessWith(matched)
}

// --

type allOfEvaluator struct {
	uris []string
}

func (e *allOfEvaluator) Evaluate(ctx *EvaluationContext, v JsonNode) *EvaluationResult {
	var failed []int
	for i, uri := range e.uris {
		if !ctx.evaluateSchema(mustResolve(ctx, uri), v) {
			failed = append(failed, i)
		}
	}
	if len(failed) > 0 {
		return Failure("value does not match subschemas %v of allOf", failed)
	}
	return Success()
}

// anyOfEvaluator evaluates every branch so that annotations of all
// passing branches are collected, then requires at least one pass.
type anyOfEvaluator struct {
	uris []string
}

func (e *anyOfEvaluator) Evaluate(ctx *EvaluationContext, v JsonNode) *EvaluationResult {
	passed := 0
	for _, uri := range e.uris {
		if ctx.evaluateSchema(mustResolve(ctx, uri), v) {
			passed++
		}
	}
	if passed == 0 {
		return Failure("value does not match any subschema of anyOf")
	}
	return Success()
}

// oneOfEvaluator evaluates every branch and requires exactly one
// pass.
type oneOfEvaluator struct {
	uris []string
}

func (e *oneOfEvaluator) Evaluate(ctx *EvaluationContext, v JsonNode) *EvaluationResult {
	var passed []int
	for i, uri := range e.uris {
		if ctx.evaluateSchema(mustResolve(ctx, uri), v) {
			passed = append(passed, i)
		}
	}
	switch len(passed) {
	case 1:
		return Success()
	case 0:
		return Failure("value does not match any subschema of oneOf")
	default:
		return Failure("value matches subschemas %v of oneOf, want exactly one", passed)
	}
}

type notEvaluator struct {
	uri string
}

func (e *notEvaluator) Evaluate(ctx *EvaluationContext, v JsonNode) *EvaluationResult {
	errMark := len(ctx.errors)
	ok := ctx.evaluateSchema(mustResolve(ctx, e.uri), v)
	if ok {
		return Failure("value must not match the schema")
	}
	// the subschema was supposed to fail; its errors are noise
	ctx.errors = ctx.errors[:errMark]
	return Success()
}

// ifEvaluator implements 'if' together with its sibling 'then' and
// 'else'. The condition's errors never surface; its annotations
// survive only when it passes.
type ifEvaluator struct {
	ifUri   string
	thenUri string // "" when absent
	elseUri string
}

func newIfEvaluator(ctx *ParsingContext, v JsonNode) (Evaluator, error) {
	e := &ifEvaluator{ifUri: ctx.AbsoluteUri(v)}
	siblings := ctx.CurrentSchemaObject()
	if thenNode, ok := siblings["then"]; ok {
		e.thenUri = ctx.AbsoluteUri(thenNode)
	}
	if elseNode, ok := siblings["else"]; ok {
		e.elseUri = ctx.AbsoluteUri(elseNode)
	}
	return e, nil
}

func (e *ifEvaluator) Evaluate(ctx *EvaluationContext, v JsonNode) *EvaluationResult {
	errMark := len(ctx.errors)
	matched := ctx.evaluateSchema(mustResolve(ctx, e.ifUri), v)
	if !matched {
		ctx.errors = ctx.errors[:errMark]
	}
	branch := e.thenUri
	branchName := "then"
	if !matched {
		branch, branchName = e.elseUri, "else"
	}
	if branch == "" {
		return Success()
	}
	if !ctx.evaluateSchema(mustResolve(ctx, branch), v) {
		return Failure("value does not match the %s schema", quote(branchName))
	}
	return Success()
}

// dependentSchemasEvaluator applies each schema to the whole
// instance when its trigger property is present.
type dependentSchemasEvaluator struct {
	schemas map[string]string
}

func newDependentSchemasEvaluator(ctx *ParsingContext, v JsonNode) (Evaluator, error) {
	if !v.IsObject() {
		return nil, &ParseIDError{Location: v.JsonPointer(), Reason: "dependentSchemas must be an object"}
	}
	schemas := map[string]string{}
	for pname, pvalue := range v.AsObject() {
		schemas[pname] = ctx.AbsoluteUri(pvalue)
	}
	return &dependentSchemasEvaluator{schemas: schemas}, nil
}

func (e *dependentSchemasEvaluator) Evaluate(ctx *EvaluationContext, v JsonNode) *EvaluationResult {
	if !v.IsObject() {
		return Success()
	}
	obj := v.AsObject()
	var failed []string
	for pname, uri := range e.schemas {
		if _, ok := obj[pname]; !ok {
			continue
		}
		if !ctx.evaluateSchema(mustResolve(ctx, uri), v) {
			failed = append(failed, quote(pname))
		}
	}
	if len(failed) > 0 {
		sort.Strings(failed)
		return Failure("value does not match schemas dependent on %s", strings.Join(failed, ", "))
	}
	return Success()
}
