package jsonschema

// Draft2020EvaluatorFactory creates the evaluators of every
// keyword in the 2020-12 release.
type Draft2020EvaluatorFactory struct{}

func (Draft2020EvaluatorFactory) Create(ctx *ParsingContext, keyword string, v JsonNode) (Evaluator, error) {
	switch keyword {
	case "$ref":
		return newRefEvaluator(ctx, v)
	case "$dynamicRef":
		return newDynamicRefEvaluator(ctx, v)
	case "prefixItems":
		uris, err := newSchemaArrayEvaluator(ctx, keyword, v)
		if err != nil {
			return nil, err
		}
		return &prefixItemsEvaluator{uris: uris}, nil
	case "items":
		prefixLen := 0
		if prefixNode, ok := ctx.CurrentSchemaObject()["prefixItems"]; ok && prefixNode.IsArray() {
			prefixLen = len(prefixNode.AsArray())
		}
		return &itemsEvaluator{keyword: keyword, uri: ctx.AbsoluteUri(v), prefixLen: prefixLen}, nil
	}
	return createCommonEvaluator(ctx, keyword, v)
}

// Draft2019EvaluatorFactory creates the evaluators of the 2019-09
// release. It differs from 2020-12 in the recursive reference
// keywords and the array form of 'items'.
type Draft2019EvaluatorFactory struct{}

func (Draft2019EvaluatorFactory) Create(ctx *ParsingContext, keyword string, v JsonNode) (Evaluator, error) {
	switch keyword {
	case "$ref":
		return newRefEvaluator(ctx, v)
	case "$recursiveRef":
		return newRecursiveRefEvaluator(ctx, v)
	case "items":
		if v.IsArray() {
			uris, err := newSchemaArrayEvaluator(ctx, keyword, v)
			if err != nil {
				return nil, err
			}
			return &prefixItemsEvaluator{uris: uris}, nil
		}
		return &itemsEvaluator{keyword: keyword, uri: ctx.AbsoluteUri(v)}, nil
	case "additionalItems":
		itemsNode, ok := ctx.CurrentSchemaObject()["items"]
		if !ok || !itemsNode.IsArray() {
			// meaningful only after an array-form 'items'
			return nil, nil
		}
		return &itemsEvaluator{keyword: keyword, uri: ctx.AbsoluteUri(v), prefixLen: len(itemsNode.AsArray())}, nil
	}
	return createCommonEvaluator(ctx, keyword, v)
}

// createCommonEvaluator covers the keywords shared by both
// supported releases.
func createCommonEvaluator(ctx *ParsingContext, keyword string, v JsonNode) (Evaluator, error) {
	switch keyword {
	case "type":
		return newTypeEvaluator(v)
	case "enum":
		if !v.IsArray() {
			return nil, &ParseIDError{Location: v.JsonPointer(), Reason: "enum must be an array"}
		}
		return &enumEvaluator{values: v.AsArray()}, nil
	case "const":
		return &constEvaluator{value: v}, nil
	case "minimum", "maximum", "exclusiveMinimum", "exclusiveMaximum":
		return newNumberCompareEvaluator(keyword, v)
	case "multipleOf":
		return newMultipleOfEvaluator(v)
	case "minLength", "maxLength":
		return newLengthEvaluator(keyword, v)
	case "pattern":
		return newPatternEvaluator(ctx, v)
	case "minItems", "maxItems", "minProperties", "maxProperties":
		return newCountEvaluator(keyword, v)
	case "uniqueItems":
		if v.IsBoolean() && v.AsBoolean() {
			return uniqueItemsEvaluator{}, nil
		}
		return nil, nil
	case "required":
		return newRequiredEvaluator(v)
	case "dependentRequired":
		return newDependentRequiredEvaluator(v)
	case "properties":
		return newPropertiesEvaluator(ctx, v)
	case "patternProperties":
		return newPatternPropertiesEvaluator(ctx, v)
	case "additionalProperties":
		return newAdditionalPropertiesEvaluator(ctx, v)
	case "propertyNames":
		return &propertyNamesEvaluator{uri: ctx.AbsoluteUri(v)}, nil
	case "contains":
		return newContainsEvaluator(ctx, v)
	case "allOf":
		uris, err := newSchemaArrayEvaluator(ctx, keyword, v)
		if err != nil {
			return nil, err
		}
		return &allOfEvaluator{uris: uris}, nil
	case "anyOf":
		uris, err := newSchemaArrayEvaluator(ctx, keyword, v)
		if err != nil {
			return nil, err
		}
		return &anyOfEvaluator{uris: uris}, nil
	case "oneOf":
		uris, err := newSchemaArrayEvaluator(ctx, keyword, v)
		if err != nil {
			return nil, err
		}
		return &oneOfEvaluator{uris: uris}, nil
	case "not":
		return &notEvaluator{uri: ctx.AbsoluteUri(v)}, nil
	case "if":
		return newIfEvaluator(ctx, v)
	case "dependentSchemas":
		return newDependentSchemasEvaluator(ctx, v)
	case "unevaluatedProperties":
		return &unevaluatedPropertiesEvaluator{uri: ctx.AbsoluteUri(v)}, nil
	case "unevaluatedItems":
		return &unevaluatedItemsEvaluator{uri: ctx.AbsoluteUri(v)}, nil
	case "format":
		return newFormatEvaluator(ctx, v)
	case "contentEncoding":
		return newContentEncodingEvaluator(ctx, v)
	case "contentMediaType":
		return newContentMediaTypeEvaluator(ctx, v)
	case "contentSchema":
		return newContentSchemaEvaluator(ctx, v)
	}
	return nil, nil
}
