package jsonschema

import (
	"bytes"
	"encoding/base64"
)

// ContentDecoder decodes the text of a string instance per its
// 'contentEncoding'.
type ContentDecoder struct {
	Name   string
	Decode func(string) ([]byte, error)
}

var contentDecoders = map[string]*ContentDecoder{
	"base64": {
		Name:   "base64",
		Decode: base64.StdEncoding.DecodeString,
	},
}

// MediaType checks decoded content against its 'contentMediaType'.
type MediaType struct {
	Name     string
	Validate func([]byte) error
}

var mediaTypes = map[string]*MediaType{
	"application/json": {
		Name: "application/json",
		Validate: func(b []byte) error {
			_, err := UnmarshalJSON(bytes.NewReader(b))
			return err
		},
	},
}

// contentEncodingEvaluator annotates the encoding name; it asserts
// decodability only in assert-content mode.
type contentEncodingEvaluator struct {
	name    string
	assert  bool
	decoder *ContentDecoder
}

func newContentEncodingEvaluator(ctx *ParsingContext, v JsonNode) (Evaluator, error) {
	if !v.IsString() {
		return nil, &ParseIDError{Location: v.JsonPointer(), Reason: "contentEncoding must be a string"}
	}
	name := v.AsString()
	return &contentEncodingEvaluator{
		name:    name,
		assert:  ctx.AssertContent(),
		decoder: contentDecoders[name],
	}, nil
}

func (e *contentEncodingEvaluator) Evaluate(ctx *EvaluationContext, v JsonNode) *EvaluationResult {
	if !e.assert || e.decoder == nil || !v.IsString() {
		return SuccessWith(e.name)
	}
	if _, err := e.decoder.Decode(v.AsString()); err != nil {
		return Failure("value is not %s encoded: %v", e.name, err)
	}
	return SuccessWith(e.name)
}

// contentMediaTypeEvaluator annotates the media type name; in
// assert-content mode it decodes per the sibling 'contentEncoding'
// and checks the content parses as the media type.
type contentMediaTypeEvaluator struct {
	name      string
	assert    bool
	mediaType *MediaType
	decoder   *ContentDecoder
}

func newContentMediaTypeEvaluator(ctx *ParsingContext, v JsonNode) (Evaluator, error) {
	if !v.IsString() {
		return nil, &ParseIDError{Location: v.JsonPointer(), Reason: "contentMediaType must be a string"}
	}
	name := v.AsString()
	e := &contentMediaTypeEvaluator{
		name:      name,
		assert:    ctx.AssertContent(),
		mediaType: mediaTypes[name],
	}
	if encNode, ok := ctx.CurrentSchemaObject()["contentEncoding"]; ok && encNode.IsString() {
		e.decoder = contentDecoders[encNode.AsString()]
	}
	return e, nil
}

func decodedContent(decoder *ContentDecoder, s string) ([]byte, error) {
	if decoder == nil {
		return []byte(s), nil
	}
	return decoder.Decode(s)
}

func (e *contentMediaTypeEvaluator) Evaluate(ctx *EvaluationContext, v JsonNode) *EvaluationResult {
	if !e.assert || e.mediaType == nil || !v.IsString() {
		return SuccessWith(e.name)
	}
	content, err := decodedContent(e.decoder, v.AsString())
	if err != nil {
		// the sibling contentEncoding reports this failure
		return SuccessWith(e.name)
	}
	if err := e.mediaType.Validate(content); err != nil {
		return Failure("value is not valid %s: %v", e.name, err)
	}
	return SuccessWith(e.name)
}

// contentSchemaEvaluator annotates the embedded schema; in
// assert-content mode with a json media type it validates the
// decoded document against that schema.
type contentSchemaEvaluator struct {
	uri     string
	raw     any
	assert  bool
	decoder *ContentDecoder
	isJSON  bool
}

func newContentSchemaEvaluator(ctx *ParsingContext, v JsonNode) (Evaluator, error) {
	e := &contentSchemaEvaluator{
		uri:    ctx.AbsoluteUri(v),
		raw:    nodeToAny(v),
		assert: ctx.AssertContent(),
	}
	siblings := ctx.CurrentSchemaObject()
	if mtNode, ok := siblings["contentMediaType"]; ok && mtNode.IsString() {
		e.isJSON = mediaTypes[mtNode.AsString()] != nil && mtNode.AsString() == "application/json"
	}
	if encNode, ok := siblings["contentEncoding"]; ok && encNode.IsString() {
		e.decoder = contentDecoders[encNode.AsString()]
	}
	return e, nil
}

func (e *contentSchemaEvaluator) Evaluate(ctx *EvaluationContext, v JsonNode) *EvaluationResult {
	if !e.assert || !e.isJSON || !v.IsString() {
		return SuccessWith(e.raw)
	}
	content, err := decodedContent(e.decoder, v.AsString())
	if err != nil {
		return SuccessWith(e.raw)
	}
	doc, err := UnmarshalJSON(bytes.NewReader(content))
	if err != nil {
		// the sibling contentMediaType reports this failure
		return SuccessWith(e.raw)
	}
	node, err := newDefaultNode(doc, "")
	if err != nil {
		return SuccessWith(e.raw)
	}
	if !ctx.evaluateSchema(mustResolve(ctx, e.uri), node) {
		return Failure("decoded content does not match the content schema")
	}
	return SuccessWith(e.raw)
}
