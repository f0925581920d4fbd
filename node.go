package jsonschema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"strconv"
)

// NodeType tells the json type of a [JsonNode].
type NodeType int

const (
	NullType NodeType = iota
	BooleanType
	StringType
	IntegerType
	NumberType
	ArrayType
	ObjectType
)

func (t NodeType) String() string {
	switch t {
	case NullType:
		return "null"
	case BooleanType:
		return "boolean"
	case StringType:
		return "string"
	case IntegerType:
		return "integer"
	case NumberType:
		return "number"
	case ArrayType:
		return "array"
	case ObjectType:
		return "object"
	}
	return "unknown"
}

// JsonNode is a node in a parsed json tree. Implementations wrap
// a concrete json library; the engine never touches raw values
// directly. Array elements and object members are materialized
// lazily and carry json-pointers addressing them in their document.
type JsonNode interface {
	Type() NodeType
	JsonPointer() string

	IsNull() bool
	IsBoolean() bool
	IsString() bool
	IsInteger() bool
	IsNumber() bool
	IsArray() bool
	IsObject() bool

	AsBoolean() bool
	AsString() string
	AsNumber() *big.Rat
	AsArray() []JsonNode
	AsObject() map[string]JsonNode
}

// JsonNodeFactory produces [JsonNode] trees from raw json text or
// from values already decoded by the host json library.
type JsonNodeFactory interface {
	Parse(raw string) (JsonNode, error)
	Wrap(v any) (JsonNode, error)
}

// DefaultNodeFactory is backed by encoding/json. Numbers are decoded
// with json.Number so that 1 and 1.0 compare equal mathematically.
type DefaultNodeFactory struct{}

func (DefaultNodeFactory) Parse(raw string) (JsonNode, error) {
	v, err := UnmarshalJSON(bytes.NewReader([]byte(raw)))
	if err != nil {
		return nil, err
	}
	return newDefaultNode(v, "")
}

func (DefaultNodeFactory) Wrap(v any) (JsonNode, error) {
	if n, ok := v.(JsonNode); ok {
		return n, nil
	}
	return newDefaultNode(v, "")
}

// UnmarshalJSON reads a single json value from r, decoding
// numbers with full precision.
func UnmarshalJSON(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("invalid character after top-level value")
	}
	return doc, nil
}

type defaultNode struct {
	typ NodeType
	ptr string

	boolean bool
	str     string
	num     *big.Rat
	arr     []any
	obj     map[string]any

	// lazily created children
	elems   []JsonNode
	members map[string]JsonNode
}

func newDefaultNode(v any, ptr string) (*defaultNode, error) {
	n := &defaultNode{ptr: ptr}
	switch v := v.(type) {
	case nil:
		n.typ = NullType
	case bool:
		n.typ = BooleanType
		n.boolean = v
	case string:
		n.typ = StringType
		n.str = v
	case json.Number:
		rat, ok := new(big.Rat).SetString(string(v))
		if !ok {
			return nil, fmt.Errorf("invalid number %q at %q", v, ptr)
		}
		n.num = rat
		n.typ = NumberType
		if rat.IsInt() {
			n.typ = IntegerType
		}
	case float64:
		n.num = new(big.Rat).SetFloat64(v)
		n.typ = NumberType
		if n.num.IsInt() {
			n.typ = IntegerType
		}
	case int:
		n.num = new(big.Rat).SetInt64(int64(v))
		n.typ = IntegerType
	case int64:
		n.num = new(big.Rat).SetInt64(v)
		n.typ = IntegerType
	case []any:
		n.typ = ArrayType
		n.arr = v
	case map[string]any:
		n.typ = ObjectType
		n.obj = v
	default:
		return nil, fmt.Errorf("invalid json value %T at %q", v, ptr)
	}
	return n, nil
}

func (n *defaultNode) Type() NodeType      { return n.typ }
func (n *defaultNode) JsonPointer() string { return n.ptr }

func (n *defaultNode) IsNull() bool    { return n.typ == NullType }
func (n *defaultNode) IsBoolean() bool { return n.typ == BooleanType }
func (n *defaultNode) IsString() bool  { return n.typ == StringType }
func (n *defaultNode) IsInteger() bool { return n.typ == IntegerType }
func (n *defaultNode) IsNumber() bool  { return n.typ == NumberType || n.typ == IntegerType }
func (n *defaultNode) IsArray() bool   { return n.typ == ArrayType }
func (n *defaultNode) IsObject() bool  { return n.typ == ObjectType }

func (n *defaultNode) AsBoolean() bool    { return n.boolean }
func (n *defaultNode) AsString() string   { return n.str }
func (n *defaultNode) AsNumber() *big.Rat { return n.num }

func (n *defaultNode) AsArray() []JsonNode {
	if n.elems == nil {
		n.elems = make([]JsonNode, len(n.arr))
		for i, item := range n.arr {
			child, err := newDefaultNode(item, n.ptr+"/"+strconv.Itoa(i))
			if err != nil {
				panic(&Bug{err.Error()})
			}
			n.elems[i] = child
		}
	}
	return n.elems
}

func (n *defaultNode) AsObject() map[string]JsonNode {
	if n.members == nil {
		n.members = make(map[string]JsonNode, len(n.obj))
		for pname, pvalue := range n.obj {
			child, err := newDefaultNode(pvalue, n.ptr+"/"+encodePointerToken(pname))
			if err != nil {
				panic(&Bug{err.Error()})
			}
			n.members[pname] = child
		}
	}
	return n.members
}

// nodeEquals tells if two json nodes hold equal values.
// Numbers compare mathematically, containers structurally.
func nodeEquals(a, b JsonNode) bool {
	if a.IsNumber() && b.IsNumber() {
		return a.AsNumber().Cmp(b.AsNumber()) == 0
	}
	if a.Type() != b.Type() {
		return false
	}
	switch a.Type() {
	case NullType:
		return true
	case BooleanType:
		return a.AsBoolean() == b.AsBoolean()
	case StringType:
		return a.AsString() == b.AsString()
	case ArrayType:
		arr1, arr2 := a.AsArray(), b.AsArray()
		if len(arr1) != len(arr2) {
			return false
		}
		for i := range arr1 {
			if !nodeEquals(arr1[i], arr2[i]) {
				return false
			}
		}
		return true
	case ObjectType:
		obj1, obj2 := a.AsObject(), b.AsObject()
		if len(obj1) != len(obj2) {
			return false
		}
		for pname, v1 := range obj1 {
			v2, ok := obj2[pname]
			if !ok || !nodeEquals(v1, v2) {
				return false
			}
		}
		return true
	}
	return false
}

// lookupPointer navigates ptr from node. Returns nil if the
// pointer does not address a node in the tree.
func lookupPointer(node JsonNode, ptr string) JsonNode {
	tokens, err := pointerTokens(ptr)
	if err != nil {
		return nil
	}
	for _, tok := range tokens {
		switch {
		case node.IsObject():
			child, ok := node.AsObject()[tok]
			if !ok {
				return nil
			}
			node = child
		case node.IsArray():
			i, err := strconv.Atoi(tok)
			arr := node.AsArray()
			if err != nil || i < 0 || i >= len(arr) {
				return nil
			}
			node = arr[i]
		default:
			return nil
		}
	}
	return node
}
