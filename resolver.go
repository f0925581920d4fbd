package jsonschema

// SchemaResolver supplies schema documents for uris that have not
// been registered explicitly. Resolvers are consulted in order;
// the first non-empty result wins. A resolver that does not know
// the uri returns the zero [ResolverResult].
type SchemaResolver interface {
	Resolve(uri string) ResolverResult
}

// ResolverResult is what a [SchemaResolver] produced: raw json
// text, an already-parsed node, or a decoded value to be wrapped
// by the validator's node factory.
type ResolverResult struct {
	raw      string
	node     JsonNode
	provider any

	kind resolverResultKind
}

type resolverResultKind int

const (
	resolverEmpty resolverResultKind = iota
	resolverRaw
	resolverNode
	resolverProvider
)

// ResolveString supplies a schema document as raw json text.
func ResolveString(raw string) ResolverResult {
	return ResolverResult{raw: raw, kind: resolverRaw}
}

// ResolveNode supplies an already-parsed schema document.
func ResolveNode(node JsonNode) ResolverResult {
	return ResolverResult{node: node, kind: resolverNode}
}

// ResolveProvider supplies a schema document as a value decoded by
// the host json library, to be wrapped by the node factory.
func ResolveProvider(v any) ResolverResult {
	return ResolverResult{provider: v, kind: resolverProvider}
}

func (r ResolverResult) isEmpty() bool { return r.kind == resolverEmpty }

// toNode materializes the result through factory.
func (r ResolverResult) toNode(factory JsonNodeFactory) (JsonNode, error) {
	switch r.kind {
	case resolverRaw:
		return factory.Parse(r.raw)
	case resolverNode:
		return r.node, nil
	case resolverProvider:
		return factory.Wrap(r.provider)
	}
	panic(&Bug{"toNode called on empty resolver result"})
}

// SchemaResolverFunc adapts a function to [SchemaResolver].
type SchemaResolverFunc func(uri string) ResolverResult

func (f SchemaResolverFunc) Resolve(uri string) ResolverResult { return f(uri) }

// specResolver serves the embedded official meta-schema documents.
type specResolver struct{}

func (specResolver) Resolve(uri string) ResolverResult {
	if raw, ok := resolveSpecResource(uri); ok {
		return ResolveString(raw)
	}
	return ResolverResult{}
}

// composeResolvers chains resolvers, first non-empty result wins.
func composeResolvers(resolvers ...SchemaResolver) SchemaResolver {
	return SchemaResolverFunc(func(uri string) ResolverResult {
		for _, r := range resolvers {
			if r == nil {
				continue
			}
			if res := r.Resolve(uri); !res.isEmpty() {
				return res
			}
		}
		return ResolverResult{}
	})
}
