package jsonschema

import (
	"fmt"
	gourl "net/url"
	"strings"
)

// CompoundUri is an absolute uri without fragment, paired with
// the fragment that was attached to it. The fragment is either
// a json-pointer (empty or starting with '/') or a plain-name anchor.
type CompoundUri struct {
	Base     string
	Fragment string
}

func (cu CompoundUri) String() string {
	return cu.Base + "#" + cu.Fragment
}

// IsAnchor tells whether the fragment is a plain-name anchor
// rather than a json-pointer.
func (cu CompoundUri) IsAnchor() bool {
	return cu.Fragment != "" && !strings.HasPrefix(cu.Fragment, "/")
}

// SplitFragment splits uri into base and decoded fragment.
func SplitFragment(uri string) (CompoundUri, error) {
	base, frag := uri, ""
	if hash := strings.IndexByte(uri, '#'); hash != -1 {
		base, frag = uri[:hash], uri[hash+1:]
	}
	decoded, err := gourl.PathUnescape(frag)
	if err != nil {
		return CompoundUri{}, &InvalidRefError{Ref: uri, Reason: "invalid fragment encoding"}
	}
	return CompoundUri{Base: base, Fragment: decoded}, nil
}

// UriWithoutFragment strips the fragment, if any.
func UriWithoutFragment(uri string) string {
	if hash := strings.IndexByte(uri, '#'); hash != -1 {
		return uri[:hash]
	}
	return uri
}

// resolveUri resolves ref against base and returns the
// normalized result split into base and fragment.
func resolveUri(base, ref string) (CompoundUri, error) {
	refURL, err := gourl.Parse(ref)
	if err != nil {
		return CompoundUri{}, &InvalidRefError{Ref: ref, Reason: err.Error()}
	}
	if refURL.IsAbs() {
		return SplitFragment(ref)
	}
	baseURL, err := gourl.Parse(base)
	if err != nil {
		return CompoundUri{}, &InvalidRefError{Ref: base, Reason: err.Error()}
	}
	if baseURL.IsAbs() && baseURL.Opaque == "" {
		return SplitFragment(baseURL.ResolveReference(refURL).String())
	}

	// opaque uris such as urn:xyz cannot be resolved against;
	// only fragment-only references are meaningful then.
	if strings.HasPrefix(ref, "#") || ref == "" {
		cu, err := SplitFragment(ref)
		if err != nil {
			return CompoundUri{}, err
		}
		cu.Base = UriWithoutFragment(base)
		return cu, nil
	}
	return SplitFragment(ref)
}

// encodePointerToken converts token to a valid json-pointer token.
func encodePointerToken(token string) string {
	token = strings.ReplaceAll(token, "~", "~0")
	return strings.ReplaceAll(token, "/", "~1")
}

// decodePointerToken reverses encodePointerToken. The second
// return value is false if the token contains an invalid escape.
func decodePointerToken(token string) (string, bool) {
	var sb strings.Builder
	for i := 0; i < len(token); i++ {
		ch := token[i]
		if ch != '~' {
			sb.WriteByte(ch)
			continue
		}
		i++
		if i == len(token) {
			return "", false
		}
		switch token[i] {
		case '0':
			sb.WriteByte('~')
		case '1':
			sb.WriteByte('/')
		default:
			return "", false
		}
	}
	return sb.String(), true
}

// pointerTokens splits a json-pointer into decoded reference tokens.
func pointerTokens(ptr string) ([]string, error) {
	if ptr == "" {
		return nil, nil
	}
	if !strings.HasPrefix(ptr, "/") {
		return nil, fmt.Errorf("json-pointer %q must start with '/'", ptr)
	}
	raw := strings.Split(ptr[1:], "/")
	tokens := make([]string, len(raw))
	for i, tok := range raw {
		decoded, ok := decodePointerToken(tok)
		if !ok {
			return nil, fmt.Errorf("json-pointer %q has invalid escape in token %q", ptr, tok)
		}
		tokens[i] = decoded
	}
	return tokens, nil
}
