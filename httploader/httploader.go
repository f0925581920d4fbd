// Package httploader implements a [jsonschema.SchemaResolver] for
// http/https urls.
//
//	v := jsonschema.NewValidator()
//	v.UseResolver(httploader.New(15*time.Second, false))
package httploader

import (
	"crypto/tls"
	"io"
	"net/http"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jsonschema-dev/jsonschema"
)

// Loader resolves http and https schema uris with the embedded client.
// Uris with other schemes, request failures and non-200 responses all
// yield the empty result, letting the next resolver in the chain try.
type Loader http.Client

// New returns a Loader with the given timeout. If insecure is true,
// server certificates are not verified.
func New(timeout time.Duration, insecure bool) *Loader {
	client := http.Client{Timeout: timeout}
	if insecure {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return (*Loader)(&client)
}

func (l *Loader) Resolve(url string) jsonschema.ResolverResult {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return jsonschema.ResolverResult{}
	}
	client := (*http.Client)(l)
	resp, err := client.Get(url)
	if err != nil {
		return jsonschema.ResolverResult{}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return jsonschema.ResolverResult{}
	}

	if isYAML(url, resp.Header.Get("Content-Type")) {
		var v any
		if err := yaml.NewDecoder(resp.Body).Decode(&v); err != nil {
			return jsonschema.ResolverResult{}
		}
		return jsonschema.ResolveProvider(v)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return jsonschema.ResolverResult{}
	}
	return jsonschema.ResolveString(string(raw))
}

func isYAML(url, ctype string) bool {
	if strings.HasSuffix(url, ".yaml") || strings.HasSuffix(url, ".yml") {
		return true
	}
	return strings.HasSuffix(ctype, "/yaml") || strings.HasSuffix(ctype, "-yaml")
}
