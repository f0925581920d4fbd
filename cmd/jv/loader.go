package main

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jsonschema-dev/jsonschema"
)

const httpTimeout = 15 * time.Second

func insecureTransport() *http.Transport {
	return &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}
}

// loadFile reads a local json or yaml document into a decoded value.
func loadFile(path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if ext := filepath.Ext(path); ext == ".yaml" || ext == ".yml" {
		var v any
		err := yaml.NewDecoder(f).Decode(&v)
		return v, err
	}
	return jsonschema.UnmarshalJSON(f)
}

// toFileURL converts a local path into a file url usable as a schema uri.
func toFileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if runtime.GOOS == "windows" {
		abs = "/" + filepath.ToSlash(abs)
	}
	u := url.URL{Scheme: "file", Path: abs}
	return u.String(), nil
}

// loadHTTP fetches a remote json or yaml document into a decoded value.
func loadHTTP(url string, insecure bool) (any, error) {
	client := http.Client{Timeout: httpTimeout}
	if insecure {
		client.Transport = insecureTransport()
	}
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status code %d", url, resp.StatusCode)
	}

	isYAML := strings.HasSuffix(url, ".yaml") || strings.HasSuffix(url, ".yml")
	if !isYAML {
		ctype := resp.Header.Get("Content-Type")
		isYAML = strings.HasSuffix(ctype, "/yaml") || strings.HasSuffix(ctype, "-yaml")
	}
	if isYAML {
		var v any
		err := yaml.NewDecoder(resp.Body).Decode(&v)
		return v, err
	}
	return jsonschema.UnmarshalJSON(resp.Body)
}

// fileResolver serves file urls so that references between local
// schema documents resolve during evaluation.
type fileResolver struct{}

func (fileResolver) Resolve(uri string) jsonschema.ResolverResult {
	if !strings.HasPrefix(uri, "file://") {
		return jsonschema.ResolverResult{}
	}
	u, err := url.Parse(uri)
	if err != nil {
		return jsonschema.ResolverResult{}
	}
	path := u.Path
	if runtime.GOOS == "windows" {
		path = strings.TrimPrefix(path, "/")
		path = filepath.FromSlash(path)
	}
	doc, err := loadFile(path)
	if err != nil {
		return jsonschema.ResolverResult{}
	}
	return jsonschema.ResolveProvider(doc)
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
