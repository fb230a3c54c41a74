package kv

import (
	"encoding/base64"
	"regexp"
	"strings"
)

// Store is a durable string key-value store standing in for browser local storage.
// Writes are last-writer-wins; there is no versioning or conflict detection.
type Store interface {
	// Get returns the value for key and whether it exists
	Get(key string) (string, bool, error)
	Set(key, value string) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error
}

var safeNamespaceRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Namespaced scopes every key of an underlying store under a per-user prefix
type Namespaced struct {
	store  Store
	prefix string
}

// encodedPrefix marks a namespace stored in base64. Raw namespaces carrying it
// are encoded too, so distinct namespaces never share a prefix.
const encodedPrefix = "b64_"

// WithNamespace returns a view of store whose keys are prefixed with ns.
// Namespaces with characters outside [A-Za-z0-9_-] are encoded so the
// resulting keys are valid for every backend, including NATS KV.
func WithNamespace(store Store, ns string) *Namespaced {
	if !safeNamespaceRe.MatchString(ns) || strings.HasPrefix(ns, encodedPrefix) {
		ns = encodedPrefix + base64.RawURLEncoding.EncodeToString([]byte(ns))
	}
	return &Namespaced{store: store, prefix: ns + "."}
}

func (n *Namespaced) Get(key string) (string, bool, error) {
	return n.store.Get(n.prefix + key)
}

func (n *Namespaced) Set(key, value string) error {
	return n.store.Set(n.prefix+key, value)
}

func (n *Namespaced) Remove(key string) error {
	return n.store.Remove(n.prefix + key)
}
