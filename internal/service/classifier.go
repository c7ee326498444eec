package service

import (
	"net/http"
	"strings"

	"github.com/MKhiriev/go-pos-offline/models"
)

// Route is the cache strategy chosen for a request.
type Route int

const (
	// RoutePassThrough forwards to upstream without caching or queueing.
	RoutePassThrough Route = iota
	// RouteTransactional is network-first with queue-on-failure.
	RouteTransactional
	// RouteData is network-first with cache fallback.
	RouteData
	// RouteDataWrite is a non-transactional write under the data prefix.
	RouteDataWrite
	// RouteStatic is cache-first with network fallback.
	RouteStatic
	// RouteNavigation is network-first with the fallback page.
	RouteNavigation
)

func (r Route) String() string {
	switch r {
	case RouteTransactional:
		return "transactional"
	case RouteData:
		return "data"
	case RouteDataWrite:
		return "data-write"
	case RouteStatic:
		return "static"
	case RouteNavigation:
		return "navigation"
	default:
		return "pass-through"
	}
}

// TransactionalPrefix maps a path prefix to the kind its writes are queued
// as.
type TransactionalPrefix struct {
	Prefix string
	Kind   models.WriteKind
}

// ClassifierRules configures the [Classifier]. A prefix ending in "/"
// matches any path below it; otherwise it matches the exact path and its
// subpaths.
type ClassifierRules struct {
	Transactional  []TransactionalPrefix
	DataPrefixes   []string
	StaticPrefixes []string
}

// DefaultClassifierRules returns the rules of the POS terminal.
func DefaultClassifierRules() ClassifierRules {
	return ClassifierRules{
		Transactional: []TransactionalPrefix{
			{Prefix: "/api/v1/pos/transactions", Kind: models.WriteKindTransaction},
			{Prefix: "/api/v1/pos/receipts", Kind: models.WriteKindReceipt},
		},
		DataPrefixes:   []string{"/api/"},
		StaticPrefixes: []string{"/pos/", "/static/"},
	}
}

// Classification is the outcome of [Classifier.Classify].
type Classification struct {
	Route Route
	// Kind is set for RouteTransactional.
	Kind models.WriteKind
}

// Classifier picks the cache strategy of a request. Rules are evaluated in
// order: transactional write, data read, static asset, navigation,
// pass-through.
type Classifier struct {
	rules ClassifierRules
}

func NewClassifier(rules ClassifierRules) *Classifier {
	return &Classifier{rules: rules}
}

func (c *Classifier) Classify(req models.Request) Classification {
	path := req.Path()
	write := isWriteMethod(req.Method)
	read := isReadMethod(req.Method)

	if write {
		for _, t := range c.rules.Transactional {
			if matchPrefix(path, t.Prefix) {
				return Classification{Route: RouteTransactional, Kind: t.Kind}
			}
		}
	}

	if matchAny(path, c.rules.DataPrefixes) {
		switch {
		case read:
			return Classification{Route: RouteData}
		case write:
			return Classification{Route: RouteDataWrite}
		}
	}

	if read && matchAny(path, c.rules.StaticPrefixes) {
		return Classification{Route: RouteStatic}
	}

	if strings.EqualFold(req.Method, http.MethodGet) && req.AcceptsHTML() {
		return Classification{Route: RouteNavigation}
	}

	return Classification{Route: RoutePassThrough}
}

func isWriteMethod(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func isReadMethod(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodHead:
		return true
	}
	return false
}

func matchAny(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if matchPrefix(path, p) {
			return true
		}
	}
	return false
}

func matchPrefix(path, prefix string) bool {
	if prefix == "" {
		return false
	}
	if strings.HasSuffix(prefix, "/") {
		return strings.HasPrefix(path, prefix)
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
