package models

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Bucket is the logical name of a cache partition family. Every generation
// owns exactly one partition per bucket.
type Bucket string

const (
	// BucketStatic holds precached and lazily cached static assets.
	BucketStatic Bucket = "static"
	// BucketAPI holds responses of data endpoints used as offline fallback.
	BucketAPI Bucket = "api"
	// BucketOffline holds the fallback page served when navigation fails.
	BucketOffline Bucket = "offline"
)

// Buckets lists every bucket a generation is populated with.
var Buckets = []Bucket{BucketStatic, BucketAPI, BucketOffline}

// CacheEntry is a cached request/response pair stored in a single partition.
type CacheEntry struct {
	// Key is the lookup key built from the request method and URL.
	Key string `json:"key"`

	// Method is the HTTP method of the cached request.
	Method string `json:"method"`

	// URL is the request path including the raw query, if any.
	URL string `json:"url"`

	// Status is the HTTP status code of the cached response.
	Status int `json:"status"`

	// Headers are the response headers stored alongside the body.
	Headers http.Header `json:"headers,omitempty"`

	// Body is the raw response body.
	Body []byte `json:"body,omitempty"`

	// Digest is the hex blake2b-256 digest of Body, computed on write and
	// verified on read.
	Digest string `json:"digest"`

	// Partition is the name of the partition owning the entry.
	Partition string `json:"partition"`

	// StoredAt is the time the entry was last written.
	StoredAt time.Time `json:"stored_at"`
}

// CacheKey builds the lookup key for a request. Methods are upper-cased so
// "get" and "GET" resolve to the same entry.
func CacheKey(method, url string) string {
	return strings.ToUpper(method) + " " + url
}

// PartitionName returns the partition name of bucket in generation.
func PartitionName(bucket Bucket, generation int64) string {
	return fmt.Sprintf("%s-v%d", bucket, generation)
}

// ParsePartitionName splits a partition name produced by [PartitionName]
// back into its bucket and generation.
func ParsePartitionName(name string) (Bucket, int64, error) {
	idx := strings.LastIndex(name, "-v")
	if idx <= 0 {
		return "", 0, fmt.Errorf("malformed partition name %q", name)
	}

	generation, err := strconv.ParseInt(name[idx+2:], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("malformed partition generation %q: %w", name, err)
	}

	return Bucket(name[:idx]), generation, nil
}
