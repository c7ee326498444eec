package utils

import (
	"net/http"
	"strings"
)

// hopHeaders are meaningful only for a single transport-level connection
// (RFC 9110, section 7.6.1) and are never forwarded.
var hopHeaders = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// EndToEndHeaders returns a copy of h without hop-by-hop headers, including
// the ones listed in its Connection header. Extra names are removed as
// well.
func EndToEndHeaders(h http.Header, extra ...string) http.Header {
	out := h.Clone()
	if out == nil {
		return http.Header{}
	}

	for _, value := range h.Values("Connection") {
		for _, name := range strings.Split(value, ",") {
			if name = strings.TrimSpace(name); name != "" {
				out.Del(name)
			}
		}
	}
	for _, name := range hopHeaders {
		out.Del(name)
	}
	for _, name := range extra {
		out.Del(name)
	}

	return out
}
