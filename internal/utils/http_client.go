package utils

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPClient wraps resty.Client so application-specific setup lives in one
// place.
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient returns an independent client with a default-configured
// resty.Client.
func NewHTTPClient() *HTTPClient {
	return &HTTPClient{Client: resty.New()}
}

// NewProxyHTTPClient returns a client suited for forwarding requests
// verbatim: redirects are handed back to the caller instead of being
// followed, and every call is bounded by timeout.
func NewProxyHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	client := NewHTTPClient()
	client.
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}))

	return client
}
