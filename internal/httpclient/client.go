// Package httpclient builds the tuned HTTP client shared by all probe
// requests.
package httpclient

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/termul/termul/internal/config"
)

const maxRedirects = 10

// New creates the outbound client used by the prober. Connection reuse is
// tuned for a short burst of requests against a single target; the overall
// per-request deadline is enforced by the prober's context, not here.
func New(cfg config.HTTPConfig) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	client := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
	}

	if !cfg.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	} else {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		}
	}

	return client
}

// CloseBody drains and closes a response body so the underlying connection
// can be reused by the pool.
func CloseBody(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
