// Package prober executes single HTTP probe requests. Any transport-level
// error, timeout, or protocol error is mapped to a network-failure outcome;
// nothing propagates past the prober boundary and nothing is retried.
package prober

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/termul/termul/internal/httpclient"
	"github.com/termul/termul/internal/logger"
)

// wafStatusCodes are the response codes typically emitted by protective
// middleboxes. They are logged so an operator can tell a hardened target
// from a dead one, but they never change classification.
var wafStatusCodes = map[int]bool{
	http.StatusForbidden:       true,
	http.StatusTooManyRequests: true,
}

// Request describes one probe request.
type Request struct {
	Method      string
	URL         string
	BearerToken string
	JSONBody    interface{}
}

// Outcome is the two-variant result of a probe: a response with status and
// body, or a network failure (OK == false). A network failure yields no
// finding and is final for that request.
type Outcome struct {
	OK     bool
	Status int
	Body   string
}

// Prober issues probe requests with a fixed per-request timeout.
type Prober struct {
	client  *http.Client
	timeout time.Duration
	log     *logger.Logger
}

func New(client *http.Client, timeout time.Duration, log *logger.Logger) *Prober {
	return &Prober{
		client:  client,
		timeout: timeout,
		log:     log.WithComponent("prober"),
	}
}

// Do executes the request and returns its outcome. The caller is never
// interrupted by an error for an unreachable or erroring endpoint.
func (p *Prober) Do(ctx context.Context, req Request) Outcome {
	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var body io.Reader
	if req.JSONBody != nil {
		payload, err := json.Marshal(req.JSONBody)
		if err != nil {
			p.log.Debugw("Failed to encode request body", "url", req.URL, "error", err)
			return Outcome{}
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(reqCtx, req.Method, req.URL, body)
	if err != nil {
		p.log.Debugw("Failed to build request", "url", req.URL, "error", err)
		return Outcome{}
	}

	if req.BearerToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.BearerToken)
	}
	if req.JSONBody != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := p.client.Do(httpReq)
	if err != nil {
		p.log.Debugw("Probe request failed",
			"method", req.Method,
			"url", req.URL,
			"error", err,
		)
		return Outcome{}
	}
	defer httpclient.CloseBody(resp)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		p.log.Debugw("Failed to read response body", "url", req.URL, "error", err)
		return Outcome{}
	}

	p.log.LogHTTPRequest(ctx, req.Method, req.URL, resp.StatusCode, time.Since(start))

	if wafStatusCodes[resp.StatusCode] {
		p.log.Debugw("Possible WAF response",
			"url", req.URL,
			"status", resp.StatusCode,
		)
	}

	return Outcome{
		OK:     true,
		Status: resp.StatusCode,
		Body:   string(respBody),
	}
}
