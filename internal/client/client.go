package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gabe/rcbt/internal/logger"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Client talks to the report server. Every JSON endpoint answers with a
// top-level "success" flag; anything but success:true is a failure.
type Client struct {
	base   string
	http   *http.Client
	upload *http.Client
}

// Options configures a Client
type Options struct {
	Timeout       time.Duration
	UploadTimeout time.Duration
	Jar           http.CookieJar
	Transport     http.RoundTripper
}

// New creates a client for the server at base
func New(base string, opts Options) (*Client, error) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", base)
	}
	if opts.UploadTimeout <= 0 {
		opts.UploadTimeout = opts.Timeout
	}
	return &Client{
		base:   base,
		http:   &http.Client{Timeout: opts.Timeout, Jar: opts.Jar, Transport: opts.Transport},
		upload: &http.Client{Timeout: opts.UploadTimeout, Jar: opts.Jar, Transport: opts.Transport},
	}, nil
}

// BaseURL returns the server root without trailing slash
func (c *Client) BaseURL() string {
	return c.base
}

// URL resolves a server-relative path (e.g. a validation redirect target)
func (c *Client) URL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.base + path
}

// DownloadURL is the address of a generated report; the path is escaped as one segment
func (c *Client) DownloadURL(reportPath string) string {
	return c.base + "/download_report/" + url.PathEscape(reportPath)
}

func (c *Client) postJSON(ctx context.Context, op, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: failed to encode request: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(c.http, req, op, out)
}

func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return c.do(c.http, req, op, out)
}

// do sends req and decodes the success envelope into out
func (c *Client) do(hc *http.Client, req *http.Request, op string, out any) error {
	resp, err := c.send(hc, req, op)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	return decodeEnvelope(op, data, out)
}

// send performs the round trip and converts non-2xx statuses to TransportError
func (c *Client) send(hc *http.Client, req *http.Request, op string) (*http.Response, error) {
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")

	log := logger.Log.WithFields(logrus.Fields{
		"op":         op,
		"method":     req.Method,
		"url":        req.URL.String(),
		"request_id": requestID,
	})
	start := time.Now()
	log.Debug("request started")

	resp, err := hc.Do(req)
	if err != nil {
		log.WithError(err).Debug("request failed")
		return nil, &TransportError{Op: op, Err: err}
	}
	log.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	}).Debug("request finished")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		blob, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, &TransportError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(blob))}
	}
	return resp, nil
}

type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func decodeEnvelope(op string, data []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("invalid JSON response: %w", err)}
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = ErrNoSuccess.Error()
		}
		return &ServerError{Op: op, Message: msg}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("invalid JSON response: %w", err)}
	}
	return nil
}
