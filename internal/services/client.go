package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/example/amarshop/internal/models"
	"github.com/example/amarshop/internal/normalize"
)

// Client talks to the backend REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	normalizer *normalize.Normalizer
	logger     *zap.Logger
}

// NewClient builds a Client for baseURL. A zero timeout keeps the default.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		normalizer: normalize.New(logger),
		logger:     logger,
	}
}

// BaseURL exposes the configured backend URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// RequestOpts captures inputs for backend calls.
type RequestOpts struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Token  string
}

// Response bundles the HTTP response metadata.
type Response struct {
	Status int
	Body   []byte
	Header http.Header
}

// Do performs a backend request. Only transport failures are errors here;
// status handling is left to the caller.
func (c *Client) Do(ctx context.Context, opts RequestOpts) (*Response, error) {
	if opts.Method == "" {
		return nil, errors.New("request method is required")
	}
	path := strings.TrimLeft(opts.Path, "/")
	if path == "" {
		return nil, errors.New("request path is required")
	}

	makeURL := func() (string, error) {
		u, err := url.Parse(c.baseURL)
		if err != nil {
			return "", fmt.Errorf("parse base URL: %w", err)
		}
		u.Path = strings.TrimRight(u.Path, "/") + "/" + path
		if len(opts.Query) > 0 {
			u.RawQuery = opts.Query.Encode()
		}
		return u.String(), nil
	}

	targetURL, err := makeURL()
	if err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if opts.Body != nil {
		payload, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, targetURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if opts.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s %s: %w", opts.Method, path, ctxErr)
		}
		c.logger.Warn("backend request failed",
			zap.String("method", opts.Method),
			zap.String("path", path),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, opts.Method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}

	c.logger.Debug("backend request",
		zap.String("method", opts.Method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(started)))

	return &Response{
		Status: resp.StatusCode,
		Body:   respBody,
		Header: resp.Header.Clone(),
	}, nil
}

// call performs opts and returns the body of a successful response. Non-2xx
// statuses and ok:false envelopes become errors.
func (c *Client) call(ctx context.Context, opts RequestOpts) ([]byte, error) {
	resp, err := c.Do(ctx, opts)
	if err != nil {
		return nil, err
	}

	if resp.Status < 200 || resp.Status >= 300 {
		se := &StatusError{Status: resp.Status}
		if gjson.ValidBytes(resp.Body) {
			env := gjson.ParseBytes(resp.Body)
			se.Message = env.Get("message").String()
			se.Code = env.Get("code").String()
		}
		return nil, se
	}

	if gjson.ValidBytes(resp.Body) {
		root := gjson.ParseBytes(resp.Body)
		if ok := root.Get("ok"); root.IsObject() && ok.Exists() && !ok.Bool() {
			var env models.Envelope
			_ = json.Unmarshal(resp.Body, &env)
			return nil, &EnvelopeError{Message: env.Message, Code: env.Code, Errors: env.Errors}
		}
	}
	return resp.Body, nil
}

// data performs opts and decodes the envelope's data into out. Bodies that
// are not wrapped in an envelope are decoded as they are.
func (c *Client) data(ctx context.Context, opts RequestOpts, out any) error {
	body, err := c.call(ctx, opts)
	if err != nil {
		return err
	}
	return unwrap(body, out)
}

func unwrap(body []byte, out any) error {
	if !gjson.ValidBytes(body) {
		return ErrMalformed
	}
	root := gjson.ParseBytes(body)
	payload := body
	if root.IsObject() && root.Get("ok").Exists() {
		data := root.Get("data")
		if !data.Exists() || data.Type == gjson.Null {
			return ErrMalformed
		}
		payload = []byte(data.Raw)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// list performs opts and returns the records of the response in order,
// whatever envelope the endpoint uses.
func list[T any](ctx context.Context, c *Client, opts RequestOpts) ([]T, error) {
	body, err := c.call(ctx, opts)
	if err != nil {
		return nil, err
	}
	items, err := normalize.List[T](c.normalizer, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, opts.Path, err)
	}
	return items, nil
}
