// Package gateway is the single network-call abstraction of the client.
//
// Every call is one attempt: no retry, cache or queue. Results are either a raw JSON
// Payload or an *Error whose Message can be shown to the user as is.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/capstone/core"
)

const requestIDHeader = "X-Request-ID"

// Request describes one API call.
type Request struct {
	Method string
	// Path is relative to the API origin. Absolute http(s) URLs are used as is.
	Path         string
	Query        map[string]string
	Body         interface{}
	Token        string
	RequiresAuth bool
}

// Caller issues API calls. *Client implements it.
type Caller interface {
	Do(ctx context.Context, req Request) (Payload, error)
}

// File is a file attached to a multipart upload.
type File struct {
	Field   string
	Name    string
	Content io.Reader
}

type Client struct {
	baseURL string
	rest    *rest.Client
	logger  core.Logger
	newID   func() string
}

var _ Caller = (*Client)(nil)

type Option func(*Client)

// WithHTTPClient replaces the underlying http client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.rest = &rest.Client{HTTPClient: hc} }
}

// WithLogger logs transport failures to logger.
func WithLogger(logger core.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New returns a Client for the API served at baseURL.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	c := &Client{
		baseURL: baseURL,
		rest:    &rest.Client{HTTPClient: &http.Client{Timeout: timeout}},
		newID:   func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call is a shorthand for Do.
func (c *Client) Call(ctx context.Context, method, path string, body interface{}, token string, requiresAuth bool) (Payload, error) {
	return c.Do(ctx, Request{Method: method, Path: path, Body: body, Token: token, RequiresAuth: requiresAuth})
}

// Do sends req with its body encoded as JSON.
func (c *Client) Do(ctx context.Context, req Request) (Payload, error) {
	var body []byte
	if req.Body != nil {
		var err error
		if body, err = json.Marshal(req.Body); err != nil {
			return nil, errors.Wrap(err, "encoding request body")
		}
	}
	res, err := c.send(ctx, req, body, nil)
	if err != nil {
		return nil, err
	}
	return interpret(res)
}

// Upload sends a multipart form made of fields and file.
func (c *Client) Upload(ctx context.Context, req Request, fields map[string][]string, file *File) (Payload, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, vals := range fields {
		for _, val := range vals {
			if err := w.WriteField(name, val); err != nil {
				return nil, errors.Wrap(err, "writing form field")
			}
		}
	}
	if file != nil {
		field := file.Field
		if field == "" {
			field = "file"
		}
		part, err := w.CreateFormFile(field, file.Name)
		if err != nil {
			return nil, errors.Wrap(err, "creating form file")
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, errors.Wrap(err, "reading attachment")
		}
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "closing form")
	}

	if req.Method == "" {
		req.Method = http.MethodPost
	}
	res, err := c.send(ctx, req, buf.Bytes(), map[string]string{"Content-Type": w.FormDataContentType()})
	if err != nil {
		return nil, err
	}
	return interpret(res)
}

// Download fetches raw bytes, such as a PDF specification.
func (c *Client) Download(ctx context.Context, req Request) ([]byte, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	res, err := c.send(ctx, req, nil, nil)
	if err != nil {
		return nil, err
	}
	body := []byte(res.Body)
	if res.StatusCode < 200 || res.StatusCode > 299 {
		if dErr := domainError(res.StatusCode, body); dErr != nil {
			return nil, dErr
		}
		return nil, statusError(res.StatusCode, body)
	}
	if isJSON(res.Headers) {
		if dErr := domainError(res.StatusCode, body); dErr != nil {
			return nil, dErr
		}
	}
	return body, nil
}

func (c *Client) send(ctx context.Context, req Request, body []byte, headers map[string]string) (*rest.Response, error) {
	if req.RequiresAuth && req.Token == "" {
		return nil, &Error{Kind: KindMissingToken, Message: msgMissingToken}
	}

	hdrs := map[string]string{
		"Accept":        "application/json",
		requestIDHeader: c.newID(),
	}
	for k, v := range headers {
		hdrs[k] = v
	}
	if req.Token != "" {
		hdrs["Authorization"] = "Bearer " + req.Token
	}

	rreq := rest.Request{
		Method:      rest.Method(strings.ToUpper(req.Method)),
		BaseURL:     c.url(req.Path),
		Headers:     hdrs,
		QueryParams: req.Query,
		Body:        body,
	}
	res, err := c.rest.SendWithContext(ctx, rreq)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("gateway: "+string(rreq.Method)+" "+rreq.BaseURL, err, map[string]interface{}{"requestId": hdrs[requestIDHeader]})
		}
		return nil, transportError(err)
	}
	return res, nil
}

func (c *Client) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + strings.TrimPrefix(path, "/")
}

// interpret turns a response into a payload or an *Error.
func interpret(res *rest.Response) (Payload, error) {
	body := bytes.TrimSpace([]byte(res.Body))
	if dErr := domainError(res.StatusCode, body); dErr != nil {
		return nil, dErr
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, statusError(res.StatusCode, body)
	}
	if len(body) == 0 {
		return Payload("null"), nil
	}
	if !json.Valid(body) {
		// non JSON success bodies are treated as "no data"
		return Payload("null"), nil
	}
	return Payload(body), nil
}

func isJSON(headers map[string][]string) bool {
	for k, vals := range headers {
		if strings.EqualFold(k, "Content-Type") {
			for _, v := range vals {
				if strings.Contains(v, "json") {
					return true
				}
			}
		}
	}
	return false
}
