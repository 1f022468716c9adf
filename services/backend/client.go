package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/trezcool/confadmin/core"
)

type ctxKey int

const tokenKey ctxKey = iota

// WithToken returns a copy of ctx carrying the bearer token of the console user.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFromContext returns the bearer token carried by ctx, if any.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}

// File is a file part of a multipart body.
type File struct {
	Param  string
	Name   string
	Reader io.Reader
}

// Multipart is a multipart/form-data body.
type Multipart struct {
	Fields url.Values
	Files  []File
}

// Client is the platform API client. Every call takes the bearer token from its context.
type Client struct {
	http       *resty.Client
	storageURL string
	logger     core.Logger
}

func NewClient(conf *core.Config, logger core.Logger) *Client {
	hc := resty.New().
		SetBaseURL(conf.Backend.APIBaseURL).
		SetTimeout(conf.Backend.Timeout).
		SetRetryCount(conf.Backend.RetryCount).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(3*time.Second).
		AddRetryCondition(retryReads).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", conf.AppName+"/"+conf.Build)

	return &Client{
		http:       hc,
		storageURL: conf.Backend.StorageBaseURL,
		logger:     logger,
	}
}

// retryReads retries GET requests on transport errors and 5xx answers. Writes are sent
// once: the backend does not deduplicate them.
func retryReads(res *resty.Response, err error) bool {
	if res == nil || res.Request == nil || res.Request.Method != http.MethodGet {
		return false
	}
	return err != nil || res.StatusCode() >= http.StatusInternalServerError
}

// StorageURL joins the storage base URL with a media path. Absolute URLs are returned unchanged.
func (c *Client) StorageURL(path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.storageURL + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if token := TokenFromContext(ctx); token != "" {
		req.SetAuthToken(token)
	}
	return req
}

// execute sends req and decodes a 2xx body into out (if not nil).
func (c *Client) execute(req *resty.Request, method, path string, out interface{}) error {
	res, err := req.Execute(method, path)
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("%s %s", method, path))
	}
	if res.IsError() {
		apiErr := newAPIError(res.StatusCode(), res.Body())
		if res.StatusCode() >= http.StatusInternalServerError {
			c.logger.Error(fmt.Sprintf("backend error: %s %s: %d", method, path, res.StatusCode()), apiErr)
		}
		return apiErr
	}
	if out == nil || len(res.Body()) == 0 {
		return nil
	}
	return errors.Wrap(decodeBody(res.Body(), out), fmt.Sprintf("decoding %s %s", method, path))
}

// decodeBody decodes body into out, unwrapping a {"data": ...} envelope.
func decodeBody(body []byte, out interface{}) error {
	var envelope map[string]json.RawMessage
	if json.Unmarshal(body, &envelope) == nil && len(envelope) == 1 {
		if data, ok := envelope["data"]; ok {
			body = data
		}
	}
	return json.Unmarshal(body, out)
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	req := c.request(ctx)
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}
	return c.execute(req, http.MethodGet, path, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, body, out interface{}) error {
	req := c.request(ctx).SetHeader("Content-Type", "application/json")
	if body != nil {
		req.SetBody(body)
	}
	return c.execute(req, method, path, out)
}

func (c *Client) sendMultipart(ctx context.Context, method, path string, body Multipart, out interface{}) error {
	req := c.request(ctx).SetMultipartFormData(map[string]string{})
	if len(body.Fields) > 0 {
		req.SetFormDataFromValues(body.Fields)
	}
	for _, f := range body.Files {
		req.SetFileReader(f.Param, f.Name, f.Reader)
	}
	return c.execute(req, method, path, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.execute(c.request(ctx), http.MethodDelete, path, nil)
}

func list[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	items := make([]T, 0)
	if err := c.getJSON(ctx, path, query, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func get[T any](ctx context.Context, c *Client, path string) (T, error) {
	var item T
	err := c.getJSON(ctx, path, nil, &item)
	return item, err
}

func send[T any](ctx context.Context, c *Client, method, path string, body interface{}) (T, error) {
	var item T
	err := c.sendJSON(ctx, method, path, body, &item)
	return item, err
}

func sendMultipart[T any](ctx context.Context, c *Client, method, path string, body Multipart) (T, error) {
	var item T
	err := c.sendMultipart(ctx, method, path, body, &item)
	return item, err
}

func resourcePath(base, id string, suffix ...string) string {
	p := base + "/" + url.PathEscape(id)
	for _, s := range suffix {
		p += "/" + s
	}
	return p
}
