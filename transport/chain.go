package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Handle identifies one interceptor registration on a [Client]. Holders eject
// their registration with [Client.Eject] when their owner tears down.
type Handle string

// RequestHook runs before a call is sent. It may stamp headers and query
// parameters on the call; returning an error fails the call without sending.
type RequestHook func(ctx context.Context, call *Call) error

// ResponseHook runs after a call settles. It receives the response or the
// transport error and may substitute either, including by resubmitting the call.
type ResponseHook func(ctx context.Context, call *Call, resp *Response, err error) (*Response, error)

// LifecycleHook runs when a call pass starts and returns a settle function that
// the pipeline invokes exactly once when the pass finishes, success or failure.
type LifecycleHook func(call *Call) func()

// Response is a fully-read backend response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// JSON decodes the response body into v.
func (r *Response) JSON(v any) error {
	if len(r.Body) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

type entry[T any] struct {
	id Handle
	fn T
}

// Client defines a public type used by authkit APIs.
//
// Client is the process-wide shared transport. Interceptor slots are guarded by
// an internal lock; registration and ejection are safe concurrently with calls
// in flight. The default header set is what the renewal interceptor updates so
// future calls carry the fresh credential without consulting the store.
type Client struct {
	base *url.URL
	http *http.Client

	mu            sync.RWMutex
	defaultHeader http.Header
	reqHooks      []entry[RequestHook]
	respHooks     []entry[ResponseHook]
	lifeHooks     []entry[LifecycleHook]
}

const defaultTimeout = 30 * time.Second

// NewClient creates a transport rooted at baseURL. A nil httpClient gets a
// client with a 30s timeout.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrNoBaseURL
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		base:          base,
		http:          httpClient,
		defaultHeader: http.Header{},
	}, nil
}

// UseRequest registers a request hook and returns its handle.
func (c *Client) UseRequest(h RequestHook) Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := Handle(uuid.NewString())
	c.reqHooks = append(c.reqHooks, entry[RequestHook]{id: id, fn: h})
	return id
}

// UseResponse registers a response hook and returns its handle.
func (c *Client) UseResponse(h ResponseHook) Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := Handle(uuid.NewString())
	c.respHooks = append(c.respHooks, entry[ResponseHook]{id: id, fn: h})
	return id
}

// UseLifecycle registers a lifecycle hook and returns its handle.
func (c *Client) UseLifecycle(h LifecycleHook) Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := Handle(uuid.NewString())
	c.lifeHooks = append(c.lifeHooks, entry[LifecycleHook]{id: id, fn: h})
	return id
}

// Eject removes a registration. Ejecting an unknown handle is a no-op.
func (c *Client) Eject(h Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reqHooks = ejectFrom(c.reqHooks, h)
	c.respHooks = ejectFrom(c.respHooks, h)
	c.lifeHooks = ejectFrom(c.lifeHooks, h)
}

func ejectFrom[T any](hooks []entry[T], h Handle) []entry[T] {
	for i, e := range hooks {
		if e.id == h {
			return append(hooks[:i:i], hooks[i+1:]...)
		}
	}
	return hooks
}

// HookCount returns the number of registered hooks across all slots.
func (c *Client) HookCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.reqHooks) + len(c.respHooks) + len(c.lifeHooks)
}

// SetDefaultHeader sets a header applied to every future call. An empty value
// removes the header.
func (c *Client) SetDefaultHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if value == "" {
		c.defaultHeader.Del(key)
		return
	}
	c.defaultHeader.Set(key, value)
}

// DefaultHeader returns the current default value for key.
func (c *Client) DefaultHeader(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.defaultHeader.Get(key)
}

// Do runs call through the pipeline: lifecycle hooks, request hooks, send,
// response hooks, and finally non-2xx mapping to [StatusError]. A replayed call
// re-enters Do, so each pass is individually balanced for the loader.
func (c *Client) Do(ctx context.Context, call *Call) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if skipLoaderFromContext(ctx) {
		call.SkipLoader = true
	}

	c.mu.RLock()
	reqHooks := append([]entry[RequestHook](nil), c.reqHooks...)
	respHooks := append([]entry[ResponseHook](nil), c.respHooks...)
	lifeHooks := append([]entry[LifecycleHook](nil), c.lifeHooks...)
	defHeader := c.defaultHeader.Clone()
	c.mu.RUnlock()

	settles := make([]func(), 0, len(lifeHooks))
	for _, h := range lifeHooks {
		if settle := h.fn(call); settle != nil {
			settles = append(settles, settle)
		}
	}
	defer func() {
		for _, settle := range settles {
			settle()
		}
	}()

	var resp *Response
	var err error
	for _, h := range reqHooks {
		if err = h.fn(ctx, call); err != nil {
			break
		}
	}

	if err == nil {
		resp, err = c.send(ctx, call, defHeader)
	}

	for _, h := range respHooks {
		resp, err = h.fn(ctx, call, resp, err)
	}

	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, statusErrorFrom(resp)
	}
	return resp, nil
}

func (c *Client) send(ctx context.Context, call *Call, defHeader http.Header) (*Response, error) {
	target := c.base.JoinPath(call.Path)
	if len(call.Query) > 0 {
		target.RawQuery = call.Query.Encode()
	}

	var body io.Reader
	if call.Body != nil {
		body = bytes.NewReader(call.Body)
	}
	req, err := http.NewRequestWithContext(ctx, call.Method, target.String(), body)
	if err != nil {
		return nil, err
	}

	for key, values := range defHeader {
		req.Header[key] = append([]string(nil), values...)
	}
	for key, values := range call.Header {
		req.Header[key] = append([]string(nil), values...)
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}
	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}, nil
}
