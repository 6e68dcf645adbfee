package core

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/encodeous/p4p/state"
)

var (
	errCallClosed = errors.New("call closed")
	errNoBody     = errors.New("request has no body")
)

// HTTPChannel sends exchanges to a portal over HTTP. Request bodies are
// streamed to the server while they are written.
type HTTPChannel struct {
	BaseURL   *url.URL
	Client    *http.Client
	Headers   http.Header
	UserAgent string
}

func NewHTTPChannel(scheme string, portal state.InetService, client *http.Client) *HTTPChannel {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPChannel{
		BaseURL: &url.URL{
			Scheme: scheme,
			Host:   portal.Addr(),
			Path:   "/",
		},
		Client:    client,
		Headers:   make(http.Header),
		UserAgent: state.DefaultUserAgent,
	}
}

func (c *HTTPChannel) URL(endpoint string, query url.Values) *url.URL {
	u := c.BaseURL.JoinPath(endpoint)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u
}

func (c *HTTPChannel) Open(ctx context.Context, method, endpoint string, query url.Values) (Call, error) {
	ctx, cancel := context.WithCancel(ctx)
	call := &httpCall{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	var body io.Reader
	if method != http.MethodGet && method != http.MethodHead {
		pr, pw := io.Pipe()
		call.pw = pw
		body = pr
	}
	req, err := http.NewRequestWithContext(ctx, method, c.URL(endpoint, query).String(), body)
	if err != nil {
		cancel()
		return nil, err
	}
	for k, v := range c.Headers {
		req.Header[k] = v
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "text/plain")
	}

	go func() {
		defer close(call.done)
		call.resp, call.err = c.Client.Do(req)
	}()
	return call, nil
}

type httpCall struct {
	cancel context.CancelFunc
	pw     *io.PipeWriter
	done   chan struct{}
	resp   *http.Response
	err    error

	closeOnce sync.Once
	closeErr  error
}

type failWriter struct{ err error }

func (w failWriter) Write([]byte) (int, error) {
	return 0, w.err
}

func (c *httpCall) Body() io.Writer {
	if c.pw == nil {
		return failWriter{errNoBody}
	}
	return bodyWriter{c}
}

// bodyWriter reports why the request failed when the transport gives up on
// the body, rather than the closed pipe.
type bodyWriter struct{ c *httpCall }

func (w bodyWriter) Write(p []byte) (int, error) {
	n, err := w.c.pw.Write(p)
	if err != nil && !errors.Is(err, errCallClosed) {
		<-w.c.done
		if w.c.err != nil {
			return n, w.c.err
		}
	}
	return n, err
}

func (c *httpCall) Response() (int, io.Reader, error) {
	if c.pw != nil {
		// signals the end of the request body
		_ = c.pw.Close()
	}
	<-c.done
	if c.err != nil {
		return 0, nil, c.err
	}
	return c.resp.StatusCode, c.resp.Body, nil
}

func (c *httpCall) Close() error {
	c.closeOnce.Do(func() {
		if c.pw != nil {
			_ = c.pw.CloseWithError(errCallClosed)
		}
		select {
		case <-c.done:
		default:
			// request still in flight, abort it
			c.cancel()
			<-c.done
		}
		if c.resp != nil {
			c.closeErr = c.resp.Body.Close()
		}
		c.cancel()
	})
	return c.closeErr
}
