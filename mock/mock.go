package mock

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/encodeous/p4p/core"
)

// Response is a canned portal answer.
type Response struct {
	Status int
	Body   string
	// ReadErr, if set, is returned once Body has been read.
	ReadErr error
}

// Request is what a call sent to the channel.
type Request struct {
	Method   string
	Endpoint string
	Query    url.Values
	Body     string
}

// Channel is an in-memory core.Channel. It answers each endpoint with its
// canned response and records every request.
type Channel struct {
	mu        sync.Mutex
	responses map[string]Response
	requests  []Request
	open      int
	OpenErr   error
	WriteErr  error
}

var _ core.Channel = (*Channel)(nil)

func NewChannel() *Channel {
	return &Channel{responses: make(map[string]Response)}
}

// Respond sets the answer for endpoint.
func (c *Channel) Respond(endpoint string, status int, body string) *Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses[endpoint] = Response{Status: status, Body: body}
	return c
}

func (c *Channel) RespondWith(endpoint string, resp Response) *Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses[endpoint] = resp
	return c
}

// Requests returns the requests completed so far.
func (c *Channel) Requests() []Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Request(nil), c.requests...)
}

// Pending returns the number of calls not yet closed.
func (c *Channel) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *Channel) Open(ctx context.Context, method, endpoint string, query url.Values) (core.Call, error) {
	if c.OpenErr != nil {
		return nil, c.OpenErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	resp, ok := c.responses[endpoint]
	if !ok {
		resp = Response{Status: 404}
	}
	c.open++
	return &call{
		ch:   c,
		req:  Request{Method: method, Endpoint: endpoint, Query: query},
		resp: resp,
	}, nil
}

type call struct {
	ch     *Channel
	req    Request
	resp   Response
	body   bytes.Buffer
	done   bool
	closed bool
}

type failWriter struct{ err error }

func (w failWriter) Write([]byte) (int, error) {
	return 0, w.err
}

func (c *call) Body() io.Writer {
	if c.ch.WriteErr != nil {
		return failWriter{c.ch.WriteErr}
	}
	return &c.body
}

func (c *call) Response() (int, io.Reader, error) {
	if c.done {
		return 0, nil, errors.New("response already taken")
	}
	c.done = true
	c.req.Body = c.body.String()
	c.ch.mu.Lock()
	c.ch.requests = append(c.ch.requests, c.req)
	c.ch.mu.Unlock()

	var r io.Reader = strings.NewReader(c.resp.Body)
	if c.resp.ReadErr != nil {
		r = io.MultiReader(r, errReader{c.resp.ReadErr})
	}
	return c.resp.Status, r, nil
}

func (c *call) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.ch.mu.Lock()
	defer c.ch.mu.Unlock()
	c.ch.open--
	return nil
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) {
	return 0, r.err
}

// Lines joins records with newlines, fields are expected to be tab separated already.
func Lines(records ...string) string {
	if len(records) == 0 {
		return ""
	}
	return fmt.Sprintf("%s\n", strings.Join(records, "\n"))
}
