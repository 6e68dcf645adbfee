package core

import (
	"context"
	"io"
	"net/url"
)

// Channel carries exchanges to a portal. Connection handling, TLS and
// timeouts belong to the implementation.
type Channel interface {
	// Open starts a request to endpoint. The request is not complete until Call.Response is called.
	Open(ctx context.Context, method, endpoint string, query url.Values) (Call, error)
}

// Call is a single request/response round trip.
type Call interface {
	// Body accepts the request body. It must not be used after Response.
	Body() io.Writer
	// Response finishes the request body and waits for the response.
	// The returned reader is owned by the call and released by Close.
	Response() (status int, body io.Reader, err error)
	// Close releases everything held by the call. It may be called at any
	// point, and more than once.
	Close() error
}
