package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"net/url"
	"time"

	"github.com/encodeous/p4p/perf"
	"github.com/encodeous/p4p/protocol"
	"github.com/encodeous/p4p/state"
	"github.com/google/uuid"
)

// Client runs exchanges against a portal. Each exchange is one blocking round
// trip that returns a complete result or an error, never a partial result.
// A Client holds no per-exchange state and may be shared.
type Client struct {
	Channel Channel
	View    string        // sent as ?view= unless empty or DEFAULT
	Timeout time.Duration // per exchange deadline, none if zero
	Log     *slog.Logger
}

func NewClient(ch Channel, view string, timeout time.Duration, log *slog.Logger) *Client {
	return &Client{
		Channel: ch,
		View:    view,
		Timeout: timeout,
		Log:     log,
	}
}

func (c *Client) logger() *slog.Logger {
	if c.Log == nil {
		return slog.Default()
	}
	return c.Log
}

func (c *Client) query() url.Values {
	if c.View == "" || c.View == state.DefaultView {
		return nil
	}
	return url.Values{"view": {c.View}}
}

// LookupPIDs maps addresses to their PIDs. The portal may answer in any order;
// the result has one entry per distinct address it returned. An empty address
// list asks the portal for the requester's own address.
func (c *Client) LookupPIDs(ctx context.Context, addrs []netip.Addr) (map[netip.Addr]state.PID, error) {
	return roundTrip(ctx, c, http.MethodPost, state.EndpointPID,
		func(w *protocol.Writer) {
			protocol.EncodeAddresses(w, addrs)
		},
		func(r *protocol.Reader) (map[netip.Addr]state.PID, int, error) {
			res, err := protocol.DecodeAddressPIDs(r)
			return res, len(res), err
		})
}

// LookupDistances fetches pdistances for each vector. A nil or empty list
// sends an empty body.
func (c *Client) LookupDistances(ctx context.Context, vectors []state.PIDDestVector) (*state.PIDMatrix, error) {
	return roundTrip(ctx, c, http.MethodPost, state.EndpointPDistance,
		func(w *protocol.Writer) {
			protocol.EncodeDestVectors(w, vectors)
		},
		func(r *protocol.Reader) (*state.PIDMatrix, int, error) {
			res, err := protocol.DecodePDistances(r)
			if err != nil {
				return nil, 0, err
			}
			return res, res.Len(), nil
		})
}

// LookupPIDPrefixMap fetches the prefixes owned by every PID.
func (c *Client) LookupPIDPrefixMap(ctx context.Context) (map[state.PID][]state.InetPrefix, error) {
	return roundTrip(ctx, c, http.MethodGet, state.EndpointPIDMap, nil,
		func(r *protocol.Reader) (map[state.PID][]state.InetPrefix, int, error) {
			res, err := protocol.DecodePIDMap(r)
			return res, len(res), err
		})
}

// Discover asks a portal directory which portal serves addr. An invalid addr
// asks for the portal serving the requester.
func (c *Client) Discover(ctx context.Context, addr netip.Addr) (state.InetService, error) {
	endpoint := state.EndpointPortal
	if addr.IsValid() {
		endpoint += "/" + addr.String()
	}
	return roundTrip(ctx, c, http.MethodGet, endpoint, nil,
		func(r *protocol.Reader) (state.InetService, int, error) {
			svc, err := protocol.DecodeInetService(r)
			return svc, 1, err
		})
}

func roundTrip[T any](
	ctx context.Context,
	c *Client,
	method, endpoint string,
	encode func(w *protocol.Writer),
	decode func(r *protocol.Reader) (T, int, error),
) (result T, err error) {
	var zero T
	id := uuid.NewString()
	log := c.logger().With("exchange", id, "endpoint", endpoint)
	start := time.Now()
	var sent, recv int64
	records := 0

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	log.Debug("exchange started", "method", method)
	defer func() {
		elapsed := time.Since(start)
		perf.ExchangesPerSecond.Add(1)
		perf.ExchangeLatency.Add(float64(elapsed.Microseconds()))
		perf.SentBytesPerSecond.Add(float64(sent))
		perf.RecvBytesPerSecond.Add(float64(recv))
		if err != nil {
			perf.FailedPerSecond.Add(1)
			log.Debug("exchange failed", "elapsed", elapsed, "error", err)
			return
		}
		perf.RecordsPerSecond.Add(float64(records))
		log.Debug("exchange complete", "elapsed", elapsed, "records", records, "sent", sent, "recv", recv)
	}()

	call, err := c.Channel.Open(ctx, method, endpoint, c.query())
	if err != nil {
		return zero, transportError("open", endpoint, err)
	}
	defer func() {
		cerr := call.Close()
		if cerr != nil && err == nil {
			result = zero
			err = transportError("close", endpoint, cerr)
		}
	}()

	if encode != nil {
		w := protocol.NewWriter(call.Body())
		encode(w)
		if err := w.Flush(); err != nil {
			return zero, transportError("write", endpoint, err)
		}
		sent = w.BytesWritten()
	}

	status, body, err := call.Response()
	if err != nil {
		return zero, transportError("read", endpoint, err)
	}
	if status < 200 || status > 299 {
		return zero, &state.BadStatusError{Endpoint: endpoint, Code: status}
	}

	r := protocol.NewReader(body)
	res, n, err := decode(r)
	recv = r.BytesRead()
	if err != nil {
		if state.IsProtocolError(err) {
			return zero, fmt.Errorf("%s: %w", endpoint, err)
		}
		return zero, transportError("read", endpoint, err)
	}
	records = n
	return res, nil
}

// transportError tags err with the exchange's endpoint, keeping an existing TransportError's op.
func transportError(op, endpoint string, err error) error {
	var te *state.TransportError
	if errors.As(err, &te) {
		if te.Endpoint == "" {
			te.Endpoint = endpoint
		}
		return te
	}
	return &state.TransportError{Op: op, Endpoint: endpoint, Err: err}
}
