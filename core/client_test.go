package core_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/netip"
	"net/url"
	"testing"
	"time"

	"github.com/encodeous/p4p/core"
	"github.com/encodeous/p4p/mock"
	"github.com/encodeous/p4p/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pidA = state.MustParsePID("1.i.isp")
	pidB = state.MustParsePID("2.e.isp")
	pidC = state.MustParsePID("3.i.other")
)

func newTestClient(ch core.Channel, view string) *core.Client {
	return core.NewClient(ch, view, time.Second, slog.New(slog.DiscardHandler))
}

func TestClient_LookupPIDs(t *testing.T) {
	ch := mock.NewChannel().Respond(state.EndpointPID, http.StatusOK, mock.Lines(
		"10.0.0.0/8\t1.i.isp",
		"2001:db8::1/128\t2.e.isp",
	))
	c := newTestClient(ch, state.DefaultView)

	got, err := c.LookupPIDs(context.Background(), []netip.Addr{
		netip.MustParseAddr("2001:db8::1"),
		netip.MustParseAddr("10.0.0.0"),
	})
	require.NoError(t, err)
	assert.Equal(t, map[netip.Addr]state.PID{
		netip.MustParseAddr("10.0.0.0"):    pidA,
		netip.MustParseAddr("2001:db8::1"): pidB,
	}, got)

	reqs := ch.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "2001:db8::1\n10.0.0.0\n", reqs[0].Body)
	assert.Nil(t, reqs[0].Query)
	assert.Equal(t, 0, ch.Pending())
}

func TestClient_View(t *testing.T) {
	ch := mock.NewChannel().Respond(state.EndpointPIDMap, http.StatusOK, "")
	c := newTestClient(ch, "campus")
	_, err := c.LookupPIDPrefixMap(context.Background())
	require.NoError(t, err)

	c.View = ""
	_, err = c.LookupPIDPrefixMap(context.Background())
	require.NoError(t, err)

	reqs := ch.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, url.Values{"view": {"campus"}}, reqs[0].Query)
	assert.Nil(t, reqs[1].Query)
}

func TestClient_LookupDistances(t *testing.T) {
	ch := mock.NewChannel().Respond(state.EndpointPDistance, http.StatusOK, mock.Lines(
		"1.i.isp\tinc-reverse\t1\t2.e.isp\t2.0\t3.0",
		"1.i.isp\tno-reverse\t1\t3.i.other\t10",
	))
	c := newTestClient(ch, state.DefaultView)

	m, err := c.LookupDistances(context.Background(), []state.PIDDestVector{
		state.NewPIDDestVector(pidA, true, pidB),
		state.NewPIDDestVector(pidA, false, pidC),
	})
	require.NoError(t, err)
	assert.Equal(t, 2.0, m.GetOr(pidA, pidB, -1))
	assert.Equal(t, 3.0, m.GetOr(pidB, pidA, -1))
	assert.Equal(t, 10.0, m.GetOr(pidA, pidC, -1))
	_, ok := m.Get(pidC, pidA)
	assert.False(t, ok)

	reqs := ch.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "1.i.isp\tinc-reverse\t1\t2.e.isp\n1.i.isp\tno-reverse\t1\t3.i.other\n", reqs[0].Body)
	assert.Equal(t, 0, ch.Pending())
}

func TestClient_LookupDistances_Empty(t *testing.T) {
	ch := mock.NewChannel().Respond(state.EndpointPDistance, http.StatusOK, "")
	c := newTestClient(ch, state.DefaultView)

	m, err := c.LookupDistances(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, "", ch.Requests()[0].Body)
}

func TestClient_LookupPIDPrefixMap(t *testing.T) {
	ch := mock.NewChannel().Respond(state.EndpointPIDMap, http.StatusOK, mock.Lines(
		"1.i.isp\t2\t10.0.0.0/8\t11.0.0.0/8",
		"2.e.isp\t1\t2001:db8::/32",
	))
	c := newTestClient(ch, state.DefaultView)

	got, err := c.LookupPIDPrefixMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[state.PID][]state.InetPrefix{
		pidA: {state.MustParseInetPrefix("10.0.0.0/8"), state.MustParseInetPrefix("11.0.0.0/8")},
		pidB: {state.MustParseInetPrefix("2001:db8::/32")},
	}, got)

	reqs := ch.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodGet, reqs[0].Method)
	assert.Equal(t, "", reqs[0].Body)
}

func TestClient_Discover(t *testing.T) {
	ch := mock.NewChannel().
		Respond(state.EndpointPortal, http.StatusOK, "portal.isp.net:6671\n").
		Respond(state.EndpointPortal+"/10.1.2.3", http.StatusOK, "[2001:db8::5]:8080\n")
	c := newTestClient(ch, state.DefaultView)

	svc, err := c.Discover(context.Background(), netip.Addr{})
	require.NoError(t, err)
	assert.Equal(t, state.InetService{Host: "portal.isp.net", Port: 6671}, svc)

	svc, err = c.Discover(context.Background(), netip.MustParseAddr("10.1.2.3"))
	require.NoError(t, err)
	assert.Equal(t, state.InetService{Host: "2001:db8::5", Port: 8080}, svc)
	assert.Equal(t, 0, ch.Pending())
}

// A bad status is reported before the body is looked at.
func TestClient_BadStatus(t *testing.T) {
	ch := mock.NewChannel().Respond(state.EndpointPDistance, http.StatusServiceUnavailable, "not\ta\tvalid\tbody")
	c := newTestClient(ch, state.DefaultView)

	m, err := c.LookupDistances(context.Background(), nil)
	assert.Nil(t, m)
	assert.Equal(t, http.StatusServiceUnavailable, state.StatusCode(err))
	assert.False(t, state.IsProtocolError(err))
	assert.False(t, state.IsTransportError(err))
	assert.Equal(t, 0, ch.Pending())
}

func TestClient_UnknownEndpoint(t *testing.T) {
	c := newTestClient(mock.NewChannel(), state.DefaultView)
	_, err := c.LookupPIDPrefixMap(context.Background())
	assert.Equal(t, http.StatusNotFound, state.StatusCode(err))
}

func TestClient_ProtocolError(t *testing.T) {
	ch := mock.NewChannel().Respond(state.EndpointPDistance, http.StatusOK, mock.Lines(
		"1.i.isp\tmaybe\t1\t2.e.isp\t2.0",
	))
	c := newTestClient(ch, state.DefaultView)

	m, err := c.LookupDistances(context.Background(), nil)
	assert.Nil(t, m)
	assert.ErrorIs(t, err, state.ErrInvalidResponse)
	assert.False(t, state.IsTransportError(err))
	assert.Equal(t, 0, ch.Pending())
}

// A stream that breaks partway through yields no partial result.
func TestClient_ReadError(t *testing.T) {
	boom := errors.New("connection reset")
	ch := mock.NewChannel().RespondWith(state.EndpointPID, mock.Response{
		Status:  http.StatusOK,
		Body:    "10.0.0.0/8\t1.i.isp\n",
		ReadErr: boom,
	})
	c := newTestClient(ch, state.DefaultView)

	got, err := c.LookupPIDs(context.Background(), []netip.Addr{netip.MustParseAddr("10.0.0.1")})
	assert.Nil(t, got)
	var te *state.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "read", te.Op)
	assert.Equal(t, state.EndpointPID, te.Endpoint)
	assert.ErrorIs(t, err, boom)
	assert.False(t, state.IsProtocolError(err))
	assert.Equal(t, 0, ch.Pending())
}

func TestClient_WriteError(t *testing.T) {
	boom := errors.New("broken pipe")
	ch := mock.NewChannel().Respond(state.EndpointPID, http.StatusOK, "")
	ch.WriteErr = boom
	c := newTestClient(ch, state.DefaultView)

	_, err := c.LookupPIDs(context.Background(), []netip.Addr{netip.MustParseAddr("10.0.0.1")})
	var te *state.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "write", te.Op)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, ch.Requests())
	assert.Equal(t, 0, ch.Pending())
}

func TestClient_OpenError(t *testing.T) {
	boom := errors.New("no route to host")
	ch := mock.NewChannel()
	ch.OpenErr = boom
	c := newTestClient(ch, state.DefaultView)

	_, err := c.LookupPIDPrefixMap(context.Background())
	var te *state.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "open", te.Op)
	assert.ErrorIs(t, err, boom)
}

func TestClient_Canceled(t *testing.T) {
	ch := mock.NewChannel().Respond(state.EndpointPIDMap, http.StatusOK, "")
	c := newTestClient(ch, state.DefaultView)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.LookupPIDPrefixMap(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, state.IsTransportError(err))
	assert.Equal(t, 0, ch.Pending())
}

func TestClient_NilLogger(t *testing.T) {
	ch := mock.NewChannel().Respond(state.EndpointPIDMap, http.StatusOK, "")
	c := core.NewClient(ch, state.DefaultView, 0, nil)
	_, err := c.LookupPIDPrefixMap(context.Background())
	assert.NoError(t, err)
}
