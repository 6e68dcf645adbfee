//go:build integration

package integration

import (
	"fmt"
	"log/slog"
	"maps"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/encodeous/p4p/core"
	"github.com/encodeous/p4p/protocol"
	"github.com/encodeous/p4p/state"
)

// VirtualPortal is an in-process portal serving a fixed PID map and distance matrix.
type VirtualPortal struct {
	PIDMap    map[state.PID][]state.InetPrefix
	Distances *state.PIDMatrix
	// Views holds alternative PID maps selected with ?view=.
	Views map[string]map[state.PID][]state.InetPrefix

	Latency time.Duration
	Jitter  time.Duration

	mu       sync.Mutex
	requests map[string]int
	srv      *httptest.Server
	hc       *http.Client
}

func (v *VirtualPortal) Start() state.InetService {
	v.requests = make(map[string]int)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /pid", v.handle(v.servePID))
	mux.HandleFunc("POST /pdistance", v.handle(v.servePDistance))
	mux.HandleFunc("GET /pid/map", v.handle(v.servePIDMap))
	v.srv = httptest.NewServer(mux)
	v.hc = &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	svc, err := state.ParseInetService(v.srv.Listener.Addr().String())
	if err != nil {
		panic(err)
	}
	return svc
}

func (v *VirtualPortal) Stop() {
	v.hc.CloseIdleConnections()
	v.srv.Close()
}

// Client returns a client for the portal with the given view.
func (v *VirtualPortal) Client(view string, timeout time.Duration) *core.Client {
	svc, err := state.ParseInetService(v.srv.Listener.Addr().String())
	if err != nil {
		panic(err)
	}
	return core.NewClient(core.NewHTTPChannel("http", svc, v.hc), view, timeout, slog.Default())
}

func (v *VirtualPortal) Requests(endpoint string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.requests[endpoint]
}

func (v *VirtualPortal) handle(serve func(*protocol.Writer, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v.mu.Lock()
		v.requests[strings.TrimPrefix(r.URL.Path, "/")]++
		v.mu.Unlock()

		if v.Latency != 0 {
			delay := v.Latency + time.Duration(rand.Float64()*float64(v.Jitter.Nanoseconds()))
			select {
			case <-r.Context().Done():
				return
			case <-time.After(delay):
			}
		}

		pw := protocol.NewWriter(w)
		if err := serve(pw, r); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_ = pw.Flush()
	}
}

func (v *VirtualPortal) pidMap(r *http.Request) (map[state.PID][]state.InetPrefix, error) {
	view := r.URL.Query().Get("view")
	if view == "" {
		return v.PIDMap, nil
	}
	m, ok := v.Views[view]
	if !ok {
		return nil, fmt.Errorf("unknown view %s", view)
	}
	return m, nil
}

func (v *VirtualPortal) servePID(w *protocol.Writer, r *http.Request) error {
	pm, err := v.pidMap(r)
	if err != nil {
		return err
	}
	locator := state.NewPIDLocator(pm)
	rd := protocol.NewReader(r.Body)
	for {
		p, ok, err := rd.NextInetPrefix()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		pid, found := locator.Lookup(p.Addr())
		if !found {
			continue
		}
		w.WriteInetPrefix(state.HostPrefix(p.Addr()))
		w.Sep()
		w.WritePID(pid)
		w.EndRecord()
	}
}

func (v *VirtualPortal) servePDistance(w *protocol.Writer, r *http.Request) error {
	rd := protocol.NewReader(r.Body)
	for {
		src, ok, err := rd.NextPID()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		flag, err := rd.ReadToken()
		if err != nil {
			return err
		}
		reverse := flag == state.IncReverse
		n, err := rd.ReadCount()
		if err != nil {
			return err
		}
		w.WritePID(src)
		w.Sep()
		w.WriteToken(flag)
		w.Sep()
		w.WriteUint(uint64(n))
		for i := int64(0); i < n; i++ {
			dst, err := rd.ReadPID()
			if err != nil {
				return err
			}
			w.Sep()
			w.WritePID(dst)
			w.Sep()
			w.WriteToken(fmt.Sprint(v.Distances.GetOr(src, dst, 0)))
			if reverse {
				w.Sep()
				w.WriteToken(fmt.Sprint(v.Distances.GetOr(dst, src, 0)))
			}
		}
		w.EndRecord()
	}
}

func (v *VirtualPortal) servePIDMap(w *protocol.Writer, r *http.Request) error {
	pm, err := v.pidMap(r)
	if err != nil {
		return err
	}
	for _, pid := range slices.SortedFunc(maps.Keys(pm), state.ComparePID) {
		w.WritePID(pid)
		w.Sep()
		w.WriteUint(uint64(len(pm[pid])))
		for _, p := range pm[pid] {
			w.Sep()
			w.WriteInetPrefix(p)
		}
		w.EndRecord()
	}
	return nil
}

// RandomDistances fills a matrix with a distance for every ordered pair of pids.
func RandomDistances(pids []state.PID) *state.PIDMatrix {
	m := state.NewPIDMatrix()
	for _, a := range pids {
		for _, b := range pids {
			if a == b {
				m.Set(a, b, 0)
				continue
			}
			m.Set(a, b, float64(rand.IntN(1000)))
		}
	}
	return m
}

// HostIn returns an address inside p.
func HostIn(p state.InetPrefix) netip.Addr {
	return p.Prefix().Addr().Next()
}
