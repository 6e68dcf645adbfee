package perf

import (
	"expvar"
	"net/http"

	"github.com/encodeous/metric"
)

var (
	ExchangeLatency    = metric.NewHistogram("1m1s")
	ExchangesPerSecond = metric.NewCounter("10s1s")
	FailedPerSecond    = metric.NewCounter("10s1s")
	SentBytesPerSecond = metric.NewCounter("10s1s")
	RecvBytesPerSecond = metric.NewCounter("10s1s")
	RecordsPerSecond   = metric.NewCounter("10s1s")
)

func init() {
	http.Handle("/debug/metrics", metric.Handler(metric.Exposed))
	expvar.Publish("p4p:ExchangeLatency (µs)", ExchangeLatency)
	expvar.Publish("p4p:Exchanges/s", ExchangesPerSecond)
	expvar.Publish("p4p:Failed/s", FailedPerSecond)
	expvar.Publish("p4p:SentBytes/s", SentBytesPerSecond)
	expvar.Publish("p4p:RecvBytes/s", RecvBytesPerSecond)
	expvar.Publish("p4p:Records/s", RecordsPerSecond)
}
