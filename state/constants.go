package state

import "time"

const (
	ScopeInternal = "i"
	ScopeExternal = "e"

	// reverse flag tokens of the pdistance exchange
	IncReverse = "inc-reverse"
	NoReverse  = "no-reverse"

	DefaultView = "DEFAULT"
)

// portal endpoints
const (
	EndpointPID       = "pid"
	EndpointPDistance = "pdistance"
	EndpointPIDMap    = "pid/map"
	EndpointPortal    = "portal"
)

var (
	DefaultPort          = uint16(6671)
	DefaultTimeout       = 30 * time.Second
	ResolverDialTimeout  = 10 * time.Second
	DefaultUserAgent     = "p4p-client"
	DefaultScheme        = "http"
	DefaultMetricsListen = "127.0.0.1:6060"
)
