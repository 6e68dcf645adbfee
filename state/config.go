package state

import (
	"time"
)

var ClientConfigPath = "/etc/p4p/client.yaml"

// ClientCfg is the local client configuration.
type ClientCfg struct {
	Portal        *InetService  `yaml:"portal,omitempty"`         // portal serving pid, pdistance and pid/map
	Discovery     *InetService  `yaml:"discovery,omitempty"`      // if set, the portal is located through this service first
	Scheme        string        `yaml:"scheme,omitempty"`         // http or https
	View          string        `yaml:"view,omitempty"`           // portal view, DEFAULT is never sent
	Timeout       time.Duration `yaml:"timeout,omitempty"`        // deadline for a single exchange
	UserAgent     string        `yaml:"user_agent,omitempty"`     // sent with every request
	DnsResolvers  []string      `yaml:"dns_resolvers,omitempty"`  // resolvers used for hostnames, system default if empty
	LogPath       string        `yaml:"log_path,omitempty"`       // if not empty, logs are also written to this file
	MetricsListen string        `yaml:"metrics_listen,omitempty"` // debug listener for /debug/metrics, disabled if empty
}

func DefaultClientCfg() ClientCfg {
	return ClientCfg{
		Portal:    &InetService{Host: "localhost", Port: DefaultPort},
		Scheme:    DefaultScheme,
		View:      DefaultView,
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// ExpandClientConfig fills unset optional fields with their defaults.
func ExpandClientConfig(cfg *ClientCfg) {
	if cfg.Scheme == "" {
		cfg.Scheme = DefaultScheme
	}
	if cfg.View == "" {
		cfg.View = DefaultView
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
}
