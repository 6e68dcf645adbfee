package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"os"
	"path"

	"github.com/encodeous/p4p/state"
	"github.com/encodeous/tint"
	"github.com/goccy/go-yaml"
	slogmulti "github.com/samber/slog-multi"
)

func ReadClientConfig(cfgPath string) (*state.ClientCfg, error) {
	var cfg state.ClientCfg
	file, err := os.ReadFile(cfgPath)
	if err != nil {
		return nil, err
	}
	err = yaml.Unmarshal(file, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", cfgPath, err)
	}
	state.ExpandClientConfig(&cfg)
	return &cfg, nil
}

func WriteClientConfig(cfgPath string, cfg *state.ClientCfg) error {
	bytes, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	err = os.MkdirAll(path.Dir(cfgPath), 0700)
	if err != nil {
		return err
	}
	return os.WriteFile(cfgPath, bytes, 0600)
}

// NewLogger writes colourised logs to stderr, and plain text logs to logPath if set.
func NewLogger(level slog.Level, logPath string) (*slog.Logger, error) {
	handlers := make([]slog.Handler, 0)
	handlers = append(handlers,
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:        level,
			AddSource:    false,
			CustomPrefix: "p4p",
			ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
				if attr.Key == "time" {
					return slog.Attr{}
				}
				return attr
			},
		}))

	if logPath != "" {
		err := os.MkdirAll(path.Dir(logPath), 0700)
		if err != nil {
			return nil, err
		}
		f, err := os.OpenFile(logPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0600)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	}

	return slog.New(slogmulti.Fanout(handlers...)), nil
}

// ServeMetrics exposes /debug/metrics on addr until the listener fails.
func ServeMetrics(addr string, log *slog.Logger) {
	go func() {
		err := http.ListenAndServe(addr, nil)
		if err != nil {
			log.Error("metrics listener stopped", "addr", addr, "error", err)
		}
	}()
}

// NewClientFromConfig builds a client for the configured portal. If discovery
// is configured, the portal it names takes precedence over cfg.Portal.
func NewClientFromConfig(ctx context.Context, cfg *state.ClientCfg, log *slog.Logger) (*Client, error) {
	err := state.ClientConfigValidator(cfg)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	state.SetResolvers(cfg.DnsResolvers)
	httpClient := &http.Client{Timeout: cfg.Timeout}

	portal := cfg.Portal
	if cfg.Discovery != nil {
		dch := NewHTTPChannel(cfg.Scheme, *cfg.Discovery, httpClient)
		dch.UserAgent = cfg.UserAgent
		dc := NewClient(dch, state.DefaultView, cfg.Timeout, log)
		svc, err := dc.Discover(ctx, netip.Addr{})
		if err != nil {
			return nil, fmt.Errorf("failed to discover portal via %s: %w", cfg.Discovery, err)
		}
		log.Info("discovered portal", "portal", svc.String(), "discovery", cfg.Discovery.String())
		portal = &svc
	}

	ch := NewHTTPChannel(cfg.Scheme, *portal, httpClient)
	ch.UserAgent = cfg.UserAgent
	return NewClient(ch, cfg.View, cfg.Timeout, log), nil
}
