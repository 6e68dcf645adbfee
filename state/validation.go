package state

import (
	"fmt"
	"net/netip"
	"regexp"
)

var namePattern, _ = regexp.Compile("^[0-9A-Za-z._-]+$")

func NameValidator(s string) error {
	if !namePattern.MatchString(s) {
		return fmt.Errorf("%s is not a valid name, must match pattern %s", s, namePattern.String())
	}
	if len(s) > 100 {
		return fmt.Errorf("len(\"%s\") = %d > 100 is too long", s, len(s))
	}
	return nil
}

func BindValidator(s string) error {
	_, err := netip.ParseAddrPort(s)
	return err
}

func ClientConfigValidator(cfg *ClientCfg) error {
	if cfg.Portal == nil && cfg.Discovery == nil {
		return fmt.Errorf("either portal or discovery must be configured")
	}
	if cfg.Portal != nil && !cfg.Portal.IsValid() {
		return fmt.Errorf("portal %q is invalid", cfg.Portal.String())
	}
	if cfg.Discovery != nil && !cfg.Discovery.IsValid() {
		return fmt.Errorf("discovery %q is invalid", cfg.Discovery.String())
	}
	if cfg.Scheme != "http" && cfg.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", cfg.Scheme)
	}
	if err := NameValidator(cfg.View); err != nil {
		return fmt.Errorf("view: %w", err)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", cfg.Timeout)
	}
	for _, r := range cfg.DnsResolvers {
		if err := BindValidator(r); err != nil {
			return fmt.Errorf("dns resolver %s: %w", r, err)
		}
	}
	if cfg.MetricsListen != "" {
		if err := BindValidator(cfg.MetricsListen); err != nil {
			return fmt.Errorf("metrics_listen: %w", err)
		}
	}
	return nil
}
