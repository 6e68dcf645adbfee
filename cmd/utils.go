package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/encodeous/p4p/core"
	"github.com/encodeous/p4p/state"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

// loadConfig reads the config file and applies flag overrides. A missing file
// is fine as long as a portal or discovery service is given on the command line.
func loadConfig(cmd *cobra.Command) (*state.ClientCfg, error) {
	cfg, err := core.ReadClientConfig(state.ClientConfigPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || (portalFlag == "" && discoveryFlag == "") {
			return nil, err
		}
		def := state.DefaultClientCfg()
		def.Portal = nil
		cfg = &def
	}
	if portalFlag != "" {
		svc, err := state.ParseInetService(portalFlag)
		if err != nil {
			return nil, err
		}
		cfg.Portal = &svc
		cfg.Discovery = nil
	}
	if discoveryFlag != "" {
		svc, err := state.ParseInetService(discoveryFlag)
		if err != nil {
			return nil, err
		}
		cfg.Discovery = &svc
	}
	if viewFlag != "" {
		cfg.View = viewFlag
	}
	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		cfg.Timeout = timeout
	}
	return cfg, nil
}

func newLogger(cfg *state.ClientCfg) (*slog.Logger, error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return core.NewLogger(level, cfg.LogPath)
}

// setupClient builds a portal client from the config and flags.
func setupClient(cmd *cobra.Command) (*core.Client, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.MetricsListen != "" {
		core.ServeMetrics(cfg.MetricsListen, log)
	}
	return core.NewClientFromConfig(commandContext(cmd), cfg, log)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printYaml(v any) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}

// exitOnError prints err for the user and exits, keeping cobra's usage text out of it.
func exitOnError(err error) {
	if err == nil {
		return
	}
	_, _ = fmt.Fprintln(os.Stderr, "Error:", err.Error())
	if code := state.StatusCode(err); code != 0 {
		os.Exit(3)
	}
	if state.IsProtocolError(err) {
		os.Exit(4)
	}
	os.Exit(1)
}
