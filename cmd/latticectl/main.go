// Copyright 2024 The Lattice Authors
// This file is part of Lattice.
//
// Lattice is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Lattice is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Lattice. If not, see <http://www.gnu.org/licenses/>.

// Command latticectl is the operator CLI for a lattice store: pull, set,
// invalidate, and debug introspection against the engine built from
// schemas() (spec.md §6.1).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/latticedb/lattice/engine"
	"github.com/latticedb/lattice/internal/config"
	"github.com/latticedb/lattice/internal/lock"
	"github.com/latticedb/lattice/internal/logging"
	"github.com/latticedb/lattice/internal/telemetry"
	"github.com/latticedb/lattice/kv"
	"github.com/latticedb/lattice/kv/boltkv"
	"github.com/latticedb/lattice/kv/memkv"
	"github.com/latticedb/lattice/value"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "latticectl:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "latticectl",
		Usage: "operate a lattice incremental-computation store",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to lattice.toml"},
			&cli.StringFlag{Name: "store", Usage: "override the store path from config"},
			&cli.StringFlag{Name: "log-level", Usage: "override the log level from config"},
		},
		Commands: []*cli.Command{
			pullCommand,
			setCommand,
			invalidateCommand,
			debugCommand,
			serveMetricsCommand,
		},
	}
}

// env bundles everything a subcommand needs, built fresh per invocation so
// the store lock is held only for the command's duration.
type env struct {
	cfg     config.Config
	logger  *zap.Logger
	lk      *lock.DirLock
	store   kv.Store
	eng     *engine.Engine
	metrics *telemetry.Recorder
}

func openEnv(c *cli.Context) (*env, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(afero.NewOsFs(), path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if store := c.String("store"); store != "" {
		cfg.Store.Path = store
	}
	if level := c.String("log-level"); level != "" {
		cfg.Log.Level = level
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	var lk *lock.DirLock
	var store kv.Store
	switch cfg.Store.Backend {
	case "mem":
		store = memkv.New()
	case "bolt", "":
		lk, err = lock.Acquire(cfg.Store.Path)
		if err != nil {
			return nil, &engine.StoreInitializationError{Cause: err}
		}
		store, err = boltkv.Open(cfg.Store.Path, afero.NewOsFs(), logger)
		if err != nil {
			if lk != nil {
				_ = lk.Release()
			}
			return nil, &engine.StoreInitializationError{Cause: err}
		}
	default:
		return nil, errors.Errorf("latticectl: unknown store backend %q", cfg.Store.Backend)
	}

	var recorder *telemetry.Recorder
	var opts []engine.Option
	opts = append(opts, engine.WithLogger(logger))
	if cfg.Metrics.Enabled {
		recorder = telemetry.New()
		opts = append(opts, engine.WithMetrics(recorder))
	}

	eng, err := engine.New(context.Background(), store, schemas(), opts...)
	if err != nil {
		_ = store.Close()
		if lk != nil {
			_ = lk.Release()
		}
		return nil, err
	}

	return &env{cfg: cfg, logger: logger, lk: lk, store: store, eng: eng, metrics: recorder}, nil
}

func (e *env) Close() {
	_ = e.store.Close()
	if e.lk != nil {
		_ = e.lk.Release()
	}
	_ = e.logger.Sync()
}

func parseBindings(args []string) ([]*value.Value, error) {
	bindings := make([]*value.Value, 0, len(args))
	for _, a := range args {
		v, err := value.Parse([]byte(a))
		if err != nil {
			return nil, errors.Wrapf(err, "latticectl: invalid binding %q", a)
		}
		bindings = append(bindings, v)
	}
	return bindings, nil
}
