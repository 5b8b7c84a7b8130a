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

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/latticedb/lattice/value"
)

var pullCommand = &cli.Command{
	Name:      "pull",
	Usage:     "pull a node, computing it if necessary",
	ArgsUsage: "<nodeKey> [binding...]",
	Action: func(c *cli.Context) error {
		if c.Args().Len() < 1 {
			return errors.New("latticectl pull: expected a node key")
		}
		nodeKey := c.Args().First()
		bindings, err := parseBindings(c.Args().Tail())
		if err != nil {
			return err
		}

		e, err := openEnv(c)
		if err != nil {
			return err
		}
		defer e.Close()

		val, err := e.eng.Pull(c.Context, nodeKey, bindings...)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, val.String())
		return nil
	},
}

var setCommand = &cli.Command{
	Name:      "set",
	Usage:     "write a value to a source node",
	ArgsUsage: "<nodeKey> <valueJSON>",
	Action: func(c *cli.Context) error {
		if c.Args().Len() != 2 {
			return errors.New("latticectl set: expected a node key and a JSON value")
		}
		nodeKey := c.Args().Get(0)
		val, err := value.Parse([]byte(c.Args().Get(1)))
		if err != nil {
			return errors.Wrap(err, "latticectl set: invalid value")
		}

		e, err := openEnv(c)
		if err != nil {
			return err
		}
		defer e.Close()

		return e.eng.Set(c.Context, nodeKey, val)
	},
}

var invalidateCommand = &cli.Command{
	Name:      "invalidate",
	Usage:     "mark a node and its transitive dependents potentially-outdated",
	ArgsUsage: "<nodeKey>",
	Action: func(c *cli.Context) error {
		if c.Args().Len() != 1 {
			return errors.New("latticectl invalidate: expected exactly one node key")
		}
		e, err := openEnv(c)
		if err != nil {
			return err
		}
		defer e.Close()

		return e.eng.Invalidate(c.Context, c.Args().First())
	},
}

var debugCommand = &cli.Command{
	Name:  "debug",
	Usage: "introspect engine state without recomputing anything",
	Subcommands: []*cli.Command{
		{
			Name:      "freshness",
			Usage:     "print a node's freshness state",
			ArgsUsage: "<nodeKey>",
			Action: func(c *cli.Context) error {
				if c.Args().Len() != 1 {
					return errors.New("latticectl debug freshness: expected exactly one node key")
				}
				e, err := openEnv(c)
				if err != nil {
					return err
				}
				defer e.Close()

				state, err := e.eng.DebugGetFreshness(c.Context, c.Args().First())
				if err != nil {
					return err
				}
				fmt.Fprintln(os.Stdout, state)
				return nil
			},
		},
		{
			Name:  "list",
			Usage: "list every materialized node key",
			Action: func(c *cli.Context) error {
				e, err := openEnv(c)
				if err != nil {
					return err
				}
				defer e.Close()

				keys, err := e.eng.DebugListMaterializedNodes(c.Context)
				if err != nil {
					return err
				}
				for _, k := range keys {
					fmt.Fprintln(os.Stdout, k)
				}
				return nil
			},
		},
		{
			Name:  "graph",
			Usage: "print the compiled schema graph as DOT",
			Action: func(c *cli.Context) error {
				e, err := openEnv(c)
				if err != nil {
					return err
				}
				defer e.Close()

				fmt.Fprintln(os.Stdout, e.eng.DebugExportGraph())
				return nil
			},
		},
	},
}

var serveMetricsCommand = &cli.Command{
	Name:  "serve-metrics",
	Usage: "serve prometheus metrics until interrupted (requires metrics.enabled in config)",
	Action: func(c *cli.Context) error {
		e, err := openEnv(c)
		if err != nil {
			return err
		}
		defer e.Close()
		if e.metrics == nil {
			return errors.New("latticectl serve-metrics: metrics.enabled is false in config")
		}

		ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e.logger.Info("serving metrics", zap.String("addr", e.cfg.Metrics.Listen))
		return e.metrics.Serve(ctx, e.cfg.Metrics.Listen)
	},
}
