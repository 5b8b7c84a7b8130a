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

// Package config loads the latticectl TOML configuration file.
package config

import (
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Config is the on-disk shape of a lattice.toml file.
type Config struct {
	Store struct {
		// Backend selects the L0 KV implementation: "bolt" (durable,
		// default) or "mem" (in-memory, tests and throwaway runs).
		Backend string `toml:"backend"`
		// Path is the bbolt database file path; ignored for backend "mem".
		Path string `toml:"path"`
	} `toml:"store"`

	Log struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	} `toml:"log"`

	Metrics struct {
		Enabled bool   `toml:"enabled"`
		Listen  string `toml:"listen"`
	} `toml:"metrics"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	var c Config
	c.Store.Backend = "bolt"
	c.Store.Path = "lattice.db"
	c.Log.Level = "info"
	c.Log.Format = "console"
	c.Metrics.Enabled = false
	c.Metrics.Listen = "127.0.0.1:9090"
	return c
}

// Load reads and parses path from fs, overlaying it onto Default() so a
// partial file is still valid.
func Load(fs afero.Fs, path string) (Config, error) {
	cfg := Default()
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: read %s", path)
	}
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "config: parse %s", path)
	}
	return cfg, nil
}
