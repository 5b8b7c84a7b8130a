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

// Package engine implements L4 (spec.md §2, §4.4): pull, set, invalidate,
// and debug introspection over a compiled schema graph and its schema
// storage.
package engine

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/latticedb/lattice/kv"
	latticeschema "github.com/latticedb/lattice/schema"
	"github.com/latticedb/lattice/storage"
	"github.com/latticedb/lattice/value"
)

// Engine is the public handle described in spec.md §6.1. One Engine owns
// exactly one compiled schema graph and the SchemaStorage namespaced by its
// hash; top-level operations are serialized per spec.md §5.
type Engine struct {
	graph   *latticeschema.CompiledGraph
	hash    latticeschema.Hash
	storage *storage.SchemaStorage
	logger  *zap.Logger

	// opMu serializes top-level Pull/Set/Invalidate calls (spec.md §5: "one
	// public operation runs to completion before another starts").
	opMu sync.Mutex

	metrics *metricsRecorder
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithLogger attaches a structured logger; nil (the default) uses a no-op
// logger, matching the teacher's "logger optional, never nil inside"
// convention.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics attaches a prometheus-backed metrics recorder (see
// internal/telemetry). Omitting it disables metric collection entirely.
func WithMetrics(m Metrics) Option {
	return func(e *Engine) { e.metrics = &metricsRecorder{m: m} }
}

// New compiles schemas (spec.md §4.1) and binds an Engine to the
// SchemaStorage namespaced by their hash within registry, lazily created on
// first touch (spec.md §4.3).
func New(ctx context.Context, store kv.Store, schemas []latticeschema.Schema, opts ...Option) (*Engine, error) {
	graph, err := latticeschema.Compile(schemas)
	if err != nil {
		return nil, err
	}
	hash := latticeschema.SchemaHash(graph)

	registry, err := storage.NewRegistry(ctx, store)
	if err != nil {
		return nil, &StoreInitializationError{Cause: err}
	}

	e := &Engine{
		graph:   graph,
		hash:    hash,
		storage: registry.Get(string(hash)),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger.Info("engine ready", zap.String("schemaHash", string(hash)))
	return e, nil
}

// SchemaHash reports the hash namespacing this engine's storage.
func (e *Engine) SchemaHash() latticeschema.Hash { return e.hash }

// newTraceID tags one top-level operation's log lines so they can be
// correlated across the recursive pulls it triggers.
func newTraceID() string {
	return uuid.NewString()[:8]
}

// resolveEntry maps a public (nodeKey, bindings) pair to the schema that
// owns it and the canonical NodeKey to operate on (spec.md §4.4.5).
//
// When bindings are supplied, nodeKey is treated as a template reference:
// only its head identifier matters, and the schema is looked up by
// (head, len(bindings)) — this is what lets scenario 8 in spec.md §8 call
// pull("derived(x)", [...]) without the literal text "x" needing to parse
// as JSON. When bindings are empty, nodeKey is treated as an already (or
// almost-)canonical literal key, parsed and re-rendered through
// Instantiate so equivalent-but-differently-whitespaced keys canonicalize
// identically (spec.md §8 scenario 7).
func (e *Engine) resolveEntry(nodeKey string, bindings []*value.Value) (*latticeschema.Schema, latticeschema.NodeKey, []*value.Value, error) {
	if len(bindings) > 0 {
		head := headOf(nodeKey)
		s, ok := e.graph.Lookup(head, len(bindings))
		if !ok {
			return nil, "", nil, &UnknownSchemaError{NodeKey: nodeKey}
		}
		key, err := latticeschema.Instantiate(s.Output, bindings)
		if err != nil {
			return nil, "", nil, err
		}
		return s, key, bindings, nil
	}

	s, args, ok := latticeschema.Resolve(latticeschema.NodeKey(nodeKey), e.graph)
	if !ok {
		return nil, "", nil, &UnknownSchemaError{NodeKey: nodeKey}
	}
	canonicalKey, err := latticeschema.Instantiate(s.Output, args)
	if err != nil {
		return nil, "", nil, err
	}
	return s, canonicalKey, args, nil
}

func headOf(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '('); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
