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

package engine

import "time"

// Metrics is the narrow surface the engine reports through; internal/telemetry
// implements it against prometheus/client_golang. Engines constructed
// without WithMetrics record nothing.
type Metrics interface {
	ObservePull(head string, ok bool, d time.Duration)
	ObserveComputor(head string, d time.Duration)
	ObserveSet(head string, unchanged bool, d time.Duration)
	ObserveInvalidate(head string, d time.Duration)
	ObserveCascade(nodes int)
}

// metricsRecorder adapts a possibly-nil Metrics into nil-safe call sites so
// every instrumentation call in pull.go/invalidate.go can be unconditional.
type metricsRecorder struct {
	m Metrics
}

func (r *metricsRecorder) recordPull(nodeKey string, ok bool, d time.Duration) {
	if r == nil || r.m == nil {
		return
	}
	r.m.ObservePull(headOf(nodeKey), ok, d)
}

func (r *metricsRecorder) recordComputor(head string, d time.Duration) {
	if r == nil || r.m == nil {
		return
	}
	r.m.ObserveComputor(head, d)
}

func (r *metricsRecorder) recordSet(nodeKey string, unchanged bool, d time.Duration) {
	if r == nil || r.m == nil {
		return
	}
	r.m.ObserveSet(headOf(nodeKey), unchanged, d)
}

func (r *metricsRecorder) recordInvalidate(nodeKey string, d time.Duration) {
	if r == nil || r.m == nil {
		return
	}
	r.m.ObserveInvalidate(headOf(nodeKey), d)
}

func (r *metricsRecorder) recordCascade(nodes int) {
	if r == nil || r.m == nil {
		return
	}
	r.m.ObserveCascade(nodes)
}
