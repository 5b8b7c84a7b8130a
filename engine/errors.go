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

import "fmt"

// UnknownSchemaError is raised when a queried NodeKey's (head, arity) has no
// matching schema (spec.md §4.4.1, §7).
type UnknownSchemaError struct {
	NodeKey string
}

func (e *UnknownSchemaError) Error() string {
	return fmt.Sprintf("engine: no schema matches node %q", e.NodeKey)
}

// ComputorError wraps an error thrown by a user Computor. No state is
// committed when this error is returned (spec.md §7).
type ComputorError struct {
	NodeKey string
	Cause   error
}

func (e *ComputorError) Error() string {
	return fmt.Sprintf("engine: computor for %q failed: %v", e.NodeKey, e.Cause)
}

func (e *ComputorError) Unwrap() error { return e.Cause }

// StoreInitializationError wraps a failure to open or lock the underlying
// store (spec.md §7).
type StoreInitializationError struct {
	Cause error
}

func (e *StoreInitializationError) Error() string {
	return fmt.Sprintf("engine: store initialization failed: %v", e.Cause)
}

func (e *StoreInitializationError) Unwrap() error { return e.Cause }

// StoreIOError wraps a failure from the underlying kv.Store during a
// get/put/batch (spec.md §7).
type StoreIOError struct {
	NodeKey string
	Cause   error
}

func (e *StoreIOError) Error() string {
	return fmt.Sprintf("engine: store I/O failed for %q: %v", e.NodeKey, e.Cause)
}

func (e *StoreIOError) Unwrap() error { return e.Cause }

// CorruptedStateError is raised when a read yields a shape that does not
// match the expected type guard (e.g. a counter that is not an integer).
// The engine never silently repairs such state (spec.md §7).
type CorruptedStateError struct {
	NodeKey string
	Cause   error
}

func (e *CorruptedStateError) Error() string {
	return fmt.Sprintf("engine: corrupted state at %q: %v", e.NodeKey, e.Cause)
}

func (e *CorruptedStateError) Unwrap() error { return e.Cause }
