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

// Package lock guards a store directory against being opened by two
// engine processes at once (spec.md §9 "Process-wide resources (file
// locks) are acquired in construction and released in close").
package lock

import (
	"github.com/gofrs/flock"
	"github.com/pkg/errors"
)

// ErrHeld is returned by Acquire when another process already holds the
// lock.
var ErrHeld = errors.New("lock: store is held by another process")

// DirLock wraps a single advisory file lock sitting alongside the store
// file.
type DirLock struct {
	fl *flock.Flock
}

// Acquire takes an exclusive, non-blocking lock on path+".lock". It fails
// fast with ErrHeld rather than waiting, since a second lattice process is
// a configuration mistake, not a transient condition to retry past.
func Acquire(path string) (*DirLock, error) {
	fl := flock.New(path + ".lock")
	ok, err := fl.TryLock()
	if err != nil {
		return nil, errors.Wrapf(err, "lock: acquire %s", path)
	}
	if !ok {
		return nil, ErrHeld
	}
	return &DirLock{fl: fl}, nil
}

// Release unlocks and closes the underlying lock file handle.
func (d *DirLock) Release() error {
	return d.fl.Unlock()
}
