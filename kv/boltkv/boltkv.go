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

// Package boltkv is the durable kv.Store backend, a thin adapter over
// go.etcd.io/bbolt — the pure-Go ordered embedded store erigon itself
// carries as a secondary backend alongside MDBX. bbolt alone satisfies
// spec.md §6.2's storage requirements (ordered iteration, atomic multi-key
// batch writes, durable commit) without a cgo dependency.
package boltkv

import (
	"context"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/latticedb/lattice/kv"
)

// Store adapts a single bbolt file to kv.Store. Every sublevel is a bucket
// created lazily on first write, mirroring the teacher's "created lazily on
// first touch" schema-storage convention (spec.md §2 L2).
type Store struct {
	db     *bolt.DB
	logger *zap.Logger
}

// Open creates or opens the bbolt file at path. fs is only consulted to
// ensure the parent directory exists (afero.Fs cannot itself back bbolt's
// mmap, which needs a real *os.File — see DESIGN.md); logger may be nil.
func Open(path string, fs afero.Fs, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "boltkv: create directory %s", dir)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 0})
	if err != nil {
		return nil, errors.Wrapf(err, "boltkv: open %s", path)
	}
	logger.Info("opened store", zap.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

func bucketName(sl kv.Sublevel) []byte { return []byte(sl) }

func (s *Store) View(_ context.Context, fn func(kv.Tx) error) error {
	return s.db.View(func(btx *bolt.Tx) error {
		return fn(&tx{btx: btx})
	})
}

func (s *Store) Update(_ context.Context, fn func(kv.RwTx) error) error {
	return s.db.Update(func(btx *bolt.Tx) error {
		return fn(&rwTx{tx: tx{btx: btx}})
	})
}

func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return errors.Wrap(err, "boltkv: close")
	}
	return nil
}

// Path reports the backing file's location, exposed for latticectl's debug
// commands.
func (s *Store) Path() string {
	return s.db.Path()
}

type tx struct {
	btx *bolt.Tx
}

func (t *tx) Get(sl kv.Sublevel, key []byte) ([]byte, bool, error) {
	b := t.btx.Bucket(bucketName(sl))
	if b == nil {
		return nil, false, nil
	}
	v := b.Get(key)
	if v == nil {
		return nil, false, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true, nil
}

func (t *tx) Keys(sl kv.Sublevel) (kv.Cursor, error) {
	b := t.btx.Bucket(bucketName(sl))
	if b == nil {
		return &emptyCursor{}, nil
	}
	c := b.Cursor()
	return &cursor{c: c, first: true}, nil
}

type emptyCursor struct{}

func (*emptyCursor) Next() ([]byte, []byte, bool) { return nil, nil, false }
func (*emptyCursor) Close()                       {}

type cursor struct {
	c     *bolt.Cursor
	first bool
}

func (cu *cursor) Next() ([]byte, []byte, bool) {
	var k, v []byte
	if cu.first {
		k, v = cu.c.First()
		cu.first = false
	} else {
		k, v = cu.c.Next()
	}
	if k == nil {
		return nil, nil, false
	}
	kc := make([]byte, len(k))
	copy(kc, k)
	vc := make([]byte, len(v))
	copy(vc, v)
	return kc, vc, true
}

func (cu *cursor) Close() {}

type rwTx struct {
	tx
}

func (t *rwTx) Put(sl kv.Sublevel, key, val []byte) error {
	b, err := t.btx.CreateBucketIfNotExists(bucketName(sl))
	if err != nil {
		return errors.Wrapf(err, "boltkv: create bucket %s", sl)
	}
	if err := b.Put(key, val); err != nil {
		return errors.Wrapf(err, "boltkv: put %s/%s", sl, key)
	}
	return nil
}

func (t *rwTx) Delete(sl kv.Sublevel, key []byte) error {
	b := t.btx.Bucket(bucketName(sl))
	if b == nil {
		return nil
	}
	if err := b.Delete(key); err != nil {
		return errors.Wrapf(err, "boltkv: delete %s/%s", sl, key)
	}
	return nil
}

func (t *rwTx) Clear(sl kv.Sublevel) error {
	if err := t.btx.DeleteBucket(bucketName(sl)); err != nil && err != bolt.ErrBucketNotFound {
		return errors.Wrapf(err, "boltkv: clear %s", sl)
	}
	return nil
}
