//
// store.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package store keeps garbled tables in files. Each table file holds
// the tables and a keyed checksum that is verified when the tables
// are read back.
package store

import (
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/minio/highwayhash"
)

const (
	magic      = "MYT1"
	headerSize = 4 + 4 + 8
	sumSize    = 16
	keySize    = 32
)

// ErrChecksum is returned when a table file does not match its
// checksum.
var ErrChecksum = errors.New("store: checksum mismatch")

// Dir is a table store directory.
type Dir struct {
	path    string
	key     []byte
	m       sync.Mutex
	written map[string]bool
}

// Open opens the table directory path. The directory is created if
// it does not exist. The checksum key is created from rand and it is
// valid for the lifetime of the Dir.
func Open(path string, rand io.Reader) (*Dir, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, errors.Wrap(err, "store")
	}
	key := make([]byte, keySize)
	if _, err := io.ReadFull(rand, key); err != nil {
		return nil, errors.Wrap(err, "store: checksum key")
	}
	return &Dir{
		path:    path,
		key:     key,
		written: make(map[string]bool),
	}, nil
}

// Path returns the directory path.
func (d *Dir) Path() string {
	return d.path
}

// Tables returns the table set name of the directory.
func (d *Dir) Tables(name string) *Tables {
	return &Tables{
		dir:  d,
		name: name,
	}
}

// RemoveAll removes all table files written through the directory's
// table sets. Files not created by this Dir are left in place.
func (d *Dir) RemoveAll() error {
	d.m.Lock()
	defer d.m.Unlock()

	var files []string
	for file := range d.written {
		files = append(files, file)
	}
	sort.Strings(files)

	var result error
	for _, file := range files {
		err := os.Remove(file)
		if err != nil && !os.IsNotExist(err) {
			result = errors.CombineErrors(result, errors.Wrap(err, "store"))
			continue
		}
		delete(d.written, file)
	}
	return result
}

func (d *Dir) add(file string) {
	d.m.Lock()
	d.written[file] = true
	d.m.Unlock()
}

func (d *Dir) remove(file string) {
	d.m.Lock()
	delete(d.written, file)
	d.m.Unlock()
}

func (d *Dir) checksum(index int, data []byte) ([]byte, error) {
	h, err := highwayhash.New128(d.key)
	if err != nil {
		return nil, err
	}
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(index))
	h.Write(buf[:])
	h.Write(data)
	return h.Sum(nil), nil
}

// Tables stores the garbled tables of one circuit type. It implements
// the cutandchoose.TableStore interface.
type Tables struct {
	dir  *Dir
	name string
}

func (t *Tables) file(index int) string {
	return filepath.Join(t.dir.path, fmt.Sprintf("%s-%d.tbl", t.name, index))
}

// Put stores the tables of bundle index.
func (t *Tables) Put(index int, tables []byte) error {
	sum, err := t.dir.checksum(index, tables)
	if err != nil {
		return err
	}
	data := make([]byte, headerSize, headerSize+len(tables)+sumSize)
	copy(data, magic)
	binary.BigEndian.PutUint32(data[4:], uint32(index))
	binary.BigEndian.PutUint64(data[8:], uint64(len(tables)))
	data = append(data, tables...)
	data = append(data, sum...)

	file := t.file(index)
	t.dir.add(file)
	if err := os.WriteFile(file, data, 0644); err != nil {
		return errors.Wrapf(err, "store: write tables %d", index)
	}
	return nil
}

// Get reads the tables of bundle index.
func (t *Tables) Get(index int) ([]byte, error) {
	data, err := os.ReadFile(t.file(index))
	if err != nil {
		return nil, errors.Wrapf(err, "store: read tables %d", index)
	}
	if len(data) < headerSize+sumSize || string(data[:4]) != magic {
		return nil, errors.Newf("store: %s: invalid file", t.file(index))
	}
	if int(binary.BigEndian.Uint32(data[4:])) != index {
		return nil, errors.Newf("store: %s: invalid index", t.file(index))
	}
	l := binary.BigEndian.Uint64(data[8:])
	if l != uint64(len(data)-headerSize-sumSize) {
		return nil, errors.Newf("store: %s: invalid length %d",
			t.file(index), l)
	}
	tables := data[headerSize : headerSize+int(l)]
	sum, err := t.dir.checksum(index, tables)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare(sum, data[headerSize+int(l):]) != 1 {
		return nil, errors.Wrapf(ErrChecksum, "tables %d", index)
	}
	return tables, nil
}

// Remove removes the tables of bundle index.
func (t *Tables) Remove(index int) error {
	file := t.file(index)
	if err := os.Remove(file); err != nil {
		return err
	}
	t.dir.remove(file)
	return nil
}
