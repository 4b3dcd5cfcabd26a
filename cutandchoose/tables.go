//
// tables.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package cutandchoose

import (
	"github.com/markkurossi/malyao/mpcerr"
)

// TableStore stores garbled tables outside of memory.
type TableStore interface {
	Put(index int, tables []byte) error
	Get(index int) ([]byte, error)
}

// GarbledTables returns the bundle's garbled tables. If the tables are
// not in memory, they are loaded from the store and checked against
// the tables commitment.
func (b *Bundle) GarbledTables(store TableStore) ([]byte, error) {
	if b.Tables != nil {
		return b.Tables, nil
	}
	if store == nil {
		return nil, mpcerr.Configuration("bundle %d: no tables", b.Index)
	}
	tables, err := store.Get(b.Index)
	if err != nil {
		return nil, err
	}
	if err := b.VerifyTables(tables); err != nil {
		return nil, err
	}
	return tables, nil
}
