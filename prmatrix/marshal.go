//
// marshal.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package prmatrix

import (
	"encoding/binary"

	"github.com/bits-and-blooms/bitset"
	"github.com/cockroachdb/errors"
)

// maxColumns limits the matrix size accepted from the peer.
const maxColumns = 1 << 20

var bo = binary.BigEndian

// marshal encodes the matrix as: kind(1) n(4) m(4) k(4) followed, for
// random matrices, by the rows packed LSB first into (m+7)/8 bytes.
func marshal(kind Kind, n, m, k int, data []*bitset.BitSet) []byte {
	rowBytes := (m + 7) / 8
	buf := make([]byte, 13, 13+len(data)*rowBytes)
	buf[0] = byte(kind)
	bo.PutUint32(buf[1:], uint32(n))
	bo.PutUint32(buf[5:], uint32(m))
	bo.PutUint32(buf[9:], uint32(k))

	for _, row := range data {
		packed := make([]byte, rowBytes)
		for j, ok := row.NextSet(0); ok; j, ok = row.NextSet(j + 1) {
			packed[j/8] |= 1 << (j % 8)
		}
		buf = append(buf, packed...)
	}
	return buf
}

// Unmarshal decodes the matrix description. It verifies that the
// decoded matrix is well-formed: its dimensions match its kind and a
// random matrix has full row rank and rows of weight at least k.
func Unmarshal(data []byte) (Matrix, error) {
	if len(data) < 13 {
		return nil, errors.Newf("prmatrix: truncated header: %d", len(data))
	}
	kind := Kind(data[0])
	n := int(bo.Uint32(data[1:]))
	m := int(bo.Uint32(data[5:]))
	k := int(bo.Uint32(data[9:]))
	data = data[13:]

	if n <= 0 || k <= 0 || m <= 0 || m > maxColumns || n > m {
		return nil, errors.Newf("prmatrix: invalid dimensions n=%d m=%d k=%d",
			n, m, k)
	}

	switch kind {
	case Block:
		if m != n*k || len(data) != 0 {
			return nil, errors.Newf("prmatrix: invalid block matrix %dx%d/%d",
				n, m, k)
		}
		return newBlock(n, k), nil

	case Random:
		rowBytes := (m + 7) / 8
		if len(data) != n*rowBytes {
			return nil, errors.Newf("prmatrix: invalid data length %d",
				len(data))
		}
		rows := make([]*bitset.BitSet, n)
		for i := 0; i < n; i++ {
			packed := data[i*rowBytes : (i+1)*rowBytes]
			rows[i] = bitset.New(uint(m))
			for j := 0; j < rowBytes*8; j++ {
				if packed[j/8]&(1<<(j%8)) == 0 {
					continue
				}
				if j >= m {
					return nil, errors.Newf("prmatrix: row %d: bit %d >= %d",
						i, j, m)
				}
				rows[i].Set(uint(j))
			}
			if int(rows[i].Count()) < k {
				return nil, errors.Newf("prmatrix: row %d: weight %d < %d",
					i, rows[i].Count(), k)
			}
		}
		matrix, err := newRandomMatrix(n, m, k, rows)
		if err != nil {
			return nil, err
		}
		return matrix, nil

	default:
		return nil, errors.Newf("prmatrix: invalid kind %v", kind)
	}
}
