//
// bucket.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package bucket assigns the evaluated circuits of cut-and-choose into
// fixed-size buckets. Each bucket backs one online evaluation.
//
// A bucket list has two phases. After assignment, the OT step gets
// write access to the bundles' key slots with KeySlots. Seal ends the
// write phase and after it the list and its bundles are read-only.
package bucket

import (
	"fmt"

	"github.com/markkurossi/malyao/mpcerr"
)

// Sealer is implemented by bundles whose key slots become read-only
// when sealed.
type Sealer interface {
	Seal()
}

// List holds the buckets.
type List[T Sealer] struct {
	buckets [][]T
	size    int
	sealed  bool
}

// Assign partitions the bundles into numBuckets buckets of bucketSize
// bundles. The bucket i gets the bundles perm[i*bucketSize...]. The
// permutation perm must be uniformly random and shared by both
// parties.
func Assign[T Sealer](bundles []T, numBuckets, bucketSize int, perm []int) (
	*List[T], error) {

	if numBuckets <= 0 || bucketSize <= 0 {
		return nil, mpcerr.Configuration("invalid buckets %dx%d",
			numBuckets, bucketSize)
	}
	if len(bundles) != numBuckets*bucketSize {
		return nil, mpcerr.Configuration("%d bundles do not fill %dx%d buckets",
			len(bundles), numBuckets, bucketSize)
	}
	if err := checkPermutation(perm, len(bundles)); err != nil {
		return nil, err
	}
	list := &List[T]{
		size: bucketSize,
	}
	for i := 0; i < numBuckets; i++ {
		bucket := make([]T, bucketSize)
		for j := 0; j < bucketSize; j++ {
			bucket[j] = bundles[perm[i*bucketSize+j]]
		}
		list.buckets = append(list.buckets, bucket)
	}
	return list, nil
}

func checkPermutation(perm []int, n int) error {
	if len(perm) != n {
		return mpcerr.Configuration("permutation length %d != %d",
			len(perm), n)
	}
	seen := make([]bool, n)
	for _, p := range perm {
		if p < 0 || p >= n || seen[p] {
			return mpcerr.Configuration("invalid permutation: %v", perm)
		}
		seen[p] = true
	}
	return nil
}

func (l *List[T]) String() string {
	return fmt.Sprintf("%dx%d sealed=%v", len(l.buckets), l.size, l.sealed)
}

// NumBuckets returns the number of buckets.
func (l *List[T]) NumBuckets() int {
	return len(l.buckets)
}

// BucketSize returns the number of bundles in each bucket.
func (l *List[T]) BucketSize() int {
	return l.size
}

// Bucket returns the bundles of bucket i. The index must be in the
// range [0, NumBuckets()); Bucket panics otherwise like slice
// indexing does.
func (l *List[T]) Bucket(i int) []T {
	return append([]T(nil), l.buckets[i]...)
}

// Bundles returns all bundles in bucket order.
func (l *List[T]) Bundles() []T {
	var result []T
	for _, b := range l.buckets {
		result = append(result, b...)
	}
	return result
}

// KeySlots returns the bundles of bucket i for key injection. It
// fails after the list is sealed.
func (l *List[T]) KeySlots(i int) ([]T, error) {
	if l.sealed {
		return nil, mpcerr.Configuration("bucket list is sealed")
	}
	if i < 0 || i >= len(l.buckets) {
		return nil, mpcerr.Configuration("invalid bucket %d", i)
	}
	return l.Bucket(i), nil
}

// Seal ends the key injection phase. It seals all bundles of the list.
func (l *List[T]) Seal() {
	if l.sealed {
		return
	}
	l.sealed = true
	for _, b := range l.buckets {
		for _, bundle := range b {
			bundle.Seal()
		}
	}
}

// Sealed tests if the list is sealed.
func (l *List[T]) Sealed() bool {
	return l.sealed
}
