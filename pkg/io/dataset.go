package io

import (
	"math/rand"
)

// DataSet serves compiled sentence records in fixed-size batches, either
// in file order or reshuffled per pass.
type DataSet struct {
	Data      []*DataRecord
	BatchSize int
	Rand      *rand.Rand
	indices   []int
	order     []int
	cursor    int
}

type DatasetOrder int

const (
	OriginalOrder DatasetOrder = iota
	RandomOrder
)

func NewDataSet(data []*DataRecord, batchSize int) *DataSet {
	indices := make([]int, len(data))
	for i := range indices {
		indices[i] = i
	}
	return newDataSet(data, batchSize, indices)
}

func newDataSet(data []*DataRecord, batchSize int, indices []int) *DataSet {
	d := &DataSet{Data: data, BatchSize: batchSize, indices: indices}
	d.ResetOrder(OriginalOrder)
	return d
}

// ResetOrder rewinds the dataset and fixes the iteration order for the
// next pass. RandomOrder requires Rand to be set.
func (d *DataSet) ResetOrder(order DatasetOrder) {
	if d.order == nil {
		d.order = make([]int, len(d.indices))
	}
	switch order {
	case OriginalOrder:
		copy(d.order, d.indices)
	case RandomOrder:
		for i, j := range d.Rand.Perm(len(d.indices)) {
			d.order[i] = d.indices[j]
		}
	}
	d.cursor = 0
}

// Next returns the next batch of the current pass, empty once exhausted.
func (d *DataSet) Next() DataBatch {
	batch := make(DataBatch, 0, d.BatchSize)
	for ; d.cursor < len(d.order) && len(batch) < d.BatchSize; d.cursor++ {
		batch = append(batch, d.Data[d.order[d.cursor]])
	}
	return batch
}

func (d *DataSet) Size() int {
	return len(d.indices)
}

// RandomSplit shuffles the record indices once and carves them into
// disjoint datasets of the given sizes, sharing the underlying records.
// It backs held-out splits when no separate test file exists.
func (d *DataSet) RandomSplit(sizes ...int) []*DataSet {
	shuffled := make([]int, len(d.indices))
	copy(shuffled, d.indices)
	d.Rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	splits := make([]*DataSet, len(sizes))
	next := 0
	for i, size := range sizes {
		splits[i] = newDataSet(d.Data, d.BatchSize, shuffled[next:next+size])
		next += size
	}
	return splits
}
