package model

import (
	"fmt"
	"sort"
)

// NameMap implements a bidirectional mapping between a name and an index
type NameMap struct {
	NameToIndex map[string]int
	IndexToName map[int]string
}

func (f NameMap) Set(name string, index int) {
	f.NameToIndex[name] = index
	f.IndexToName[index] = name
}

func (f NameMap) Size() int {
	return len(f.IndexToName)
}

func (f NameMap) ContainsName(name string) (int, bool) {
	index, ok := f.NameToIndex[name]
	return index, ok
}

func NewNameMap() NameMap {
	return NameMap{
		NameToIndex: map[string]int{},
		IndexToName: map[int]string{},
	}
}

type Metadata struct {
	// TargetMap contains a mapping of target label names to class indexes
	TargetMap NameMap

	// Symbols is the parameter vocabulary: every free symbol seen across
	// the training circuits and its tensor shape
	Symbols map[string][]int

	// Contractions pins the consumed-wire count for symbols that consume
	// more than one wire, so a symbol's tensor layout stays consistent
	// across sentences
	Contractions map[string]int

	// TypeDims holds the ansatz dimension of each base grammatical type
	TypeDims map[string]int

	// Lexicon is the word to type-string snapshot of the grammar file,
	// kept so evaluation needs no grammar file
	Lexicon map[string]string
}

func NewMetadata() *Metadata {
	return &Metadata{
		TargetMap:    NewNameMap(),
		Symbols:      map[string][]int{},
		Contractions: map[string]int{},
		TypeDims:     map[string]int{},
		Lexicon:      map[string]string{},
	}
}

// ParseOrAddTarget maps a label to its class index, adding it on first sight.
func (d *Metadata) ParseOrAddTarget(value string) float64 {
	target, ok := d.TargetMap.ContainsName(value)
	if !ok {
		target = d.TargetMap.Size()
		d.TargetMap.Set(value, target)
	}
	return float64(target)
}

// ParseTarget maps a label to its class index without adding it.
func (d *Metadata) ParseTarget(value string) (float64, bool) {
	target, ok := d.TargetMap.ContainsName(value)
	return float64(target), ok
}

// RegisterSymbol adds a symbol to the vocabulary during training,
// enforcing shape and contraction-order consistency.
func (d *Metadata) RegisterSymbol(name string, shape []int, consumed int) error {
	if known, ok := d.Symbols[name]; ok {
		if !equalShape(known, shape) {
			return fmt.Errorf("symbol %s seen with shapes %v and %v", name, known, shape)
		}
		return d.checkContraction(name, consumed)
	}
	d.Symbols[name] = shape
	if consumed > 1 {
		d.Contractions[name] = consumed
	}
	return nil
}

// LookupSymbol verifies that a symbol from a compiled circuit exists in the
// trained vocabulary with a compatible shape and contraction order.
func (d *Metadata) LookupSymbol(name string, shape []int, consumed int) error {
	known, ok := d.Symbols[name]
	if !ok {
		return fmt.Errorf("symbol %s not in trained vocabulary", name)
	}
	if !equalShape(known, shape) {
		return fmt.Errorf("symbol %s has shape %v, circuit wants %v", name, known, shape)
	}
	return d.checkContraction(name, consumed)
}

func (d *Metadata) checkContraction(name string, consumed int) error {
	pinned, ok := d.Contractions[name]
	if ok && consumed != pinned {
		return fmt.Errorf("symbol %s contracts %d wires here but %d elsewhere", name, consumed, pinned)
	}
	if !ok && consumed > 1 {
		return fmt.Errorf("symbol %s contracts %d wires here but at most one elsewhere", name, consumed)
	}
	return nil
}

// SymbolNames returns the vocabulary sorted by its canonical key.
func (d *Metadata) SymbolNames() []string {
	names := make([]string, 0, len(d.Symbols))
	for name := range d.Symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func equalShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
