package model

import (
	"fmt"

	mat "github.com/nlpodyssey/spago/pkg/mat32"
	"github.com/nlpodyssey/spago/pkg/mat32/rand"
	"github.com/nlpodyssey/spago/pkg/ml/ag"
	"github.com/nlpodyssey/spago/pkg/ml/initializers"
	"github.com/nlpodyssey/spago/pkg/ml/nn"
)

var _ nn.ParamsGetter = &Model{}

// Model holds the trained state: the metadata describing the parameter
// vocabulary and one flat tensor per symbol. Tensors are stored flat and
// reshaped by the circuit at evaluation time, since the same symbol can be
// contracted under different splits in different sentences.
type Model struct {
	MetaData   *Metadata
	Embeddings map[string]nn.Param
}

// NewModel allocates a zero tensor for every symbol in the vocabulary.
func NewModel(metaData *Metadata) *Model {
	embeddings := make(map[string]nn.Param, len(metaData.Symbols))
	for name, shape := range metaData.Symbols {
		size := 1
		for _, d := range shape {
			size *= d
		}
		embeddings[name] = nn.NewParam(mat.NewEmptyVecDense(size))
	}
	return &Model{
		MetaData:   metaData,
		Embeddings: embeddings,
	}
}

func (m *Model) Init(generator *rand.LockedRand) {
	gain := initializers.Gain(ag.OpIdentity)
	for _, name := range m.MetaData.SymbolNames() {
		initializers.XavierUniform(m.Embeddings[name].Value(), gain, generator)
	}
}

// Params returns the trainable parameters sorted by symbol name, the
// canonical order the optimizer iterates in.
func (m *Model) Params() []nn.Param {
	names := m.MetaData.SymbolNames()
	params := make([]nn.Param, len(names))
	for i, name := range names {
		params[i] = m.Embeddings[name]
	}
	return params
}

// Node wraps the symbol's tensor into the graph so gradients propagate
// back into it.
func (m *Model) Node(g *ag.Graph, symbol string) (ag.Node, error) {
	param, ok := m.Embeddings[symbol]
	if !ok {
		return nil, fmt.Errorf("symbol %s has no assigned tensor", symbol)
	}
	return g.NewWrap(param), nil
}
