package io

import (
	"bytes"
	mrand "math/rand"
	"testing"

	"github.com/nlpodyssey/spago/pkg/mat32/rand"
	"github.com/stretchr/testify/require"

	"discat/pkg/model"
)

func newTestRand() *mrand.Rand {
	return mrand.New(mrand.NewSource(1))
}

func TestLoadData(t *testing.T) {
	params := DataParameters{
		DataFile:    "../../datasets/foodit/foodit.train",
		GrammarFile: "../../datasets/foodit/grammar.yml",
	}

	metaData, records, dataErrors, err := LoadData(params, nil)
	require.NoError(t, err)
	require.Empty(t, dataErrors)
	require.NotNil(t, metaData)
	require.Len(t, records, 43)
	require.Equal(t, 2, metaData.TargetMap.Size())
	require.Len(t, metaData.Symbols, 29)
	require.Len(t, metaData.Lexicon, 29)
	require.Equal(t, map[string]int{"n": 2, "s": 2}, metaData.TypeDims)

	r := records[0]
	require.Equal(t, 1, r.Line)
	require.Equal(t, "skillful man prepares sauce", r.Sentence)
	require.Equal(t, 0.0, r.Target)
	require.Equal(t, 2, r.Circuit.OutputSize)
	require.Len(t, r.Circuit.Slots, 4)

	// the test split reuses the training metadata without growing it
	params.DataFile = "../../datasets/foodit/foodit.test"
	testMetaData, records, dataErrors, err := LoadData(params, metaData)
	require.NoError(t, err)
	require.Equal(t, metaData, testMetaData)
	require.Empty(t, dataErrors)
	require.Len(t, records, 12)
}

func TestLoadDataErrors(t *testing.T) {
	params := DataParameters{
		DataFile:    "../../datasets/foodit/foodit.train",
		GrammarFile: "../../datasets/foodit/grammar.yml",
	}
	metaData, _, _, err := LoadData(params, nil)
	require.NoError(t, err)

	// oov.test holds one clean line, an out-of-vocabulary word, an unknown
	// label and a bare label with no sentence
	params.DataFile = "testdata/oov.test"
	_, records, dataErrors, err := LoadData(params, metaData)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Len(t, dataErrors, 3)
	require.Equal(t, 2, dataErrors[0].Line)
	require.Contains(t, dataErrors[0].Error, "gazpacho")
	require.Contains(t, dataErrors[1].Error, "unknown label")
	require.Contains(t, dataErrors[2].Error, "no sentence")
}

func TestLoadDataLabelWithoutSpace(t *testing.T) {
	params := DataParameters{
		DataFile:    "../../datasets/foodit/foodit.train",
		GrammarFile: "../../datasets/foodit/grammar.yml",
	}
	metaData, _, _, err := LoadData(params, nil)
	require.NoError(t, err)

	// the label is the first character, a separating space is optional
	params.DataFile = "testdata/compact.test"
	_, records, dataErrors, err := LoadData(params, metaData)
	require.NoError(t, err)
	require.Empty(t, dataErrors)
	require.Len(t, records, 2)
	require.Equal(t, 0.0, records[0].Target)
	require.Equal(t, "man prepares sauce", records[0].Sentence)
	require.Equal(t, 1.0, records[1].Target)
}

func TestLoadDataMissingFile(t *testing.T) {
	_, _, _, err := LoadData(DataParameters{
		DataFile:    "testdata/nope.train",
		GrammarFile: "../../datasets/foodit/grammar.yml",
	}, nil)
	require.Error(t, err)
}

func TestSaveLoadModel(t *testing.T) {
	params := DataParameters{
		DataFile:    "../../datasets/foodit/foodit.train",
		GrammarFile: "../../datasets/foodit/grammar.yml",
	}
	metaData, _, _, err := LoadData(params, nil)
	require.NoError(t, err)

	m := model.NewModel(metaData)
	m.Init(rand.NewLockedRand(42))

	var buffer bytes.Buffer
	require.NoError(t, SaveModel(m, &buffer))

	loaded, err := LoadModel(&buffer)
	require.NoError(t, err)
	require.Equal(t, m.MetaData.Symbols, loaded.MetaData.Symbols)
	require.Equal(t, m.MetaData.TargetMap, loaded.MetaData.TargetMap)
	require.Equal(t, m.MetaData.Lexicon, loaded.MetaData.Lexicon)
	for name, param := range m.Embeddings {
		require.Equal(t, param.Value().Data(), loaded.Embeddings[name].Value().Data(), name)
	}
}

func TestDataSet(t *testing.T) {
	records := []*DataRecord{
		{Line: 1}, {Line: 2}, {Line: 3}, {Line: 4}, {Line: 5},
	}
	ds := NewDataSet(records, 2)
	require.Equal(t, 5, ds.Size())

	var batches []DataBatch
	for batch := ds.Next(); len(batch) > 0; batch = ds.Next() {
		batches = append(batches, batch)
	}
	require.Len(t, batches, 3)
	require.Len(t, batches[0], 2)
	require.Len(t, batches[2], 1)
	require.Equal(t, 1, batches[0][0].Line)

	ds.ResetOrder(OriginalOrder)
	batch := ds.Next()
	require.Equal(t, 1, batch[0].Line)
}

func TestDataSetRandomSplit(t *testing.T) {
	records := []*DataRecord{
		{Line: 1}, {Line: 2}, {Line: 3}, {Line: 4}, {Line: 5},
	}
	ds := NewDataSet(records, 5)
	ds.Rand = newTestRand()
	splits := ds.RandomSplit(3, 2)
	require.Len(t, splits, 2)
	require.Equal(t, 3, splits[0].Size())
	require.Equal(t, 2, splits[1].Size())

	seen := map[int]bool{}
	for _, split := range splits {
		for batch := split.Next(); len(batch) > 0; batch = split.Next() {
			for _, r := range batch {
				require.False(t, seen[r.Line])
				seen[r.Line] = true
			}
		}
	}
	require.Len(t, seen, 5)
}
