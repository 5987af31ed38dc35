package io

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"strings"

	mat "github.com/nlpodyssey/spago/pkg/mat32"
	"github.com/nlpodyssey/spago/pkg/ml/nn"

	"discat/pkg/ansatz"
	"discat/pkg/circuit"
	"discat/pkg/grammar"
	"discat/pkg/model"
)

// DataRecord is one labeled sentence together with its compiled circuit.
type DataRecord struct {
	Line     int
	Sentence string
	Target   float64
	Circuit  *circuit.Circuit
}

type DataBatch []*DataRecord

type DataParameters struct {
	DataFile    string
	GrammarFile string
}

type DataError struct {
	Line  int
	Error string
}

// LoadData reads a flat-text dataset: one example per line, the first
// character being the label, followed by the sentence. Each sentence is
// parsed under the lexicon and compiled to a circuit by the ansatz.
//
// With nil metadata (training) the target map and the symbol vocabulary
// are built from the data and the grammar file named in the parameters.
// With existing metadata (evaluation) the grammar is rebuilt from the
// metadata snapshot, and unseen labels or symbols become per-line errors.
func LoadData(p DataParameters, metaData *model.Metadata) (*model.Metadata, []*DataRecord, []DataError, error) {
	var errors []DataError

	newMetadata := metaData == nil
	var lexicon grammar.Lexicon
	var dims map[string]int
	var err error
	if newMetadata {
		lexicon, dims, err = grammar.LoadGrammar(p.GrammarFile)
		if err != nil {
			return nil, nil, nil, err
		}
		metaData = model.NewMetadata()
		metaData.TypeDims = dims
		metaData.Lexicon = lexicon.Strings()
	} else {
		lexicon, err = grammar.ParseLexicon(metaData.Lexicon)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("error rebuilding lexicon from metadata: %w", err)
		}
		dims = metaData.TypeDims
	}
	anz, err := ansatz.New(dims)
	if err != nil {
		return nil, nil, nil, err
	}

	inputFile, err := os.Open(p.DataFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error opening file: %w", err)
	}
	defer inputFile.Close()

	var result []*DataRecord
	scanner := bufio.NewScanner(inputFile)
	currentLine := 0
	for scanner.Scan() {
		currentLine++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		record, dataErr := parseLine(currentLine, line, newMetadata, metaData, lexicon, anz)
		if dataErr != nil {
			errors = append(errors, *dataErr)
			continue
		}
		result = append(result, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("error reading %s: %w", p.DataFile, err)
	}

	return metaData, result, errors, nil
}

func parseLine(currentLine int, line string, newMetadata bool, metaData *model.Metadata,
	lexicon grammar.Lexicon, anz *ansatz.Ansatz) (*DataRecord, *DataError) {

	// the label is the first character of the line, everything after it is
	// the sentence
	label := line[:1]
	sentence := strings.TrimSpace(line[1:])
	if sentence == "" {
		return nil, &DataError{Line: currentLine, Error: fmt.Sprintf("line %q has no sentence after the label", line)}
	}

	var target float64
	if newMetadata {
		target = metaData.ParseOrAddTarget(label)
	} else {
		var ok bool
		target, ok = metaData.ParseTarget(label)
		if !ok {
			return nil, &DataError{Line: currentLine, Error: fmt.Sprintf("unknown label %q", label)}
		}
	}

	diagram, err := grammar.Parse(grammar.Tokenize(sentence), lexicon)
	if err != nil {
		return nil, &DataError{Line: currentLine, Error: err.Error()}
	}
	compiled, err := anz.Apply(diagram)
	if err != nil {
		return nil, &DataError{Line: currentLine, Error: err.Error()}
	}

	for _, slot := range compiled.Slots {
		if newMetadata {
			err = metaData.RegisterSymbol(slot.Symbol, slot.Shape, slot.Consumed)
		} else {
			err = metaData.LookupSymbol(slot.Symbol, slot.Shape, slot.Consumed)
		}
		if err != nil {
			return nil, &DataError{Line: currentLine, Error: err.Error()}
		}
	}

	return &DataRecord{
		Line:     currentLine,
		Sentence: compiled.Sentence,
		Target:   target,
		Circuit:  compiled,
	}, nil
}

// modelSnapshot is the gob layout of a trained model: the metadata plus
// every symbol tensor as flat data.
type modelSnapshot struct {
	MetaData *model.Metadata
	Tensors  map[string][]mat.Float
}

func SaveModel(m *model.Model, writer io.Writer) error {
	snapshot := modelSnapshot{
		MetaData: m.MetaData,
		Tensors:  make(map[string][]mat.Float, len(m.Embeddings)),
	}
	for name, param := range m.Embeddings {
		data := param.Value().Data()
		tensor := make([]mat.Float, len(data))
		copy(tensor, data)
		snapshot.Tensors[name] = tensor
	}
	encoder := gob.NewEncoder(writer)
	if err := encoder.Encode(&snapshot); err != nil {
		return fmt.Errorf("error encoding model: %w", err)
	}
	return nil
}

func LoadModel(input io.Reader) (*model.Model, error) {
	decoder := gob.NewDecoder(input)
	snapshot := modelSnapshot{}
	if err := decoder.Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("error decoding model: %w", err)
	}
	m := &model.Model{
		MetaData:   snapshot.MetaData,
		Embeddings: make(map[string]nn.Param, len(snapshot.Tensors)),
	}
	for name, data := range snapshot.Tensors {
		m.Embeddings[name] = nn.NewParam(mat.NewVecDense(data))
	}
	return m, nil
}
