package grammar

import (
	"fmt"
	"io/ioutil"

	"gopkg.in/yaml.v3"
)

// Lexicon maps a word to its pregroup type.
type Lexicon map[string]Type

// grammarFile is the on-disk YAML layout:
//
//	types:
//	  n: 2
//	  s: 2
//	words:
//	  man: n
//	  prepares: n.r @ s @ n.l
type grammarFile struct {
	Types map[string]int    `yaml:"types"`
	Words map[string]string `yaml:"words"`
}

// LoadGrammar reads a grammar file and returns the lexicon together with
// the base type dimensions.
func LoadGrammar(path string) (Lexicon, map[string]int, error) {
	content, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("error reading grammar file: %w", err)
	}
	var file grammarFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, nil, fmt.Errorf("error parsing grammar file %s: %w", path, err)
	}
	if len(file.Types) == 0 {
		return nil, nil, fmt.Errorf("grammar file %s declares no types", path)
	}
	if _, ok := file.Types[SentenceBase]; !ok {
		return nil, nil, fmt.Errorf("grammar file %s declares no %s type", path, SentenceBase)
	}
	lexicon, err := ParseLexicon(file.Words)
	if err != nil {
		return nil, nil, fmt.Errorf("grammar file %s: %w", path, err)
	}
	for word, t := range lexicon {
		for _, simple := range t {
			if _, ok := file.Types[simple.Base]; !ok {
				return nil, nil, fmt.Errorf("grammar file %s: word %q uses undeclared type %s", path, word, simple.Base)
			}
		}
	}
	return lexicon, file.Types, nil
}

// ParseLexicon builds a lexicon from word to type-string pairs. It is also
// used to rebuild the lexicon from a trained model's metadata snapshot.
func ParseLexicon(words map[string]string) (Lexicon, error) {
	lexicon := make(Lexicon, len(words))
	for word, typeString := range words {
		t, err := ParseType(typeString)
		if err != nil {
			return nil, fmt.Errorf("word %q: %w", word, err)
		}
		lexicon[word] = t
	}
	return lexicon, nil
}

// Strings returns the lexicon as word to type-string pairs, the form
// stored in model metadata.
func (l Lexicon) Strings() map[string]string {
	result := make(map[string]string, len(l))
	for word, t := range l {
		result[word] = t.String()
	}
	return result
}
