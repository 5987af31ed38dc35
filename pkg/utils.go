package pkg

import (
	"math/rand"

	"github.com/rs/zerolog/log"

	"discat/pkg/io"
)

func printDataErrors(errors []io.DataError) {
	for _, err := range errors {
		log.Error().Msgf("Error parsing data at line %d: %s", err.Line, err.Error)
	}
}

func newShuffleRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(int64(seed)))
}
