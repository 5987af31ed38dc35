package pkg

import (
	"fmt"
	"os"

	mat "github.com/nlpodyssey/spago/pkg/mat32"
	"github.com/nlpodyssey/spago/pkg/mat32/rand"
	"github.com/nlpodyssey/spago/pkg/ml/ag"
	"github.com/nlpodyssey/spago/pkg/ml/optimizers/gd"
	"github.com/nlpodyssey/spago/pkg/ml/optimizers/gd/sgd"
	"github.com/rs/zerolog/log"

	"discat/pkg/io"
	"discat/pkg/model"
)

type TrainingParameters struct {
	// BatchSize 0 trains on the full dataset every step
	BatchSize      int
	NumEpochs      int
	LearningRate   float64
	ReportInterval int
	RndSeed        uint64
	Shuffle        bool
}

type Trainer struct {
	params    TrainingParameters
	optimizer *gd.GradientDescent
	model     *model.Model
}

func Train(trainFile, grammarFile, testFile, outputFileName string, trainingParams TrainingParameters) error {
	t := &Trainer{params: trainingParams}
	if t.params.ReportInterval < 1 {
		t.params.ReportInterval = 1
	}

	rndGen := rand.NewLockedRand(trainingParams.RndSeed)

	metaData, records, dataErrors, err := io.LoadData(io.DataParameters{
		DataFile:    trainFile,
		GrammarFile: grammarFile,
	}, nil)
	if err != nil {
		return fmt.Errorf("error reading training data: %w", err)
	}
	printDataErrors(dataErrors)
	if len(records) == 0 {
		return fmt.Errorf("no data to train")
	}

	classes := metaData.TargetMap.Size()
	for _, record := range records {
		if record.Circuit.OutputSize != classes {
			return fmt.Errorf("sentence type has dimension %d but the data has %d classes",
				record.Circuit.OutputSize, classes)
		}
	}

	t.model = model.NewModel(metaData)
	t.model.Init(rndGen)

	updaterConfig := sgd.NewConfig(mat.Float(trainingParams.LearningRate), 0, false)
	t.optimizer = gd.NewOptimizer(sgd.New(updaterConfig), t.model)

	batchSize := trainingParams.BatchSize
	if batchSize <= 0 {
		batchSize = len(records)
	}
	dataSet := io.NewDataSet(records, batchSize)
	order := io.OriginalOrder
	if trainingParams.Shuffle {
		dataSet.Rand = newShuffleRand(trainingParams.RndSeed)
		order = io.RandomOrder
	}

	log.Info().
		Int("sentences", len(records)).
		Int("symbols", len(metaData.Symbols)).
		Int("classes", classes).
		Msg("training")

	for epoch := 0; epoch < trainingParams.NumEpochs; epoch++ {
		t.optimizer.IncEpoch()
		dataSet.ResetOrder(order)
		epochLoss := 0.0
		seen := 0
		for batch := dataSet.Next(); len(batch) > 0; batch = dataSet.Next() {
			loss, err := t.trainBatch(batch)
			if err != nil {
				return err
			}
			t.optimizer.Optimize()
			epochLoss += loss * float64(len(batch))
			seen += len(batch)
		}
		if epoch%t.params.ReportInterval == 0 {
			log.Info().Int("epoch", epoch).Float64("loss", epochLoss/float64(seen)).Msg("")
		}
	}

	outputFile, err := os.Create(outputFileName)
	if err != nil {
		return fmt.Errorf("error creating output file %s: %w", outputFileName, err)
	}
	defer outputFile.Close()
	if err := io.SaveModel(t.model, outputFile); err != nil {
		return fmt.Errorf("error saving model to %s: %w", outputFileName, err)
	}

	if testFile == "" {
		return nil
	}
	_, testRecords, dataErrors, err := io.LoadData(io.DataParameters{DataFile: testFile}, metaData)
	if err != nil {
		return fmt.Errorf("error loading data from %s: %w", testFile, err)
	}
	printDataErrors(dataErrors)
	return testInternal(t.model, testRecords, "")
}

func (t *Trainer) trainBatch(batch io.DataBatch) (float64, error) {
	t.optimizer.IncBatch()

	g := ag.NewGraph(ag.Rand(rand.NewLockedRand(t.params.RndSeed)))
	defer g.Clear()

	classes := t.model.MetaData.TargetMap.Size()
	var loss ag.Node
	for _, record := range batch {
		output, err := record.Circuit.Eval(g, func(symbol string) (ag.Node, error) {
			return t.model.Node(g, symbol)
		})
		if err != nil {
			return 0, fmt.Errorf("error evaluating sentence at line %d: %w", record.Line, err)
		}
		target := g.NewVariable(mat.OneHotVecDense(classes, int(record.Target)), false)
		loss = g.Add(loss, binaryCrossEntropy(g, output, target))
	}
	loss = g.Div(loss, g.NewScalar(mat.Float(len(batch))))

	g.Backward(loss)
	return float64(loss.ScalarValue()), nil
}

// Epsilon keeps the loss finite when a sigmoid output saturates.
const Epsilon = 1e-7

// binaryCrossEntropy is the mean elementwise cross entropy between the
// sigmoid-activated circuit output and the one-hot target vector.
func binaryCrossEntropy(g *ag.Graph, output, target ag.Node) ag.Node {
	p := g.Sigmoid(output)
	ones := g.NewVariable(mat.NewInitVecDense(target.Value().Rows(), 1.0), false)
	eps := g.Constant(Epsilon)
	positive := g.Prod(target, g.Log(g.AddScalar(p, eps)))
	negative := g.Prod(g.Sub(ones, target), g.Log(g.AddScalar(g.Sub(ones, p), eps)))
	return g.Neg(g.ReduceMean(g.Add(positive, negative)))
}
