package pkg

import (
	"fmt"
	gio "io"
	"os"
	"sort"

	mat "github.com/nlpodyssey/spago/pkg/mat32"
	"github.com/nlpodyssey/spago/pkg/mat32/rand"
	"github.com/nlpodyssey/spago/pkg/ml/ag"
	"github.com/nlpodyssey/spago/pkg/ml/stats"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"

	"discat/pkg/io"
	"discat/pkg/model"
)

type NoopWriter struct{}

func (x NoopWriter) Write(p []byte) (n int, err error) {
	return len(p), nil
}

func Test(modelFileName, inputFileName, outputFileName string) error {

	modelFile, err := os.Open(modelFileName)
	if err != nil {
		return fmt.Errorf("error opening model file %s: %w", modelFileName, err)
	}
	defer modelFile.Close()

	m, err := io.LoadModel(modelFile)
	if err != nil {
		return fmt.Errorf("error loading model from file %s: %w", modelFileName, err)
	}

	_, records, dataErrors, err := io.LoadData(io.DataParameters{DataFile: inputFileName}, m.MetaData)
	if err != nil {
		return fmt.Errorf("error loading data from %s: %w", inputFileName, err)
	}
	printDataErrors(dataErrors)
	if len(records) == 0 {
		return fmt.Errorf("no data to test")
	}
	return testInternal(m, records, outputFileName)
}

type evaluator struct {
	predictionCount int
	correct         int
	loss            float64
	confidences     []float64
	metrics         map[string]*stats.ClassMetrics
	model           *model.Model
	g               *ag.Graph
	outputWriter    gio.Writer
}

type prediction struct {
	predictedClass string
	label          string
	confidence     float64
}

func (c *evaluator) evaluate(record *io.DataRecord) error {
	output, err := record.Circuit.Eval(c.g, func(symbol string) (ag.Node, error) {
		return c.model.Node(c.g, symbol)
	})
	if err != nil {
		return err
	}

	classes := c.model.MetaData.TargetMap.Size()
	target := c.g.NewVariable(mat.OneHotVecDense(classes, int(record.Target)), false)
	c.loss += float64(binaryCrossEntropy(c.g, output, target).ScalarValue())

	p := c.decode(output, record)
	c.predictionCount++
	c.confidences = append(c.confidences, p.confidence)
	if p.label == p.predictedClass {
		c.correct++
	}

	fmt.Fprintf(c.outputWriter, "%s,%s,%.5f\n", p.label, p.predictedClass, p.confidence)

	labelClassMetrics, ok := c.metrics[p.label]
	if !ok {
		labelClassMetrics = stats.NewMetricCounter()
		c.metrics[p.label] = labelClassMetrics
	}
	predictedClassMetrics, ok := c.metrics[p.predictedClass]
	if !ok {
		predictedClassMetrics = stats.NewMetricCounter()
		c.metrics[p.predictedClass] = predictedClassMetrics
	}

	if p.label == p.predictedClass {
		labelClassMetrics.IncTruePos()
	} else {
		labelClassMetrics.IncFalseNeg()
		predictedClassMetrics.IncFalsePos()
	}
	return nil
}

func (c *evaluator) decode(output ag.Node, record *io.DataRecord) prediction {
	activated := c.g.Sigmoid(output)
	class, confidence := argmax(activated.Value().Data())
	return prediction{
		predictedClass: c.model.MetaData.TargetMap.IndexToName[class],
		label:          c.model.MetaData.TargetMap.IndexToName[int(record.Target)],
		confidence:     float64(confidence),
	}
}

func (c *evaluator) logMetrics() {
	// Sort class names for deterministic output
	sortedClasses := sortClasses(c.metrics)
	for _, class := range sortedClasses {
		result := c.metrics[class]
		log.Info().Str("Class", class).
			Int("TP", result.TruePos).
			Int("FP", result.FalsePos).
			Int("TN", result.TrueNeg).
			Int("FN", result.FalseNeg).
			Float64("Precision", float64(result.Precision())).
			Float64("Recall", float64(result.Recall())).
			Float64("F1", float64(result.F1Score())).
			Msg("")
	}

	macroF1, microF1 := computeOverallF1(c.metrics)
	log.Info().Float64("MacroF1", macroF1).Float64("MicroF1", microF1).Msg("")
	log.Info().
		Float64("Accuracy", float64(c.correct)/float64(c.predictionCount)).
		Float64("Loss", c.loss/float64(c.predictionCount)).
		Float64("MeanConfidence", stat.Mean(c.confidences, nil)).
		Float64("StdDevConfidence", stat.StdDev(c.confidences, nil)).
		Msg("")
}

func testInternal(m *model.Model, records []*io.DataRecord, outputFileName string) error {

	var outputWriter gio.Writer
	if outputFileName != "" {
		outputFile, err := os.Create(outputFileName)
		if err != nil {
			return fmt.Errorf("error opening output file %s: %w", outputFileName, err)
		}
		defer outputFile.Close()
		outputWriter = outputFile
	} else {
		outputWriter = NoopWriter{}
	}

	g := ag.NewGraph(ag.Rand(rand.NewLockedRand(42)))
	ev := &evaluator{
		metrics:      map[string]*stats.ClassMetrics{},
		model:        m,
		g:            g,
		outputWriter: outputWriter,
	}

	for _, record := range records {
		if err := ev.evaluate(record); err != nil {
			log.Error().Msgf("Error evaluating sentence at line %d: %s", record.Line, err)
		}
		g.Clear()
	}
	if ev.predictionCount == 0 {
		return fmt.Errorf("no predictions could be evaluated")
	}
	ev.logMetrics()
	return nil
}

func computeOverallF1(metrics map[string]*stats.ClassMetrics) (float64, float64) {
	macroF1 := 0.0
	for _, metric := range metrics {
		macroF1 += float64(metric.F1Score())
	}
	macroF1 /= float64(len(metrics))

	micro := stats.NewMetricCounter()
	for _, result := range metrics {
		micro.TruePos += result.TruePos
		micro.FalsePos += result.FalsePos
		micro.FalseNeg += result.FalseNeg
		micro.TrueNeg += result.TrueNeg
	}
	return macroF1, float64(micro.F1Score())
}

func sortClasses(metrics map[string]*stats.ClassMetrics) []string {
	result := make([]string, 0, len(metrics))
	for class := range metrics {
		result = append(result, class)
	}
	sort.Strings(result)
	return result
}

func argmax(data []mat.Float) (int, mat.Float) {
	maxInd := 0
	for i := range data {
		if data[i] > data[maxInd] {
			maxInd = i
		}
	}
	return maxInd, data[maxInd]
}
