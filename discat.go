package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"discat/pkg"

	"github.com/spf13/cobra"
)

func TrainCommand() *cobra.Command {

	var trainFile string
	var grammarFile string
	var testFile string
	var outputFile string
	var trainingParameters pkg.TrainingParameters

	var cmd = &cobra.Command{
		Use:   "train -i trainData -g grammarFile -o outputFile",
		Short: "Trains a sentence classifier on the provided training data and saves the trained model",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return pkg.Train(trainFile, grammarFile, testFile, outputFile, trainingParameters)
		},
	}

	cmd.Flags().StringVarP(&trainFile, "train-file", "i", "", "name of train file")
	cmd.Flags().StringVarP(&grammarFile, "grammar-file", "g", "", "name of the grammar file holding word types and type dimensions")
	cmd.Flags().StringVarP(&testFile, "test-file", "", "", "name of test file to evaluate after training")
	cmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "name of the file to save model to.")
	cmd.Flags().IntVarP(&trainingParameters.BatchSize, "batch-size", "b", 0, "batch size (0 trains on the full dataset every step)")
	cmd.Flags().Float64VarP(&trainingParameters.LearningRate, "learning-rate", "l", 1.0, "gradient descent step size")
	cmd.Flags().IntVarP(&trainingParameters.ReportInterval, "report-interval", "r", 10, "loss report interval in epochs")
	cmd.Flags().IntVarP(&trainingParameters.NumEpochs, "num-epochs", "n", 30, "number of epochs to train")
	cmd.Flags().Uint64VarP(&trainingParameters.RndSeed, "random-seed", "x", 42, "random seed")
	cmd.Flags().BoolVarP(&trainingParameters.Shuffle, "shuffle", "", false, "shuffle the training data every epoch")

	_ = cmd.MarkFlagRequired("train-file")
	_ = cmd.MarkFlagRequired("grammar-file")
	_ = cmd.MarkFlagRequired("output-file")

	return cmd
}

func TestCommand() *cobra.Command {
	var modelFile string
	var inputFile string
	var outputFile string

	var cmd = &cobra.Command{
		Use:   "test -m modelFile -i inputFile [-o outputFile]",
		Short: "Runs the provided model on the specified data input and optionally writes the predictions",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return pkg.Test(modelFile, inputFile, outputFile)
		},
	}

	cmd.Flags().StringVarP(&modelFile, "model", "m", "", "name of model to test")
	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "name of data input file")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "name of prediction output file (optional)")

	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("input")

	return cmd

}

var logLevel string
var logFormat string

func main() {

	Main := &cobra.Command{Use: "discat", PersistentPreRun: setupLogging}

	Main.PersistentFlags().StringVarP(&logLevel, "log-level", "", "info", "Logging level: info error or debug")
	Main.PersistentFlags().StringVarP(&logFormat, "log-format", "", "pretty", "Logging format: pretty or json")

	Main.AddCommand(TrainCommand())
	Main.AddCommand(TestCommand())

	if err := Main.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging(cmd *cobra.Command, args []string) {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		panic("Invalid logging level specified")
	}
	zerolog.SetGlobalLevel(level)

	switch logFormat {
	case "pretty":
		log.Logger = log.Output(consoleWriter())
	case "json":
	default:
		panic("Invalid log format specified")
	}
}

// consoleWriter renders numeric fields at a fixed precision so the loss
// and metric lines stay readable.
func consoleWriter() zerolog.ConsoleWriter {
	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	writer.FormatFieldValue = func(i interface{}) string {
		if v, ok := i.(json.Number); ok {
			val, _ := v.Float64()
			return fmt.Sprintf("%.3f", val)
		}
		return fmt.Sprintf("%s", i)
	}
	return writer
}
