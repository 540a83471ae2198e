package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/optic-ml/optic/backend/cpu"
	"github.com/optic-ml/optic/dataset"
	"github.com/optic-ml/optic/inspect"
	"github.com/optic-ml/optic/nn"
)

func newEvalCmd() *cobra.Command {
	var (
		checkpointPath string
		dataDir        string
		format         string
		batchSize      int
		showMismatches int
	)

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate a trained model on a test corpus",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ckpt, err := loadCheckpoint(checkpointPath)
			if err != nil {
				return err
			}

			corpus, err := loadCorpus(format, dataDir, true)
			if err != nil {
				return err
			}
			if corpus.NumClasses() != ckpt.Model.NumClasses {
				return fmt.Errorf("eval: corpus has %d classes, model has %d",
					corpus.NumClasses(), ckpt.Model.NumClasses)
			}

			backend := cpu.New()
			model, err := nn.BuildClassifier(ckpt.Model, backend)
			if err != nil {
				return err
			}
			if err := model.LoadStateDict(ckpt.State); err != nil {
				return err
			}
			inspector := inspect.New(model, backend)
			fmt.Fprintf(cmd.OutOrStdout(), "model: %d parameters\n", model.NumParameters())

			classNames := ckpt.ClassNames
			if len(classNames) == 0 {
				classNames = corpus.ClassNames
			}

			batches, err := dataset.Batches(corpus, batchSize, backend)
			if err != nil {
				return err
			}

			correct := 0
			var mismatches []inspect.Mismatch
			offset := 0
			for _, batch := range batches {
				predicted, err := inspector.PredictClasses(batch.Images)
				if err != nil {
					return err
				}
				wrong, err := inspect.Mismatches(predicted, batch.Labels)
				if err != nil {
					return err
				}
				correct += batch.Size - len(wrong)
				for _, m := range wrong {
					m.Position += offset
					mismatches = append(mismatches, m)
				}
				offset += batch.Size
			}

			total := corpus.Len()
			fmt.Fprintf(cmd.OutOrStdout(), "accuracy: %.2f%% (%d/%d), %d mismatches\n",
				float64(correct)/float64(total)*100, correct, total, len(mismatches))

			shown := min(showMismatches, len(mismatches))
			for _, m := range mismatches[:shown] {
				names, err := inspect.LabelStrings([]int32{m.Predicted, m.Truth}, classNames)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  sample %5d: predicted %-12s truth %s\n",
					m.Position, names[0], names[1])
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&checkpointPath, "checkpoint", "m", "model.json", "trained model file")
	cmd.Flags().StringVarP(&dataDir, "data", "d", ".", "corpus directory")
	cmd.Flags().StringVarP(&format, "format", "f", "synthetic", "corpus format: cifar10, mnist, or synthetic")
	cmd.Flags().IntVar(&batchSize, "batch-size", 64, "evaluation batch size")
	cmd.Flags().IntVar(&showMismatches, "show-mismatches", 10, "print at most this many mismatches")
	return cmd
}
