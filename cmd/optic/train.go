package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/optic-ml/optic/autodiff"
	"github.com/optic-ml/optic/backend/cpu"
	"github.com/optic-ml/optic/nn"
	"github.com/optic-ml/optic/train"
	"github.com/optic-ml/optic/web"
)

func newTrainCmd() *cobra.Command {
	var (
		configPath string
		dataDir    string
		format     string
		outPath    string
		serveAddr  string

		epochs    int
		batchSize int
		lr        float64
		seed      int64
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a CNN classifier on an image corpus",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := train.DefaultConfig()
			if configPath != "" {
				var err error
				cfg, err = train.LoadConfig(configPath)
				if err != nil {
					return err
				}
			}
			// Flags win over the file, the file wins over defaults.
			if cmd.Flags().Changed("epochs") {
				cfg.Epochs = epochs
			}
			if cmd.Flags().Changed("batch-size") {
				cfg.BatchSize = batchSize
			}
			if cmd.Flags().Changed("lr") {
				cfg.LearningRate = lr
			}
			if cmd.Flags().Changed("seed") {
				cfg.Seed = seed
			}

			corpus, err := loadCorpus(format, dataDir, false)
			if err != nil {
				return err
			}

			backend := autodiff.New(cpu.New())
			mcfg := nn.DefaultClassifierConfig()
			mcfg.InChannels = corpus.Channels
			mcfg.Height = corpus.Height
			mcfg.Width = corpus.Width
			mcfg.NumClasses = corpus.NumClasses()
			mcfg.Seed = cfg.Seed

			model, err := nn.BuildClassifier(mcfg, backend)
			if err != nil {
				return err
			}
			trainer, err := train.New(model, backend, cfg)
			if err != nil {
				return err
			}

			if serveAddr != "" {
				srv := web.NewServer()
				trainer.ObserveRun(srv.SetRun)
				trainer.Observe(srv.OnEpoch)
				go func() {
					if err := srv.ListenAndServe(serveAddr); err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "web: %v\n", err)
					}
				}()
			}

			history, err := trainer.Fit(corpus, nil)
			if err != nil {
				return err
			}

			if last, ok := history.Last(); ok {
				fmt.Fprintf(cmd.OutOrStdout(),
					"run %s: %d epochs, final acc %.2f%%, val acc %.2f%%\n",
					history.RunID, history.Len(), last.TrainAcc*100, last.ValidAcc*100)
			}

			if outPath != "" {
				err := saveCheckpoint(outPath, checkpoint{
					Model:      mcfg,
					ClassNames: corpus.ClassNames,
					State:      model.StateDict(),
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved model to %s\n", outPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "training config YAML")
	cmd.Flags().StringVarP(&dataDir, "data", "d", ".", "corpus directory")
	cmd.Flags().StringVarP(&format, "format", "f", "synthetic", "corpus format: cifar10, mnist, or synthetic")
	cmd.Flags().StringVarP(&outPath, "checkpoint", "o", "", "write the trained model to this file")
	cmd.Flags().StringVar(&serveAddr, "serve", "", "serve the live run UI on this address, e.g. :8080")
	cmd.Flags().IntVar(&epochs, "epochs", 0, "override epoch count")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "override batch size")
	cmd.Flags().Float64Var(&lr, "lr", 0, "override learning rate")
	cmd.Flags().Int64Var(&seed, "seed", 0, "override shuffle and init seed")
	return cmd
}
