// Command optic trains, evaluates, and inspects CNN image classifiers
// on small image corpora.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	log.SetFlags(log.LstdFlags)
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "optic",
		Short:         "Train and inspect CNN image classifiers",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newTrainCmd(), newEvalCmd(), newInfoCmd())
	return root
}
