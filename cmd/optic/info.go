package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/optic-ml/optic/backend/cpu"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the compute backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			backend := cpu.New()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "backend:  %s\n", backend.Name())
			fmt.Fprintf(out, "device:   %s\n", backend.Device())
			fmt.Fprintf(out, "cores:    %d\n", cpu.NumCores())
			features := cpu.Features()
			if len(features) == 0 {
				fmt.Fprintln(out, "features: none detected")
				return nil
			}
			fmt.Fprintf(out, "features: %s\n", strings.Join(features, ", "))
			return nil
		},
	}
}
