package main

import (
	"fmt"

	"github.com/optic-ml/optic/dataset"
)

// loadCorpus reads a training corpus by format name. The synthetic
// format ignores dir and generates a deterministic corpus, which keeps
// smoke runs independent of downloaded data.
func loadCorpus(format, dir string, test bool) (*dataset.Dataset, error) {
	switch format {
	case "cifar10":
		if test {
			return dataset.LoadCIFAR10Test(dir)
		}
		return dataset.LoadCIFAR10(dir)
	case "mnist":
		if test {
			return dataset.LoadMNISTTest(dir)
		}
		return dataset.LoadMNIST(dir)
	case "synthetic":
		seed := int64(1)
		if test {
			seed = 2
		}
		return dataset.Synthetic(dataset.SyntheticConfig{
			Samples:    512,
			Channels:   3,
			Height:     32,
			Width:      32,
			NumClasses: 10,
			Seed:       seed,
		})
	default:
		return nil, fmt.Errorf("unknown corpus format %q (want cifar10, mnist, or synthetic)", format)
	}
}
