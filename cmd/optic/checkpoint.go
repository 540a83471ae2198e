package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/optic-ml/optic/nn"
)

// checkpoint is the on-disk model format: the classifier geometry
// needed to rebuild the architecture, the class names, and every
// parameter keyed the way Sequential.StateDict keys them.
type checkpoint struct {
	Model      nn.ClassifierConfig  `json:"model"`
	ClassNames []string             `json:"class_names"`
	State      map[string][]float32 `json:"state"`
}

func saveCheckpoint(path string, c checkpoint) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	return nil
}

func loadCheckpoint(path string) (checkpoint, error) {
	var c checkpoint
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("checkpoint: %w", err)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("checkpoint: %s: %w", path, err)
	}
	if len(c.State) == 0 {
		return c, fmt.Errorf("checkpoint: %s: no parameters", path)
	}
	return c, nil
}
