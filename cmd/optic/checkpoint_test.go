package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optic-ml/optic/backend/cpu"
	"github.com/optic-ml/optic/nn"
)

func TestCheckpointRoundTrip(t *testing.T) {
	backend := cpu.New()
	cfg := nn.DefaultClassifierConfig()
	cfg.InChannels, cfg.Height, cfg.Width = 1, 8, 8
	cfg.Conv1Channels, cfg.Conv2Channels = 2, 4
	cfg.HiddenSize, cfg.NumClasses = 8, 3

	model, err := nn.BuildClassifier(cfg, backend)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, saveCheckpoint(path, checkpoint{
		Model:      cfg,
		ClassNames: []string{"a", "b", "c"},
		State:      model.StateDict(),
	}))

	loaded, err := loadCheckpoint(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded.Model)
	assert.Equal(t, []string{"a", "b", "c"}, loaded.ClassNames)

	restored, err := nn.BuildClassifier(loaded.Model, backend)
	require.NoError(t, err)
	require.NoError(t, restored.LoadStateDict(loaded.State))
	assert.Equal(t, model.StateDict(), restored.StateDict())
}

func TestLoadCheckpointRejectsEmptyState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"state":{}}`), 0o644))

	_, err := loadCheckpoint(path)
	assert.ErrorContains(t, err, "no parameters")
}

func TestLoadCorpusUnknownFormat(t *testing.T) {
	_, err := loadCorpus("imagenet", ".", false)
	assert.ErrorContains(t, err, "unknown corpus format")
}

func TestLoadCorpusSynthetic(t *testing.T) {
	d, err := loadCorpus("synthetic", "", false)
	require.NoError(t, err)
	assert.Equal(t, 512, d.Len())
	assert.Equal(t, 10, d.NumClasses())
}
