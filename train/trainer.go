package train

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/optic-ml/optic/autodiff"
	"github.com/optic-ml/optic/dataset"
	"github.com/optic-ml/optic/nn"
	"github.com/optic-ml/optic/optim"
	"github.com/optic-ml/optic/tensor"
)

// Trainer owns everything a run needs: the model, the loss, the
// optimizer, and the autodiff backend. Parameter updates go through
// the trainer's optimizer, never through the model itself, so repeated
// Fit calls continue from the current weights and optimizer state.
type Trainer[B tensor.Backend] struct {
	backend   *autodiff.AutodiffBackend[B]
	model     *nn.Sequential[*autodiff.AutodiffBackend[B]]
	loss      *nn.CrossEntropyLoss[*autodiff.AutodiffBackend[B]]
	optimizer optim.Optimizer
	cfg       Config
	logger    *log.Logger

	// One observer per completed epoch, for live curve serving.
	observers    []func(EpochStats)
	runObservers []func(runID string)
}

// New creates a trainer for a model built against the given autodiff
// backend. The optimizer is Adam with the configured learning rate.
func New[B tensor.Backend](
	model *nn.Sequential[*autodiff.AutodiffBackend[B]],
	backend *autodiff.AutodiffBackend[B],
	cfg Config,
) (*Trainer[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("trainer: %w", err)
	}
	return &Trainer[B]{
		backend:   backend,
		model:     model,
		loss:      nn.NewCrossEntropyLoss(backend),
		optimizer: optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: cfg.LearningRate}),
		cfg:       cfg,
		logger:    log.New(log.Writer(), "train: ", log.LstdFlags),
	}, nil
}

// Model returns the trained model.
func (t *Trainer[B]) Model() *nn.Sequential[*autodiff.AutodiffBackend[B]] { return t.model }

// Backend returns the autodiff backend the model runs on.
func (t *Trainer[B]) Backend() *autodiff.AutodiffBackend[B] { return t.backend }

// Observe registers a callback invoked after every completed epoch.
func (t *Trainer[B]) Observe(fn func(EpochStats)) {
	t.observers = append(t.observers, fn)
}

// ObserveRun registers a callback invoked when Fit opens a new run,
// before the first epoch.
func (t *Trainer[B]) ObserveRun(fn func(runID string)) {
	t.runObservers = append(t.runObservers, fn)
}

// Fit trains on the given corpus and returns the History of this run.
// When valid is nil and the config has a validation split, the tail of
// the training set is held out. Training data is shuffled in place
// between epochs.
func (t *Trainer[B]) Fit(trainSet, valid *dataset.Dataset) (*History, error) {
	if err := trainSet.Validate(); err != nil {
		return nil, fmt.Errorf("trainer: %w", err)
	}
	if valid == nil && t.cfg.ValidationSplit > 0 {
		var err error
		trainSet, valid, err = trainSet.Split(1 - t.cfg.ValidationSplit)
		if err != nil {
			return nil, fmt.Errorf("trainer: validation split: %w", err)
		}
	}

	rng := rand.New(rand.NewSource(t.cfg.Seed))
	stop := NewEarlyStopping(t.cfg.EarlyStopMinDelta, t.cfg.EarlyStopPatience)
	history := NewHistory()
	start := time.Now()
	for _, fn := range t.runObservers {
		fn(history.RunID)
	}

	t.logger.Printf("run %s: %d samples, %d parameters, %d epochs, batch size %d, lr %g on %s",
		history.RunID, trainSet.Len(), t.model.NumParameters(), t.cfg.Epochs, t.cfg.BatchSize,
		t.optimizer.LR(), t.backend.Device())

	for epoch := 1; epoch <= t.cfg.Epochs; epoch++ {
		if t.cfg.Shuffle {
			trainSet.Shuffle(rng)
		}
		trainLoss, trainAcc, err := t.trainEpoch(trainSet)
		if err != nil {
			return history, err
		}

		stats := EpochStats{
			Epoch:     epoch,
			TrainLoss: trainLoss,
			TrainAcc:  trainAcc,
			Elapsed:   time.Since(start),
		}

		halt := false
		if valid != nil {
			stats.ValidLoss, stats.ValidAcc, err = t.Evaluate(valid)
			if err != nil {
				return history, err
			}
			halt = stop(stats.ValidAcc)
			stats.HaltedEarly = halt
		}

		history.append(stats)
		for _, fn := range t.observers {
			fn(stats)
		}
		if t.cfg.LogEvery > 0 && (epoch%t.cfg.LogEvery == 0 || halt || epoch == t.cfg.Epochs) {
			t.logStats(stats, valid != nil)
		}

		if halt {
			t.logger.Printf("run %s: halted after epoch %d, no validation improvement", history.RunID, epoch)
			break
		}
	}
	return history, nil
}

func (t *Trainer[B]) trainEpoch(d *dataset.Dataset) (loss, acc float64, err error) {
	batches, err := dataset.Batches(d, t.cfg.BatchSize, t.backend)
	if err != nil {
		return 0, 0, fmt.Errorf("trainer: %w", err)
	}

	tape := t.backend.Tape()
	tape.StartRecording()
	defer tape.StopRecording()

	var lossSum float64
	var correctWeighted float64
	total := 0

	for _, batch := range batches {
		t.optimizer.ZeroGrad()
		tape.Clear()

		outputs := t.model.Forward(batch.Images)
		batchLoss := t.loss.Forward(outputs, batch.OneHot)

		grads := t.backend.Backward(batchLoss.Raw())
		t.optimizer.Step(grads)
		tape.Clear()

		batchAcc, err := nn.Accuracy(outputs, batch.Labels)
		if err != nil {
			return 0, 0, fmt.Errorf("trainer: %w", err)
		}

		lossSum += float64(batchLoss.Data()[0]) * float64(batch.Size)
		correctWeighted += batchAcc * float64(batch.Size)
		total += batch.Size
	}
	return lossSum / float64(total), correctWeighted / float64(total), nil
}

// Evaluate computes mean loss and accuracy over a corpus with
// gradient recording off.
func (t *Trainer[B]) Evaluate(d *dataset.Dataset) (loss, acc float64, err error) {
	batches, err := dataset.Batches(d, t.cfg.BatchSize, t.backend)
	if err != nil {
		return 0, 0, fmt.Errorf("trainer: %w", err)
	}

	tape := t.backend.Tape()
	wasRecording := tape.IsRecording()
	tape.StopRecording()
	defer func() {
		if wasRecording {
			tape.StartRecording()
		}
	}()

	var lossSum float64
	var correctWeighted float64
	total := 0

	for _, batch := range batches {
		outputs := t.model.Forward(batch.Images)
		batchLoss := t.loss.Forward(outputs, batch.OneHot)

		batchAcc, err := nn.Accuracy(outputs, batch.Labels)
		if err != nil {
			return 0, 0, fmt.Errorf("trainer: %w", err)
		}

		lossSum += float64(batchLoss.Data()[0]) * float64(batch.Size)
		correctWeighted += batchAcc * float64(batch.Size)
		total += batch.Size
	}
	return lossSum / float64(total), correctWeighted / float64(total), nil
}

func (t *Trainer[B]) logStats(s EpochStats, hasValid bool) {
	if hasValid {
		t.logger.Printf("epoch %3d: loss=%.4f acc=%.2f%% val_loss=%.4f val_acc=%.2f%%",
			s.Epoch, s.TrainLoss, s.TrainAcc*100, s.ValidLoss, s.ValidAcc*100)
		return
	}
	t.logger.Printf("epoch %3d: loss=%.4f acc=%.2f%%", s.Epoch, s.TrainLoss, s.TrainAcc*100)
}
