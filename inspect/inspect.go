// Package inspect examines trained classifiers: class probabilities,
// predicted labels, mismatch positions against ground truth, and
// accuracy curves for plotting.
package inspect

import (
	"fmt"

	"github.com/optic-ml/optic/nn"
	"github.com/optic-ml/optic/tensor"
	"github.com/optic-ml/optic/train"
)

// Inspector wraps a trained model for read-only queries. It never
// mutates parameters; the same inputs always give the same answers.
type Inspector[B tensor.Backend] struct {
	model   *nn.Sequential[B]
	backend B
}

// New creates an inspector over a model. The backend should not be
// recording gradients while inspecting.
func New[B tensor.Backend](model *nn.Sequential[B], backend B) *Inspector[B] {
	return &Inspector[B]{model: model, backend: backend}
}

// Predict returns the softmax probability rows for a batch of images.
// Each row sums to 1.
func (in *Inspector[B]) Predict(images *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	shape := images.Shape()
	if len(shape) != 4 {
		return nil, fmt.Errorf("inspect: want NCHW images, got shape %v", shape)
	}
	logits := in.model.Forward(images)
	return logits.Softmax(), nil
}

// PredictClasses returns the predicted class index per image. Ties in
// the scores resolve to the lowest index, so repeated calls on the
// same input give identical results.
func (in *Inspector[B]) PredictClasses(images *tensor.Tensor[float32, B]) ([]int32, error) {
	probs, err := in.Predict(images)
	if err != nil {
		return nil, err
	}
	return probs.Argmax(1).Data(), nil
}

// LabelStrings maps class indices to their names. Any index outside
// the table is an error.
func LabelStrings(indices []int32, classNames []string) ([]string, error) {
	out := make([]string, len(indices))
	for i, idx := range indices {
		if idx < 0 || int(idx) >= len(classNames) {
			return nil, fmt.Errorf("inspect: class index %d outside [0, %d)", idx, len(classNames))
		}
		out[i] = classNames[idx]
	}
	return out, nil
}

// Mismatch is one disagreement between prediction and ground truth.
type Mismatch struct {
	Position  int
	Predicted int32
	Truth     int32
}

// Mismatches reports every position where the two label slices differ.
// The slices must have equal length.
func Mismatches(predicted, truth []int32) ([]Mismatch, error) {
	if len(predicted) != len(truth) {
		return nil, fmt.Errorf("inspect: %d predictions vs %d labels", len(predicted), len(truth))
	}
	var out []Mismatch
	for i := range predicted {
		if predicted[i] != truth[i] {
			out = append(out, Mismatch{Position: i, Predicted: predicted[i], Truth: truth[i]})
		}
	}
	return out, nil
}

// Curves are the aligned per-epoch accuracy series of one run.
type Curves struct {
	Epochs  []int
	Train   []float64
	Valid   []float64
	Summary train.CurveSummary
}

// AccuracyCurves extracts plot-ready accuracy series from a History.
// The summary covers the validation series.
func AccuracyCurves(h *train.History) Curves {
	epochs := make([]int, h.Len())
	for i, s := range h.Epochs {
		epochs[i] = s.Epoch
	}
	valid := h.ValidAccuracy()
	return Curves{
		Epochs:  epochs,
		Train:   h.TrainAccuracy(),
		Valid:   valid,
		Summary: train.Summarize(valid),
	}
}
