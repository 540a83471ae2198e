package nn

import (
	"fmt"

	"github.com/optic-ml/optic/internal/tensor"
)

// CrossEntropyLoss computes the mean cross-entropy between logits and
// one-hot targets. The backend records the op so gradients flow back
// to the logits during training.
type CrossEntropyLoss[B tensor.Backend] struct {
	backend B
}

func NewCrossEntropyLoss[B tensor.Backend](backend B) *CrossEntropyLoss[B] {
	return &CrossEntropyLoss[B]{backend: backend}
}

// Forward returns a scalar loss tensor. Logits and one-hot targets
// must both be [batch, classes].
func (l *CrossEntropyLoss[B]) Forward(logits, targets *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	raw := l.backend.CrossEntropy(logits.Raw(), targets.Raw())
	return tensor.FromRaw[float32](raw, l.backend)
}

// Accuracy returns the fraction of rows whose argmax matches the
// integer label. Ties in the scores resolve to the lowest class index,
// so repeated evaluation of the same outputs gives the same value.
func Accuracy[B tensor.Backend](outputs *tensor.Tensor[float32, B], labels []int32) (float64, error) {
	shape := outputs.Shape()
	if len(shape) != 2 {
		return 0, fmt.Errorf("accuracy: want 2D outputs, got shape %v", shape)
	}
	if shape[0] != len(labels) {
		return 0, fmt.Errorf("accuracy: %d output rows vs %d labels", shape[0], len(labels))
	}
	if len(labels) == 0 {
		return 0, fmt.Errorf("accuracy: empty batch")
	}

	pred := outputs.Argmax(1).Data()
	correct := 0
	for i, p := range pred {
		if p == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(labels)), nil
}
