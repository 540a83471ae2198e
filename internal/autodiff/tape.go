package autodiff

import (
	"fmt"

	"github.com/optic-ml/optic/internal/autodiff/ops"
	"github.com/optic-ml/optic/internal/tensor"
)

// GradientTape records forward operations so a reverse walk can
// compute gradients. One tape serves one forward/backward cycle; call
// Clear before the next one.
type GradientTape struct {
	operations []ops.Operation
	recording  bool
}

func NewGradientTape() *GradientTape {
	return &GradientTape{}
}

// StartRecording begins capturing operations.
func (t *GradientTape) StartRecording() { t.recording = true }

// StopRecording pauses capture. Validation and inference run with the
// tape stopped.
func (t *GradientTape) StopRecording() { t.recording = false }

// IsRecording reports whether operations are being captured.
func (t *GradientTape) IsRecording() bool { return t.recording }

// Clear drops all recorded operations. Recording state is unchanged.
func (t *GradientTape) Clear() { t.operations = t.operations[:0] }

// NumOps returns the number of recorded operations.
func (t *GradientTape) NumOps() int { return len(t.operations) }

// Record appends an operation and pins its tensors so later in-place
// ops cannot rewrite values the backward pass will read.
func (t *GradientTape) Record(op ops.Operation) {
	if !t.recording {
		return
	}
	for _, in := range op.Inputs() {
		in.ForceNonUnique()
	}
	op.Output().ForceNonUnique()
	t.operations = append(t.operations, op)
}

// Backward walks the tape in reverse from the given output, seeding it
// with outputGrad, and returns the accumulated gradient for every
// tensor reached. The backend must not be a recording one.
func (t *GradientTape) Backward(output, outputGrad *tensor.RawTensor, backend tensor.Backend) map[*tensor.RawTensor]*tensor.RawTensor {
	if len(t.operations) == 0 {
		panic("tape: backward with no recorded operations")
	}

	grads := make(map[*tensor.RawTensor]*tensor.RawTensor)
	outputGrad.ForceNonUnique()
	grads[output] = outputGrad

	for i := len(t.operations) - 1; i >= 0; i-- {
		op := t.operations[i]
		grad, ok := grads[op.Output()]
		if !ok {
			continue // branch not connected to the output
		}

		inputGrads := op.Backward(grad, backend)
		inputs := op.Inputs()
		if len(inputGrads) != len(inputs) {
			panic(fmt.Sprintf("tape: op returned %d gradients for %d inputs", len(inputGrads), len(inputs)))
		}

		for j, in := range inputs {
			g := inputGrads[j]
			if g == nil {
				continue
			}
			if existing, ok := grads[in]; ok {
				g = backend.Add(existing, g)
			}
			g.ForceNonUnique()
			grads[in] = g
		}
	}
	return grads
}
