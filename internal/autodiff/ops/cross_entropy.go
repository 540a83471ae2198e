package ops

import (
	"fmt"
	"math"

	"github.com/optic-ml/optic/internal/tensor"
)

// CrossEntropyOp records the mean cross-entropy of logits against
// one-hot targets. Only the logits receive a gradient:
//
//	grad_logits[b,c] = g * (softmax(logits)[b,c] - onehot[b,c]) / batch
//
// where g is the scalar output gradient.
type CrossEntropyOp struct {
	logits  *tensor.RawTensor
	targets *tensor.RawTensor
	output  *tensor.RawTensor
}

func NewCrossEntropyOp(logits, targets, output *tensor.RawTensor) *CrossEntropyOp {
	return &CrossEntropyOp{logits: logits, targets: targets, output: output}
}

func (op *CrossEntropyOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.logits} }
func (op *CrossEntropyOp) Output() *tensor.RawTensor   { return op.output }

func (op *CrossEntropyOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	shape := op.logits.Shape()
	rows, cols := shape[0], shape[1]

	grad, err := tensor.NewRaw(shape, tensor.Float32, op.logits.Device())
	if err != nil {
		panic(fmt.Sprintf("CrossEntropyOp: %v", err))
	}

	g := outputGrad.AsFloat32()[0]
	lv := op.logits.AsFloat32()
	tv := op.targets.AsFloat32()
	gv := grad.AsFloat32()
	scale := g / float32(rows)

	for r := 0; r < rows; r++ {
		base := r * cols

		maxVal := lv[base]
		for j := 1; j < cols; j++ {
			if lv[base+j] > maxVal {
				maxVal = lv[base+j]
			}
		}
		var sumExp float64
		for j := 0; j < cols; j++ {
			sumExp += math.Exp(float64(lv[base+j] - maxVal))
		}
		for j := 0; j < cols; j++ {
			soft := float32(math.Exp(float64(lv[base+j]-maxVal)) / sumExp)
			gv[base+j] = scale * (soft - tv[base+j])
		}
	}
	return []*tensor.RawTensor{grad}
}
