package cpu

import (
	"fmt"
	"math"

	"github.com/optic-ml/optic/internal/tensor"
)

// Softmax applies softmax along the last dimension of a 2D tensor.
// Rows are max-shifted before exponentiation for numerical stability.
func (cpu *CPUBackend) Softmax(t *tensor.RawTensor) *tensor.RawTensor {
	shape := t.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("Softmax: want 2D tensor [batch, classes], got shape %v", shape))
	}

	out, err := tensor.NewRaw(shape, t.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("Softmax: %v", err))
	}

	rows, cols := shape[0], shape[1]
	switch t.DType() {
	case tensor.Float32:
		softmaxRowsFloat32(t.AsFloat32(), out.AsFloat32(), rows, cols)
	case tensor.Float64:
		softmaxRowsFloat64(t.AsFloat64(), out.AsFloat64(), rows, cols)
	default:
		panic(fmt.Sprintf("Softmax: unsupported dtype %s", t.DType()))
	}
	return out
}

func softmaxRowsFloat32(in, out []float32, rows, cols int) {
	for r := 0; r < rows; r++ {
		row := in[r*cols : (r+1)*cols]
		outRow := out[r*cols : (r+1)*cols]

		maxVal := row[0]
		for _, v := range row[1:] {
			if v > maxVal {
				maxVal = v
			}
		}
		var sum float32
		for j, v := range row {
			e := float32(math.Exp(float64(v - maxVal)))
			outRow[j] = e
			sum += e
		}
		for j := range outRow {
			outRow[j] /= sum
		}
	}
}

func softmaxRowsFloat64(in, out []float64, rows, cols int) {
	for r := 0; r < rows; r++ {
		row := in[r*cols : (r+1)*cols]
		outRow := out[r*cols : (r+1)*cols]

		maxVal := row[0]
		for _, v := range row[1:] {
			if v > maxVal {
				maxVal = v
			}
		}
		var sum float64
		for j, v := range row {
			e := math.Exp(v - maxVal)
			outRow[j] = e
			sum += e
		}
		for j := range outRow {
			outRow[j] /= sum
		}
	}
}

// CrossEntropy computes the mean cross-entropy between logits
// [batch, classes] and one-hot targets of the same shape, returning a
// scalar tensor. Uses the log-sum-exp identity so large logits do not
// overflow:
//
//	loss_b = logsumexp(x_b) - Σ_c onehot[b,c] * x[b,c]
func (cpu *CPUBackend) CrossEntropy(logits, targets *tensor.RawTensor) *tensor.RawTensor {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("CrossEntropy: want 2D logits, got shape %v", shape))
	}
	if !shape.Equal(targets.Shape()) {
		panic(fmt.Sprintf("CrossEntropy: logits %v vs targets %v", shape, targets.Shape()))
	}
	if logits.DType() != tensor.Float32 || targets.DType() != tensor.Float32 {
		panic("CrossEntropy: float32 logits and targets required")
	}

	out, err := tensor.NewRaw(tensor.Shape{}, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("CrossEntropy: %v", err))
	}

	rows, cols := shape[0], shape[1]
	lv, tv := logits.AsFloat32(), targets.AsFloat32()

	var total float64
	for r := 0; r < rows; r++ {
		row := lv[r*cols : (r+1)*cols]
		tRow := tv[r*cols : (r+1)*cols]

		maxVal := row[0]
		for _, v := range row[1:] {
			if v > maxVal {
				maxVal = v
			}
		}
		var sumExp float64
		for _, v := range row {
			sumExp += math.Exp(float64(v - maxVal))
		}
		logSumExp := float64(maxVal) + math.Log(sumExp)

		var target float64
		for j, w := range tRow {
			if w != 0 {
				target += float64(w) * float64(row[j])
			}
		}
		total += logSumExp - target
	}

	out.AsFloat32()[0] = float32(total / float64(rows))
	return out
}
