package nn

import "github.com/optic-ml/optic/internal/tensor"

// MaxPool2D downsamples NCHW input by taking the maximum of each
// window. No trainable parameters.
type MaxPool2D[B tensor.Backend] struct {
	kernelSize int
	stride     int
	backend    B
}

// NewMaxPool2D creates a pooling layer. A stride of 0 defaults to the
// kernel size (non-overlapping windows).
func NewMaxPool2D[B tensor.Backend](kernelSize, stride int, backend B) *MaxPool2D[B] {
	if stride <= 0 {
		stride = kernelSize
	}
	return &MaxPool2D[B]{kernelSize: kernelSize, stride: stride, backend: backend}
}

func (m *MaxPool2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	raw, _ := m.backend.MaxPool2D(input.Raw(), m.kernelSize, m.stride)
	return tensor.FromRaw[float32](raw, m.backend)
}

func (m *MaxPool2D[B]) Parameters() []*Parameter[B] { return nil }
