package dataset

import (
	"fmt"

	"github.com/optic-ml/optic/tensor"
)

// Batch is one training slice, ready for the model: NCHW images, the
// integer labels, and their one-hot expansion for the loss.
type Batch[B tensor.Backend] struct {
	Images *tensor.Tensor[float32, B]
	OneHot *tensor.Tensor[float32, B]
	Labels []int32
	Size   int
}

// Batches cuts the dataset into ceil(N/batchSize) batches. The final
// batch is short when batchSize does not divide N; no sample is
// dropped.
func Batches[B tensor.Backend](d *Dataset, batchSize int, backend B) ([]Batch[B], error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("dataset: batch size must be positive, got %d", batchSize)
	}

	n := d.Len()
	size := d.SampleSize()
	numBatches := (n + batchSize - 1) / batchSize
	out := make([]Batch[B], 0, numBatches)

	for start := 0; start < n; start += batchSize {
		end := min(start+batchSize, n)
		count := end - start

		images, err := tensor.New(
			d.Images[start*size:end*size],
			tensor.Shape{count, d.Channels, d.Height, d.Width}, backend)
		if err != nil {
			return nil, fmt.Errorf("dataset: batch at %d: %w", start, err)
		}

		labels := d.Labels[start:end]
		hot, err := OneHotEncode(labels, d.NumClasses())
		if err != nil {
			return nil, err
		}
		oneHot, err := tensor.New(hot, tensor.Shape{count, d.NumClasses()}, backend)
		if err != nil {
			return nil, fmt.Errorf("dataset: batch at %d: %w", start, err)
		}

		out = append(out, Batch[B]{Images: images, OneHot: oneHot, Labels: labels, Size: count})
	}
	return out, nil
}
