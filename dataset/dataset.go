// Package dataset loads image classification corpora into normalized
// tensors: CIFAR-10 binary batches, MNIST IDX files, and a synthetic
// generator for tests and smoke runs.
//
// Images are stored flat in NCHW order as float32 in [0, 1]; labels
// are class indices with a parallel string table.
package dataset

import (
	"fmt"
	"math/rand"
)

// Dataset holds a labeled image corpus. Pixels are already scaled to
// [0, 1]; one sample occupies Channels*Height*Width consecutive floats.
type Dataset struct {
	Images     []float32
	Channels   int
	Height     int
	Width      int
	Labels     []int32
	ClassNames []string
}

// Len returns the number of samples.
func (d *Dataset) Len() int { return len(d.Labels) }

// NumClasses returns the size of the label table.
func (d *Dataset) NumClasses() int { return len(d.ClassNames) }

// SampleSize returns the number of floats per image.
func (d *Dataset) SampleSize() int { return d.Channels * d.Height * d.Width }

// Validate checks internal consistency: non-empty, matching image and
// label counts, and every label inside the class table.
func (d *Dataset) Validate() error {
	if d.Len() == 0 {
		return fmt.Errorf("dataset: empty")
	}
	if d.NumClasses() == 0 {
		return fmt.Errorf("dataset: no class names")
	}
	if len(d.Images) != d.Len()*d.SampleSize() {
		return fmt.Errorf("dataset: %d floats for %d samples of size %d",
			len(d.Images), d.Len(), d.SampleSize())
	}
	n := int32(d.NumClasses())
	for i, label := range d.Labels {
		if label < 0 || label >= n {
			return fmt.Errorf("dataset: sample %d has label %d outside [0, %d)", i, label, n)
		}
	}
	return nil
}

// Split partitions the dataset into a leading part of the given ratio
// and the remainder. Both parts share the class table. The split is
// positional; shuffle first if the corpus is ordered by class.
func (d *Dataset) Split(ratio float64) (*Dataset, *Dataset, error) {
	if ratio <= 0 || ratio >= 1 {
		return nil, nil, fmt.Errorf("dataset: split ratio %v outside (0, 1)", ratio)
	}
	cut := int(float64(d.Len()) * ratio)
	if cut == 0 || cut == d.Len() {
		return nil, nil, fmt.Errorf("dataset: ratio %v leaves an empty part for %d samples", ratio, d.Len())
	}

	size := d.SampleSize()
	first := &Dataset{
		Images:     d.Images[:cut*size],
		Channels:   d.Channels,
		Height:     d.Height,
		Width:      d.Width,
		Labels:     d.Labels[:cut],
		ClassNames: d.ClassNames,
	}
	second := &Dataset{
		Images:     d.Images[cut*size:],
		Channels:   d.Channels,
		Height:     d.Height,
		Width:      d.Width,
		Labels:     d.Labels[cut:],
		ClassNames: d.ClassNames,
	}
	return first, second, nil
}

// Shuffle permutes samples in place.
func (d *Dataset) Shuffle(rng *rand.Rand) {
	size := d.SampleSize()
	tmp := make([]float32, size)
	rng.Shuffle(d.Len(), func(i, j int) {
		d.Labels[i], d.Labels[j] = d.Labels[j], d.Labels[i]
		a := d.Images[i*size : (i+1)*size]
		b := d.Images[j*size : (j+1)*size]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	})
}

// Image returns the pixels of one sample.
func (d *Dataset) Image(i int) []float32 {
	size := d.SampleSize()
	return d.Images[i*size : (i+1)*size]
}

// normalizePixels converts raw bytes to [0, 1] floats.
func normalizePixels(dst []float32, src []byte) {
	for i, b := range src {
		dst[i] = float32(b) / 255.0
	}
}
