package dataset

import (
	"encoding/binary"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optic-ml/optic/backend/cpu"
	"github.com/optic-ml/optic/tensor"
)

func testDataset(t *testing.T, samples int) *Dataset {
	t.Helper()
	d, err := Synthetic(SyntheticConfig{
		Samples:    samples,
		Channels:   1,
		Height:     4,
		Width:      4,
		NumClasses: 3,
		Seed:       1,
	})
	require.NoError(t, err)
	return d
}

func TestSyntheticDeterministic(t *testing.T) {
	a := testDataset(t, 9)
	b := testDataset(t, 9)
	assert.Equal(t, a.Images, b.Images)
	assert.Equal(t, a.Labels, b.Labels)
	assert.Equal(t, 3, a.NumClasses())
}

func TestSyntheticPixelsNormalized(t *testing.T) {
	d := testDataset(t, 30)
	for _, v := range d.Images {
		assert.GreaterOrEqual(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(1))
	}
}

func TestValidateCatchesBadLabel(t *testing.T) {
	d := testDataset(t, 6)
	require.NoError(t, d.Validate())

	d.Labels[2] = 7
	assert.Error(t, d.Validate())

	empty := &Dataset{ClassNames: []string{"a"}}
	assert.Error(t, empty.Validate())
}

func TestSplit(t *testing.T) {
	d := testDataset(t, 10)
	train, valid, err := d.Split(0.8)
	require.NoError(t, err)

	assert.Equal(t, 8, train.Len())
	assert.Equal(t, 2, valid.Len())
	assert.Equal(t, d.ClassNames, valid.ClassNames)
	assert.Equal(t, d.Image(8), valid.Image(0))

	_, _, err = d.Split(0)
	assert.Error(t, err)
	_, _, err = d.Split(1)
	assert.Error(t, err)
}

func TestShuffleKeepsPairing(t *testing.T) {
	d := testDataset(t, 12)

	// Record the image that belongs to each label value at a fixed
	// position before shuffling.
	type pair struct {
		label int32
		pixel float32
	}
	before := make([]pair, d.Len())
	for i := range before {
		before[i] = pair{d.Labels[i], d.Image(i)[0]}
	}

	d.Shuffle(rand.New(rand.NewSource(3)))

	after := make([]pair, d.Len())
	for i := range after {
		after[i] = pair{d.Labels[i], d.Image(i)[0]}
	}
	assert.ElementsMatch(t, before, after)
}

func TestOneHotRoundTrip(t *testing.T) {
	labels := []int32{0, 2, 1, 2}
	hot, err := OneHotEncode(labels, 3)
	require.NoError(t, err)
	assert.Equal(t, []float32{
		1, 0, 0,
		0, 0, 1,
		0, 1, 0,
		0, 0, 1,
	}, hot)

	back, err := OneHotDecode(hot, 3)
	require.NoError(t, err)
	assert.Equal(t, labels, back)
}

func TestDatasetOneHot(t *testing.T) {
	d := testDataset(t, 6)
	hot, err := d.OneHot()
	require.NoError(t, err)
	require.Len(t, hot, 6*d.NumClasses())

	back, err := OneHotDecode(hot, d.NumClasses())
	require.NoError(t, err)
	assert.Equal(t, d.Labels, back)
}

func TestOneHotRejectsOutOfRange(t *testing.T) {
	_, err := OneHotEncode([]int32{0, 3}, 3)
	assert.Error(t, err)
	_, err = OneHotEncode([]int32{-1}, 3)
	assert.Error(t, err)
}

func TestBatchesCount(t *testing.T) {
	backend := cpu.New()
	tests := []struct {
		samples, batchSize, wantBatches, wantLast int
	}{
		{10, 4, 3, 2},
		{8, 4, 2, 4},
		{3, 5, 1, 3}, // batch larger than the corpus
		{1, 1, 1, 1},
	}
	for _, tt := range tests {
		d := testDataset(t, tt.samples)
		batches, err := Batches(d, tt.batchSize, backend)
		require.NoError(t, err)
		require.Len(t, batches, tt.wantBatches, "samples=%d batch=%d", tt.samples, tt.batchSize)

		total := 0
		for _, b := range batches {
			total += b.Size
		}
		assert.Equal(t, tt.samples, total)
		assert.Equal(t, tt.wantLast, batches[len(batches)-1].Size)
	}
}

func TestBatchTensors(t *testing.T) {
	backend := cpu.New()
	d := testDataset(t, 5)

	batches, err := Batches(d, 2, backend)
	require.NoError(t, err)

	first := batches[0]
	assert.True(t, first.Images.Shape().Equal(tensor.Shape{2, 1, 4, 4}))
	assert.True(t, first.OneHot.Shape().Equal(tensor.Shape{2, 3}))
	assert.Equal(t, d.Labels[:2], first.Labels)

	// One-hot rows match the integer labels.
	hot := first.OneHot.Data()
	for i, label := range first.Labels {
		assert.Equal(t, float32(1), hot[i*3+int(label)])
	}

	_, err = Batches(d, 0, backend)
	assert.Error(t, err)
}

func TestLoadCIFAR10Batches(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data_batch_1.bin")

	// Two records: label 9 with all-255 pixels, label 0 with all-0.
	record1 := append([]byte{9}, fullBytes(cifarPixels, 255)...)
	record2 := append([]byte{0}, fullBytes(cifarPixels, 0)...)
	require.NoError(t, os.WriteFile(path, append(record1, record2...), 0o644))

	d, err := LoadCIFAR10Batches(path)
	require.NoError(t, err)

	assert.Equal(t, 2, d.Len())
	assert.Equal(t, []int32{9, 0}, d.Labels)
	assert.Equal(t, "truck", d.ClassNames[d.Labels[0]])
	assert.Equal(t, float32(1), d.Image(0)[0])
	assert.Equal(t, float32(0), d.Image(1)[0])
}

func TestLoadCIFAR10TruncatedRecord(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.bin")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o644))

	_, err := LoadCIFAR10Batches(path)
	assert.Error(t, err)
}

func TestLoadMNISTFiles(t *testing.T) {
	dir := t.TempDir()
	imagesPath := filepath.Join(dir, "images")
	labelsPath := filepath.Join(dir, "labels")

	writeIDXImages(t, imagesPath, 2, 2, 2, []byte{0, 255, 128, 0, 255, 255, 0, 0})
	writeIDXLabels(t, labelsPath, []byte{3, 7})

	d, err := LoadMNISTFiles(imagesPath, labelsPath)
	require.NoError(t, err)

	assert.Equal(t, 2, d.Len())
	assert.Equal(t, []int32{3, 7}, d.Labels)
	assert.Equal(t, 1, d.Channels)
	assert.Equal(t, float32(1), d.Image(0)[1]) // 255 -> 1.0
	assert.Equal(t, "3", d.ClassNames[d.Labels[0]])
}

func TestLoadMNISTRejectsImplausibleHeader(t *testing.T) {
	dir := t.TempDir()
	imagesPath := filepath.Join(dir, "images")
	labelsPath := filepath.Join(dir, "labels")
	writeIDXLabels(t, labelsPath, []byte{1, 2})

	// The claimed sizes multiply past any real corpus; a uint32 product
	// would wrap to 0 and silently read an empty pixel block.
	writeIDXImages(t, imagesPath, 1<<16, 1<<8, 1<<8, nil)
	_, err := LoadMNISTFiles(imagesPath, labelsPath)
	assert.ErrorContains(t, err, "pixel bytes")

	writeIDXImages(t, imagesPath, 1, 1<<16, 1<<16, nil)
	_, err = LoadMNISTFiles(imagesPath, labelsPath)
	assert.ErrorContains(t, err, "implausible image size")

	writeIDXImages(t, imagesPath, 1, 0, 28, nil)
	_, err = LoadMNISTFiles(imagesPath, labelsPath)
	assert.ErrorContains(t, err, "implausible image size")
}

func TestLoadMNISTBadMagic(t *testing.T) {
	dir := t.TempDir()
	imagesPath := filepath.Join(dir, "images")
	labelsPath := filepath.Join(dir, "labels")

	writeIDXImages(t, imagesPath, 1, 2, 2, []byte{1, 2, 3, 4})
	// Labels file with the images magic.
	f, err := os.Create(labelsPath)
	require.NoError(t, err)
	require.NoError(t, binary.Write(f, binary.BigEndian, [2]uint32{idxImagesMagic, 1}))
	require.NoError(t, f.Close())

	_, err = LoadMNISTFiles(imagesPath, labelsPath)
	assert.Error(t, err)
}

func fullBytes(n int, v byte) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func writeIDXImages(t *testing.T, path string, count, rows, cols int, pixels []byte) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, binary.Write(f, binary.BigEndian,
		[4]uint32{idxImagesMagic, uint32(count), uint32(rows), uint32(cols)}))
	_, err = f.Write(pixels)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func writeIDXLabels(t *testing.T, path string, labels []byte) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, binary.Write(f, binary.BigEndian,
		[2]uint32{idxLabelsMagic, uint32(len(labels))}))
	_, err = f.Write(labels)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}
