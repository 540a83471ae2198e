package dataset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CIFAR-10 binary format: each record is 1 label byte followed by
// 3072 pixel bytes (1024 red, 1024 green, 1024 blue, each a row-major
// 32x32 plane). A batch file holds 10000 records.
const (
	cifarHeight     = 32
	cifarWidth      = 32
	cifarChannels   = 3
	cifarPixels     = cifarChannels * cifarHeight * cifarWidth
	cifarRecordSize = 1 + cifarPixels
)

// CIFAR10Classes is the canonical label table.
var CIFAR10Classes = []string{
	"airplane", "automobile", "bird", "cat", "deer",
	"dog", "frog", "horse", "ship", "truck",
}

// LoadCIFAR10 reads the five training batch files from dir.
func LoadCIFAR10(dir string) (*Dataset, error) {
	paths := make([]string, 0, 5)
	for i := 1; i <= 5; i++ {
		paths = append(paths, filepath.Join(dir, fmt.Sprintf("data_batch_%d.bin", i)))
	}
	return LoadCIFAR10Batches(paths...)
}

// LoadCIFAR10Test reads the held-out test batch from dir.
func LoadCIFAR10Test(dir string) (*Dataset, error) {
	return LoadCIFAR10Batches(filepath.Join(dir, "test_batch.bin"))
}

// LoadCIFAR10Batches reads and concatenates the given batch files.
func LoadCIFAR10Batches(paths ...string) (*Dataset, error) {
	d := &Dataset{
		Channels:   cifarChannels,
		Height:     cifarHeight,
		Width:      cifarWidth,
		ClassNames: CIFAR10Classes,
	}
	for _, path := range paths {
		if err := appendCIFAR10File(d, path); err != nil {
			return nil, err
		}
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func appendCIFAR10File(d *Dataset, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cifar10: %w", err)
	}
	defer f.Close()
	return appendCIFAR10(d, f, path)
}

func appendCIFAR10(d *Dataset, r io.Reader, name string) error {
	record := make([]byte, cifarRecordSize)
	for {
		_, err := io.ReadFull(r, record)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("cifar10: %s: truncated record: %w", name, err)
		}

		label := int32(record[0])
		if label < 0 || int(label) >= len(CIFAR10Classes) {
			return fmt.Errorf("cifar10: %s: label %d outside [0, %d)", name, label, len(CIFAR10Classes))
		}
		d.Labels = append(d.Labels, label)

		pixels := make([]float32, cifarPixels)
		normalizePixels(pixels, record[1:])
		d.Images = append(d.Images, pixels...)
	}
}
