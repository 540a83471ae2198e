package dataset

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// IDX magic numbers from the MNIST distribution.
const (
	idxImagesMagic = 2051
	idxLabelsMagic = 2049
)

// maxIDXBytes caps the allocation a single IDX header may request. The
// real MNIST files are under 50 MB; anything past this is a corrupt or
// hostile header, and the cap also keeps the size arithmetic below from
// overflowing int.
const maxIDXBytes = 1 << 30

// MNISTClasses is the digit label table.
var MNISTClasses = []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}

// LoadMNIST reads the training images and labels from dir using the
// standard file names.
func LoadMNIST(dir string) (*Dataset, error) {
	return LoadMNISTFiles(
		filepath.Join(dir, "train-images-idx3-ubyte"),
		filepath.Join(dir, "train-labels-idx1-ubyte"))
}

// LoadMNISTTest reads the held-out test set from dir.
func LoadMNISTTest(dir string) (*Dataset, error) {
	return LoadMNISTFiles(
		filepath.Join(dir, "t10k-images-idx3-ubyte"),
		filepath.Join(dir, "t10k-labels-idx1-ubyte"))
}

// LoadMNISTFiles reads an IDX image file and its label file.
func LoadMNISTFiles(imagesPath, labelsPath string) (*Dataset, error) {
	images, height, width, err := readIDXImages(imagesPath)
	if err != nil {
		return nil, err
	}
	labels, err := readIDXLabels(labelsPath)
	if err != nil {
		return nil, err
	}
	if len(labels)*height*width != len(images) {
		return nil, fmt.Errorf("mnist: %d labels for %d pixels of %dx%d images",
			len(labels), len(images), height, width)
	}

	d := &Dataset{
		Images:     images,
		Channels:   1,
		Height:     height,
		Width:      width,
		Labels:     labels,
		ClassNames: MNISTClasses,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func readIDXImages(path string) ([]float32, int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("mnist: %w", err)
	}
	defer f.Close()

	var header struct {
		Magic, Count, Rows, Cols uint32
	}
	if err := binary.Read(f, binary.BigEndian, &header); err != nil {
		return nil, 0, 0, fmt.Errorf("mnist: %s: header: %w", path, err)
	}
	if header.Magic != idxImagesMagic {
		return nil, 0, 0, fmt.Errorf("mnist: %s: magic %d, want %d", path, header.Magic, idxImagesMagic)
	}

	perImage := uint64(header.Rows) * uint64(header.Cols)
	if perImage == 0 || perImage > maxIDXBytes {
		return nil, 0, 0, fmt.Errorf("mnist: %s: implausible image size %dx%d", path, header.Rows, header.Cols)
	}
	pixels := uint64(header.Count) * perImage
	if pixels > maxIDXBytes {
		return nil, 0, 0, fmt.Errorf("mnist: %s: header claims %d pixel bytes", path, pixels)
	}

	raw := make([]byte, int(pixels))
	if _, err := io.ReadFull(f, raw); err != nil {
		return nil, 0, 0, fmt.Errorf("mnist: %s: pixel data: %w", path, err)
	}

	images := make([]float32, len(raw))
	normalizePixels(images, raw)
	return images, int(header.Rows), int(header.Cols), nil
}

func readIDXLabels(path string) ([]int32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mnist: %w", err)
	}
	defer f.Close()

	var header struct {
		Magic, Count uint32
	}
	if err := binary.Read(f, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("mnist: %s: header: %w", path, err)
	}
	if header.Magic != idxLabelsMagic {
		return nil, fmt.Errorf("mnist: %s: magic %d, want %d", path, header.Magic, idxLabelsMagic)
	}

	if header.Count > maxIDXBytes {
		return nil, fmt.Errorf("mnist: %s: header claims %d labels", path, header.Count)
	}
	raw := make([]byte, header.Count)
	if _, err := io.ReadFull(f, raw); err != nil {
		return nil, fmt.Errorf("mnist: %s: label data: %w", path, err)
	}

	labels := make([]int32, len(raw))
	for i, b := range raw {
		labels[i] = int32(b)
	}
	return labels, nil
}
