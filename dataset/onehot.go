package dataset

import "fmt"

// OneHotEncode expands class indices into one-hot float32 rows of
// width numClasses. A label outside [0, numClasses) is an error.
func OneHotEncode(labels []int32, numClasses int) ([]float32, error) {
	if numClasses <= 0 {
		return nil, fmt.Errorf("onehot: numClasses must be positive, got %d", numClasses)
	}
	out := make([]float32, len(labels)*numClasses)
	for i, label := range labels {
		if label < 0 || int(label) >= numClasses {
			return nil, fmt.Errorf("onehot: label %d outside [0, %d)", label, numClasses)
		}
		out[i*numClasses+int(label)] = 1
	}
	return out, nil
}

// OneHot returns the one-hot expansion of the whole corpus, one row
// of width NumClasses per sample.
func (d *Dataset) OneHot() ([]float32, error) {
	return OneHotEncode(d.Labels, d.NumClasses())
}

// OneHotDecode recovers class indices from one-hot rows (argmax, with
// ties going to the lowest index). Inverse of OneHotEncode.
func OneHotDecode(rows []float32, numClasses int) ([]int32, error) {
	if numClasses <= 0 {
		return nil, fmt.Errorf("onehot: numClasses must be positive, got %d", numClasses)
	}
	if len(rows)%numClasses != 0 {
		return nil, fmt.Errorf("onehot: %d values do not divide into rows of %d", len(rows), numClasses)
	}
	n := len(rows) / numClasses
	out := make([]int32, n)
	for i := 0; i < n; i++ {
		row := rows[i*numClasses : (i+1)*numClasses]
		best, bestIdx := row[0], 0
		for j := 1; j < numClasses; j++ {
			if row[j] > best {
				best, bestIdx = row[j], j
			}
		}
		out[i] = int32(bestIdx)
	}
	return out, nil
}
