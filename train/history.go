package train

import (
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// EpochStats is one completed epoch of a run.
type EpochStats struct {
	Epoch       int           `json:"epoch"`
	TrainLoss   float64       `json:"train_loss"`
	TrainAcc    float64       `json:"train_acc"`
	ValidLoss   float64       `json:"valid_loss"`
	ValidAcc    float64       `json:"valid_acc"`
	Elapsed     time.Duration `json:"elapsed"`
	HaltedEarly bool          `json:"halted_early,omitempty"`
}

// History is the append-only record of one training run. Records are
// only ever appended, one per completed epoch, so its length never
// exceeds the configured epoch count.
type History struct {
	RunID     string       `json:"run_id"`
	StartedAt time.Time    `json:"started_at"`
	Epochs    []EpochStats `json:"epochs"`
}

// NewHistory starts an empty record with a fresh run ID.
func NewHistory() *History {
	return &History{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
}

func (h *History) append(s EpochStats) {
	h.Epochs = append(h.Epochs, s)
}

// Len returns the number of completed epochs.
func (h *History) Len() int { return len(h.Epochs) }

// Last returns the most recent epoch record.
func (h *History) Last() (EpochStats, bool) {
	if len(h.Epochs) == 0 {
		return EpochStats{}, false
	}
	return h.Epochs[len(h.Epochs)-1], true
}

// TrainAccuracy returns the per-epoch training accuracy series.
func (h *History) TrainAccuracy() []float64 {
	return h.series(func(s EpochStats) float64 { return s.TrainAcc })
}

// ValidAccuracy returns the per-epoch validation accuracy series.
func (h *History) ValidAccuracy() []float64 {
	return h.series(func(s EpochStats) float64 { return s.ValidAcc })
}

// TrainLoss returns the per-epoch training loss series.
func (h *History) TrainLoss() []float64 {
	return h.series(func(s EpochStats) float64 { return s.TrainLoss })
}

// ValidLoss returns the per-epoch validation loss series.
func (h *History) ValidLoss() []float64 {
	return h.series(func(s EpochStats) float64 { return s.ValidLoss })
}

func (h *History) series(pick func(EpochStats) float64) []float64 {
	out := make([]float64, len(h.Epochs))
	for i, s := range h.Epochs {
		out[i] = pick(s)
	}
	return out
}

// CurveSummary condenses an accuracy series.
type CurveSummary struct {
	Min, Max, Mean, Final float64
	BestEpoch             int
}

// Summarize computes the summary of a series. An empty series gives
// the zero summary.
func Summarize(series []float64) CurveSummary {
	if len(series) == 0 {
		return CurveSummary{}
	}
	return CurveSummary{
		Min:       floats.Min(series),
		Max:       floats.Max(series),
		Mean:      stat.Mean(series, nil),
		Final:     series[len(series)-1],
		BestEpoch: floats.MaxIdx(series) + 1,
	}
}
