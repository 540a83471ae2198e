package nn

import (
	"math"
	"math/rand"
)

// xavierUniform draws n weights from U(-limit, limit) with
// limit = sqrt(6 / (fanIn + fanOut)). Keeps activation variance stable
// across layers at initialization (Glorot & Bengio, 2010).
func xavierUniform(rng *rand.Rand, n, fanIn, fanOut int) []float32 {
	limit := math.Sqrt(6.0 / float64(fanIn+fanOut))
	out := make([]float32, n)
	for i := range out {
		out[i] = float32((rng.Float64()*2 - 1) * limit)
	}
	return out
}
