package train

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEarlyStoppingReferenceScenario(t *testing.T) {
	// min delta 0.05, patience 2: accuracies 0.40, 0.41, 0.41, 0.40
	// never clear the bar, so the run halts after the fourth epoch.
	stop := NewEarlyStopping(0.05, 2)

	assert.False(t, stop(0.40))
	assert.False(t, stop(0.41))
	assert.False(t, stop(0.41))
	assert.True(t, stop(0.40))
}

func TestEarlyStoppingResetsOnImprovement(t *testing.T) {
	stop := NewEarlyStopping(0.01, 2)

	assert.False(t, stop(0.50))
	assert.False(t, stop(0.50)) // wait 1
	assert.False(t, stop(0.60)) // clears the bar, wait resets
	assert.False(t, stop(0.60)) // wait 1
	assert.False(t, stop(0.60)) // wait 2
	assert.True(t, stop(0.60))  // wait 3 > patience
}

func TestEarlyStoppingBaselineMovesOnAnyIncrease(t *testing.T) {
	// Small gains below min delta still raise the bar: 0.40 then
	// repeated 0.41 must be measured against 0.41, not 0.40.
	stop := NewEarlyStopping(0.05, 2)

	assert.False(t, stop(0.40))
	assert.False(t, stop(0.41))
	assert.False(t, stop(0.455)) // above 0.41 but not above 0.41+0.05
	assert.True(t, stop(0.455))
}

func TestEarlyStoppingDisabled(t *testing.T) {
	stop := NewEarlyStopping(0.05, 0)
	for i := 0; i < 50; i++ {
		assert.False(t, stop(0.1))
	}
}

func TestEarlyStoppingSteadyImprovementNeverHalts(t *testing.T) {
	stop := NewEarlyStopping(0.01, 1)
	v := 0.1
	for i := 0; i < 20; i++ {
		assert.False(t, stop(v))
		v += 0.02
	}
}
