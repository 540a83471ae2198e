package nn

import (
	"fmt"

	"github.com/optic-ml/optic/internal/tensor"
)

// Sequential chains modules; the output of each feeds the next.
type Sequential[B tensor.Backend] struct {
	layers []Module[B]
}

func NewSequential[B tensor.Backend](layers ...Module[B]) *Sequential[B] {
	return &Sequential[B]{layers: layers}
}

// Add appends a layer and returns the container for chaining.
func (s *Sequential[B]) Add(layer Module[B]) *Sequential[B] {
	s.layers = append(s.layers, layer)
	return s
}

// Len returns the number of layers.
func (s *Sequential[B]) Len() int { return len(s.layers) }

func (s *Sequential[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	out := input
	for _, layer := range s.layers {
		out = layer.Forward(out)
	}
	return out
}

func (s *Sequential[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for _, layer := range s.layers {
		params = append(params, layer.Parameters()...)
	}
	return params
}

// NumParameters returns the total trainable element count across all
// layers.
func (s *Sequential[B]) NumParameters() int {
	total := 0
	for _, p := range s.Parameters() {
		total += p.NumElements()
	}
	return total
}

// StateDict exports all parameter values keyed by layer index and
// parameter name, e.g. "0.weight".
func (s *Sequential[B]) StateDict() map[string][]float32 {
	state := make(map[string][]float32)
	for i, layer := range s.layers {
		for _, p := range layer.Parameters() {
			state[fmt.Sprintf("%d.%s", i, p.Name())] = p.Tensor().Data()
		}
	}
	return state
}

// LoadStateDict restores parameter values exported by StateDict.
// Every parameter must be present with a matching element count.
func (s *Sequential[B]) LoadStateDict(state map[string][]float32) error {
	for i, layer := range s.layers {
		for _, p := range layer.Parameters() {
			key := fmt.Sprintf("%d.%s", i, p.Name())
			values, ok := state[key]
			if !ok {
				return fmt.Errorf("state dict: missing %q", key)
			}
			if len(values) != p.NumElements() {
				return fmt.Errorf("state dict: %q has %d values, want %d", key, len(values), p.NumElements())
			}
			copy(p.Tensor().Raw().AsFloat32(), values)
		}
	}
	return nil
}
