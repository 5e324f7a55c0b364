// Package prob implements a probability gate with a seeded RNG so that
// stochastic behavior is reproducible in tests.
package prob

import (
	"math/rand/v2"

	"github.com/timini/wiggleroom/internal/dsp"
)

// Gate stochastically passes or blocks boolean hits. Given the same
// seed and the same sequence of calls it produces the same booleans.
type Gate struct {
	probability float64
	seed        uint32
	rng         *rand.Rand
}

// New returns a gate seeded from the process-wide RNG, always passing.
func New() *Gate {
	g := &Gate{probability: 1}
	g.SetSeed(rand.Uint32())
	return g
}

// NewSeeded returns a gate with an explicit seed, always passing.
func NewSeeded(seed uint32) *Gate {
	g := &Gate{probability: 1}
	g.SetSeed(seed)
	return g
}

// SetSeed reseeds the RNG for deterministic runs.
func (g *Gate) SetSeed(seed uint32) {
	g.seed = seed
	g.rng = rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
}

// Reset rewinds the RNG to the stored seed's initial state.
func (g *Gate) Reset() {
	g.rng = rand.New(rand.NewPCG(uint64(g.seed), uint64(g.seed)))
}

// Seed returns the stored seed.
func (g *Gate) Seed() uint32 { return g.seed }

// SetProbability stores the pass probability, clamped to [0,1].
func (g *Gate) SetProbability(p float64) {
	g.probability = dsp.Clamp(p, 0, 1)
}

// Probability returns the stored pass probability.
func (g *Gate) Probability() float64 { return g.probability }

// Test draws against the stored probability. Probability at or below 0
// blocks and at or above 1 passes, neither consuming RNG state.
func (g *Gate) Test() bool {
	return g.draw(g.probability)
}

// Process gates input by the stored probability. A false input passes
// straight through without drawing from the RNG, so silent channels do
// not perturb the random stream of the others.
func (g *Gate) Process(input bool) bool {
	if !input {
		return false
	}
	return g.draw(g.probability)
}

// ProcessProb gates input by an explicit probability (used for
// CV-modulated values), with the same short-circuit rule as Process.
func (g *Gate) ProcessProb(input bool, p float64) bool {
	if !input {
		return false
	}
	return g.draw(p)
}

func (g *Gate) draw(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return g.rng.Float64() < p
}
