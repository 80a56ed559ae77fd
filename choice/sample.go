package choice

import (
	"errors"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

var (
	// ErrNoChoices is returned by Sample when there are no options.
	ErrNoChoices = errors.New("no choices")
	// ErrCount is returned by Sample when the sample count is not positive.
	ErrCount = errors.New("sample count must be positive")
)

// source draws from the runtime-seeded generator of math/rand/v2.
// Distributions without a Src share a generator with a fixed seed.
type source struct{}

func (source) Uint64() uint64 { return rand.Uint64() }

// Seed does nothing; the generator is seeded by the runtime.
func (source) Seed(uint64) {}

// src is the source for all draws.
var src interface {
	Uint64() uint64
	Seed(uint64)
} = source{}

// Count is the number of times an option was drawn.
type Count struct {
	Text string
	N    int64
}

// Sample draws k weighted samples from choices using the weights given by b.
// The result has one entry per choice in the original order, including
// choices drawn zero times, and the counts sum to k.
func Sample(choices []string, b *Bias, k int64) ([]Count, error) {
	if len(choices) == 0 {
		return nil, ErrNoChoices
	}
	if k < 1 {
		return nil, ErrCount
	}
	w := Weights(choices, b)
	if k == 1 {
		i := Pick(w)
		r := make([]Count, len(choices))
		for j, c := range choices {
			r[j].Text = c
		}
		r[i].N = 1
		return r, nil
	}
	return Multinomial(choices, w, k), nil
}

// Pick selects one index with probability proportional to its weight.
// Weights must be non-negative with a positive sum.
func Pick(weights []float64) int {
	c := distuv.NewCategorical(weights, src)
	return int(c.Rand())
}

// Multinomial draws k samples jointly from the categories described by
// choices and weights. Categories are drawn as a chain of conditional
// binomials, so the cost is proportional to the number of categories rather
// than to k.
func Multinomial(choices []string, weights []float64, k int64) []Count {
	r := make([]Count, len(choices))
	if len(choices) == 0 {
		return r
	}
	// rest[i] is the total weight of categories i and later.
	rest := make([]float64, len(weights)+1)
	for i := len(weights) - 1; i >= 0; i-- {
		rest[i] = rest[i+1] + weights[i]
	}
	left := k
	last := len(choices) - 1
	for i, c := range choices {
		r[i].Text = c
		if left == 0 {
			continue
		}
		if i == last {
			r[i].N = left
			break
		}
		n := binomial(left, weights[i]/rest[i])
		r[i].N = n
		left -= n
	}
	return r
}

// binomial draws from Binomial(n, p), clamped to [0, n].
func binomial(n int64, p float64) int64 {
	switch {
	case p <= 0 || p != p:
		return 0
	case p >= 1:
		return n
	}
	var x float64
	if n <= exactLimit {
		x = distuv.Binomial{N: float64(n), P: p, Src: src}.Rand()
	} else {
		x = approxBinomial(float64(n), p)
	}
	// float64 can't represent every int64.
	switch {
	case x <= 0:
		return 0
	case x >= float64(n):
		return n
	}
	return int64(x)
}

// exactLimit is the largest trial count for which we sample the binomial
// distribution directly. Beyond it, the log-gamma terms in the rejection
// sampler lose too much precision to accept reliably.
const exactLimit = 1 << 40

// approxBinomial approximates Binomial(n, p) for very large n.
func approxBinomial(n, p float64) float64 {
	v := n * p * (1 - p)
	if v > 1e6 {
		return math.Round(distuv.Normal{Mu: n * p, Sigma: math.Sqrt(v), Src: src}.Rand())
	}
	// Rare events: the count of the less likely outcome is nearly Poisson.
	if p <= 0.5 {
		return distuv.Poisson{Lambda: n * p, Src: src}.Rand()
	}
	return n - distuv.Poisson{Lambda: n * (1 - p), Src: src}.Rand()
}
