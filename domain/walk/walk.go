package walk

import (
	"fmt"
	"math/rand"

	"banditlab/domain/core"
)

// Row holds one trial's reward contingencies: the latent win probability
// of each arm and the payoff (0 or 1) pre-drawn from it. Payoffs are
// fixed at generation time so every participant facing the same table
// sees the same outcomes for the same choices.
type Row struct {
	Prob1   float64
	Prob2   float64
	Payoff1 int
	Payoff2 int
}

// Payoff returns the pre-drawn payoff for the given arm (0 or 1).
func (r Row) Payoff(arm int) int {
	if arm == 0 {
		return r.Payoff1
	}
	return r.Payoff2
}

// Table is the full reward walk for one phase, one row per trial,
// indexed by zero-based trial number.
type Table []Row

// Validate checks a table loaded from disk.
func (t Table) Validate() error {
	if len(t) == 0 {
		return core.ErrEmptyTable
	}
	for i, row := range t {
		if err := row.validate(); err != nil {
			return core.NewTableRowError(i, err)
		}
	}
	return nil
}

func (r Row) validate() error {
	for _, p := range []float64{r.Prob1, r.Prob2} {
		if p < 0 || p > 1 {
			return fmt.Errorf("%w: %v", core.ErrProbabilityRange, p)
		}
	}
	for _, v := range []int{r.Payoff1, r.Payoff2} {
		if v != 0 && v != 1 {
			return fmt.Errorf("%w: %v", core.ErrPayoffValue, v)
		}
	}
	return nil
}

// MaxWins is the best achievable win count over the table: an oracle
// choosing the better arm every trial. The bonus scale is anchored to it.
func (t Table) MaxWins() int {
	wins := 0
	for _, row := range t {
		if row.Payoff1 == 1 || row.Payoff2 == 1 {
			wins++
		}
	}
	return wins
}

// Params configures table generation. Win probabilities follow
// independent Gaussian random walks reflected at the bounds, the usual
// restless-bandit construction.
type Params struct {
	Trials int
	Sigma  float64
	Lower  float64
	Upper  float64
}

// DefaultParams returns the generation parameters used for session
// artifacts: drift 0.025 per trial, probabilities held inside
// [0.25, 0.75] so neither arm ever becomes a sure thing.
func DefaultParams(trials int) Params {
	return Params{
		Trials: trials,
		Sigma:  0.025,
		Lower:  0.25,
		Upper:  0.75,
	}
}

// Generate builds a table of p.Trials rows. Both walks start at
// independent uniform draws inside the bounds; each step adds Gaussian
// noise and reflects off the bounds; payoffs are Bernoulli draws from
// the current probabilities.
func Generate(p Params, rng *rand.Rand) Table {
	span := p.Upper - p.Lower
	mu1 := p.Lower + rng.Float64()*span
	mu2 := p.Lower + rng.Float64()*span

	t := make(Table, 0, p.Trials)
	for i := 0; i < p.Trials; i++ {
		row := Row{Prob1: mu1, Prob2: mu2}
		if rng.Float64() < mu1 {
			row.Payoff1 = 1
		}
		if rng.Float64() < mu2 {
			row.Payoff2 = 1
		}
		t = append(t, row)

		mu1 = reflect(mu1+rng.NormFloat64()*p.Sigma, p.Lower, p.Upper)
		mu2 = reflect(mu2+rng.NormFloat64()*p.Sigma, p.Lower, p.Upper)
	}
	return t
}

// reflect folds x back into [lo, hi].
func reflect(x, lo, hi float64) float64 {
	for x < lo || x > hi {
		if x < lo {
			x = 2*lo - x
		}
		if x > hi {
			x = 2*hi - x
		}
	}
	return x
}
