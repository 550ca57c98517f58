package summary

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"banditlab/domain/core"
	"banditlab/domain/trial"
)

// ReactionStats describes the latency distribution of responded-to
// trials in one phase.
type ReactionStats struct {
	Count    int
	Mean     float64
	StdDev   float64
	Min      float64
	Max      float64
	Median   float64
	Q25      float64
	Q75      float64
	Skewness float64
	Kurtosis float64
	IsNormal bool
	NormalP  float64
}

// PhaseStats summarizes one phase of a recorded session.
type PhaseStats struct {
	Trials     int
	Missed     int
	Wins       int
	WinRate    float64
	NonSalient int
	Salient    int
	ArmCounts  [2]int
	Reaction   ReactionStats
}

// Report is the full descriptive summary of one participant's trial log.
// MaxWins and Bonus are derived from the logged payoffs of the paid
// phase, so a report stands alone without the walk table.
type Report struct {
	Participant core.ParticipantID
	Practice    PhaseStats
	Main        PhaseStats
	MaxWins     int
	Bonus       float64
}

// Build computes a report over a complete trial log. The records of the
// two phases may be interleaved in any order; phase membership comes
// from each record.
func Build(participant core.ParticipantID, records []trial.Record) (*Report, error) {
	if len(records) == 0 {
		return nil, core.ErrNoTrials
	}

	var practice, main []trial.Record
	maxWins := 0
	for _, r := range records {
		if r.Mode == trial.ModePractice {
			practice = append(practice, r)
			continue
		}
		main = append(main, r)
		if r.Payoff1 == 1 || r.Payoff2 == 1 {
			maxWins++
		}
	}

	report := &Report{
		Participant: participant,
		Practice:    phaseStats(practice),
		Main:        phaseStats(main),
		MaxWins:     maxWins,
	}
	report.Bonus = trial.Bonus(report.Main.Wins, maxWins, trial.DefaultBonusMaxEUR)
	return report, nil
}

func phaseStats(records []trial.Record) PhaseStats {
	p := PhaseStats{Trials: len(records)}

	var latencies []float64
	for _, r := range records {
		switch r.Outcome.Condition {
		case trial.ConditionMissed:
			p.Missed++
		case trial.ConditionSalient:
			p.Salient++
		default:
			p.NonSalient++
		}
		p.Wins += r.Outcome.Reward
		if r.Choice.Made {
			p.ArmCounts[r.Choice.Arm]++
			latencies = append(latencies, r.Choice.Reaction.Seconds())
		}
	}
	if p.Trials > 0 {
		p.WinRate = float64(p.Wins) / float64(p.Trials)
	}
	p.Reaction = reactionStats(latencies)
	return p
}

func reactionStats(data []float64) ReactionStats {
	r := ReactionStats{Count: len(data), NormalP: 1.0}
	if len(data) < 2 {
		return r
	}

	r.Mean, _ = stats.Mean(data)
	r.StdDev, _ = stats.StandardDeviation(data)
	r.Min, _ = stats.Min(data)
	r.Max, _ = stats.Max(data)
	r.Median, _ = stats.Median(data)
	r.Q25, _ = stats.Percentile(data, 25)
	r.Q75, _ = stats.Percentile(data, 75)
	r.Skewness = skewness(data, r.Mean, r.StdDev)
	r.Kurtosis = kurtosis(data, r.Mean, r.StdDev)
	r.IsNormal, r.NormalP = jarqueBera(len(data), r.Skewness, r.Kurtosis)
	return r
}

// skewness computes the adjusted Fisher-Pearson coefficient.
func skewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}
	n := float64(len(data))
	sum := 0.0
	for _, x := range data {
		d := (x - mean) / stdDev
		sum += d * d * d
	}
	return sum / n * math.Sqrt(n*(n-1)) / (n - 2)
}

// kurtosis computes total (not excess) sample kurtosis.
func kurtosis(data []float64, mean, stdDev float64) float64 {
	if len(data) < 4 || stdDev == 0 {
		return 3.0
	}
	n := float64(len(data))
	sum := 0.0
	for _, x := range data {
		d := (x - mean) / stdDev
		sum += d * d * d * d
	}
	return sum / n
}

// jarqueBera screens the latency distribution for normality. Small
// samples are reported non-normal with p = 1 rather than tested.
func jarqueBera(n int, skew, kurt float64) (isNormal bool, pValue float64) {
	if n < 8 {
		return false, 1.0
	}
	excess := kurt - 3
	jb := float64(n) / 6 * (skew*skew + excess*excess/4)
	chi := distuv.ChiSquared{K: 2}
	pValue = 1 - chi.CDF(jb)
	return pValue > 0.05, pValue
}
