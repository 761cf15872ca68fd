// Package sim provides a concrete task implementation: seeded
// random-walk episodes. An episode walks a scalar state toward a goal or
// failure barrier under a named policy, accumulating a discounted return.
// Episodes terminate early on hitting a barrier or run to the step cap,
// which makes their durations variable and exercises the runner's dynamic
// load balancing.
//
// All randomness is seeded explicitly per episode; no ambient RNG state.
package sim

import (
	"context"
	"math/rand"

	"github.com/tabrun/tabrun/pkg/errors"
	"github.com/tabrun/tabrun/pkg/record"
	"github.com/tabrun/tabrun/pkg/task"
)

// Barriers for the walk; reaching +goal ends the episode with a bonus,
// -goal with a penalty.
const (
	goalBarrier = 10.0
	stepReward  = -0.01
	goalReward  = 1.0
	failReward  = -1.0
)

// EpisodeResult summarizes one finished episode.
type EpisodeResult struct {
	Return     float64
	Steps      int
	Terminated bool // true if a barrier was hit before the step cap
}

// Score implements task.Scorer with the discounted return.
func (r EpisodeResult) Score() float64 {
	return r.Return
}

// Episode is one simulation run: a policy name, an explicit RNG seed, a
// step cap and a discount factor.
type Episode struct {
	policy   string
	seed     int64
	horizon  int
	discount float64
}

// NewEpisode creates a configured episode task.
func NewEpisode(policy string, seed int64, horizon int, discount float64) *Episode {
	return &Episode{
		policy:   policy,
		seed:     seed,
		horizon:  horizon,
		discount: discount,
	}
}

// stepScale maps a policy name to its step size multiplier.
func stepScale(policy string) float64 {
	switch policy {
	case "cautious":
		return 0.5
	case "bold":
		return 2.0
	default:
		return 1.0
	}
}

// Execute runs the episode to termination or the step cap.
func (e *Episode) Execute(ctx context.Context) (task.Result, error) {
	if e.horizon <= 0 {
		return nil, errors.Newf(errors.ErrorTypeValidation, "horizon must be positive, got %d", e.horizon)
	}
	if e.discount <= 0 || e.discount > 1 {
		return nil, errors.Newf(errors.ErrorTypeValidation, "discount must be in (0, 1], got %g", e.discount)
	}

	rng := rand.New(rand.NewSource(e.seed))
	scale := stepScale(e.policy)

	var (
		pos      float64
		ret      float64
		weight   = 1.0
		steps    int
		terminal bool
	)

	for steps = 0; steps < e.horizon; steps++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pos += rng.NormFloat64() * scale
		reward := stepReward

		if pos >= goalBarrier {
			reward += goalReward
			terminal = true
		} else if pos <= -goalBarrier {
			reward += failReward
			terminal = true
		}

		ret += weight * reward
		weight *= e.discount

		if terminal {
			steps++
			break
		}
	}

	return EpisodeResult{Return: ret, Steps: steps, Terminated: terminal}, nil
}

// Metadata implements task.Task.
func (e *Episode) Metadata() *record.Record {
	return record.New().
		Set("policy", e.policy).
		Set("seed", e.seed).
		Set("horizon", int64(e.horizon))
}

// BatchConfig describes a batch of episodes: every policy is run Episodes
// times, with per-episode seeds derived deterministically from Seed.
type BatchConfig struct {
	Policies []string
	Episodes int
	Horizon  int
	Discount float64
	Seed     int64
}

// Batch builds the task list for a batch configuration.
func Batch(cfg BatchConfig) []task.Task {
	tasks := make([]task.Task, 0, len(cfg.Policies)*cfg.Episodes)
	i := int64(0)
	for _, policy := range cfg.Policies {
		for ep := 0; ep < cfg.Episodes; ep++ {
			tasks = append(tasks, NewEpisode(policy, cfg.Seed+i, cfg.Horizon, cfg.Discount))
			i++
		}
	}
	return tasks
}

// ProcessEpisode is a row processor that, beyond the default score field,
// records how the episode ended. Episodes that hit a barrier contribute a
// "terminated" column the others leave null, exercising schema evolution.
func ProcessEpisode(t task.Task, res task.Result) (*record.Record, error) {
	er, ok := res.(EpisodeResult)
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeData, "expected EpisodeResult, got %T", res)
	}

	rec := record.Get()
	for _, f := range t.Metadata().Fields() {
		rec.Set(f.Name, f.Value)
	}
	rec.Set("score", er.Return)
	rec.Set("steps", int64(er.Steps))
	if er.Terminated {
		rec.Set("terminated", true)
	}
	return rec, nil
}
