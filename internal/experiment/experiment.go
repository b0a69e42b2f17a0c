// Package experiment measures the retrieval error rate of a clique network as
// a function of the number of stored messages. Every step of the sweep learns
// random messages, erases some of their sub-messages and counts how often
// guided and blind recall fail to restore them.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/DeltaTestSoftware/cliqueplot/internal/sam"
)

// Step is the outcome of one point of the sweep.
type Step struct {
	Index        int
	Messages     int
	Trials       int
	Recalls      int
	GuidedErrors int
	BlindErrors  int
}

// GuidedRate is the fraction of failed guided recalls.
func (s Step) GuidedRate() float64 { return rate(s.GuidedErrors, s.Recalls) }

// BlindRate is the fraction of failed blind recalls.
func (s Step) BlindRate() float64 { return rate(s.BlindErrors, s.Recalls) }

func rate(errs, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(errs) / float64(total)
}

// Sweep holds all steps of a run, ordered by index.
type Sweep struct {
	RunID  string
	Config Config
	Steps  []Step
}

// Rows returns one row per step: index, stored messages, guided error rate,
// blind error rate. Message counts decrease from row to row.
func (s *Sweep) Rows() [][]float64 {
	rows := make([][]float64, len(s.Steps))
	for i, st := range s.Steps {
		rows[i] = []float64{float64(st.Index), float64(st.Messages), st.GuidedRate(), st.BlindRate()}
	}
	return rows
}

// Progress is called once per finished step. Calls are serialized.
type Progress func(Step)

// Run executes the sweep. Steps run concurrently on cfg.Workers goroutines;
// each step draws from its own generator seeded with (cfg.Seed, step), so
// the outcome does not depend on the number of workers.
func Run(ctx context.Context, cfg Config, progress Progress) (*Sweep, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	sw := &Sweep{
		RunID:  uuid.NewString(),
		Config: cfg,
		Steps:  make([]Step, cfg.Steps+1),
	}
	log := slog.With("run", sw.RunID)
	log.Info("sweep starting",
		"steps", len(sw.Steps),
		"clusters", cfg.Clusters,
		"fanals", cfg.Fanals,
		"workers", cfg.Workers,
		"seed", cfg.Seed)

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := range sw.Steps {
		g.Go(func() error {
			st, err := runStep(ctx, log, cfg, i)
			if err != nil {
				return fmt.Errorf("step %d: %w", i, err)
			}
			mu.Lock()
			defer mu.Unlock()
			sw.Steps[i] = st
			if progress != nil {
				progress(st)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Info("sweep done")
	return sw, nil
}

func runStep(ctx context.Context, log *slog.Logger, cfg Config, index int) (Step, error) {
	st := Step{Index: index, Messages: cfg.Messages(index)}
	if err := ctx.Err(); err != nil {
		return st, err
	}
	net, err := sam.New(cfg.Clusters, cfg.Fanals)
	if err != nil {
		return st, err
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, uint64(index)))

	for st.GuidedErrors < cfg.TargetErrors {
		if cfg.MaxTrials > 0 && st.Trials >= cfg.MaxTrials {
			break
		}
		st.Trials++
		net.Reset()

		msgs := randomMessages(rng, cfg, st.Messages)
		placed, err := net.Learn(msgs, rng)
		if err != nil {
			return st, err
		}

		for m := 0; m < len(msgs) && st.GuidedErrors < cfg.TargetErrors; m++ {
			if m%1024 == 0 {
				if err := ctx.Err(); err != nil {
					return st, err
				}
			}
			symbols, clusters := erase(rng, msgs[m], placed[m], cfg.Unknowns)

			r, err := net.RecallGuided(symbols, clusters, placed[m], cfg.Iterations)
			ok, err := restored(r, err, msgs[m], placed[m])
			if err != nil {
				return st, err
			}
			if !ok {
				st.GuidedErrors++
			}

			r, err = net.RecallBlind(symbols, clusters)
			ok, err = restored(r, err, msgs[m], placed[m])
			if err != nil {
				return st, err
			}
			if !ok {
				st.BlindErrors++
			}
			st.Recalls++
		}

		log.Debug("trial done",
			"step", index,
			"trial", st.Trials,
			"messages", st.Messages,
			"pe_guided", st.GuidedRate(),
			"pe_blind", st.BlindRate())

		if st.Trials > cfg.MinTrials && st.BlindErrors == 0 {
			break
		}
	}
	return st, nil
}

// restored compares a retrieval with the original message. Ambiguous
// retrievals count as failures; any other error is returned.
func restored(r sam.Retrieval, err error, msg, clusters []int) (bool, error) {
	if errors.Is(err, sam.ErrAmbiguous) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return slices.Equal(r.Align(clusters), msg), nil
}

func randomMessages(rng *rand.Rand, cfg Config, count int) [][]int {
	msgs := make([][]int, count)
	for i := range msgs {
		order := cfg.MinOrder + rng.IntN(cfg.MaxOrder-cfg.MinOrder+1)
		msg := make([]int, order)
		for j := range msg {
			msg[j] = rng.IntN(cfg.Fanals)
		}
		msgs[i] = msg
	}
	return msgs
}

// erase keeps len(msg)-unknowns randomly chosen sub-messages, in the order
// they were drawn.
func erase(rng *rand.Rand, msg, clusters []int, unknowns int) (symbols, kept []int) {
	keep := len(msg) - unknowns
	for _, p := range rng.Perm(len(msg))[:keep] {
		symbols = append(symbols, msg[p])
		kept = append(kept, clusters[p])
	}
	return symbols, kept
}
