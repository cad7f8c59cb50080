// Package jobs runs periodic maintenance on the objective collection.
package jobs

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/sandeepkv93/questd/internal/logging"
)

// Pruner removes expired objectives. The engine implements it.
type Pruner interface {
	PruneExpired(now time.Time) []string
}

// Runner submits fn to the goroutine that owns the engine. The TUI routes it
// through its message loop; a nil Runner calls fn directly.
type Runner func(fn func())

type Scheduler struct {
	cron *cron.Cron
	log  *logrus.Entry
}

// NewPruneScheduler registers a prune of p on spec, a standard cron expression
// or descriptor such as "@every 1m".
func NewPruneScheduler(spec string, p Pruner, run Runner, now func() time.Time, log *logrus.Entry) (*Scheduler, error) {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logging.Discard()
	}
	if run == nil {
		run = func(fn func()) { fn() }
	}
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		run(func() {
			if removed := p.PruneExpired(now()); len(removed) > 0 {
				log.WithField("removed", len(removed)).Info("pruned expired objectives")
			}
		})
	})
	if err != nil {
		return nil, fmt.Errorf("prune schedule %q: %w", spec, err)
	}
	return &Scheduler{cron: c, log: log}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Debug("prune scheduler started")
}

// Stop waits for a running prune to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Next reports when each registered job runs next. It is zero before Start.
func (s *Scheduler) Next() []time.Time {
	var out []time.Time
	for _, e := range s.cron.Entries() {
		out = append(out, e.Next)
	}
	return out
}
