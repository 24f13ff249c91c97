package listener

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/bgagnon/translien/internal/whitelist"
)

// Supervisor starts the listener tasks, waits for them and runs state
// persistence exactly once on the way out, shutdown signal or not.
type Supervisor struct {
	tasks     []Task
	whitelist *whitelist.Whitelist
	log       zerolog.Logger
}

func NewSupervisor(wl *whitelist.Whitelist, log zerolog.Logger, tasks ...Task) *Supervisor {
	return &Supervisor{
		tasks:     tasks,
		whitelist: wl,
		log:       log.With().Str("component", "supervisor").Logger(),
	}
}

// Run blocks until every task has exited. Cancellation of ctx is the
// shutdown signal: tasks observe it between items, finish their current
// item and return. Whatever ends the run, each task's state and the
// whitelist are saved before Run returns.
func (s *Supervisor) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, t := range s.tasks {
		t := t
		g.Go(func() error {
			s.log.Info().Str("task", t.Name()).Msg("starting task")
			err := t.Run(gctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				s.log.Error().Err(err).Str("task", t.Name()).Msg("task failed")
				return err
			}
			s.log.Info().Str("task", t.Name()).Msg("task stopped")
			return nil
		})
	}

	runErr := g.Wait()

	for _, t := range s.tasks {
		if err := t.SaveState(); err != nil {
			s.log.Error().Err(err).Str("task", t.Name()).Msg("failed to save task state")
		}
	}
	if err := s.whitelist.Save(); err != nil {
		s.log.Error().Err(err).Msg("failed to save whitelist")
	}

	return runErr
}
