package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ESTG-P5-2025/propostas-service/internal/events"
	"github.com/ESTG-P5-2025/propostas-service/internal/repositories"
)

// ExpirySweeper periodically moves every ativa proposta past its
// ativa_ate deadline to inativa. Expiry is enforced only here, never on
// the read path, so a proposta can briefly outlive its deadline between
// sweeps.
type ExpirySweeper struct {
	repo      repositories.Repository
	logger    *slog.Logger
	publisher events.Publisher
	schedule  string
	cron      *cron.Cron
}

func NewExpirySweeper(repo repositories.Repository, logger *slog.Logger, publisher events.Publisher, schedule string) *ExpirySweeper {
	if schedule == "" {
		schedule = "@hourly"
	}
	return &ExpirySweeper{
		repo:      repo,
		logger:    logger,
		publisher: publisher,
		schedule:  schedule,
	}
}

// Start registers the sweep on the cron schedule and launches the
// scheduler. Sweep failures are logged and retried on the next tick.
func (s *ExpirySweeper) Start() error {
	c := cron.New()
	_, err := c.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.Error("Expiry sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}

	s.cron = c
	c.Start()
	s.logger.Info("Expiry sweeper started", "schedule", s.schedule)
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *ExpirySweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.logger.Info("Expiry sweeper stopped")
}

// RunOnce executes a single sweep and reports how many propostas expired.
func (s *ExpirySweeper) RunOnce(ctx context.Context) (int64, error) {
	now := time.Now()
	expired, err := s.repo.Proposta().ExpireOverdue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire overdue propostas: %w", err)
	}
	if expired == 0 {
		return 0, nil
	}

	if s.publisher != nil {
		event := events.NewEvent(events.TypePropostaExpirada, events.PropostaExpiradaEvent{
			Expiradas: expired,
			SweepAt:   now,
		})
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish event", "type", event.Type, "error", err)
		}
	}

	s.logger.Info("Expired overdue propostas", "count", expired)
	return expired, nil
}
