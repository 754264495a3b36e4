// Package service wires the check registry, configuration store, and score
// aggregation into the evaluation workflow.
package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rtplan-qa-engine/internal/checks"
	"github.com/rtplan-qa-engine/internal/config"
	"github.com/rtplan-qa-engine/internal/domain"
)

// Evaluator runs the QA battery against clinical cases. One Evaluator is
// safe for concurrent evaluations: every run works from its own
// configuration snapshot and nothing else is shared mutable state.
type Evaluator struct {
	logger   *logrus.Logger
	store    *config.Store
	registry *checks.Registry
}

// NewEvaluator creates an evaluator over the given configuration store.
func NewEvaluator(logger *logrus.Logger, store *config.Store) *Evaluator {
	return &Evaluator{
		logger:   logger,
		store:    store,
		registry: checks.DefaultRegistry(),
	}
}

// Evaluate runs every enabled check against the case and aggregates the
// outcome. The configuration snapshot is taken once, before the first check,
// so concurrent override edits cannot change a run midway. Evaluate never
// returns an error: the worst outcome is a QAResult full of failing checks.
func (e *Evaluator) Evaluate(ctx context.Context, c *domain.Case) *domain.QAResult {
	runID := uuid.NewString()
	e.logger.WithFields(logrus.Fields{
		"run_id":     runID,
		"case_id":    c.ID,
		"structures": len(c.Structures),
		"has_plan":   c.Plan != nil,
	}).Info("Starting QA evaluation")

	snapshot := e.store.Snapshot()
	results := e.registry.Run(c, snapshot)
	qa := Aggregate(c.ID, results, snapshot)

	failed := 0
	for _, res := range results {
		if !res.Passed {
			failed++
		}
	}
	e.logger.WithFields(logrus.Fields{
		"run_id":      runID,
		"case_id":     c.ID,
		"total_score": qa.TotalScore,
		"checks_run":  len(results),
		"failed":      failed,
	}).Info("QA evaluation completed")

	return qa
}
