// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package compat

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/kindred/catalog"
	"github.com/danielhkuo/kindred/metrics"
	"github.com/danielhkuo/kindred/models"
	"github.com/danielhkuo/kindred/tracing"
)

// MatchThreshold is the per-field score at which a row counts as a match.
const MatchThreshold = 0.7

type evaluation struct {
	mapping    Mapping
	importance float64
	score      float64
}

// evaluate scores one mapping entry of a's preferences against b's facts.
// It reports false when either side has not answered.
func (m Mapping) evaluate(a, b models.AnswerSet) (evaluation, bool) {
	if !a.Has(m.PreferenceID) || !b.Has(m.FactID) {
		return evaluation{}, false
	}

	pref := a.Get(m.PreferenceID)
	ev := evaluation{mapping: m, importance: m.importance(pref)}
	if m.Kind == KindImportance && ev.importance == 0 {
		ev.score = 1.0
		return ev, true
	}

	ev.score = clamp(m.Compare(Input{
		Importance: ev.importance,
		Preference: pref,
		OwnFact:    a.Get(m.FactID),
		Fact:       b.Get(m.FactID),
	}))
	return ev, true
}

func evaluateAll(a, b models.AnswerSet) []evaluation {
	var out []evaluation
	for _, m := range Mappings {
		if ev, ok := m.evaluate(a, b); ok {
			out = append(out, ev)
		}
	}
	return out
}

// DirectionalScore rates how well b satisfies a's stated preferences, 0-100.
// a supplies both its preference answers and its own facts (used by
// comparators that look for shared values). No applicable fields scores 0.
func DirectionalScore(a, b models.AnswerSet) int {
	var sum, total float64
	for _, ev := range evaluateAll(a, b) {
		sum += ev.score * ev.mapping.Weight
		total += ev.mapping.Weight
	}
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * sum / total))
}

// BidirectionalScore scores a and b against each other.
func BidirectionalScore(a, b models.AnswerSet) models.CompatibilityResult {
	aToB := DirectionalScore(a, b)
	bToA := DirectionalScore(b, a)
	return models.CompatibilityResult{
		AToB:    aToB,
		BToA:    bToA,
		Average: int(math.Round(float64(aToB+bToA) / 2)),
	}
}

// DetailedComparison returns one row per applicable field of a's preferences
// against b's facts, in table order. c supplies question text and may be nil.
func DetailedComparison(a, b models.AnswerSet, c *catalog.Catalog) []models.ComparisonRow {
	rows := []models.ComparisonRow{}
	for _, ev := range evaluateAll(a, b) {
		m := ev.mapping
		text := m.PreferenceID
		if q, ok := c.Get(m.PreferenceID); ok {
			text = q.Text
		}
		rows = append(rows, models.ComparisonRow{
			QuestionID:      m.PreferenceID,
			QuestionText:    text,
			PreferenceValue: a.Get(m.PreferenceID),
			ProfileValue:    b.Get(m.FactID),
			Score:           ev.score,
			IsMatch:         ev.score >= MatchThreshold,
			ImportanceLabel: ImportanceLabel(ev.importance),
		})
	}
	return rows
}

// Candidate is one profile's answers, keyed by user id.
type Candidate struct {
	UserID  string
	Answers models.AnswerSet
}

// RankCandidates scores subject against every candidate using at most
// workers goroutines. Results are ordered by average, then a_to_b, both
// descending, then user id. The subject is skipped if it appears among the
// candidates.
func RankCandidates(ctx context.Context, subject Candidate, candidates []Candidate, workers int) ([]models.RankedMatch, error) {
	ctx, span := tracing.Tracer("compat").Start(ctx, "compat.RankCandidates")
	defer span.End()
	span.SetAttributes(
		attribute.String("user_id", subject.UserID),
		attribute.Int("candidates", len(candidates)),
	)

	if workers <= 0 {
		workers = 1
	}

	results := make([]models.RankedMatch, len(candidates))
	scored := make([]bool, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, cand := range candidates {
		if cand.UserID == subject.UserID {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result := BidirectionalScore(subject.Answers, cand.Answers)
			metrics.CompatibilityScores.Observe(float64(result.Average))
			results[i] = models.RankedMatch{UserID: cand.UserID, Result: result}
			scored[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ranking cancelled: %w", err)
	}

	out := make([]models.RankedMatch, 0, len(candidates))
	for i, ok := range scored {
		if ok {
			out = append(out, results[i])
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Result, out[j].Result
		if a.Average != b.Average {
			return a.Average > b.Average
		}
		if a.AToB != b.AToB {
			return a.AToB > b.AToB
		}
		return out[i].UserID < out[j].UserID
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}
