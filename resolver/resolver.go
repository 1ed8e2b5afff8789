// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package resolver

import (
	"github.com/danielhkuo/kindred/catalog"
	"github.com/danielhkuo/kindred/models"
)

// Matches reports whether answer satisfies a conditional_value. A null answer
// never matches.
func Matches(answer models.Value, conditionalValue string) bool {
	if answer.IsNull() {
		return false
	}
	return answer.Scalar() == conditionalValue
}

// IsVisible reports whether q should be shown given the current answers.
func IsVisible(q models.Question, answers models.AnswerSet) bool {
	if !q.IsConditional() {
		return true
	}
	return Matches(answers.Get(q.ConditionalOn), q.ConditionalValue)
}

// VisibleQuestions returns the questions that should currently be asked, in
// catalog order.
func VisibleQuestions(c *catalog.Catalog, answers models.AnswerSet) []models.Question {
	visible := []models.Question{}
	for _, q := range c.Questions() {
		if IsVisible(q, answers) {
			visible = append(visible, q)
		}
	}
	return visible
}

// DependentsToInvalidate returns the direct dependents of changedID whose
// conditional_value no longer matches newAnswer.
func DependentsToInvalidate(c *catalog.Catalog, changedID string, newAnswer models.Value) []string {
	var out []string
	for _, id := range c.Dependents(changedID) {
		dep, ok := c.Get(id)
		if !ok {
			continue
		}
		if !Matches(newAnswer, dep.ConditionalValue) {
			out = append(out, id)
		}
	}
	return out
}

// Cascade returns every question invalidated by setting changedID to
// newAnswer, including questions further down the chain. Once a question is
// invalidated its answer is gone, so all of its own dependents go with it.
// The result is in breadth-first order and contains no duplicates.
func Cascade(c *catalog.Catalog, changedID string, newAnswer models.Value) []string {
	out := []string{}
	seen := map[string]bool{changedID: true}

	queue := DependentsToInvalidate(c, changedID, newAnswer)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
		queue = append(queue, DependentsToInvalidate(c, id, models.Null)...)
	}
	return out
}

// Orphaned returns the answered questions whose condition does not hold, in
// catalog order. An orphan counts as unanswered for the questions after it,
// so whole chains are reported.
func Orphaned(c *catalog.Catalog, answers models.AnswerSet) []string {
	out := []string{}
	remaining := answers.Clone()
	for _, q := range c.Questions() {
		if !remaining.Has(q.ID) || IsVisible(q, remaining) {
			continue
		}
		delete(remaining, q.ID)
		out = append(out, q.ID)
	}
	return out
}
