// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/danielhkuo/kindred/logger"
	"github.com/danielhkuo/kindred/models"
)

var ErrNotFound = errors.New("not found")

// Store persists profiles and questionnaire answers.
type Store struct {
	db  *sql.DB
	log *logger.Logger
}

func NewStore(db *sql.DB, log *logger.Logger) *Store {
	return &Store{db: db, log: log.With("repo", "Store")}
}

// DB exposes the underlying connection pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

// CreateProfile inserts a new profile row.
func (s *Store) CreateProfile(ctx context.Context, p models.Profile) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profile (user_id, first_name, last_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, p.UserID, p.FirstName, p.LastName, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	return s.UpdateProfileFields(ctx, p.UserID, p.Fields)
}

// GetProfile returns nil, nil when the user has no profile.
func (s *Store) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	p := models.Profile{UserID: userID, Fields: map[string]string{}}
	err := s.db.QueryRowContext(ctx, `
		SELECT first_name, last_name FROM profile WHERE user_id = $1
	`, userID).Scan(&p.FirstName, &p.LastName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, value FROM profile_field WHERE user_id = $1 ORDER BY name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query profile fields: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("failed to scan profile field: %w", err)
		}
		p.Fields[name] = value
	}
	return &p, rows.Err()
}

// UpdateProfileFields writes first_name/last_name to the profile row and any
// other field to profile_field. The profile row is created if missing.
func (s *Store) UpdateProfileFields(ctx context.Context, userID string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO profile (user_id, created_at, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, now, now)
	if err != nil {
		return fmt.Errorf("failed to ensure profile: %w", err)
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := fields[name]
		switch name {
		case models.FieldFirstName:
			_, err = tx.ExecContext(ctx, `UPDATE profile SET first_name = $1, updated_at = $2 WHERE user_id = $3`, value, now, userID)
		case models.FieldLastName:
			_, err = tx.ExecContext(ctx, `UPDATE profile SET last_name = $1, updated_at = $2 WHERE user_id = $3`, value, now, userID)
		default:
			_, err = tx.ExecContext(ctx, `
				INSERT INTO profile_field (user_id, name, value, updated_at)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (user_id, name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
			`, userID, name, value, now)
		}
		if err != nil {
			return fmt.Errorf("failed to update profile field %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit profile fields: %w", err)
	}
	return nil
}

// GetAnswers returns every persisted answer for the user, ordered by
// question id.
func (s *Store) GetAnswers(ctx context.Context, userID string) ([]models.Answer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT question_id, value FROM answer WHERE user_id = $1 ORDER BY question_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query answers: %w", err)
	}
	defer rows.Close()

	answers := []models.Answer{}
	for rows.Next() {
		var a models.Answer
		var raw string
		if err := rows.Scan(&a.QuestionID, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &a.Value); err != nil {
			return nil, fmt.Errorf("failed to decode answer %s: %w", a.QuestionID, err)
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// GetAnswerSet is GetAnswers folded into an AnswerSet.
func (s *Store) GetAnswerSet(ctx context.Context, userID string) (models.AnswerSet, error) {
	answers, err := s.GetAnswers(ctx, userID)
	if err != nil {
		return nil, err
	}
	return models.FromAnswers(answers), nil
}

// ProfileAnswers returns the answers of an existing profile. It returns
// ErrNotFound when the user has no profile.
func (s *Store) ProfileAnswers(ctx context.Context, userID string) (models.AnswerSet, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM profile WHERE user_id = $1`, userID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}
	return s.GetAnswerSet(ctx, userID)
}

// UpsertAnswer inserts or replaces the answer keyed by (user_id, question_id).
func (s *Store) UpsertAnswer(ctx context.Context, userID, questionID string, value models.Value) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode answer: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO answer (user_id, question_id, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, question_id) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, userID, questionID, string(raw), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert answer: %w", err)
	}
	return nil
}

// DeleteAnswer removes the answer keyed by (user_id, question_id). Deleting a
// missing answer is not an error.
func (s *Store) DeleteAnswer(ctx context.Context, userID, questionID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM answer WHERE user_id = $1 AND question_id = $2
	`, userID, questionID)
	if err != nil {
		return fmt.Errorf("failed to delete answer: %w", err)
	}
	return nil
}
