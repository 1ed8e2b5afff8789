// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db stores profiles and questionnaire answers.

# Opening a Database

Open connects to SQLite (modernc.org/sqlite) or PostgreSQL (lib/pq) and
pings it. CreateSchema then initializes all required tables:

	conn, err := db.Open(ctx, db.TypeSQLite, "kindred.db")
	if err := db.CreateSchema(ctx, conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
Statements use $N placeholders, which both drivers accept.

# Tables

  - profile: One row per user with first and last name
  - profile_field: Named profile fields written by answers that carry a
    profile_field_mapping
  - answer: One row per (user_id, question_id), value stored as JSON

# Store

Store implements the answer store used by answer sessions:

	store := db.NewStore(conn, log)
	answers, err := store.GetAnswerSet(ctx, userID)
	err = store.UpsertAnswer(ctx, userID, "smoker", models.String("No"))

UpsertAnswer and DeleteAnswer are idempotent. ProfileAnswers returns
ErrNotFound for unknown users, which the curation endpoints map to 404.
*/
package db
