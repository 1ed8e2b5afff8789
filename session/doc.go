// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package session manages one user's questionnaire answers while they edit them.

# Lifecycle

A Session starts Uninitialized. Load moves it through Loading to either Ready
or Failed; both are terminal. Reads and writes are only accepted in Ready:

	s := session.New(userID, cat, store, session.Options{Log: log})
	if err := s.Load(ctx); err != nil {
		// errors.Is(err, session.ErrLoadFailure)
	}

If the user has no "name" answer but their profile has a first or last name,
Load fills the answer in memory from the profile. Nothing is written.
Stored answers whose condition no longer holds are dropped from memory and
their deletes are queued again.

# Saving

SaveAnswer updates the in-memory answers immediately and queues the store
writes on the session's worker goroutine. The queue is unbounded, so a slow
store never blocks callers:

 1. upsert the answer
 2. delete every answer whose condition no longer holds, following chains
 3. copy the value onto the profile fields named by profile_field_mapping

A null value is ignored and logged at debug level. Store failures are not
returned to the caller; they are logged, counted, published as events and
passed to Options.OnFailure as a *PersistenceFailure. Flush waits for queued
writes and Close drains the queue before returning.

# Registry

Registry keeps Ready sessions in an LRU cache keyed by user id. Concurrent
Get calls for the same user share one load and failed loads are retried on
the next Get. Evicted sessions are closed after their queue drains, and a Get
for an evicted user waits for that drain before loading again.
*/
package session
