// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/danielhkuo/kindred/catalog"
	"github.com/danielhkuo/kindred/events"
	"github.com/danielhkuo/kindred/logger"
	"github.com/danielhkuo/kindred/metrics"
	"github.com/danielhkuo/kindred/models"
	"github.com/danielhkuo/kindred/resolver"
	"github.com/danielhkuo/kindred/tracing"
)

var (
	ErrLoadFailure     = errors.New("session load failed")
	ErrNotReady        = errors.New("session not ready")
	ErrUnknownQuestion = errors.New("unknown question")
	ErrSessionClosed   = errors.New("session closed")
	ErrInvalidValue    = errors.New("invalid answer value")
)

// NameQuestionID is the compound name question pre-filled from the profile.
const NameQuestionID = "name"

// Persistence operations
const (
	OpUpsert  = "upsert"
	OpDelete  = "delete"
	OpProfile = "profile"
)

// Store is the answer store the session reads from and writes to.
type Store interface {
	GetAnswers(ctx context.Context, userID string) ([]models.Answer, error)
	UpsertAnswer(ctx context.Context, userID, questionID string, value models.Value) error
	DeleteAnswer(ctx context.Context, userID, questionID string) error
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	UpdateProfileFields(ctx context.Context, userID string, fields map[string]string) error
}

type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// PersistenceFailure is a single store call that failed after the in-memory
// answer set was already updated.
type PersistenceFailure struct {
	Op         string
	UserID     string
	QuestionID string
	Err        error
}

func (f *PersistenceFailure) Error() string {
	if f.QuestionID == "" {
		return fmt.Sprintf("%s for user %s failed: %v", f.Op, f.UserID, f.Err)
	}
	return fmt.Sprintf("%s %s for user %s failed: %v", f.Op, f.QuestionID, f.UserID, f.Err)
}

func (f *PersistenceFailure) Unwrap() error {
	return f.Err
}

// FailureHandler receives persistence failures from the session's worker. It
// runs on the worker goroutine and must not block on the same session.
type FailureHandler func(f *PersistenceFailure)

type Options struct {
	Log          *logger.Logger
	Events       events.Publisher
	OnFailure    FailureHandler
	StoreTimeout time.Duration
}

// SaveResult describes the effect of a save or delete on the in-memory set.
type SaveResult struct {
	QuestionID  string
	Ignored     bool
	Invalidated []string
}

type op struct {
	kind       string
	questionID string
	value      models.Value
	fields     map[string]string
	event      *events.Event
	// barrier only
	done chan struct{}
}

// Session owns one user's answers while they edit the questionnaire.
type Session struct {
	userID  string
	catalog *catalog.Catalog
	store   Store
	opts    Options
	log     *logger.Logger

	mu      sync.Mutex
	state   State
	closed  bool
	answers models.AnswerSet
	profile *models.Profile

	// unbounded FIFO, guarded by mu
	queue      []op
	pending    *sync.Cond
	workerDone chan struct{}
}

func New(userID string, c *catalog.Catalog, store Store, opts Options) *Session {
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	if opts.Events == nil {
		opts.Events = events.Nop()
	}
	s := &Session{
		userID:  userID,
		catalog: c,
		store:   store,
		opts:    opts,
		log:     opts.Log.With("service", "AnswerSession", "user_id", userID),
		state:   StateUninitialized,
	}
	s.pending = sync.NewCond(&s.mu)
	return s
}

func (s *Session) UserID() string {
	return s.userID
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Load reads the user's answers and profile. A session loads at most once;
// a failed session stays failed and a new one must be created to retry.
func (s *Session) Load(ctx context.Context) error {
	ctx, span := tracing.Tracer("session").Start(ctx, "session.Load")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", s.userID))

	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return ErrSessionClosed
	case s.state == StateReady:
		s.mu.Unlock()
		return nil
	case s.state != StateUninitialized:
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: session is %s", ErrLoadFailure, state)
	}
	s.state = StateLoading
	s.mu.Unlock()

	answers, profile, orphans, err := s.read(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil && s.closed {
		err = ErrSessionClosed
	}
	if err != nil {
		s.state = StateFailed
		metrics.SessionLoads.WithLabelValues("failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		s.log.Warn("Session load failed", "error", err)
		return fmt.Errorf("%w: %w", ErrLoadFailure, err)
	}

	s.answers = answers
	s.profile = profile
	s.workerDone = make(chan struct{})
	go s.worker()
	s.state = StateReady
	metrics.SessionLoads.WithLabelValues("ready").Inc()

	if len(orphans) > 0 {
		for _, id := range orphans {
			s.enqueue(op{kind: OpDelete, questionID: id})
		}
		metrics.CascadeInvalidations.Add(float64(len(orphans)))
		s.log.Info("Removing stored answers whose condition no longer holds", "invalidated", orphans)
		s.enqueue(op{event: &events.Event{
			Type:        events.TypeAnswersInvalidated,
			UserID:      s.userID,
			QuestionIDs: orphans,
			At:          time.Now().UTC(),
		}})
	}
	s.log.Debug("Session ready", "answers", len(answers))
	return nil
}

// read returns the stored answers with orphans already removed, and the ids
// of those orphans so their deletes can be retried.
func (s *Session) read(ctx context.Context) (models.AnswerSet, *models.Profile, []string, error) {
	readCtx, cancel := s.storeContext(ctx)
	defer cancel()

	list, err := s.store.GetAnswers(readCtx, s.userID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to read answers: %w", err)
	}
	profile, err := s.store.GetProfile(readCtx, s.userID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to read profile: %w", err)
	}

	answers := models.FromAnswers(list)
	orphans := resolver.Orphaned(s.catalog, answers)
	for _, id := range orphans {
		delete(answers, id)
	}
	if _, ok := s.catalog.Get(NameQuestionID); ok && !answers.Has(NameQuestionID) && profile != nil {
		if profile.FirstName != "" || profile.LastName != "" {
			answers[NameQuestionID] = models.List(profile.FirstName, profile.LastName)
		}
	}
	return answers, profile, orphans, nil
}

// SaveAnswer records value for questionID, removes answers whose condition no
// longer holds, and queues the matching store writes. A null value is
// ignored.
func (s *Session) SaveAnswer(ctx context.Context, questionID string, value models.Value) (SaveResult, error) {
	_, span := tracing.Tracer("session").Start(ctx, "session.SaveAnswer")
	defer span.End()
	span.SetAttributes(
		attribute.String("user_id", s.userID),
		attribute.String("question_id", questionID),
	)

	s.mu.Lock()
	defer s.mu.Unlock()

	q, err := s.question(questionID)
	if err != nil {
		return SaveResult{}, err
	}

	result := SaveResult{QuestionID: questionID, Invalidated: []string{}}
	if value.IsNull() {
		metrics.AnswersIgnored.Inc()
		s.log.Debug("Ignoring null answer", "question_id", questionID)
		result.Ignored = true
		return result, nil
	}
	if err := Validate(q, value); err != nil {
		return SaveResult{}, err
	}

	value = value.Clone()
	s.answers[questionID] = value
	s.enqueue(op{kind: OpUpsert, questionID: questionID, value: value})

	result.Invalidated = s.invalidate(questionID, value)

	if fields := ProfileFields(q.ProfileFieldMapping, value); len(fields) > 0 {
		s.enqueue(op{kind: OpProfile, questionID: questionID, fields: fields})
	}

	metrics.AnswersSaved.Inc()
	span.SetAttributes(attribute.Int("invalidated", len(result.Invalidated)))
	return result, nil
}

// DeleteAnswer removes the user's answer for questionID along with every
// answer that depended on it.
func (s *Session) DeleteAnswer(ctx context.Context, questionID string) (SaveResult, error) {
	_, span := tracing.Tracer("session").Start(ctx, "session.DeleteAnswer")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.question(questionID); err != nil {
		return SaveResult{}, err
	}

	delete(s.answers, questionID)
	s.enqueue(op{kind: OpDelete, questionID: questionID})

	return SaveResult{
		QuestionID:  questionID,
		Invalidated: s.invalidate(questionID, models.Null),
	}, nil
}

// must hold s.mu
func (s *Session) question(questionID string) (models.Question, error) {
	if s.closed {
		return models.Question{}, ErrSessionClosed
	}
	if s.state != StateReady {
		return models.Question{}, fmt.Errorf("%w: session is %s", ErrNotReady, s.state)
	}
	q, ok := s.catalog.Get(questionID)
	if !ok {
		return models.Question{}, fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	return q, nil
}

// must hold s.mu
func (s *Session) invalidate(questionID string, value models.Value) []string {
	removed := []string{}
	for _, id := range resolver.Cascade(s.catalog, questionID, value) {
		if _, ok := s.answers[id]; !ok {
			continue
		}
		delete(s.answers, id)
		s.enqueue(op{kind: OpDelete, questionID: id})
		removed = append(removed, id)
	}
	if len(removed) > 0 {
		metrics.CascadeInvalidations.Add(float64(len(removed)))
		s.log.Debug("Invalidated dependent answers", "question_id", questionID, "invalidated", removed)
		s.enqueue(op{event: &events.Event{
			Type:        events.TypeAnswersInvalidated,
			UserID:      s.userID,
			QuestionID:  questionID,
			QuestionIDs: removed,
			At:          time.Now().UTC(),
		}})
	}
	return removed
}

// must hold s.mu
func (s *Session) enqueue(o op) {
	s.queue = append(s.queue, o)
	s.pending.Signal()
}

// VisibleQuestions returns the questions to show given the current answers.
func (s *Session) VisibleQuestions() ([]models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return nil, fmt.Errorf("%w: session is %s", ErrNotReady, s.state)
	}
	return resolver.VisibleQuestions(s.catalog, s.answers), nil
}

// Answers returns a copy of the in-memory answer set.
func (s *Session) Answers() (models.AnswerSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return nil, fmt.Errorf("%w: session is %s", ErrNotReady, s.state)
	}
	return s.answers.Clone(), nil
}

// Profile returns the profile snapshot read at load time, or nil.
func (s *Session) Profile() *models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	p.Fields = make(map[string]string, len(s.profile.Fields))
	for k, v := range s.profile.Fields {
		p.Fields[k] = v
	}
	return &p
}

func (s *Session) Progress() (models.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return models.Progress{}, fmt.Errorf("%w: session is %s", ErrNotReady, s.state)
	}

	var p models.Progress
	for _, q := range resolver.VisibleQuestions(s.catalog, s.answers) {
		p.Visible++
		answered := s.answers.Has(q.ID) && !s.answers.Get(q.ID).IsEmpty()
		if answered {
			p.Answered++
		}
		if q.Required {
			p.RequiredVisible++
			if answered {
				p.RequiredAnswered++
			}
		}
	}
	p.Complete = p.RequiredAnswered == p.RequiredVisible
	return p, nil
}

// Flush blocks until every store write queued before the call has been
// attempted.
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.state != StateReady {
		s.mu.Unlock()
		return nil
	}
	done := make(chan struct{})
	s.enqueue(op{done: done})
	s.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting writes and waits for queued writes to finish.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	workerDone := s.workerDone
	s.pending.Broadcast()
	s.mu.Unlock()

	if workerDone != nil {
		<-workerDone
	}
}

// worker applies queued operations in order. After Close it drains what is
// left and exits.
func (s *Session) worker() {
	defer close(s.workerDone)
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.pending.Wait()
		}
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		o := s.queue[0]
		s.queue[0] = op{}
		s.queue = s.queue[1:]
		s.mu.Unlock()

		switch {
		case o.done != nil:
			close(o.done)
		case o.event != nil:
			s.publish(*o.event)
		default:
			s.apply(o)
		}
	}
}

func (s *Session) apply(o op) {
	ctx, cancel := s.storeContext(context.Background())
	defer cancel()

	start := time.Now()
	var err error
	switch o.kind {
	case OpUpsert:
		err = s.store.UpsertAnswer(ctx, s.userID, o.questionID, o.value)
	case OpDelete:
		err = s.store.DeleteAnswer(ctx, s.userID, o.questionID)
	case OpProfile:
		err = s.store.UpdateProfileFields(ctx, s.userID, o.fields)
	}
	metrics.PersistenceDuration.WithLabelValues(o.kind).Observe(time.Since(start).Seconds())

	if err != nil {
		f := &PersistenceFailure{Op: o.kind, UserID: s.userID, QuestionID: o.questionID, Err: err}
		metrics.PersistenceFailures.WithLabelValues(o.kind).Inc()
		s.log.Warn("Persistence failed", "op", o.kind, "question_id", o.questionID, "error", err)
		s.publish(events.Event{
			Type:       events.TypePersistenceFailed,
			UserID:     s.userID,
			QuestionID: o.questionID,
			Op:         o.kind,
			Error:      err.Error(),
		})
		if s.opts.OnFailure != nil {
			s.opts.OnFailure(f)
		}
		return
	}

	switch o.kind {
	case OpUpsert:
		s.publish(events.Event{Type: events.TypeAnswerSaved, UserID: s.userID, QuestionID: o.questionID})
	case OpDelete:
		s.publish(events.Event{Type: events.TypeAnswerDeleted, UserID: s.userID, QuestionID: o.questionID})
	}
}

func (s *Session) publish(ev events.Event) {
	ctx, cancel := s.storeContext(context.Background())
	defer cancel()
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	if err := s.opts.Events.Publish(ctx, ev); err != nil {
		s.log.Warn("Failed to publish event", "type", ev.Type, "error", err)
	}
}

func (s *Session) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.StoreTimeout)
}
