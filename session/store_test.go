package session

import (
	"context"
	"errors"
	"sync"

	"github.com/danielhkuo/kindred/models"
)

var errInjected = errors.New("injected store failure")

// memStore is an in-memory Store that records writes and can be told to fail.
type memStore struct {
	mu       sync.Mutex
	answers  map[string]models.AnswerSet
	profiles map[string]*models.Profile
	writes   []string
	loads    int

	failGet     error
	failProfile error
	failOps     map[string]error
	gate        chan struct{}
	// writeGate holds answer upserts and deletes until closed
	writeGate chan struct{}
}

func newMemStore() *memStore {
	return &memStore{
		answers:  map[string]models.AnswerSet{},
		profiles: map[string]*models.Profile{},
		failOps:  map[string]error{},
	}
}

func (m *memStore) seed(userID string, answers models.AnswerSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answers[userID] = answers.Clone()
}

func (m *memStore) setProfile(p models.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.UserID] = &p
}

func (m *memStore) failOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOps[op] = err
}

func (m *memStore) writeLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.writes))
	copy(out, m.writes)
	return out
}

func (m *memStore) loadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads
}

func (m *memStore) stored(userID string) models.AnswerSet {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.answers[userID].Clone()
}

func (m *memStore) GetAnswers(ctx context.Context, userID string) ([]models.Answer, error) {
	m.mu.Lock()
	m.loads++
	gate := m.gate
	failGet := m.failGet
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if failGet != nil {
		return nil, failGet
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Answer
	for id, v := range m.answers[userID] {
		out = append(out, models.Answer{QuestionID: id, Value: v})
	}
	return out, nil
}

func (m *memStore) waitWrite(ctx context.Context) error {
	m.mu.Lock()
	gate := m.writeGate
	m.mu.Unlock()
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *memStore) UpsertAnswer(ctx context.Context, userID, questionID string, value models.Value) error {
	if err := m.waitWrite(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = append(m.writes, OpUpsert+":"+questionID)
	if err := m.failOps[OpUpsert]; err != nil {
		return err
	}
	if m.answers[userID] == nil {
		m.answers[userID] = models.AnswerSet{}
	}
	m.answers[userID][questionID] = value
	return nil
}

func (m *memStore) DeleteAnswer(ctx context.Context, userID, questionID string) error {
	if err := m.waitWrite(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = append(m.writes, OpDelete+":"+questionID)
	if err := m.failOps[OpDelete]; err != nil {
		return err
	}
	delete(m.answers[userID], questionID)
	return nil
}

func (m *memStore) GetProfile(_ context.Context, userID string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failProfile != nil {
		return nil, m.failProfile
	}
	p, ok := m.profiles[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) UpdateProfileFields(_ context.Context, userID string, fields map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = append(m.writes, OpProfile)
	if err := m.failOps[OpProfile]; err != nil {
		return err
	}
	p, ok := m.profiles[userID]
	if !ok {
		p = &models.Profile{UserID: userID}
		m.profiles[userID] = p
	}
	if p.Fields == nil {
		p.Fields = map[string]string{}
	}
	for k, v := range fields {
		switch k {
		case models.FieldFirstName:
			p.FirstName = v
		case models.FieldLastName:
			p.LastName = v
		default:
			p.Fields[k] = v
		}
	}
	return nil
}
