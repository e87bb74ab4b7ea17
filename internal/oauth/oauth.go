package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	"github.com/google/uuid"
)

func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

type stateData struct {
	workspaceID uuid.UUID
	expiresAt   time.Time
}

// StateStore remembers which workspace started a consent flow. A state can
// be consumed once.
type StateStore struct {
	states sync.Map
	ttl    time.Duration
	now    func() time.Time
}

func NewStateStore(ttl time.Duration) *StateStore {
	return &StateStore{ttl: ttl, now: time.Now}
}

func (s *StateStore) Issue(workspaceID uuid.UUID) (string, error) {
	state, err := GenerateState()
	if err != nil {
		return "", err
	}
	s.states.Store(state, stateData{workspaceID: workspaceID, expiresAt: s.now().Add(s.ttl)})
	return state, nil
}

func (s *StateStore) Consume(state string) (uuid.UUID, bool) {
	v, ok := s.states.LoadAndDelete(state)
	if !ok {
		return uuid.Nil, false
	}
	sd, ok := v.(stateData)
	if !ok || s.now().After(sd.expiresAt) {
		return uuid.Nil, false
	}
	return sd.workspaceID, true
}

// Cleanup drops expired states every interval until ctx is done.
func (s *StateStore) Cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.purge()
		}
	}
}

func (s *StateStore) purge() {
	now := s.now()
	s.states.Range(func(key, value interface{}) bool {
		if sd, ok := value.(stateData); ok && now.After(sd.expiresAt) {
			s.states.Delete(key)
		}
		return true
	})
}
