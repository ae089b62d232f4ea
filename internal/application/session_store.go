package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/morevans/booking-service/internal/domain"
	"github.com/morevans/booking-service/pkg/logging"
	"github.com/morevans/booking-service/pkg/metrics"
)

// sessionStore keeps the two mutation channels convergent: a transient
// in-memory active copy per session and the persisted MongoDB mirror.
// Every mutation is applied to the active copy and replayed into the mirror
// in the same synchronous tick; when the two diverge the mirror wins and
// the active copy is overwritten.
type sessionStore struct {
	repo    domain.SessionRepository
	metrics *metrics.Metrics
	logger  *logging.Logger

	mu     sync.Mutex
	active map[string]*domain.WizardSession
}

func newSessionStore(repo domain.SessionRepository, m *metrics.Metrics, logger *logging.Logger) *sessionStore {
	return &sessionStore{
		repo:    repo,
		metrics: m,
		logger:  logger.WithComponent("session_store"),
		active:  make(map[string]*domain.WizardSession),
	}
}

// load returns a working clone of the session, converged with the mirror.
// Returns (nil, nil) when the session does not exist. Stale linked-item
// references left behind in old drafts are healed here, silently.
func (s *sessionStore) load(ctx context.Context, sessionID string) (*domain.WizardSession, error) {
	mirror, err := s.repo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session mirror: %w", err)
	}
	if mirror == nil {
		s.mu.Lock()
		delete(s.active, sessionID)
		s.mu.Unlock()
		return nil, nil
	}

	s.mu.Lock()
	current, ok := s.active[sessionID]
	if ok && !current.StructurallyEqual(mirror) {
		s.metrics.RecordMirrorDivergence()
		s.logger.WithContext(ctx).Warn("Active session diverged from mirror, mirror wins",
			"sessionId", sessionID)
	}
	s.active[sessionID] = mirror.Clone()
	s.mu.Unlock()

	work := mirror.Clone()
	s.healLinks(ctx, work)
	return work, nil
}

// commit replays the mutated session into the mirror and replaces the
// active copy. Every commit advances the generation, which is how in-flight
// submission results detect that the session moved on without them.
func (s *sessionStore) commit(ctx context.Context, session *domain.WizardSession) error {
	session.Generation++
	session.Touch()
	if err := s.repo.Save(ctx, session); err != nil {
		return fmt.Errorf("failed to save session mirror: %w", err)
	}

	s.mu.Lock()
	s.active[session.SessionID] = session.Clone()
	s.mu.Unlock()

	return nil
}

// commitIfCurrent commits only when the stored session is still the same
// draft generation the caller started from. Used by the asynchronous
// submission path: results of an in-flight call must not land on a session
// that has since been reset or finalized. Returns false when skipped.
func (s *sessionStore) commitIfCurrent(ctx context.Context, session *domain.WizardSession, generation int64) (bool, error) {
	mirror, err := s.repo.FindBySessionID(ctx, session.SessionID)
	if err != nil {
		return false, fmt.Errorf("failed to load session mirror: %w", err)
	}
	if mirror == nil || mirror.Generation != generation || mirror.Status != domain.SessionStatusDraft {
		s.logger.WithContext(ctx).Info("Discarding stale submission result",
			"sessionId", session.SessionID)
		return false, nil
	}

	return true, s.commit(ctx, session)
}

// forget drops the session from both channels
func (s *sessionStore) forget(ctx context.Context, sessionID string) error {
	if err := s.repo.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session mirror: %w", err)
	}

	s.mu.Lock()
	delete(s.active, sessionID)
	s.mu.Unlock()

	return nil
}

func (s *sessionStore) healLinks(ctx context.Context, session *domain.WizardSession) {
	seq, err := session.Sequence()
	if err != nil {
		return
	}

	if pruned := seq.PruneDanglingLinks(); pruned > 0 {
		session.SetSequence(seq)
		s.metrics.RecordDanglingLinksPruned(pruned)
		s.logger.WithContext(ctx).Debug("Pruned dangling item links",
			"sessionId", session.SessionID, "pruned", pruned)
	}
}
