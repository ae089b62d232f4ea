package application

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/morevans/booking-service/internal/domain"
	"github.com/morevans/booking-service/pkg/errors"
	"github.com/morevans/booking-service/pkg/logging"
	"github.com/morevans/booking-service/pkg/metrics"
)

// SubmissionApplicationService handles wizard step submissions, including
// the final assembly and handoff to the storage and pricing collaborators
type SubmissionApplicationService struct {
	store   *sessionStore
	storage RequestStorageClient
	pricing PricingClient
	metrics *metrics.Metrics
	logger  *logging.Logger
}

// NewSubmissionApplicationService creates a new SubmissionApplicationService.
// It shares the wizard service's session store so both see the same active
// copies.
func NewSubmissionApplicationService(
	wizard *WizardApplicationService,
	storage RequestStorageClient,
	pricing PricingClient,
	m *metrics.Metrics,
	logger *logging.Logger,
) *SubmissionApplicationService {
	return &SubmissionApplicationService{
		store:   wizard.store,
		storage: storage,
		pricing: pricing,
		metrics: m,
		logger:  logger,
	}
}

// SubmitStep processes one wizard step. Steps before the final one only
// advance the session; the final step assembles the payload, hands it to the
// storage collaborator, and marks the session submitted on acceptance.
func (s *SubmissionApplicationService) SubmitStep(ctx context.Context, cmd SubmitStepCommand) (*StepResultDTO, error) {
	if cmd.Step < domain.FirstStep || cmd.Step > domain.FinalStep {
		return nil, errors.ErrValidation(fmt.Sprintf("step must be between %d and %d", domain.FirstStep, domain.FinalStep))
	}

	session, err := s.store.load(ctx, cmd.SessionID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load session", "sessionId", cmd.SessionID)
		return nil, err
	}
	if session == nil {
		return nil, errors.ErrNotFoundWithID("session", cmd.SessionID)
	}
	if session.Status != domain.SessionStatusDraft {
		return nil, errors.ErrConflict(domain.ErrSessionSubmitted.Error())
	}

	if cmd.Flat != nil {
		session.Flat = *cmd.Flat
	}

	if cmd.Step < domain.FinalStep {
		return s.submitIntermediate(ctx, session, cmd.Step)
	}
	return s.submitFinal(ctx, session)
}

// submitIntermediate records an early step: the flat form is persisted and
// the session advances, nothing leaves the service
func (s *SubmissionApplicationService) submitIntermediate(ctx context.Context, session *domain.WizardSession, step int) (*StepResultDTO, error) {
	session.AdvanceStep()

	if err := s.store.commit(ctx, session); err != nil {
		s.logger.WithError(err).Error("Failed to save session", "sessionId", session.SessionID)
		return nil, err
	}

	s.metrics.RecordStepSubmission(step, "accepted")
	s.logger.Info("Wizard step accepted", "sessionId", session.SessionID, "step", step)

	return &StepResultDTO{
		SessionID:   session.SessionID,
		Step:        step,
		Status:      session.Status,
		CurrentStep: session.CurrentStep,
	}, nil
}

// submitFinal assembles the full payload and submits it. The session is only
// marked submitted when the storage collaborator accepts; a rejection or a
// transport failure leaves the draft untouched so the user can retry.
func (s *SubmissionApplicationService) submitFinal(ctx context.Context, session *domain.WizardSession) (*StepResultDTO, error) {
	// Persist the flat form before calling out so a crash mid-submission
	// does not lose the user's last edits
	if err := s.store.commit(ctx, session); err != nil {
		s.logger.WithError(err).Error("Failed to save session", "sessionId", session.SessionID)
		return nil, err
	}
	generation := session.Generation

	seq, err := session.Sequence()
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild stop sequence: %w", err)
	}

	payload, err := domain.Assemble(seq, session.Flat)
	if err != nil {
		var incomplete *domain.IncompleteStopError
		if stderrors.As(err, &incomplete) {
			s.metrics.RecordStepSubmission(domain.FinalStep, "incomplete")
			return nil, errors.ErrIncompleteStop(incomplete.Error())
		}
		return nil, err
	}

	result, err := s.storage.SubmitStep(ctx, domain.FinalStep, payload)
	if err != nil {
		s.metrics.RecordStepSubmission(domain.FinalStep, "failed")
		s.logger.WithError(err).Error("Submission handoff failed", "sessionId", session.SessionID)
		return nil, err
	}
	if !result.Accepted() {
		s.metrics.RecordStepSubmission(domain.FinalStep, "rejected")
		s.logger.Warn("Submission rejected by storage",
			"sessionId", session.SessionID,
			"status", result.Status)
		return nil, errors.ErrExternalCall("request storage", fmt.Errorf("submission rejected with status %d", result.Status))
	}

	// Pricing is best effort: a forecast failure never fails an accepted
	// submission
	forecast, err := s.pricing.Forecast(ctx, payload)
	if err != nil {
		s.logger.WithError(err).Warn("Price forecast unavailable", "sessionId", session.SessionID)
		forecast = nil
	}

	if err := session.MarkSubmitted(); err != nil {
		return nil, errors.ErrConflict(err.Error())
	}

	// The collaborator round trip may have outlived the draft it was
	// issued against; a stale result is reported but never written back
	committed, err := s.store.commitIfCurrent(ctx, session, generation)
	if err != nil {
		s.logger.WithError(err).Error("Failed to finalize session", "sessionId", session.SessionID)
		return nil, err
	}
	if !committed {
		s.logger.Info("Session changed during submission, result not applied", "sessionId", session.SessionID)
	}

	s.metrics.RecordStepSubmission(domain.FinalStep, "accepted")
	s.logger.Info("Wizard submission accepted", "sessionId", session.SessionID)

	return &StepResultDTO{
		SessionID:   session.SessionID,
		Step:        domain.FinalStep,
		Status:      domain.SessionStatusSubmitted,
		CurrentStep: session.CurrentStep,
		Stored:      result.Data,
		Forecast:    forecast,
	}, nil
}
