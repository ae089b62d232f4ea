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

// WizardApplicationService handles wizard session editing use cases
type WizardApplicationService struct {
	store    *sessionStore
	geocoder GeocodingClient
	metrics  *metrics.Metrics
	logger   *logging.Logger
}

// NewWizardApplicationService creates a new WizardApplicationService
func NewWizardApplicationService(
	repo domain.SessionRepository,
	geocoder GeocodingClient,
	m *metrics.Metrics,
	logger *logging.Logger,
) *WizardApplicationService {
	return &WizardApplicationService{
		store:    newSessionStore(repo, m, logger),
		geocoder: geocoder,
		metrics:  m,
		logger:   logger,
	}
}

// CreateSession starts a new wizard session, blank or pre-populated from a
// saved draft payload
func (s *WizardApplicationService) CreateSession(ctx context.Context, cmd CreateSessionCommand) (*SessionDTO, error) {
	session := domain.NewWizardSession()

	if cmd.Mode != "" {
		if !cmd.Mode.IsValid() {
			return nil, errors.ErrValidation("request mode must be direct or journey")
		}
		session.Mode = cmd.Mode
	}
	if cmd.Flat != nil {
		session.Flat = *cmd.Flat
	}
	if len(cmd.Stops) > 0 {
		seq, err := domain.SequenceFromRecords(session.Mode, cmd.Stops)
		if err != nil {
			return nil, errors.ErrValidation(err.Error())
		}
		seq.PruneDanglingLinks()
		session.SetSequence(seq)
	}

	if err := s.store.commit(ctx, session); err != nil {
		s.logger.WithError(err).Error("Failed to create session")
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.metrics.RecordSessionCreated(string(session.Mode))
	s.logger.Info("Wizard session created", "sessionId", session.SessionID, "mode", session.Mode)

	return ToSessionDTO(session), nil
}

// GetSession fetches a session by id
func (s *WizardApplicationService) GetSession(ctx context.Context, sessionID string) (*SessionDTO, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return ToSessionDTO(session), nil
}

// ListDrafts pages through saved draft sessions
func (s *WizardApplicationService) ListDrafts(ctx context.Context, query ListDraftsQuery) ([]SessionSummaryDTO, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 20
	}

	sessions, err := s.store.repo.ListDrafts(ctx, limit, query.Offset)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list draft sessions")
		return nil, fmt.Errorf("failed to list draft sessions: %w", err)
	}

	return ToSessionSummaryDTOs(sessions), nil
}

// DeleteSession discards a session entirely
func (s *WizardApplicationService) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.store.forget(ctx, sessionID); err != nil {
		s.logger.WithError(err).Error("Failed to delete session", "sessionId", sessionID)
		return fmt.Errorf("failed to delete session: %w", err)
	}

	s.logger.Info("Wizard session deleted", "sessionId", sessionID)
	return nil
}

// SetMode converts the session between direct and journey representations
func (s *WizardApplicationService) SetMode(ctx context.Context, cmd SetModeCommand) (*SessionDTO, error) {
	return s.mutate(ctx, cmd.SessionID, func(session *domain.WizardSession, seq *domain.Sequence) (*domain.Sequence, error) {
		if err := seq.SetMode(cmd.Mode); err != nil {
			return nil, err
		}

		// Mode switches are one of the reconcile points for the flat form
		return domain.Reconcile(session.Flat, seq), nil
	})
}

// AddStop inserts a stop into the sequence
func (s *WizardApplicationService) AddStop(ctx context.Context, cmd AddStopCommand) (*SessionDTO, error) {
	dto, err := s.mutate(ctx, cmd.SessionID, func(_ *domain.WizardSession, seq *domain.Sequence) (*domain.Sequence, error) {
		_, err := seq.AddStop(cmd.Kind, cmd.AfterIndex)
		return seq, err
	})
	if err == nil {
		s.metrics.RecordStopAdded(string(cmd.Kind))
	}
	return dto, err
}

// PatchStop updates a stop's site fields
func (s *WizardApplicationService) PatchStop(ctx context.Context, cmd PatchStopCommand) (*SessionDTO, error) {
	return s.mutate(ctx, cmd.SessionID, func(_ *domain.WizardSession, seq *domain.Sequence) (*domain.Sequence, error) {
		_, err := seq.PatchStop(cmd.StopID, cmd.Patch)
		return seq, err
	})
}

// RemoveStop removes a stop; removing a pickup cascades into every
// dropoff's linked set
func (s *WizardApplicationService) RemoveStop(ctx context.Context, cmd RemoveStopCommand) (*SessionDTO, error) {
	return s.mutate(ctx, cmd.SessionID, func(_ *domain.WizardSession, seq *domain.Sequence) (*domain.Sequence, error) {
		for i, stop := range seq.Stops {
			if stop.Site().ID == cmd.StopID {
				_, err := seq.RemoveStop(i)
				return seq, err
			}
		}
		return nil, domain.ErrStopNotFound
	})
}

// MoveStop repositions a stop with splice semantics
func (s *WizardApplicationService) MoveStop(ctx context.Context, cmd MoveStopCommand) (*SessionDTO, error) {
	return s.mutate(ctx, cmd.SessionID, func(_ *domain.WizardSession, seq *domain.Sequence) (*domain.Sequence, error) {
		return seq, seq.MoveStop(cmd.FromIndex, cmd.ToIndex)
	})
}

// GeocodeStop resolves a stop's location text through the geocoding
// collaborator and stores the result verbatim
func (s *WizardApplicationService) GeocodeStop(ctx context.Context, cmd GeocodeStopCommand) (*SessionDTO, error) {
	result, err := s.geocoder.Geocode(ctx, cmd.Query)
	if err != nil {
		s.logger.WithError(err).Warn("Geocoding failed", "sessionId", cmd.SessionID)
		return nil, err
	}

	return s.mutate(ctx, cmd.SessionID, func(_ *domain.WizardSession, seq *domain.Sequence) (*domain.Sequence, error) {
		_, err := seq.PatchStop(cmd.StopID, domain.SitePatch{
			Location:    &result.FormattedLabel,
			Coordinates: result.Coordinates,
		})
		return seq, err
	})
}

// AddItem registers an item at a pickup stop, manually or from a catalog
// preset
func (s *WizardApplicationService) AddItem(ctx context.Context, cmd AddItemCommand) (*SessionDTO, error) {
	source := "manual"
	var category domain.Category

	dto, err := s.mutate(ctx, cmd.SessionID, func(_ *domain.WizardSession, seq *domain.Sequence) (*domain.Sequence, error) {
		var item *domain.Item
		var err error

		if cmd.PresetKey != "" {
			source = "catalog"
			item, err = seq.AddItemFromCatalog(cmd.StopID, cmd.PresetKey)
		} else {
			item, err = seq.AddItem(cmd.StopID, cmd.Item)
		}
		if err != nil {
			return nil, err
		}

		category = item.Category
		return seq, nil
	})
	if err == nil {
		s.metrics.RecordItemAdded(string(category), source)
	}
	return dto, err
}

// PatchItem shallow-merges changes into an item
func (s *WizardApplicationService) PatchItem(ctx context.Context, cmd PatchItemCommand) (*SessionDTO, error) {
	return s.mutate(ctx, cmd.SessionID, func(_ *domain.WizardSession, seq *domain.Sequence) (*domain.Sequence, error) {
		_, err := seq.UpdateItem(cmd.StopID, cmd.ItemID, cmd.Patch)
		return seq, err
	})
}

// RemoveItem removes an item and cascades into every dropoff's linked set
func (s *WizardApplicationService) RemoveItem(ctx context.Context, cmd RemoveItemCommand) (*SessionDTO, error) {
	return s.mutate(ctx, cmd.SessionID, func(_ *domain.WizardSession, seq *domain.Sequence) (*domain.Sequence, error) {
		return seq, seq.RemoveItem(cmd.StopID, cmd.ItemID)
	})
}

// LinkableItems returns the union of every pickup stop's items
func (s *WizardApplicationService) LinkableItems(ctx context.Context, sessionID string) (*LinkableItemsDTO, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	seq, err := session.Sequence()
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild stop sequence: %w", err)
	}

	return &LinkableItemsDTO{Items: seq.LinkableItems()}, nil
}

// ToggleLink toggles one item id on a dropoff's linked set
func (s *WizardApplicationService) ToggleLink(ctx context.Context, cmd ToggleLinkCommand) (*SessionDTO, error) {
	dto, err := s.mutate(ctx, cmd.SessionID, func(_ *domain.WizardSession, seq *domain.Sequence) (*domain.Sequence, error) {
		return seq, seq.ToggleItemLink(cmd.DropoffStopID, cmd.ItemID)
	})
	if err == nil {
		s.metrics.RecordLinkToggle("item")
	}
	return dto, err
}

// TogglePickupLinks bulk-toggles every item of one pickup on a dropoff
func (s *WizardApplicationService) TogglePickupLinks(ctx context.Context, cmd TogglePickupLinksCommand) (*SessionDTO, error) {
	dto, err := s.mutate(ctx, cmd.SessionID, func(_ *domain.WizardSession, seq *domain.Sequence) (*domain.Sequence, error) {
		return seq, seq.ToggleAllFromPickup(cmd.DropoffStopID, cmd.PickupStopID)
	})
	if err == nil {
		s.metrics.RecordLinkToggle("pickup")
	}
	return dto, err
}

// ToggleAllLinks bulk-toggles the union of all pickups' items on a dropoff
func (s *WizardApplicationService) ToggleAllLinks(ctx context.Context, cmd ToggleAllLinksCommand) (*SessionDTO, error) {
	dto, err := s.mutate(ctx, cmd.SessionID, func(_ *domain.WizardSession, seq *domain.Sequence) (*domain.Sequence, error) {
		return seq, seq.ToggleAllGlobal(cmd.DropoffStopID)
	})
	if err == nil {
		s.metrics.RecordLinkToggle("global")
	}
	return dto, err
}

// Preview assembles the submission payload without touching any
// collaborator or mutating the session
func (s *WizardApplicationService) Preview(ctx context.Context, sessionID string) (*domain.Payload, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	seq, err := session.Sequence()
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild stop sequence: %w", err)
	}

	payload, err := domain.Assemble(seq, session.Flat)
	if err != nil {
		return nil, mapAssemblyError(err)
	}
	return payload, nil
}

// load fetches a session or fails with a 404 AppError
func (s *WizardApplicationService) load(ctx context.Context, sessionID string) (*domain.WizardSession, error) {
	session, err := s.store.load(ctx, sessionID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load session", "sessionId", sessionID)
		return nil, err
	}
	if session == nil {
		return nil, errors.ErrNotFoundWithID("session", sessionID)
	}
	return session, nil
}

// mutate runs one discrete engine operation against the session's stop
// sequence and replays the result into the mirror in the same tick. The
// callback returns the sequence to persist, which lets it swap in a
// replacement built by Reconcile.
func (s *WizardApplicationService) mutate(ctx context.Context, sessionID string, fn func(*domain.WizardSession, *domain.Sequence) (*domain.Sequence, error)) (*SessionDTO, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.SessionStatusDraft {
		return nil, errors.ErrConflict(domain.ErrSessionSubmitted.Error())
	}

	seq, err := session.Sequence()
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild stop sequence: %w", err)
	}

	seq, err = fn(session, seq)
	if err != nil {
		return nil, mapDomainError(err)
	}

	session.SetSequence(seq)

	if err := s.store.commit(ctx, session); err != nil {
		s.logger.WithError(err).Error("Failed to save session", "sessionId", sessionID)
		return nil, err
	}

	return ToSessionDTO(session), nil
}

// mapDomainError translates engine sentinels into transport-level errors
func mapDomainError(err error) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, domain.ErrStopNotFound):
		return errors.ErrNotFound("stop")
	case stderrors.Is(err, domain.ErrItemNotFound):
		return errors.ErrNotFound("item")
	case stderrors.Is(err, domain.ErrPresetNotFound):
		return errors.ErrNotFound("catalog preset")
	case stderrors.Is(err, domain.ErrInvalidOwner), stderrors.Is(err, domain.ErrNotDropoff),
		stderrors.Is(err, domain.ErrIndexOutOfRange), stderrors.Is(err, domain.ErrInvalidStopKind),
		stderrors.Is(err, domain.ErrInvalidQuantity), stderrors.Is(err, domain.ErrInvalidMode):
		return errors.ErrValidation(err.Error())
	default:
		return err
	}
}

func mapAssemblyError(err error) error {
	var incomplete *domain.IncompleteStopError
	if stderrors.As(err, &incomplete) {
		return errors.ErrIncompleteStop(incomplete.Error())
	}
	return err
}
