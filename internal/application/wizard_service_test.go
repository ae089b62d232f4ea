package application

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"testing"

	"github.com/morevans/booking-service/internal/domain"
	"github.com/morevans/booking-service/pkg/errors"
	"github.com/morevans/booking-service/pkg/logging"
	"github.com/morevans/booking-service/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.WizardSession

	saveFn func(context.Context, *domain.WizardSession) error
	findFn func(context.Context, string) (*domain.WizardSession, error)
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*domain.WizardSession)}
}

func (m *mockSessionRepo) Save(ctx context.Context, session *domain.WizardSession) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, session)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.SessionID] = session.Clone()
	return nil
}

func (m *mockSessionRepo) FindBySessionID(ctx context.Context, sessionID string) (*domain.WizardSession, error) {
	if m.findFn != nil {
		return m.findFn(ctx, sessionID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	return session.Clone(), nil
}

func (m *mockSessionRepo) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

func (m *mockSessionRepo) ListDrafts(ctx context.Context, limit, offset int64) ([]*domain.WizardSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var drafts []*domain.WizardSession
	for _, session := range m.sessions {
		if session.Status == domain.SessionStatusDraft {
			drafts = append(drafts, session.Clone())
		}
	}
	sort.Slice(drafts, func(i, j int) bool {
		return drafts[i].UpdatedAt.After(drafts[j].UpdatedAt)
	})
	if offset >= int64(len(drafts)) {
		return nil, nil
	}
	drafts = drafts[offset:]
	if int64(len(drafts)) > limit {
		drafts = drafts[:limit]
	}
	return drafts, nil
}

// mutateStored edits the mirrored copy directly, behind the store's back
func (m *mockSessionRepo) mutateStored(sessionID string, fn func(*domain.WizardSession)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session, ok := m.sessions[sessionID]; ok {
		fn(session)
	}
}

func (m *mockSessionRepo) stored(sessionID string) *domain.WizardSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session, ok := m.sessions[sessionID]; ok {
		return session.Clone()
	}
	return nil
}

type mockGeocoder struct {
	result *GeocodeResult
	err    error
}

func (m *mockGeocoder) Geocode(ctx context.Context, query string) (*GeocodeResult, error) {
	return m.result, m.err
}

func testLogger() *logging.Logger {
	cfg := logging.DefaultConfig("booking-service-test")
	cfg.Level = logging.LevelError
	return logging.New(cfg)
}

func testMetrics() *metrics.Metrics {
	return metrics.New(metrics.DefaultConfig("booking_service_test"))
}

func newTestWizardService(repo domain.SessionRepository, geocoder GeocodingClient) *WizardApplicationService {
	return NewWizardApplicationService(repo, geocoder, testMetrics(), testLogger())
}

func createSession(t *testing.T, service *WizardApplicationService) *SessionDTO {
	t.Helper()
	dto, err := service.CreateSession(context.Background(), CreateSessionCommand{})
	require.NoError(t, err)
	return dto
}

func addStop(t *testing.T, service *WizardApplicationService, sessionID string, kind domain.StopKind) *SessionDTO {
	t.Helper()
	dto, err := service.AddStop(context.Background(), AddStopCommand{
		SessionID:  sessionID,
		Kind:       kind,
		AfterIndex: -1,
	})
	require.NoError(t, err)
	return dto
}

func addItem(t *testing.T, service *WizardApplicationService, sessionID, stopID, name string) *SessionDTO {
	t.Helper()
	dto, err := service.AddItem(context.Background(), AddItemCommand{
		SessionID: sessionID,
		StopID:    stopID,
		Item:      domain.Item{Name: name, Quantity: 1},
	})
	require.NoError(t, err)
	return dto
}

func strPtr(s string) *string { return &s }

func TestCreateSessionBlank(t *testing.T) {
	service := newTestWizardService(newMockSessionRepo(), nil)

	dto := createSession(t, service)

	assert.Regexp(t, `^SES-`, dto.SessionID)
	assert.Equal(t, domain.SessionStatusDraft, dto.Status)
	assert.Equal(t, domain.FirstStep, dto.CurrentStep)
	assert.Equal(t, domain.ModeDirect, dto.RequestMode)
	assert.Empty(t, dto.Stops)
}

func TestCreateSessionFromDraft(t *testing.T) {
	service := newTestWizardService(newMockSessionRepo(), nil)

	dto, err := service.CreateSession(context.Background(), CreateSessionCommand{
		Mode: domain.ModeJourney,
		Flat: &domain.FlatFields{ContactName: "Dana Reyes"},
		Stops: []domain.StopRecord{
			{Type: domain.KindPickup, Location: "12 Harbour St"},
			{Type: domain.KindDropoff, Location: "40 Mill Ln"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ModeJourney, dto.RequestMode)
	assert.Equal(t, "Dana Reyes", dto.Flat.ContactName)
	require.Len(t, dto.Stops, 2)
	assert.Equal(t, "A", dto.Stops[0].Label)
	assert.NotEmpty(t, dto.Stops[0].ID)
}

func TestCreateSessionInvalidMode(t *testing.T) {
	service := newTestWizardService(newMockSessionRepo(), nil)

	_, err := service.CreateSession(context.Background(), CreateSessionCommand{Mode: "express"})
	require.Error(t, err)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeValidationError, appErr.Code)
}

func TestGetSessionNotFound(t *testing.T) {
	service := newTestWizardService(newMockSessionRepo(), nil)

	_, err := service.GetSession(context.Background(), "SES-missing")
	require.Error(t, err)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeNotFound, appErr.Code)
}

func TestAddStopAndItems(t *testing.T) {
	service := newTestWizardService(newMockSessionRepo(), nil)
	session := createSession(t, service)

	dto := addStop(t, service, session.SessionID, domain.KindPickup)
	require.Len(t, dto.Stops, 1)
	pickupID := dto.Stops[0].ID

	dto = addItem(t, service, session.SessionID, pickupID, "Sofa")
	require.Len(t, dto.Stops[0].Items, 1)
	assert.Equal(t, "Sofa", dto.Stops[0].Items[0].Name)
	assert.NotEmpty(t, dto.Stops[0].Items[0].ID)
}

func TestAddItemFromCatalogPreset(t *testing.T) {
	service := newTestWizardService(newMockSessionRepo(), nil)
	session := createSession(t, service)
	dto := addStop(t, service, session.SessionID, domain.KindPickup)

	dto, err := service.AddItem(context.Background(), AddItemCommand{
		SessionID: session.SessionID,
		StopID:    dto.Stops[0].ID,
		PresetKey: "sofa",
	})
	require.NoError(t, err)
	require.Len(t, dto.Stops[0].Items, 1)
	assert.Equal(t, domain.CategoryFurniture, dto.Stops[0].Items[0].Category)
}

func TestAddItemUnknownPreset(t *testing.T) {
	service := newTestWizardService(newMockSessionRepo(), nil)
	session := createSession(t, service)
	dto := addStop(t, service, session.SessionID, domain.KindPickup)

	_, err := service.AddItem(context.Background(), AddItemCommand{
		SessionID: session.SessionID,
		StopID:    dto.Stops[0].ID,
		PresetKey: "hovercraft",
	})
	require.Error(t, err)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeNotFound, appErr.Code)
}

func TestAddItemToDropoffRejected(t *testing.T) {
	service := newTestWizardService(newMockSessionRepo(), nil)
	session := createSession(t, service)
	dto := addStop(t, service, session.SessionID, domain.KindDropoff)

	_, err := service.AddItem(context.Background(), AddItemCommand{
		SessionID: session.SessionID,
		StopID:    dto.Stops[0].ID,
		Item:      domain.Item{Name: "Sofa"},
	})
	require.Error(t, err)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeValidationError, appErr.Code)
}

func TestToggleLinkFlow(t *testing.T) {
	service := newTestWizardService(newMockSessionRepo(), nil)
	session := createSession(t, service)

	dto := addStop(t, service, session.SessionID, domain.KindPickup)
	pickupID := dto.Stops[0].ID
	dto = addItem(t, service, session.SessionID, pickupID, "Sofa")
	itemID := dto.Stops[0].Items[0].ID

	dto = addStop(t, service, session.SessionID, domain.KindDropoff)
	dropoffID := dto.Stops[1].ID

	dto, err := service.ToggleLink(context.Background(), ToggleLinkCommand{
		SessionID:     session.SessionID,
		DropoffStopID: dropoffID,
		ItemID:        itemID,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{itemID}, dto.Stops[1].LinkedItems)

	// Second toggle clears
	dto, err = service.ToggleLink(context.Background(), ToggleLinkCommand{
		SessionID:     session.SessionID,
		DropoffStopID: dropoffID,
		ItemID:        itemID,
	})
	require.NoError(t, err)
	assert.Empty(t, dto.Stops[1].LinkedItems)
}

func TestLinkableItemsAcrossPickups(t *testing.T) {
	service := newTestWizardService(newMockSessionRepo(), nil)
	session := createSession(t, service)

	dto := addStop(t, service, session.SessionID, domain.KindPickup)
	addItem(t, service, session.SessionID, dto.Stops[0].ID, "Sofa")
	dto = addStop(t, service, session.SessionID, domain.KindPickup)
	addItem(t, service, session.SessionID, dto.Stops[1].ID, "Desk")

	linkable, err := service.LinkableItems(context.Background(), session.SessionID)
	require.NoError(t, err)
	require.Len(t, linkable.Items, 2)
	assert.Equal(t, "A", linkable.Items[0].PickupLabel)
	assert.Equal(t, "B", linkable.Items[1].PickupLabel)
}

func TestRemoveStopCascades(t *testing.T) {
	service := newTestWizardService(newMockSessionRepo(), nil)
	session := createSession(t, service)

	dto := addStop(t, service, session.SessionID, domain.KindPickup)
	dto = addItem(t, service, session.SessionID, dto.Stops[0].ID, "Sofa")
	itemID := dto.Stops[0].Items[0].ID
	dto = addStop(t, service, session.SessionID, domain.KindDropoff)
	_, err := service.ToggleLink(context.Background(), ToggleLinkCommand{
		SessionID:     session.SessionID,
		DropoffStopID: dto.Stops[1].ID,
		ItemID:        itemID,
	})
	require.NoError(t, err)

	dto, err = service.RemoveStop(context.Background(), RemoveStopCommand{
		SessionID: session.SessionID,
		StopID:    dto.Stops[0].ID,
	})
	require.NoError(t, err)
	require.Len(t, dto.Stops, 1)
	assert.Empty(t, dto.Stops[0].LinkedItems)
}

func TestMoveStopOutOfRange(t *testing.T) {
	service := newTestWizardService(newMockSessionRepo(), nil)
	session := createSession(t, service)
	addStop(t, service, session.SessionID, domain.KindPickup)

	_, err := service.MoveStop(context.Background(), MoveStopCommand{
		SessionID: session.SessionID,
		FromIndex: 0,
		ToIndex:   5,
	})
	require.Error(t, err)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeValidationError, appErr.Code)
}

func TestSetModeJourneyToDirectIsLossy(t *testing.T) {
	service := newTestWizardService(newMockSessionRepo(), nil)
	session := createSession(t, service)

	// Switching an empty session to journey seeds the pickup/dropoff pair
	// from the flat form
	dto, err := service.SetMode(context.Background(), SetModeCommand{
		SessionID: session.SessionID,
		Mode:      domain.ModeJourney,
	})
	require.NoError(t, err)
	require.Len(t, dto.Stops, 2)

	addStop(t, service, session.SessionID, domain.KindIntermediate)
	dto = addStop(t, service, session.SessionID, domain.KindPickup)
	require.Len(t, dto.Stops, 4)

	dto, err = service.SetMode(context.Background(), SetModeCommand{
		SessionID: session.SessionID,
		Mode:      domain.ModeDirect,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ModeDirect, dto.RequestMode)
	require.Len(t, dto.Stops, 2)
	assert.Equal(t, domain.KindPickup, dto.Stops[0].Type)
	assert.Equal(t, domain.KindDropoff, dto.Stops[1].Type)
}

func TestGeocodeStopStoresResultVerbatim(t *testing.T) {
	geocoder := &mockGeocoder{result: &GeocodeResult{
		FormattedLabel: "12 Harbour St, Dublin 2, Ireland",
		Coordinates:    &domain.Coordinates{Lat: 53.34, Lng: -6.26},
	}}
	service := newTestWizardService(newMockSessionRepo(), geocoder)
	session := createSession(t, service)
	dto := addStop(t, service, session.SessionID, domain.KindPickup)

	dto, err := service.GeocodeStop(context.Background(), GeocodeStopCommand{
		SessionID: session.SessionID,
		StopID:    dto.Stops[0].ID,
		Query:     "12 harbour st",
	})
	require.NoError(t, err)
	assert.Equal(t, "12 Harbour St, Dublin 2, Ireland", dto.Stops[0].Location)
	require.NotNil(t, dto.Stops[0].Coordinates)
	assert.Equal(t, 53.34, dto.Stops[0].Coordinates.Lat)
}

func TestGeocodeStopFailurePreservesSession(t *testing.T) {
	geocoder := &mockGeocoder{err: errors.ErrExternalCall("geocoding", assert.AnError)}
	repo := newMockSessionRepo()
	service := newTestWizardService(repo, geocoder)
	session := createSession(t, service)
	dto := addStop(t, service, session.SessionID, domain.KindPickup)
	stopID := dto.Stops[0].ID

	_, err := service.GeocodeStop(context.Background(), GeocodeStopCommand{
		SessionID: session.SessionID,
		StopID:    stopID,
		Query:     "nowhere",
	})
	require.Error(t, err)

	stored := repo.stored(session.SessionID)
	require.NotNil(t, stored)
	assert.Empty(t, stored.Stops[0].Location)
}

func TestMutateSubmittedSessionRejected(t *testing.T) {
	repo := newMockSessionRepo()
	service := newTestWizardService(repo, nil)
	session := createSession(t, service)

	repo.mutateStored(session.SessionID, func(s *domain.WizardSession) {
		s.Status = domain.SessionStatusSubmitted
	})

	_, err := service.AddStop(context.Background(), AddStopCommand{
		SessionID:  session.SessionID,
		Kind:       domain.KindPickup,
		AfterIndex: -1,
	})
	require.Error(t, err)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeConflict, appErr.Code)
}

func TestLoadMirrorWinsOverActiveCopy(t *testing.T) {
	repo := newMockSessionRepo()
	service := newTestWizardService(repo, nil)
	session := createSession(t, service)
	addStop(t, service, session.SessionID, domain.KindPickup)

	// Another writer replaces the mirrored stop list
	repo.mutateStored(session.SessionID, func(s *domain.WizardSession) {
		s.Stops = []domain.StopRecord{
			{ID: "ext-1", Type: domain.KindPickup, Location: "Mirror Rd"},
			{ID: "ext-2", Type: domain.KindDropoff, Location: "Mirror Ave"},
		}
	})

	dto, err := service.GetSession(context.Background(), session.SessionID)
	require.NoError(t, err)
	require.Len(t, dto.Stops, 2)
	assert.Equal(t, "Mirror Rd", dto.Stops[0].Location)
}

func TestLoadHealsDanglingLinks(t *testing.T) {
	repo := newMockSessionRepo()
	service := newTestWizardService(repo, nil)
	session := createSession(t, service)

	repo.mutateStored(session.SessionID, func(s *domain.WizardSession) {
		s.Stops = []domain.StopRecord{
			{ID: "p1", Type: domain.KindPickup, Location: "A St"},
			{ID: "d1", Type: domain.KindDropoff, Location: "B St", LinkedItems: []string{"ghost"}},
		}
	})

	dto, err := service.GetSession(context.Background(), session.SessionID)
	require.NoError(t, err)
	assert.Empty(t, dto.Stops[1].LinkedItems)
}

func TestDeleteSession(t *testing.T) {
	repo := newMockSessionRepo()
	service := newTestWizardService(repo, nil)
	session := createSession(t, service)

	require.NoError(t, service.DeleteSession(context.Background(), session.SessionID))

	_, err := service.GetSession(context.Background(), session.SessionID)
	require.Error(t, err)
}

func TestListDraftsPagination(t *testing.T) {
	repo := newMockSessionRepo()
	service := newTestWizardService(repo, nil)
	for i := 0; i < 3; i++ {
		createSession(t, service)
	}

	summaries, err := service.ListDrafts(context.Background(), ListDraftsQuery{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, summaries, 2)

	summaries, err = service.ListDrafts(context.Background(), ListDraftsQuery{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
}

func TestPreviewSynthesizesFromFlat(t *testing.T) {
	service := newTestWizardService(newMockSessionRepo(), nil)

	dto, err := service.CreateSession(context.Background(), CreateSessionCommand{
		Flat: &domain.FlatFields{
			PickupLocation:  "5 Quay Rd",
			DropoffLocation: "9 Bridge St",
			MovingItems:     []domain.Item{{Name: "Sofa", Quantity: 1}},
		},
	})
	require.NoError(t, err)

	payload, err := service.Preview(context.Background(), dto.SessionID)
	require.NoError(t, err)
	require.Len(t, payload.JourneyStops, 2)
	assert.Equal(t, "09:00", payload.JourneyStops[0].EstimatedTime)
	require.Len(t, payload.MovingItems, 1)
	assert.Equal(t, "Sofa", payload.MovingItems[0].Name)
}

// Stops added while the session sits in direct mode do not leak into the
// previewed payload; it still carries the two-stop shape
func TestPreviewDirectModeCollapsesAddedStops(t *testing.T) {
	service := newTestWizardService(newMockSessionRepo(), nil)
	session := createSession(t, service)

	dto := addStop(t, service, session.SessionID, domain.KindPickup)
	addStop(t, service, session.SessionID, domain.KindDropoff)
	addStop(t, service, session.SessionID, domain.KindIntermediate)
	dto2 := addStop(t, service, session.SessionID, domain.KindPickup)
	for _, stop := range dto2.Stops {
		_, err := service.PatchStop(context.Background(), PatchStopCommand{
			SessionID: session.SessionID,
			StopID:    stop.ID,
			Patch:     domain.SitePatch{Location: strPtr("1 Main St")},
		})
		require.NoError(t, err)
	}

	payload, err := service.Preview(context.Background(), session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.ModeDirect, payload.RequestMode)
	require.Len(t, payload.JourneyStops, 2)
	assert.Equal(t, dto.Stops[0].ID, payload.JourneyStops[0].ID)
}

func TestPreviewIncompleteStop(t *testing.T) {
	service := newTestWizardService(newMockSessionRepo(), nil)
	session := createSession(t, service)
	addStop(t, service, session.SessionID, domain.KindPickup)
	addStop(t, service, session.SessionID, domain.KindDropoff)

	_, err := service.Preview(context.Background(), session.SessionID)
	require.Error(t, err)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeIncompleteStop, appErr.Code)
}

func TestSessionDTOMarshalsSnakeCase(t *testing.T) {
	service := newTestWizardService(newMockSessionRepo(), nil)
	session := createSession(t, service)

	raw, err := json.Marshal(session)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "session_id")
	assert.Contains(t, decoded, "request_mode")
	assert.Contains(t, decoded, "journey_stops")
	assert.Contains(t, decoded, "total_estimated_weight")
}
