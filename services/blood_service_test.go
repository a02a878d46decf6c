package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"lifeline/config"
	"lifeline/models"
	"lifeline/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBloodStore struct {
	mu       sync.Mutex
	banks    map[string]*models.BloodBank
	requests map[string]*models.BloodRequest

	// afterDebit runs once after a successful debit, letting tests slip a
	// competing settle or cancel between the debit and the fulfil write.
	afterDebit func()
}

func newFakeBloodStore(banks ...models.BloodBank) *fakeBloodStore {
	store := &fakeBloodStore{
		banks:    make(map[string]*models.BloodBank),
		requests: make(map[string]*models.BloodRequest),
	}
	for i := range banks {
		copied := banks[i]
		store.banks[copied.ID] = &copied
	}
	return store
}

func (s *fakeBloodStore) GetBankByID(ctx context.Context, id string) (*models.BloodBank, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bank, ok := s.banks[id]
	if !ok {
		return nil, utils.NewBloodBankNotFoundError()
	}
	copied := *bank
	return &copied, nil
}

func (s *fakeBloodStore) ListBanksWithStock(ctx context.Context, bloodGroup string) ([]models.BloodBank, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.BloodBank
	for _, bank := range s.banks {
		if bank.IsActive && bank.Stock[bloodGroup] > 0 {
			out = append(out, *bank)
		}
	}
	return out, nil
}

func (s *fakeBloodStore) DebitUnits(ctx context.Context, bankID, bloodGroup string, units int) error {
	s.mu.Lock()
	bank, ok := s.banks[bankID]
	if !ok {
		s.mu.Unlock()
		return utils.NewBloodBankNotFoundError()
	}
	if bank.Stock[bloodGroup] < units {
		s.mu.Unlock()
		return utils.ErrInsufficientUnits
	}
	bank.Stock[bloodGroup] -= units
	hook := s.afterDebit
	s.afterDebit = nil
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	return nil
}

func (s *fakeBloodStore) CreditUnits(ctx context.Context, bankID, bloodGroup string, units int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bank, ok := s.banks[bankID]
	if !ok {
		return utils.NewBloodBankNotFoundError()
	}
	bank.Stock[bloodGroup] += units
	return nil
}

func (s *fakeBloodStore) UpdateStock(ctx context.Context, bankID, bloodGroup string, units int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bank, ok := s.banks[bankID]
	if !ok {
		return utils.NewBloodBankNotFoundError()
	}
	bank.Stock[bloodGroup] = units
	return nil
}

func (s *fakeBloodStore) CreateRequest(ctx context.Context, request *models.BloodRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *request
	s.requests[request.ID] = &copied
	return nil
}

func (s *fakeBloodStore) GetRequestByID(ctx context.Context, id string) (*models.BloodRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.requests[id]
	if !ok {
		return nil, utils.NewBloodRequestNotFoundError()
	}
	copied := *request
	return &copied, nil
}

func (s *fakeBloodStore) SetMatched(ctx context.Context, requestID string, matched []models.MatchedBloodBank) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.requests[requestID]
	if !ok {
		return utils.NewBloodRequestNotFoundError()
	}
	if request.Status != models.BloodRequestStatusPending {
		return utils.NewConflictError("blood request is not pending")
	}
	request.MatchedBloodBanks = matched
	if len(matched) > 0 {
		request.Status = models.BloodRequestStatusMatched
	}
	return nil
}

func (s *fakeBloodStore) Fulfil(ctx context.Context, requestID, bankID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.requests[requestID]
	if !ok {
		return utils.NewBloodRequestNotFoundError()
	}
	if request.Status != models.BloodRequestStatusPending && request.Status != models.BloodRequestStatusMatched {
		return utils.NewConflictError("blood request already settled")
	}
	now := time.Now()
	request.Status = models.BloodRequestStatusFulfilled
	request.FulfilledBy = bankID
	request.FulfilledAt = &now
	return nil
}

func (s *fakeBloodStore) CancelRequest(ctx context.Context, requestID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.requests[requestID]
	if !ok {
		return utils.NewBloodRequestNotFoundError()
	}
	if request.Status != models.BloodRequestStatusPending && request.Status != models.BloodRequestStatusMatched {
		return utils.NewConflictError("blood request already settled")
	}
	request.Status = models.BloodRequestStatusCancelled
	request.CancelReason = reason
	return nil
}

func (s *fakeBloodStore) ListRequestsByUser(ctx context.Context, userID string, limit int64) ([]models.BloodRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.BloodRequest
	for _, request := range s.requests {
		if request.UserID == userID {
			out = append(out, *request)
		}
	}
	return out, nil
}

func (s *fakeBloodStore) expireRequest(requestID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[requestID].ExpiresAt = time.Now().Add(-time.Hour)
}

func testBank(id string, lat, lon float64, stock map[string]int) models.BloodBank {
	return models.BloodBank{
		ID:       id,
		Name:     "Bank " + id,
		Contact:  models.HospitalContact{Phone: "+9140555" + id},
		Location: models.FacilityLocation{Latitude: lat, Longitude: lon, Address: id + " Road"},
		Stock:    stock,
		IsActive: true,
	}
}

func newBloodService(store *fakeBloodStore, notifier *fakeNotifier) *BloodService {
	return NewBloodService(store, notifier, nil, &config.Config{BloodBankSearchRadius: 25})
}

func testBloodRequest() *models.CreateBloodRequestRequest {
	return &models.CreateBloodRequestRequest{
		PatientName:   "Asha Rao",
		PatientAge:    54,
		PatientPhone:  "+919876543210",
		BloodGroup:    "B+",
		UnitsRequired: 2,
		Location:      models.EmergencyLocation{Latitude: 17.4100, Longitude: 78.4800},
	}
}

func TestBloodCreateRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("matches nearby banks nearest first on creation", func(t *testing.T) {
		store := newFakeBloodStore(
			testBank("far", 17.5000, 78.5800, map[string]int{"B+": 10}),
			testBank("near", 17.4150, 78.4850, map[string]int{"B+": 4}),
			testBank("wrong-group", 17.4120, 78.4820, map[string]int{"A+": 10}),
		)
		notifier := &fakeNotifier{}
		service := newBloodService(store, notifier)

		request, err := service.CreateRequest(ctx, "user-1", testBloodRequest())
		require.NoError(t, err)
		assert.Equal(t, models.BloodRequestStatusMatched, request.Status)
		assert.Equal(t, "high", request.Urgency)
		require.Len(t, request.MatchedBloodBanks, 2)
		assert.Equal(t, "near", request.MatchedBloodBanks[0].BloodBankID)
		assert.Equal(t, 4, request.MatchedBloodBanks[0].AvailableUnits)
		assert.Equal(t, "far", request.MatchedBloodBanks[1].BloodBankID)

		calls := notifier.callsOfType(models.NotificationBloodRequest)
		require.Len(t, calls, 1)
		assert.Len(t, calls[0].targets, 2)
		assert.Contains(t, calls[0].payload.Body, "URGENT BLOOD REQUEST")
	})

	t.Run("no bank in radius leaves the request pending", func(t *testing.T) {
		store := newFakeBloodStore(testBank("remote", 19.0000, 80.0000, map[string]int{"B+": 10}))
		service := newBloodService(store, &fakeNotifier{})

		request, err := service.CreateRequest(ctx, "user-1", testBloodRequest())
		require.NoError(t, err)
		assert.Equal(t, models.BloodRequestStatusPending, request.Status)
		assert.Empty(t, request.MatchedBloodBanks)
	})

	t.Run("emergency-linked requests alert the banks at most once", func(t *testing.T) {
		emergencies := newFakeEmergencyStore()
		require.NoError(t, emergencies.Create(ctx, &models.Emergency{
			ID:     "em-1",
			UserID: "user-1",
			Status: models.EmergencyStatusTriggered,
		}))

		store := newFakeBloodStore(testBank("near", 17.4150, 78.4850, map[string]int{"B+": 10}))
		notifier := &fakeNotifier{}
		service := NewBloodService(store, notifier, emergencies, &config.Config{BloodBankSearchRadius: 25})

		first := testBloodRequest()
		first.EmergencyID = "em-1"
		_, err := service.CreateRequest(ctx, "user-1", first)
		require.NoError(t, err)
		require.Len(t, notifier.callsOfType(models.NotificationBloodRequest), 1)

		second := testBloodRequest()
		second.EmergencyID = "em-1"
		_, err = service.CreateRequest(ctx, "user-1", second)
		require.NoError(t, err)
		assert.Len(t, notifier.callsOfType(models.NotificationBloodRequest), 1)

		current, err := emergencies.GetByID(ctx, "em-1")
		require.NoError(t, err)
		assert.True(t, current.AlertsSent.BloodBank)
	})

	t.Run("rejects an unknown blood group", func(t *testing.T) {
		service := newBloodService(newFakeBloodStore(), &fakeNotifier{})
		req := testBloodRequest()
		req.BloodGroup = "C+"

		_, err := service.CreateRequest(ctx, "user-1", req)
		require.Error(t, err)
	})
}

func TestBloodMatch(t *testing.T) {
	ctx := context.Background()

	t.Run("expired request never matches", func(t *testing.T) {
		store := newFakeBloodStore(testBank("near", 17.4150, 78.4850, map[string]int{"B+": 4}))
		service := newBloodService(store, &fakeNotifier{})

		// Seed a pending request directly so auto-matching never runs.
		request := &models.BloodRequest{
			ID:         "req-1",
			UserID:     "user-1",
			BloodGroup: "B+",
			Status:     models.BloodRequestStatusPending,
			Location:   models.EmergencyLocation{Latitude: 17.4100, Longitude: 78.4800},
			ExpiresAt:  time.Now().Add(models.BloodRequestValidity),
		}
		require.NoError(t, store.CreateRequest(ctx, request))
		store.expireRequest("req-1")

		_, err := service.Match(ctx, "req-1")
		require.Error(t, err)
		serviceErr, ok := utils.GetServiceError(err)
		require.True(t, ok)
		assert.Equal(t, "CONFLICT", serviceErr.Code)
	})

	t.Run("settled request cannot be re-matched", func(t *testing.T) {
		store := newFakeBloodStore(testBank("near", 17.4150, 78.4850, map[string]int{"B+": 4}))
		service := newBloodService(store, &fakeNotifier{})

		request, err := service.CreateRequest(ctx, "user-1", testBloodRequest())
		require.NoError(t, err)

		_, err = service.Match(ctx, request.ID)
		require.Error(t, err)
	})
}

func TestBloodFulfil(t *testing.T) {
	ctx := context.Background()

	t.Run("debits the fulfilling bank and settles the request", func(t *testing.T) {
		store := newFakeBloodStore(testBank("near", 17.4150, 78.4850, map[string]int{"B+": 4}))
		service := newBloodService(store, &fakeNotifier{})

		request, err := service.CreateRequest(ctx, "user-1", testBloodRequest())
		require.NoError(t, err)

		fulfilled, err := service.Fulfil(ctx, request.ID, "near")
		require.NoError(t, err)
		assert.Equal(t, models.BloodRequestStatusFulfilled, fulfilled.Status)
		assert.Equal(t, "near", fulfilled.FulfilledBy)
		require.NotNil(t, fulfilled.FulfilledAt)

		bank, err := store.GetBankByID(ctx, "near")
		require.NoError(t, err)
		assert.Equal(t, 2, bank.Stock["B+"])
	})

	t.Run("insufficient stock aborts before settling", func(t *testing.T) {
		store := newFakeBloodStore(testBank("low", 17.4150, 78.4850, map[string]int{"B+": 1}))
		service := newBloodService(store, &fakeNotifier{})

		request, err := service.CreateRequest(ctx, "user-1", testBloodRequest())
		require.NoError(t, err)

		_, err = service.Fulfil(ctx, request.ID, "low")
		require.ErrorIs(t, err, utils.ErrInsufficientUnits)

		// The request stays open and the stock is untouched.
		current, err := service.GetRequest(ctx, request.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BloodRequestStatusMatched, current.Status)

		bank, err := store.GetBankByID(ctx, "low")
		require.NoError(t, err)
		assert.Equal(t, 1, bank.Stock["B+"])
	})

	t.Run("refunds the debit when the settle loses to a cancel", func(t *testing.T) {
		store := newFakeBloodStore(testBank("near", 17.4150, 78.4850, map[string]int{"B+": 10}))
		service := newBloodService(store, &fakeNotifier{})

		request, err := service.CreateRequest(ctx, "user-1", testBloodRequest())
		require.NoError(t, err)

		// A cancel lands between the stock debit and the settle write.
		store.afterDebit = func() {
			require.NoError(t, store.CancelRequest(ctx, request.ID, "sourced elsewhere"))
		}

		_, err = service.Fulfil(ctx, request.ID, "near")
		require.Error(t, err)
		serviceErr, ok := utils.GetServiceError(err)
		require.True(t, ok)
		assert.Equal(t, "CONFLICT", serviceErr.Code)

		bank, err := store.GetBankByID(ctx, "near")
		require.NoError(t, err)
		assert.Equal(t, 10, bank.Stock["B+"])
	})

	t.Run("fulfilled request cannot be fulfilled twice", func(t *testing.T) {
		store := newFakeBloodStore(testBank("near", 17.4150, 78.4850, map[string]int{"B+": 10}))
		service := newBloodService(store, &fakeNotifier{})

		request, err := service.CreateRequest(ctx, "user-1", testBloodRequest())
		require.NoError(t, err)

		_, err = service.Fulfil(ctx, request.ID, "near")
		require.NoError(t, err)
		_, err = service.Fulfil(ctx, request.ID, "near")
		require.Error(t, err)

		// Only one debit happened.
		bank, err := store.GetBankByID(ctx, "near")
		require.NoError(t, err)
		assert.Equal(t, 8, bank.Stock["B+"])
	})

	t.Run("expired request cannot be fulfilled", func(t *testing.T) {
		store := newFakeBloodStore(testBank("near", 17.4150, 78.4850, map[string]int{"B+": 10}))
		service := newBloodService(store, &fakeNotifier{})

		request, err := service.CreateRequest(ctx, "user-1", testBloodRequest())
		require.NoError(t, err)
		store.expireRequest(request.ID)

		_, err = service.Fulfil(ctx, request.ID, "near")
		require.Error(t, err)
		serviceErr, ok := utils.GetServiceError(err)
		require.True(t, ok)
		assert.Equal(t, "CONFLICT", serviceErr.Code)
	})
}

func TestBloodCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("cancels a matched request", func(t *testing.T) {
		store := newFakeBloodStore(testBank("near", 17.4150, 78.4850, map[string]int{"B+": 10}))
		service := newBloodService(store, &fakeNotifier{})

		request, err := service.CreateRequest(ctx, "user-1", testBloodRequest())
		require.NoError(t, err)
		require.NoError(t, service.Cancel(ctx, request.ID, "sourced elsewhere"))

		current, err := service.GetRequest(ctx, request.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BloodRequestStatusCancelled, current.Status)
		assert.Equal(t, "sourced elsewhere", current.CancelReason)
	})

	t.Run("cancelling a fulfilled request fails", func(t *testing.T) {
		store := newFakeBloodStore(testBank("near", 17.4150, 78.4850, map[string]int{"B+": 10}))
		service := newBloodService(store, &fakeNotifier{})

		request, err := service.CreateRequest(ctx, "user-1", testBloodRequest())
		require.NoError(t, err)
		_, err = service.Fulfil(ctx, request.ID, "near")
		require.NoError(t, err)

		require.Error(t, service.Cancel(ctx, request.ID, ""))
	})
}
