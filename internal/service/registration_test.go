package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/festhub/festhub-api/internal/domain"
	"github.com/festhub/festhub-api/internal/repository"
)

var testNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func publishedEvent() domain.Event {
	return domain.Event{
		ID:                   1,
		EventName:            "Robowars",
		EventType:            domain.EventTypeNormal,
		Eligibility:          domain.EligibilityAll,
		Status:               domain.EventStatusPublished,
		RegistrationDeadline: testNow.Add(24 * time.Hour),
		EventStartDate:       testNow.Add(48 * time.Hour),
		RegistrationLimit:    100,
		RegistrationFee:      decimal.NewFromInt(50),
		OrganizerID:          9,
	}
}

func participant() domain.User {
	return domain.User{
		ID:              42,
		Email:           "ada@example.com",
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Role:            domain.RoleParticipant,
		ParticipantType: domain.ParticipantTypeIIIT,
	}
}

func newRegistrationService(repo *mockRegistrationRepo, eventRepo *mockEventRepo, userRepo *mockUserRepo, notifier *mockNotifier) *RegistrationService {
	svc := NewRegistrationService(repo, eventRepo, userRepo, notifier)
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("approves and claims a slot", func(t *testing.T) {
		repo := new(mockRegistrationRepo)
		eventRepo := new(mockEventRepo)
		userRepo := new(mockUserRepo)
		notifier := new(mockNotifier)

		event := publishedEvent()
		eventRepo.On("GetByID", ctx, uint(1)).Return(event, nil)
		userRepo.On("FindByID", ctx, uint(42)).Return(participant(), nil)
		repo.On("FindByEventAndParticipant", ctx, uint(1), uint(42)).
			Return(domain.Registration{}, repository.ErrRegistrationNotFound)
		repo.On("CreateApproved", ctx,
			mock.MatchedBy(func(reg domain.Registration) bool {
				return strings.HasPrefix(reg.TicketID, "TKT-") &&
					reg.Status == domain.RegistrationStatusApproved &&
					reg.AmountPaid.Equal(decimal.NewFromInt(50)) &&
					strings.HasPrefix(reg.QRCode, "data:image/png;base64,")
			}),
			mock.MatchedBy(func(claim repository.SlotClaim) bool {
				return claim.EventID == 1 && claim.Quantity == 1 && !claim.Merchandise
			}),
		).Return(domain.Registration{ID: 7, TicketID: "TKT-AABBCCDDEEFF0011"}, nil)
		notifier.On("SendTicketEmail", ctx, mock.Anything).Return(nil)

		svc := newRegistrationService(repo, eventRepo, userRepo, notifier)

		created, err := svc.Register(ctx, 1, 42, RegisterInput{})

		require.NoError(t, err)
		assert.Equal(t, uint(7), created.ID)
		repo.AssertExpectations(t)
		notifier.AssertExpectations(t)
	})

	t.Run("notifier failure does not fail the registration", func(t *testing.T) {
		repo := new(mockRegistrationRepo)
		eventRepo := new(mockEventRepo)
		userRepo := new(mockUserRepo)
		notifier := new(mockNotifier)

		eventRepo.On("GetByID", ctx, uint(1)).Return(publishedEvent(), nil)
		userRepo.On("FindByID", ctx, uint(42)).Return(participant(), nil)
		repo.On("FindByEventAndParticipant", ctx, uint(1), uint(42)).
			Return(domain.Registration{}, repository.ErrRegistrationNotFound)
		repo.On("CreateApproved", ctx, mock.Anything, mock.Anything).
			Return(domain.Registration{ID: 7}, nil)
		notifier.On("SendTicketEmail", ctx, mock.Anything).
			Return(errors.New("broker is down"))

		svc := newRegistrationService(repo, eventRepo, userRepo, notifier)

		_, err := svc.Register(ctx, 1, 42, RegisterInput{})

		require.NoError(t, err)
	})

	t.Run("event not found", func(t *testing.T) {
		repo := new(mockRegistrationRepo)
		eventRepo := new(mockEventRepo)
		userRepo := new(mockUserRepo)
		notifier := new(mockNotifier)

		eventRepo.On("GetByID", ctx, uint(1)).
			Return(domain.Event{}, repository.ErrEventNotFound)

		svc := newRegistrationService(repo, eventRepo, userRepo, notifier)

		_, err := svc.Register(ctx, 1, 42, RegisterInput{})

		assert.ErrorIs(t, err, ErrEventNotFound)
	})

	t.Run("draft event is not open", func(t *testing.T) {
		repo := new(mockRegistrationRepo)
		eventRepo := new(mockEventRepo)
		userRepo := new(mockUserRepo)
		notifier := new(mockNotifier)

		event := publishedEvent()
		event.Status = domain.EventStatusDraft
		eventRepo.On("GetByID", ctx, uint(1)).Return(event, nil)

		svc := newRegistrationService(repo, eventRepo, userRepo, notifier)

		_, err := svc.Register(ctx, 1, 42, RegisterInput{})

		assert.ErrorIs(t, err, ErrEventNotOpen)
	})

	t.Run("deadline passed", func(t *testing.T) {
		repo := new(mockRegistrationRepo)
		eventRepo := new(mockEventRepo)
		userRepo := new(mockUserRepo)
		notifier := new(mockNotifier)

		event := publishedEvent()
		event.RegistrationDeadline = testNow.Add(-time.Minute)
		eventRepo.On("GetByID", ctx, uint(1)).Return(event, nil)

		svc := newRegistrationService(repo, eventRepo, userRepo, notifier)

		_, err := svc.Register(ctx, 1, 42, RegisterInput{})

		assert.ErrorIs(t, err, ErrDeadlinePassed)
	})

	t.Run("event full", func(t *testing.T) {
		repo := new(mockRegistrationRepo)
		eventRepo := new(mockEventRepo)
		userRepo := new(mockUserRepo)
		notifier := new(mockNotifier)

		event := publishedEvent()
		event.TotalRegistrations = event.RegistrationLimit
		eventRepo.On("GetByID", ctx, uint(1)).Return(event, nil)

		svc := newRegistrationService(repo, eventRepo, userRepo, notifier)

		_, err := svc.Register(ctx, 1, 42, RegisterInput{})

		assert.ErrorIs(t, err, ErrEventFull)
	})

	t.Run("slot lost to a concurrent registration", func(t *testing.T) {
		repo := new(mockRegistrationRepo)
		eventRepo := new(mockEventRepo)
		userRepo := new(mockUserRepo)
		notifier := new(mockNotifier)

		eventRepo.On("GetByID", ctx, uint(1)).Return(publishedEvent(), nil)
		userRepo.On("FindByID", ctx, uint(42)).Return(participant(), nil)
		repo.On("FindByEventAndParticipant", ctx, uint(1), uint(42)).
			Return(domain.Registration{}, repository.ErrRegistrationNotFound)
		repo.On("CreateApproved", ctx, mock.Anything, mock.Anything).
			Return(domain.Registration{}, repository.ErrRegistrationLimitReached)

		svc := newRegistrationService(repo, eventRepo, userRepo, notifier)

		_, err := svc.Register(ctx, 1, 42, RegisterInput{})

		assert.ErrorIs(t, err, ErrEventFull)
		notifier.AssertNotCalled(t, "SendTicketEmail", mock.Anything, mock.Anything)
	})

	t.Run("eligibility rejects non-matching participant", func(t *testing.T) {
		repo := new(mockRegistrationRepo)
		eventRepo := new(mockEventRepo)
		userRepo := new(mockUserRepo)
		notifier := new(mockNotifier)

		event := publishedEvent()
		event.Eligibility = domain.EligibilityNonIIITOnly
		eventRepo.On("GetByID", ctx, uint(1)).Return(event, nil)
		userRepo.On("FindByID", ctx, uint(42)).Return(participant(), nil)

		svc := newRegistrationService(repo, eventRepo, userRepo, notifier)

		_, err := svc.Register(ctx, 1, 42, RegisterInput{})

		assert.ErrorIs(t, err, ErrNotEligible)
	})

	t.Run("duplicate registration", func(t *testing.T) {
		repo := new(mockRegistrationRepo)
		eventRepo := new(mockEventRepo)
		userRepo := new(mockUserRepo)
		notifier := new(mockNotifier)

		eventRepo.On("GetByID", ctx, uint(1)).Return(publishedEvent(), nil)
		userRepo.On("FindByID", ctx, uint(42)).Return(participant(), nil)
		repo.On("FindByEventAndParticipant", ctx, uint(1), uint(42)).
			Return(domain.Registration{ID: 3}, nil)

		svc := newRegistrationService(repo, eventRepo, userRepo, notifier)

		_, err := svc.Register(ctx, 1, 42, RegisterInput{})

		assert.ErrorIs(t, err, ErrAlreadyRegistered)
	})

	t.Run("team events register through team formation", func(t *testing.T) {
		repo := new(mockRegistrationRepo)
		eventRepo := new(mockEventRepo)
		userRepo := new(mockUserRepo)
		notifier := new(mockNotifier)

		event := publishedEvent()
		event.EventType = domain.EventTypeHackathon
		event.TeamSize = &domain.TeamSizeRange{Min: 2, Max: 4}
		eventRepo.On("GetByID", ctx, uint(1)).Return(event, nil)

		svc := newRegistrationService(repo, eventRepo, userRepo, notifier)

		_, err := svc.Register(ctx, 1, 42, RegisterInput{})

		assert.ErrorIs(t, err, ErrTeamEventRegistration)
	})

	t.Run("missing required form field", func(t *testing.T) {
		repo := new(mockRegistrationRepo)
		eventRepo := new(mockEventRepo)
		userRepo := new(mockUserRepo)
		notifier := new(mockNotifier)

		event := publishedEvent()
		event.CustomFormFields = []domain.CustomFormField{
			{FieldName: "tshirtSize", FieldType: "text", IsRequired: true},
		}
		eventRepo.On("GetByID", ctx, uint(1)).Return(event, nil)
		userRepo.On("FindByID", ctx, uint(42)).Return(participant(), nil)
		repo.On("FindByEventAndParticipant", ctx, uint(1), uint(42)).
			Return(domain.Registration{}, repository.ErrRegistrationNotFound)

		svc := newRegistrationService(repo, eventRepo, userRepo, notifier)

		_, err := svc.Register(ctx, 1, 42, RegisterInput{})

		assert.ErrorIs(t, err, ErrMissingFormField)
	})
}

func TestRegister_Merchandise(t *testing.T) {
	ctx := context.Background()

	merchEvent := func() domain.Event {
		event := publishedEvent()
		event.EventType = domain.EventTypeMerchandise
		event.ItemDetails = domain.ItemDetails{Sizes: []string{"S", "M", "L"}}
		event.StockQuantity = 10
		event.PurchaseLimit = 3
		event.RegistrationFee = decimal.NewFromInt(20)
		return event
	}

	t.Run("claims stock and charges per unit", func(t *testing.T) {
		repo := new(mockRegistrationRepo)
		eventRepo := new(mockEventRepo)
		userRepo := new(mockUserRepo)
		notifier := new(mockNotifier)

		eventRepo.On("GetByID", ctx, uint(1)).Return(merchEvent(), nil)
		userRepo.On("FindByID", ctx, uint(42)).Return(participant(), nil)
		repo.On("FindByEventAndParticipant", ctx, uint(1), uint(42)).
			Return(domain.Registration{}, repository.ErrRegistrationNotFound)
		repo.On("CreateApproved", ctx,
			mock.MatchedBy(func(reg domain.Registration) bool {
				return reg.AmountPaid.Equal(decimal.NewFromInt(40)) &&
					reg.MerchandiseDetails != nil && reg.MerchandiseDetails.Quantity == 2
			}),
			mock.MatchedBy(func(claim repository.SlotClaim) bool {
				return claim.Merchandise && claim.Quantity == 2
			}),
		).Return(domain.Registration{ID: 8}, nil)
		notifier.On("SendTicketEmail", ctx, mock.Anything).Return(nil)

		svc := newRegistrationService(repo, eventRepo, userRepo, notifier)

		_, err := svc.Register(ctx, 1, 42, RegisterInput{
			Merchandise: &domain.MerchandiseDetails{Size: "M", Quantity: 2},
		})

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("rejects an option the item does not offer", func(t *testing.T) {
		repo := new(mockRegistrationRepo)
		eventRepo := new(mockEventRepo)
		userRepo := new(mockUserRepo)
		notifier := new(mockNotifier)

		eventRepo.On("GetByID", ctx, uint(1)).Return(merchEvent(), nil)
		userRepo.On("FindByID", ctx, uint(42)).Return(participant(), nil)
		repo.On("FindByEventAndParticipant", ctx, uint(1), uint(42)).
			Return(domain.Registration{}, repository.ErrRegistrationNotFound)

		svc := newRegistrationService(repo, eventRepo, userRepo, notifier)

		_, err := svc.Register(ctx, 1, 42, RegisterInput{
			Merchandise: &domain.MerchandiseDetails{Size: "XXL", Quantity: 1},
		})

		assert.ErrorIs(t, err, ErrInvalidMerchOption)
	})

	t.Run("rejects quantity over the purchase limit", func(t *testing.T) {
		repo := new(mockRegistrationRepo)
		eventRepo := new(mockEventRepo)
		userRepo := new(mockUserRepo)
		notifier := new(mockNotifier)

		eventRepo.On("GetByID", ctx, uint(1)).Return(merchEvent(), nil)
		userRepo.On("FindByID", ctx, uint(42)).Return(participant(), nil)
		repo.On("FindByEventAndParticipant", ctx, uint(1), uint(42)).
			Return(domain.Registration{}, repository.ErrRegistrationNotFound)

		svc := newRegistrationService(repo, eventRepo, userRepo, notifier)

		_, err := svc.Register(ctx, 1, 42, RegisterInput{
			Merchandise: &domain.MerchandiseDetails{Size: "M", Quantity: 4},
		})

		assert.ErrorIs(t, err, ErrPurchaseLimitExceeded)
	})

	t.Run("rejects quantity above remaining stock", func(t *testing.T) {
		repo := new(mockRegistrationRepo)
		eventRepo := new(mockEventRepo)
		userRepo := new(mockUserRepo)
		notifier := new(mockNotifier)

		event := merchEvent()
		event.StockQuantity = 1
		event.PurchaseLimit = 0
		eventRepo.On("GetByID", ctx, uint(1)).Return(event, nil)
		userRepo.On("FindByID", ctx, uint(42)).Return(participant(), nil)
		repo.On("FindByEventAndParticipant", ctx, uint(1), uint(42)).
			Return(domain.Registration{}, repository.ErrRegistrationNotFound)

		svc := newRegistrationService(repo, eventRepo, userRepo, notifier)

		_, err := svc.Register(ctx, 1, 42, RegisterInput{
			Merchandise: &domain.MerchandiseDetails{Size: "M", Quantity: 2},
		})

		assert.ErrorIs(t, err, ErrStockInsufficient)
	})
}

func TestGetForParticipantEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the caller's registration", func(t *testing.T) {
		repo := new(mockRegistrationRepo)
		eventRepo := new(mockEventRepo)
		userRepo := new(mockUserRepo)
		notifier := new(mockNotifier)

		repo.On("FindByEventAndParticipant", ctx, uint(1), uint(42)).
			Return(domain.Registration{ID: 7, TicketID: "TKT-AABBCCDDEEFF0011"}, nil)

		svc := newRegistrationService(repo, eventRepo, userRepo, notifier)

		registration, err := svc.GetForParticipantEvent(ctx, 1, 42)

		require.NoError(t, err)
		assert.Equal(t, "TKT-AABBCCDDEEFF0011", registration.TicketID)
	})

	t.Run("maps a missing registration to not found", func(t *testing.T) {
		repo := new(mockRegistrationRepo)
		eventRepo := new(mockEventRepo)
		userRepo := new(mockUserRepo)
		notifier := new(mockNotifier)

		repo.On("FindByEventAndParticipant", ctx, uint(1), uint(42)).
			Return(domain.Registration{}, repository.ErrRegistrationNotFound)

		svc := newRegistrationService(repo, eventRepo, userRepo, notifier)

		_, err := svc.GetForParticipantEvent(ctx, 1, 42)

		assert.ErrorIs(t, err, ErrRegistrationNotFound)
	})
}

func TestChangeStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("only the event owner may change a registration", func(t *testing.T) {
		repo := new(mockRegistrationRepo)
		eventRepo := new(mockEventRepo)
		userRepo := new(mockUserRepo)
		notifier := new(mockNotifier)

		repo.On("GetByID", ctx, uint(5)).
			Return(domain.Registration{ID: 5, EventID: 1}, nil)
		eventRepo.On("GetByID", ctx, uint(1)).Return(publishedEvent(), nil)

		svc := newRegistrationService(repo, eventRepo, userRepo, notifier)

		err := svc.ChangeStatus(ctx, 5, domain.RegistrationStatusCancelled, 777)

		assert.ErrorIs(t, err, ErrNotEventOwner)
	})

	t.Run("owner cancels a registration", func(t *testing.T) {
		repo := new(mockRegistrationRepo)
		eventRepo := new(mockEventRepo)
		userRepo := new(mockUserRepo)
		notifier := new(mockNotifier)

		repo.On("GetByID", ctx, uint(5)).
			Return(domain.Registration{ID: 5, EventID: 1}, nil)
		eventRepo.On("GetByID", ctx, uint(1)).Return(publishedEvent(), nil)
		repo.On("UpdateStatus", ctx, uint(5), domain.RegistrationStatusCancelled).Return(nil)

		svc := newRegistrationService(repo, eventRepo, userRepo, notifier)

		err := svc.ChangeStatus(ctx, 5, domain.RegistrationStatusCancelled, 9)

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}
