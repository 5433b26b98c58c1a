package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/b2bid/bidding-backend/internal/models"
	"github.com/b2bid/bidding-backend/internal/pkg/apperror"
	"github.com/b2bid/bidding-backend/internal/repository"
	"github.com/b2bid/bidding-backend/internal/scoring"
)

type mockBidStore struct {
	mock.Mock
}

func (m *mockBidStore) Create(ctx context.Context, bid *models.Bid) error {
	args := m.Called(ctx, bid)
	if args.Error(0) == nil {
		bid.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockBidStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bid), args.Error(1)
}

func (m *mockBidStore) ListForProject(ctx context.Context, projectID uuid.UUID) ([]models.Bid, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]models.Bid), args.Error(1)
}

func (m *mockBidStore) ListForSupplier(ctx context.Context, supplierID uuid.UUID, limit, offset int) ([]models.Bid, error) {
	args := m.Called(ctx, supplierID, limit, offset)
	return args.Get(0).([]models.Bid), args.Error(1)
}

type mockBidProjectStore struct {
	mock.Mock
}

func (m *mockBidProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func TestBidService_SubmitBid_Success(t *testing.T) {
	bids := new(mockBidStore)
	projects := new(mockBidProjectStore)
	notifier := new(mockNotifier)
	svc := NewBidService(bids, projects, notifier)
	ctx := context.Background()

	supplierID := uuid.New()
	project := openProject(uuid.New())

	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	bids.On("Create", ctx, mock.AnythingOfType("*models.Bid")).Return(nil)
	notifier.On("Notify", ctx, project.BuyerID, EventBidReceived, mock.Anything).Return(&models.Notification{}, nil)

	bid, err := svc.SubmitBid(ctx, supplierID, project.ID, SubmitBidInput{
		Price:        250000,
		DeliveryDays: 14,
	})

	require.NoError(t, err)
	assert.Equal(t, models.BidStatusSubmitted, bid.Status)
	assert.Equal(t, supplierID, bid.SupplierID)
	notifier.AssertExpectations(t)
}

func TestBidService_SubmitBid_Duplicate(t *testing.T) {
	bids := new(mockBidStore)
	projects := new(mockBidProjectStore)
	svc := NewBidService(bids, projects, nil)
	ctx := context.Background()

	project := openProject(uuid.New())
	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	bids.On("Create", ctx, mock.AnythingOfType("*models.Bid")).Return(repository.ErrDuplicateBid)

	_, err := svc.SubmitBid(ctx, uuid.New(), project.ID, SubmitBidInput{
		Price:        250000,
		DeliveryDays: 14,
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestBidService_SubmitBid_ProjectClosed(t *testing.T) {
	bids := new(mockBidStore)
	projects := new(mockBidProjectStore)
	svc := NewBidService(bids, projects, nil)
	ctx := context.Background()

	project := openProject(uuid.New())
	project.Status = models.ProjectStatusClosed
	projects.On("GetByID", ctx, project.ID).Return(project, nil)

	_, err := svc.SubmitBid(ctx, uuid.New(), project.ID, SubmitBidInput{
		Price:        250000,
		DeliveryDays: 14,
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
	bids.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBidService_SubmitBid_ExpiredDeadline(t *testing.T) {
	bids := new(mockBidStore)
	projects := new(mockBidProjectStore)
	svc := NewBidService(bids, projects, nil)
	ctx := context.Background()

	// Статус ещё open, но срок уже истёк: фоновый проход мог не успеть.
	project := openProject(uuid.New())
	project.Deadline = time.Now().Add(-time.Minute)
	projects.On("GetByID", ctx, project.ID).Return(project, nil)

	_, err := svc.SubmitBid(ctx, uuid.New(), project.ID, SubmitBidInput{
		Price:        250000,
		DeliveryDays: 14,
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestBidService_SubmitBid_Validation(t *testing.T) {
	svc := NewBidService(new(mockBidStore), new(mockBidProjectStore), nil)
	ctx := context.Background()

	cases := []struct {
		name  string
		input SubmitBidInput
	}{
		{"нулевая цена", SubmitBidInput{Price: 0, DeliveryDays: 14}},
		{"отрицательная цена", SubmitBidInput{Price: -100, DeliveryDays: 14}},
		{"нулевой срок поставки", SubmitBidInput{Price: 1000, DeliveryDays: 0}},
		{"срок поставки больше года", SubmitBidInput{Price: 1000, DeliveryDays: 400}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SubmitBid(ctx, uuid.New(), uuid.New(), tc.input)
			assert.Error(t, err)
			assert.True(t, apperror.IsValidation(err))
		})
	}
}

func TestBidService_CompareBids_RanksByScore(t *testing.T) {
	bids := new(mockBidStore)
	projects := new(mockBidProjectStore)
	svc := NewBidService(bids, projects, nil)
	ctx := context.Background()

	buyerID := uuid.New()
	project := openProject(buyerID)

	cheap := models.Bid{ID: uuid.New(), ProjectID: project.ID, SupplierID: uuid.New(), Price: 100000, DeliveryDays: 10, Status: models.BidStatusSubmitted}
	expensive := models.Bid{ID: uuid.New(), ProjectID: project.ID, SupplierID: uuid.New(), Price: 300000, DeliveryDays: 30, Status: models.BidStatusSubmitted}

	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	bids.On("ListForProject", ctx, project.ID).Return([]models.Bid{expensive, cheap}, nil)

	comparison, err := svc.CompareBids(ctx, buyerID, project.ID, scoring.DefaultWeights, scoring.SortByScore)

	require.NoError(t, err)
	require.Len(t, comparison.Bids, 2)
	// Дешевле и быстрее — первым в рейтинге.
	assert.Equal(t, cheap.ID, comparison.Bids[0].ID)
	assert.GreaterOrEqual(t, *comparison.Bids[0].Score, *comparison.Bids[1].Score)
	assert.Equal(t, 300000.0, comparison.Bounds.MaxPrice)
	assert.Equal(t, 30, comparison.Bounds.MaxDeliveryDays)
}

func TestBidService_CompareBids_WeightsChangeRecomputesAll(t *testing.T) {
	bids := new(mockBidStore)
	projects := new(mockBidProjectStore)
	svc := NewBidService(bids, projects, nil)
	ctx := context.Background()

	buyerID := uuid.New()
	project := openProject(buyerID)

	// Первая дешёвая, но медленная; вторая дорогая, но быстрая.
	slow := models.Bid{ID: uuid.New(), ProjectID: project.ID, SupplierID: uuid.New(), Price: 100000, DeliveryDays: 60, Status: models.BidStatusSubmitted}
	fast := models.Bid{ID: uuid.New(), ProjectID: project.ID, SupplierID: uuid.New(), Price: 290000, DeliveryDays: 5, Status: models.BidStatusSubmitted}

	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	bids.On("ListForProject", ctx, project.ID).Return([]models.Bid{slow, fast}, nil)

	byPrice, err := svc.CompareBids(ctx, buyerID, project.ID, scoring.Weights{Price: 100, Delivery: 0, Quality: 0}, scoring.SortByScore)
	require.NoError(t, err)
	assert.Equal(t, slow.ID, byPrice.Bids[0].ID)

	byDelivery, err := svc.CompareBids(ctx, buyerID, project.ID, scoring.Weights{Price: 0, Delivery: 100, Quality: 0}, scoring.SortByScore)
	require.NoError(t, err)
	assert.Equal(t, fast.ID, byDelivery.Bids[0].ID)
}

func TestBidService_CompareBids_ZeroWeights(t *testing.T) {
	bids := new(mockBidStore)
	projects := new(mockBidProjectStore)
	svc := NewBidService(bids, projects, nil)
	ctx := context.Background()

	buyerID := uuid.New()
	project := openProject(buyerID)
	projects.On("GetByID", ctx, project.ID).Return(project, nil)

	_, err := svc.CompareBids(ctx, buyerID, project.ID, scoring.Weights{}, scoring.SortByScore)

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestBidService_CompareBids_EmptyBidSet(t *testing.T) {
	bids := new(mockBidStore)
	projects := new(mockBidProjectStore)
	svc := NewBidService(bids, projects, nil)
	ctx := context.Background()

	buyerID := uuid.New()
	project := openProject(buyerID)
	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	bids.On("ListForProject", ctx, project.ID).Return([]models.Bid{}, nil)

	comparison, err := svc.CompareBids(ctx, buyerID, project.ID, scoring.DefaultWeights, "")

	require.NoError(t, err)
	assert.Empty(t, comparison.Bids)
}

func TestBidService_CompareBids_NotOwner(t *testing.T) {
	bids := new(mockBidStore)
	projects := new(mockBidProjectStore)
	svc := NewBidService(bids, projects, nil)
	ctx := context.Background()

	project := openProject(uuid.New())
	projects.On("GetByID", ctx, project.ID).Return(project, nil)

	_, err := svc.CompareBids(ctx, uuid.New(), project.ID, scoring.DefaultWeights, "")

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}
