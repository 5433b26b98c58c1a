package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/b2bid/bidding-backend/internal/models"
	"github.com/b2bid/bidding-backend/internal/pkg/apperror"
	"github.com/b2bid/bidding-backend/internal/repository"
)

type mockProjectStore struct {
	mock.Mock
}

func (m *mockProjectStore) Create(ctx context.Context, project *models.Project) error {
	args := m.Called(ctx, project)
	if args.Error(0) == nil {
		project.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *mockProjectStore) List(ctx context.Context, params repository.ProjectSearchParams) ([]models.Project, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]models.Project), args.Error(1)
}

func (m *mockProjectStore) Update(ctx context.Context, project *models.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *mockProjectStore) Close(ctx context.Context, projectID uuid.UUID) error {
	args := m.Called(ctx, projectID)
	return args.Error(0)
}

func (m *mockProjectStore) CloseExpired(ctx context.Context) ([]models.Project, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Project), args.Error(1)
}

func (m *mockProjectStore) Award(ctx context.Context, projectID, bidID uuid.UUID) (*models.Project, error) {
	args := m.Called(ctx, projectID, bidID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

type mockProjectBidStore struct {
	mock.Mock
}

func (m *mockProjectBidStore) ListForProject(ctx context.Context, projectID uuid.UUID) ([]models.Bid, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]models.Bid), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, userID uuid.UUID, event string, data interface{}) (*models.Notification, error) {
	args := m.Called(ctx, userID, event, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func openProject(buyerID uuid.UUID) *models.Project {
	return &models.Project{
		ID:       uuid.New(),
		BuyerID:  buyerID,
		Title:    "Поставка серверного оборудования",
		Deadline: time.Now().Add(72 * time.Hour),
		Status:   models.ProjectStatusOpen,
	}
}

func TestProjectService_CreateProject_Success(t *testing.T) {
	projects := new(mockProjectStore)
	svc := NewProjectService(projects, new(mockProjectBidStore), nil, nil)
	ctx := context.Background()

	buyerID := uuid.New()
	projects.On("Create", ctx, mock.AnythingOfType("*models.Project")).Return(nil)

	project, err := svc.CreateProject(ctx, buyerID, CreateProjectInput{
		Title:    "Закупка спецодежды",
		Deadline: time.Now().Add(7 * 24 * time.Hour),
	})

	assert.NoError(t, err)
	assert.NotNil(t, project)
	assert.Equal(t, models.ProjectStatusOpen, project.Status)
	assert.Equal(t, buyerID, project.BuyerID)
}

func TestProjectService_CreateProject_DeadlineInPast(t *testing.T) {
	svc := NewProjectService(new(mockProjectStore), new(mockProjectBidStore), nil, nil)

	_, err := svc.CreateProject(context.Background(), uuid.New(), CreateProjectInput{
		Title:    "Закупка спецодежды",
		Deadline: time.Now().Add(-time.Hour),
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestProjectService_AwardProject_Success(t *testing.T) {
	projects := new(mockProjectStore)
	bids := new(mockProjectBidStore)
	notifier := new(mockNotifier)
	svc := NewProjectService(projects, bids, notifier, nil)
	ctx := context.Background()

	buyerID := uuid.New()
	project := openProject(buyerID)
	bidID := uuid.New()
	winnerID := uuid.New()
	loserID := uuid.New()

	awarded := *project
	awarded.Status = models.ProjectStatusAwarded
	awarded.AwardedBidID = &bidID

	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	projects.On("Award", ctx, project.ID, bidID).Return(&awarded, nil)
	bids.On("ListForProject", ctx, project.ID).Return([]models.Bid{
		{ID: bidID, ProjectID: project.ID, SupplierID: winnerID, Status: models.BidStatusAccepted},
		{ID: uuid.New(), ProjectID: project.ID, SupplierID: loserID, Status: models.BidStatusRejected},
	}, nil)
	notifier.On("Notify", ctx, winnerID, EventBidAccepted, mock.Anything).Return(&models.Notification{}, nil)
	notifier.On("Notify", ctx, loserID, EventBidRejected, mock.Anything).Return(&models.Notification{}, nil)
	notifier.On("Notify", ctx, buyerID, EventProjectAwarded, mock.Anything).Return(&models.Notification{}, nil)

	result, err := svc.AwardProject(ctx, buyerID, project.ID, bidID)

	assert.NoError(t, err)
	assert.Equal(t, models.ProjectStatusAwarded, result.Status)
	notifier.AssertExpectations(t)
}

func TestProjectService_AwardProject_AlreadyAwarded(t *testing.T) {
	projects := new(mockProjectStore)
	svc := NewProjectService(projects, new(mockProjectBidStore), nil, nil)
	ctx := context.Background()

	buyerID := uuid.New()
	project := openProject(buyerID)
	bidID := uuid.New()

	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	projects.On("Award", ctx, project.ID, bidID).Return(nil, repository.ErrProjectAwarded)

	_, err := svc.AwardProject(ctx, buyerID, project.ID, bidID)

	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestProjectService_AwardProject_TerminalStatus(t *testing.T) {
	projects := new(mockProjectStore)
	svc := NewProjectService(projects, new(mockProjectBidStore), nil, nil)
	ctx := context.Background()

	buyerID := uuid.New()
	project := openProject(buyerID)
	project.Status = models.ProjectStatusAwarded

	projects.On("GetByID", ctx, project.ID).Return(project, nil)

	_, err := svc.AwardProject(ctx, buyerID, project.ID, uuid.New())

	assert.True(t, apperror.IsConflict(err))
	projects.AssertNotCalled(t, "Award", mock.Anything, mock.Anything, mock.Anything)
}

func TestProjectService_AwardProject_NotOwner(t *testing.T) {
	projects := new(mockProjectStore)
	svc := NewProjectService(projects, new(mockProjectBidStore), nil, nil)
	ctx := context.Background()

	project := openProject(uuid.New())
	projects.On("GetByID", ctx, project.ID).Return(project, nil)

	_, err := svc.AwardProject(ctx, uuid.New(), project.ID, uuid.New())

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
	projects.AssertNotCalled(t, "Award", mock.Anything, mock.Anything, mock.Anything)
}

func TestProjectService_CloseProject_AwardedConflict(t *testing.T) {
	projects := new(mockProjectStore)
	svc := NewProjectService(projects, new(mockProjectBidStore), nil, nil)
	ctx := context.Background()

	buyerID := uuid.New()
	project := openProject(buyerID)
	project.Status = models.ProjectStatusAwarded

	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	projects.On("Close", ctx, project.ID).Return(repository.ErrProjectAwarded)

	_, err := svc.CloseProject(ctx, buyerID, project.ID)

	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestProjectService_SweepExpired_NotifiesOwners(t *testing.T) {
	projects := new(mockProjectStore)
	notifier := new(mockNotifier)
	svc := NewProjectService(projects, new(mockProjectBidStore), notifier, nil)
	ctx := context.Background()

	first := *openProject(uuid.New())
	second := *openProject(uuid.New())
	first.Status = models.ProjectStatusClosed
	second.Status = models.ProjectStatusClosed

	projects.On("CloseExpired", ctx).Return([]models.Project{first, second}, nil)
	notifier.On("Notify", ctx, first.BuyerID, EventProjectClosed, mock.Anything).Return(&models.Notification{}, nil)
	notifier.On("Notify", ctx, second.BuyerID, EventProjectClosed, mock.Anything).Return(&models.Notification{}, nil)

	count, err := svc.SweepExpired(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 2, count)
	notifier.AssertExpectations(t)
}

func TestProjectService_SweepExpired_Empty(t *testing.T) {
	projects := new(mockProjectStore)
	svc := NewProjectService(projects, new(mockProjectBidStore), nil, nil)
	ctx := context.Background()

	projects.On("CloseExpired", ctx).Return([]models.Project{}, nil)

	count, err := svc.SweepExpired(ctx)

	assert.NoError(t, err)
	assert.Zero(t, count)
}
