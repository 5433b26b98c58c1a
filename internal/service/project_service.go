package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/b2bid/bidding-backend/internal/logger"
	"github.com/b2bid/bidding-backend/internal/models"
	"github.com/b2bid/bidding-backend/internal/pkg/apperror"
	"github.com/b2bid/bidding-backend/internal/repository"
	"github.com/b2bid/bidding-backend/internal/validation"
)

// ProjectStore описывает зависимости ProjectService от хранилища проектов.
type ProjectStore interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	List(ctx context.Context, params repository.ProjectSearchParams) ([]models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	Close(ctx context.Context, projectID uuid.UUID) error
	CloseExpired(ctx context.Context) ([]models.Project, error)
	Award(ctx context.Context, projectID, bidID uuid.UUID) (*models.Project, error)
}

// ProjectBidStore описывает доступ ProjectService к заявкам проекта.
type ProjectBidStore interface {
	ListForProject(ctx context.Context, projectID uuid.UUID) ([]models.Bid, error)
}

// Notifier доставляет доменные события пользователям.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, event string, data interface{}) (*models.Notification, error)
}

// ProjectService содержит бизнес-логику проектов закупок и торгов.
type ProjectService struct {
	projects ProjectStore
	bids     ProjectBidStore
	notifier Notifier
	cache    *CacheService
}

// NewProjectService создаёт сервис проектов. Кэш опционален.
func NewProjectService(projects ProjectStore, bids ProjectBidStore, notifier Notifier, cache *CacheService) *ProjectService {
	return &ProjectService{
		projects: projects,
		bids:     bids,
		notifier: notifier,
		cache:    cache,
	}
}

// projectCacheTTL — короткий TTL чтения проекта: статусы меняются редко,
// но закрытие и награждение инвалидируют кэш явно.
const projectCacheTTL = 30 * time.Second

// CreateProjectInput содержит данные нового проекта.
type CreateProjectInput struct {
	Title        string
	Category     *string
	Region       *string
	BudgetLimit  *float64
	Requirements *string
	Deadline     time.Time
}

// CreateProject создаёт новый проект закупки в статусе open.
func (s *ProjectService) CreateProject(ctx context.Context, buyerID uuid.UUID, in CreateProjectInput) (*models.Project, error) {
	if err := s.validateProjectInput(in); err != nil {
		return nil, err
	}

	project := &models.Project{
		BuyerID:      buyerID,
		Title:        in.Title,
		Category:     in.Category,
		Region:       in.Region,
		BudgetLimit:  in.BudgetLimit,
		Requirements: in.Requirements,
		Deadline:     in.Deadline,
		Status:       models.ProjectStatusOpen,
	}

	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}

	return project, nil
}

// GetProject возвращает проект по идентификатору.
func (s *ProjectService) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	load := func() (*models.Project, error) {
		project, err := s.projects.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrProjectNotFound) {
				return nil, apperror.ErrProjectNotFound
			}
			return nil, err
		}
		return project, nil
	}

	if s.cache == nil {
		return load()
	}

	value, err := s.cache.GetOrSet(ctx, ProjectCacheKey(id), projectCacheTTL, func() (interface{}, error) {
		return load()
	})
	if err != nil {
		return nil, err
	}

	return value.(*models.Project), nil
}

// invalidateProject сбрасывает кэш проекта после изменения.
func (s *ProjectService) invalidateProject(id uuid.UUID) {
	if s.cache != nil {
		s.cache.InvalidateProjectCache(id)
	}
}

// ListProjects возвращает проекты по фильтрам.
func (s *ProjectService) ListProjects(ctx context.Context, params repository.ProjectSearchParams) ([]models.Project, error) {
	if params.Status != "" {
		if _, ok := models.ValidProjectStatuses[params.Status]; !ok {
			return nil, apperror.New(apperror.ErrCodeValidation, "неизвестный статус проекта")
		}
	}
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 20
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	return s.projects.List(ctx, params)
}

// UpdateProject обновляет проект. Редактировать может только владелец и
// только пока проект открыт.
func (s *ProjectService) UpdateProject(ctx context.Context, buyerID, projectID uuid.UUID, in CreateProjectInput) (*models.Project, error) {
	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if project.BuyerID != buyerID {
		return nil, apperror.ErrForbidden
	}
	if project.Status != models.ProjectStatusOpen {
		return nil, apperror.ErrProjectNotOpen
	}

	if err := s.validateProjectInput(in); err != nil {
		return nil, err
	}

	project.Title = in.Title
	project.Category = in.Category
	project.Region = in.Region
	project.BudgetLimit = in.BudgetLimit
	project.Requirements = in.Requirements
	project.Deadline = in.Deadline

	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}

	s.invalidateProject(project.ID)

	return project, nil
}

// CloseProject закрывает приём заявок по решению владельца. Закрытие уже
// закрытого проекта — no-op.
func (s *ProjectService) CloseProject(ctx context.Context, buyerID, projectID uuid.UUID) (*models.Project, error) {
	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if project.BuyerID != buyerID {
		return nil, apperror.ErrForbidden
	}

	if err := s.projects.Close(ctx, projectID); err != nil {
		if errors.Is(err, repository.ErrProjectAwarded) {
			return nil, apperror.ErrProjectAwarded
		}
		return nil, err
	}

	s.invalidateProject(projectID)

	return s.GetProject(ctx, projectID)
}

// AwardProject выбирает победителя торгов. Выбранная заявка становится
// accepted, остальные rejected, проект awarded — одной транзакцией.
// Повторное награждение проекта отклоняется как конфликт.
func (s *ProjectService) AwardProject(ctx context.Context, buyerID, projectID, bidID uuid.UUID) (*models.Project, error) {
	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if project.BuyerID != buyerID {
		return nil, apperror.ErrForbidden
	}

	// Дружественная проверка до транзакции; авторитетна сама транзакция.
	if project.Status == models.ProjectStatusAwarded || !models.CanTransitProject(project.Status, models.ProjectStatusAwarded) {
		return nil, apperror.ErrProjectAwarded
	}

	awarded, err := s.projects.Award(ctx, projectID, bidID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProjectAwarded):
			return nil, apperror.ErrProjectAwarded
		case errors.Is(err, repository.ErrBidNotEligible):
			return nil, apperror.New(apperror.ErrCodeConflict, "заявка не может стать победителем")
		case errors.Is(err, repository.ErrProjectNotFound):
			return nil, apperror.ErrProjectNotFound
		}
		return nil, err
	}

	s.invalidateProject(projectID)
	s.notifyAwardOutcome(ctx, awarded)

	return awarded, nil
}

// SweepExpired закрывает открытые проекты с истёкшим сроком и уведомляет
// их владельцев. Возвращает количество закрытых проектов.
func (s *ProjectService) SweepExpired(ctx context.Context) (int, error) {
	closed, err := s.projects.CloseExpired(ctx)
	if err != nil {
		return 0, err
	}

	for _, project := range closed {
		s.invalidateProject(project.ID)
		if s.notifier == nil {
			continue
		}
		if _, err := s.notifier.Notify(ctx, project.BuyerID, EventProjectClosed, map[string]interface{}{
			"project_id": project.ID,
			"title":      project.Title,
		}); err != nil && logger.Log != nil {
			logger.Log.WithField("project_id", project.ID).Warnf("project service: не удалось уведомить о закрытии: %v", err)
		}
	}

	return len(closed), nil
}

// notifyAwardOutcome рассылает итоги торгов участникам. Сбой доставки не
// откатывает награждение: транзакция уже зафиксирована.
func (s *ProjectService) notifyAwardOutcome(ctx context.Context, project *models.Project) {
	if s.notifier == nil {
		return
	}

	bids, err := s.bids.ListForProject(ctx, project.ID)
	if err != nil {
		if logger.Log != nil {
			logger.Log.WithField("project_id", project.ID).Warnf("project service: не удалось загрузить заявки для уведомлений: %v", err)
		}
		return
	}

	for _, bid := range bids {
		event := EventBidRejected
		if bid.Status == models.BidStatusAccepted {
			event = EventBidAccepted
		}
		if _, err := s.notifier.Notify(ctx, bid.SupplierID, event, map[string]interface{}{
			"project_id": project.ID,
			"bid_id":     bid.ID,
			"title":      project.Title,
		}); err != nil && logger.Log != nil {
			logger.Log.WithField("bid_id", bid.ID).Warnf("project service: не удалось уведомить поставщика: %v", err)
		}
	}

	if _, err := s.notifier.Notify(ctx, project.BuyerID, EventProjectAwarded, map[string]interface{}{
		"project_id": project.ID,
		"title":      project.Title,
	}); err != nil && logger.Log != nil {
		logger.Log.WithField("project_id", project.ID).Warnf("project service: не удалось уведомить закупщика: %v", err)
	}
}

// validateProjectInput проверяет поля проекта до обращения к хранилищу.
func (s *ProjectService) validateProjectInput(in CreateProjectInput) error {
	if err := validation.ValidateProjectTitle(in.Title); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateCategory(in.Category); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateRegion(in.Region); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateBudgetLimit(in.BudgetLimit); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateRequirements(in.Requirements); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateDeadline(in.Deadline); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	return nil
}
