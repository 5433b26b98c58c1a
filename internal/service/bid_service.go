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
	"github.com/b2bid/bidding-backend/internal/scoring"
	"github.com/b2bid/bidding-backend/internal/validation"
)

// BidStore описывает зависимости BidService от хранилища заявок.
type BidStore interface {
	Create(ctx context.Context, bid *models.Bid) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bid, error)
	ListForProject(ctx context.Context, projectID uuid.UUID) ([]models.Bid, error)
	ListForSupplier(ctx context.Context, supplierID uuid.UUID, limit, offset int) ([]models.Bid, error)
}

// BidProjectStore описывает доступ BidService к проектам.
type BidProjectStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
}

// BidService содержит бизнес-логику подачи и сравнения заявок.
type BidService struct {
	bids     BidStore
	projects BidProjectStore
	notifier Notifier
}

// NewBidService создаёт сервис заявок.
func NewBidService(bids BidStore, projects BidProjectStore, notifier Notifier) *BidService {
	return &BidService{
		bids:     bids,
		projects: projects,
		notifier: notifier,
	}
}

// SubmitBidInput содержит данные новой заявки.
type SubmitBidInput struct {
	Price        float64
	DeliveryDays int
	Comment      *string
}

// SubmitBid подаёт заявку поставщика на открытый проект. Повторная заявка
// того же поставщика отклоняется конфликтом: уникальность пары
// (проект, поставщик) гарантирует хранилище, а не предварительная проверка.
func (s *BidService) SubmitBid(ctx context.Context, supplierID, projectID uuid.UUID, in SubmitBidInput) (*models.Bid, error) {
	if err := validation.ValidatePrice(in.Price); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateDeliveryDays(in.DeliveryDays); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateComment(in.Comment); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, apperror.ErrProjectNotFound
		}
		return nil, err
	}

	// Срок мог истечь до прохода фонового закрытия: проверяем и статус,
	// и дедлайн.
	if project.Status != models.ProjectStatusOpen || !project.Deadline.After(time.Now()) {
		return nil, apperror.ErrProjectNotOpen
	}
	if project.BuyerID == supplierID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "нельзя подать заявку на собственный проект")
	}

	bid := &models.Bid{
		ProjectID:    projectID,
		SupplierID:   supplierID,
		Price:        in.Price,
		DeliveryDays: in.DeliveryDays,
		Comment:      in.Comment,
		Status:       models.BidStatusSubmitted,
	}

	if err := s.bids.Create(ctx, bid); err != nil {
		if errors.Is(err, repository.ErrDuplicateBid) {
			return nil, apperror.ErrDuplicateBid
		}
		return nil, err
	}

	if s.notifier != nil {
		if _, err := s.notifier.Notify(ctx, project.BuyerID, EventBidReceived, map[string]interface{}{
			"project_id": project.ID,
			"bid_id":     bid.ID,
			"title":      project.Title,
		}); err != nil && logger.Log != nil {
			logger.Log.WithField("bid_id", bid.ID).Warnf("bid service: не удалось уведомить закупщика: %v", err)
		}
	}

	return bid, nil
}

// GetBid возвращает заявку по идентификатору.
func (s *BidService) GetBid(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	bid, err := s.bids.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBidNotFound) {
			return nil, apperror.ErrBidNotFound
		}
		return nil, err
	}
	return bid, nil
}

// ListMyBids возвращает заявки поставщика.
func (s *BidService) ListMyBids(ctx context.Context, supplierID uuid.UUID, limit, offset int) ([]models.Bid, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	return s.bids.ListForSupplier(ctx, supplierID, limit, offset)
}

// ScoredBid — заявка вместе с разложением её оценки по критериям.
type ScoredBid struct {
	models.Bid
	SubScores scoring.SubScores `json:"sub_scores"`
	Composite float64           `json:"composite"`
}

// Comparison — итог сравнения заявок проекта при заданных весах.
type Comparison struct {
	ProjectID uuid.UUID       `json:"project_id"`
	Weights   scoring.Weights `json:"weights"`
	Bounds    scoring.Bounds  `json:"bounds"`
	SortKey   string          `json:"sort_key"`
	Bids      []ScoredBid     `json:"bids"`
}

// CompareBids вычисляет оценки всех заявок проекта при заданных весах и
// возвращает их в отсортированном порядке. Смотреть сравнение может только
// владелец проекта. Смена весов пересчитывает оценки всего набора, не
// отдельной заявки.
func (s *BidService) CompareBids(ctx context.Context, buyerID, projectID uuid.UUID, weights scoring.Weights, sortKey string) (*Comparison, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, apperror.ErrProjectNotFound
		}
		return nil, err
	}

	if project.BuyerID != buyerID {
		return nil, apperror.ErrForbidden
	}

	if err := weights.Validate(); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, "некорректные веса")
	}

	bids, err := s.bids.ListForProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	bounds := scoring.BoundsFor(bids)
	for i := range bids {
		score, err := scoring.Score(bids[i], weights, bounds)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, "некорректные веса")
		}
		bids[i].Score = &score
	}

	ranked, err := scoring.Rank(bids, sortKey)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, "неизвестный ключ сортировки")
	}

	scored := make([]ScoredBid, 0, len(ranked))
	for _, bid := range ranked {
		ss := scoring.SubScoresFor(bid, bounds)
		composite, err := scoring.Composite(ss, weights)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, "некорректные веса")
		}
		scored = append(scored, ScoredBid{
			Bid:       bid,
			SubScores: ss,
			Composite: composite,
		})
	}

	if sortKey == "" {
		sortKey = scoring.SortByScore
	}

	return &Comparison{
		ProjectID: projectID,
		Weights:   weights,
		Bounds:    bounds,
		SortKey:   sortKey,
		Bids:      scored,
	}, nil
}

// ListProjectBids возвращает заявки проекта в порядке подачи. Полный
// список видит только владелец проекта.
func (s *BidService) ListProjectBids(ctx context.Context, userID, projectID uuid.UUID) ([]models.Bid, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, apperror.ErrProjectNotFound
		}
		return nil, err
	}

	if project.BuyerID != userID {
		return nil, apperror.ErrForbidden
	}

	return s.bids.ListForProject(ctx, projectID)
}
