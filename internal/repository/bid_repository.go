package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/b2bid/bidding-backend/internal/models"
	"github.com/b2bid/bidding-backend/internal/repository/common"
)

// Ошибки уровня репозитория заявок.
var (
	ErrBidNotFound  = errors.New("bid not found")
	ErrDuplicateBid = errors.New("bid already exists for this project and supplier")
)

// uniqueViolation — код ошибки PostgreSQL для нарушения уникального
// ограничения.
const uniqueViolation = "23505"

// BidRepository отвечает за работу с заявками поставщиков.
type BidRepository struct {
	db *sqlx.DB
}

// NewBidRepository создаёт экземпляр репозитория.
func NewBidRepository(db *sqlx.DB) *BidRepository {
	return &BidRepository{db: db}
}

// Create сохраняет новую заявку. Повторная заявка того же поставщика на
// тот же проект отсекается уникальным ограничением базы: гонка
// проверь-потом-вставь закрыта на уровне хранилища, а не приложения.
func (r *BidRepository) Create(ctx context.Context, bid *models.Bid) error {
	query := `
		INSERT INTO bids (project_id, supplier_id, price, delivery_days, comment, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		bid.ProjectID, bid.SupplierID, bid.Price, bid.DeliveryDays, bid.Comment, bid.Status,
	).Scan(&bid.ID, &bid.CreatedAt, &bid.UpdatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateBid
		}
		return fmt.Errorf("bid repository: create %w", err)
	}

	return nil
}

// GetByID возвращает заявку по идентификатору.
func (r *BidRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	return common.GetByID[models.Bid](ctx, r.db, "bids", id, ErrBidNotFound)
}

// ListForProject возвращает все заявки проекта в порядке подачи.
// Порядок важен: ранжирование опирается на него при равенстве ключей.
func (r *BidRepository) ListForProject(ctx context.Context, projectID uuid.UUID) ([]models.Bid, error) {
	query := `
		SELECT id, project_id, supplier_id, price, delivery_days, comment, status, created_at, updated_at
		FROM bids
		WHERE project_id = $1
		ORDER BY created_at ASC, id ASC
	`

	var bids []models.Bid
	if err := r.db.SelectContext(ctx, &bids, query, projectID); err != nil {
		return nil, fmt.Errorf("bid repository: list for project %w", err)
	}

	return bids, nil
}

// ListForSupplier возвращает заявки поставщика с пагинацией.
func (r *BidRepository) ListForSupplier(ctx context.Context, supplierID uuid.UUID, limit, offset int) ([]models.Bid, error) {
	query := `
		SELECT id, project_id, supplier_id, price, delivery_days, comment, status, created_at, updated_at
		FROM bids
		WHERE supplier_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	var bids []models.Bid
	if err := r.db.SelectContext(ctx, &bids, query, supplierID, limit, offset); err != nil {
		return nil, fmt.Errorf("bid repository: list for supplier %w", err)
	}

	return bids, nil
}
