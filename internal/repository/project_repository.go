package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/b2bid/bidding-backend/internal/models"
)

// Ошибки уровня репозитория проектов.
var (
	ErrProjectNotFound = errors.New("project not found")
	ErrProjectAwarded  = errors.New("project already awarded")
	ErrBidNotEligible  = errors.New("bid not eligible for award")
)

// ProjectRepository отвечает за работу с проектами закупок и их торгами.
type ProjectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository создаёт экземпляр репозитория.
func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create сохраняет новый проект закупки.
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (buyer_id, title, category, region, budget_limit, requirements, deadline, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		project.BuyerID, project.Title, project.Category, project.Region,
		project.BudgetLimit, project.Requirements, project.Deadline, project.Status,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt); err != nil {
		return fmt.Errorf("project repository: create %w", err)
	}

	return nil
}

// GetByID возвращает проект по идентификатору.
func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	query := `
		SELECT id, buyer_id, title, category, region, budget_limit, requirements, deadline, status, awarded_bid_id, created_at, updated_at
		FROM projects
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &project, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("project repository: get by id %w", err)
	}

	return &project, nil
}

// ProjectSearchParams параметры выборки проектов.
type ProjectSearchParams struct {
	Status   string
	Category string
	Region   string
	BuyerID  *uuid.UUID
	Limit    int
	Offset   int
}

// List возвращает проекты по фильтрам вместе с количеством поданных заявок.
func (r *ProjectRepository) List(ctx context.Context, params ProjectSearchParams) ([]models.Project, error) {
	query := `
		SELECT p.id, p.buyer_id, p.title, p.category, p.region, p.budget_limit, p.requirements, p.deadline, p.status, p.awarded_bid_id, p.created_at, p.updated_at,
		       COUNT(b.id) AS bids_count
		FROM projects p
		LEFT JOIN bids b ON b.project_id = p.id
		WHERE 1=1
	`
	args := []interface{}{}
	argNum := 1

	if params.Status != "" {
		query += fmt.Sprintf(" AND p.status = $%d", argNum)
		args = append(args, params.Status)
		argNum++
	}
	if params.Category != "" {
		query += fmt.Sprintf(" AND p.category = $%d", argNum)
		args = append(args, params.Category)
		argNum++
	}
	if params.Region != "" {
		query += fmt.Sprintf(" AND p.region = $%d", argNum)
		args = append(args, params.Region)
		argNum++
	}
	if params.BuyerID != nil {
		query += fmt.Sprintf(" AND p.buyer_id = $%d", argNum)
		args = append(args, *params.BuyerID)
		argNum++
	}

	query += " GROUP BY p.id ORDER BY p.created_at DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, params.Limit, params.Offset)

	var projects []models.Project
	if err := r.db.SelectContext(ctx, &projects, query, args...); err != nil {
		return nil, fmt.Errorf("project repository: list %w", err)
	}

	return projects, nil
}

// Update обновляет редактируемые поля проекта.
func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	query := `
		UPDATE projects
		SET title = $1, category = $2, region = $3, budget_limit = $4, requirements = $5, deadline = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		project.Title, project.Category, project.Region, project.BudgetLimit,
		project.Requirements, project.Deadline, project.ID,
	).Scan(&project.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("project repository: update %w", err)
	}

	return nil
}

// Close переводит открытый проект в статус closed. Закрытие уже закрытого
// проекта — no-op, попытка закрыть awarded проект — конфликт.
func (r *ProjectRepository) Close(ctx context.Context, projectID uuid.UUID) error {
	var status string
	query := `
		UPDATE projects
		SET status = CASE WHEN status = 'open' THEN 'closed' ELSE status END,
		    updated_at = CASE WHEN status = 'open' THEN NOW() ELSE updated_at END
		WHERE id = $1
		RETURNING status
	`
	if err := r.db.QueryRowxContext(ctx, query, projectID).Scan(&status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("project repository: close %w", err)
	}

	if status == models.ProjectStatusAwarded {
		return ErrProjectAwarded
	}

	return nil
}

// CloseExpired закрывает все открытые проекты с истёкшим сроком приёма
// заявок. Возвращает количество закрытых проектов. Повторный проход по
// уже закрытым проектам ничего не меняет.
func (r *ProjectRepository) CloseExpired(ctx context.Context) ([]models.Project, error) {
	query := `
		UPDATE projects
		SET status = 'closed', updated_at = NOW()
		WHERE status = 'open' AND deadline <= NOW()
		RETURNING id, buyer_id, title, category, region, budget_limit, requirements, deadline, status, awarded_bid_id, created_at, updated_at
	`

	var closed []models.Project
	if err := r.db.SelectContext(ctx, &closed, query); err != nil {
		return nil, fmt.Errorf("project repository: close expired %w", err)
	}

	return closed, nil
}

// Award выбирает победителя торгов одной транзакцией: выбранная заявка
// становится accepted, все остальные заявки проекта — rejected, проект —
// awarded. Частичное применение невозможно: любая ошибка откатывает всё.
func (r *ProjectRepository) Award(ctx context.Context, projectID, bidID uuid.UUID) (*models.Project, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("project repository: award begin tx %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Блокируем строку проекта, чтобы два конкурирующих награждения
	// не прошли одновременно.
	var project models.Project
	lockQuery := `
		SELECT id, buyer_id, title, category, region, budget_limit, requirements, deadline, status, awarded_bid_id, created_at, updated_at
		FROM projects
		WHERE id = $1
		FOR UPDATE
	`
	if err := tx.GetContext(ctx, &project, lockQuery, projectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("project repository: award lock project %w", err)
	}

	if project.Status == models.ProjectStatusAwarded {
		return nil, ErrProjectAwarded
	}

	// Победителем может стать только заявка этого проекта в статусе submitted.
	var accepted models.Bid
	acceptQuery := `
		UPDATE bids
		SET status = 'accepted', updated_at = NOW()
		WHERE id = $1 AND project_id = $2 AND status = 'submitted'
		RETURNING id, project_id, supplier_id, price, delivery_days, comment, status, created_at, updated_at
	`
	if err := tx.GetContext(ctx, &accepted, acceptQuery, bidID, projectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBidNotEligible
		}
		return nil, fmt.Errorf("project repository: award accept bid %w", err)
	}

	rejectQuery := `
		UPDATE bids
		SET status = 'rejected', updated_at = NOW()
		WHERE project_id = $1 AND id != $2 AND status = 'submitted'
	`
	if _, err := tx.ExecContext(ctx, rejectQuery, projectID, bidID); err != nil {
		return nil, fmt.Errorf("project repository: award reject siblings %w", err)
	}

	awardQuery := `
		UPDATE projects
		SET status = 'awarded', awarded_bid_id = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, buyer_id, title, category, region, budget_limit, requirements, deadline, status, awarded_bid_id, created_at, updated_at
	`
	if err := tx.GetContext(ctx, &project, awardQuery, bidID, projectID); err != nil {
		return nil, fmt.Errorf("project repository: award update project %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("project repository: award commit %w", err)
	}

	return &project, nil
}
