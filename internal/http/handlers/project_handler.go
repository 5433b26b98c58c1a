package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/b2bid/bidding-backend/internal/dto"
	"github.com/b2bid/bidding-backend/internal/http/handlers/common"
	"github.com/b2bid/bidding-backend/internal/models"
	"github.com/b2bid/bidding-backend/internal/repository"
	"github.com/b2bid/bidding-backend/internal/service"
)

// ProjectHandler обслуживает маршруты проектов закупок.
type ProjectHandler struct {
	projects *service.ProjectService
}

// NewProjectHandler создаёт новый хэндлер.
func NewProjectHandler(projects *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// requireBuyer проверяет, что запрос выполняет закупщик.
func requireBuyer(c *gin.Context) bool {
	role, err := common.CurrentUserRole(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return false
	}
	if role != models.RoleBuyer {
		common.RespondForbidden(c, "операция доступна только закупщику")
		return false
	}
	return true
}

// CreateProject обрабатывает POST /api/projects.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}
	if !requireBuyer(c) {
		return
	}

	var req dto.CreateProjectRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	project, err := h.projects.CreateProject(c.Request.Context(), userID, service.CreateProjectInput{
		Title:        req.Title,
		Category:     req.Category,
		Region:       req.Region,
		BudgetLimit:  req.BudgetLimit,
		Requirements: req.Requirements,
		Deadline:     req.Deadline,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, project)
}

// ListProjects обрабатывает GET /api/projects.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	params := repository.ProjectSearchParams{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Region:   c.Query("region"),
		Limit:    limit,
		Offset:   offset,
	}

	// Фильтр "мои проекты" для закупщика.
	if c.Query("mine") == "true" {
		userID, err := common.CurrentUserID(c)
		if err != nil {
			common.RespondUnauthorized(c, "")
			return
		}
		params.BuyerID = &userID
	}

	projects, err := h.projects.ListProjects(c.Request.Context(), params)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, projects)
}

// GetProject обрабатывает GET /api/projects/:id.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	project, err := h.projects.GetProject(c.Request.Context(), projectID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, project)
}

// UpdateProject обрабатывает PUT /api/projects/:id.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.CreateProjectRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	project, err := h.projects.UpdateProject(c.Request.Context(), userID, projectID, service.CreateProjectInput{
		Title:        req.Title,
		Category:     req.Category,
		Region:       req.Region,
		BudgetLimit:  req.BudgetLimit,
		Requirements: req.Requirements,
		Deadline:     req.Deadline,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, project)
}

// CloseProject обрабатывает POST /api/projects/:id/close.
func (h *ProjectHandler) CloseProject(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	project, err := h.projects.CloseProject(c.Request.Context(), userID, projectID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, project)
}

// AwardProject обрабатывает POST /api/projects/:id/award.
func (h *ProjectHandler) AwardProject(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.AwardRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	project, err := h.projects.AwardProject(c.Request.Context(), userID, projectID, req.BidID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, project)
}
