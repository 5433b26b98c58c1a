package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/b2bid/bidding-backend/internal/dto"
	"github.com/b2bid/bidding-backend/internal/http/handlers/common"
	"github.com/b2bid/bidding-backend/internal/models"
	"github.com/b2bid/bidding-backend/internal/service"
)

// BidHandler обслуживает маршруты заявок поставщиков.
type BidHandler struct {
	bids *service.BidService
}

// NewBidHandler создаёт новый хэндлер.
func NewBidHandler(bids *service.BidService) *BidHandler {
	return &BidHandler{bids: bids}
}

// SubmitBid обрабатывает POST /api/projects/:id/bids.
func (h *BidHandler) SubmitBid(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	role, err := common.CurrentUserRole(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}
	if role != models.RoleSupplier {
		common.RespondForbidden(c, "заявки подают только поставщики")
		return
	}

	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.SubmitBidRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	bid, err := h.bids.SubmitBid(c.Request.Context(), userID, projectID, service.SubmitBidInput{
		Price:        req.Price,
		DeliveryDays: req.DeliveryDays,
		Comment:      req.Comment,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, bid)
}

// ListProjectBids обрабатывает GET /api/projects/:id/bids.
func (h *BidHandler) ListProjectBids(c *gin.Context) {
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

	bids, err := h.bids.ListProjectBids(c.Request.Context(), userID, projectID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, bids)
}

// GetBid обрабатывает GET /api/bids/:id.
func (h *BidHandler) GetBid(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	bidID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	bid, err := h.bids.GetBid(c.Request.Context(), bidID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	// Заявку видит её автор; владельцу проекта доступен список заявок проекта.
	if bid.SupplierID != userID {
		common.RespondForbidden(c, "")
		return
	}

	common.RespondJSON(c, http.StatusOK, bid)
}

// ListMyBids обрабатывает GET /api/bids/my.
func (h *BidHandler) ListMyBids(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	limit, offset := common.GetPagination(c)

	bids, err := h.bids.ListMyBids(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, bids)
}
