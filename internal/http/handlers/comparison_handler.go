package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/b2bid/bidding-backend/internal/dto"
	"github.com/b2bid/bidding-backend/internal/http/handlers/common"
	"github.com/b2bid/bidding-backend/internal/scoring"
	"github.com/b2bid/bidding-backend/internal/service"
)

// ComparisonHandler обслуживает сравнение заявок и пересчёт весов.
type ComparisonHandler struct {
	bids *service.BidService
}

// NewComparisonHandler создаёт новый хэндлер.
func NewComparisonHandler(bids *service.BidService) *ComparisonHandler {
	return &ComparisonHandler{bids: bids}
}

// weightQuery читает вес из query параметра. Пустое значение — дефолт;
// нечисловое значение — ошибка валидации, а не молчаливый откат к дефолту.
func weightQuery(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("параметр %s должен быть целым числом", key)
	}
	return value, nil
}

// CompareBids обрабатывает GET /api/projects/:id/comparison.
// Веса задаются query параметрами w_price, w_delivery, w_quality;
// без них используется набор по умолчанию 40/30/30.
func (h *ComparisonHandler) CompareBids(c *gin.Context) {
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

	var weights scoring.Weights
	if weights.Price, err = weightQuery(c, "w_price", scoring.DefaultWeights.Price); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	if weights.Delivery, err = weightQuery(c, "w_delivery", scoring.DefaultWeights.Delivery); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	if weights.Quality, err = weightQuery(c, "w_quality", scoring.DefaultWeights.Quality); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	sortKey := c.DefaultQuery("sort", scoring.SortByScore)

	comparison, err := h.bids.CompareBids(c.Request.Context(), userID, projectID, weights, sortKey)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, comparison)
}

// RedistributeWeights обрабатывает POST /api/weights/redistribute.
// Пересчитывает остальные веса пропорционально после ручного изменения
// одного из них; сумма всегда остаётся равной 100.
func (h *ComparisonHandler) RedistributeWeights(c *gin.Context) {
	var req dto.RedistributeWeightsRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	weights := scoring.Weights{
		Price:    req.Weights.Price,
		Delivery: req.Weights.Delivery,
		Quality:  req.Weights.Quality,
	}

	result, err := scoring.RedistributeWeights(weights, req.EditedKey, req.NewValue)
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	common.RespondJSON(c, http.StatusOK, gin.H{"weights": result})
}
