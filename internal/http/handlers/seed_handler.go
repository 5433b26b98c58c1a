package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/b2bid/bidding-backend/internal/dto"
	"github.com/b2bid/bidding-backend/internal/http/handlers/common"
	"github.com/b2bid/bidding-backend/internal/service"
)

// SeedHandler обрабатывает запросы на генерацию демонстрационных данных.
type SeedHandler struct {
	seed *service.SeedService
}

// NewSeedHandler создаёт новый хэндлер.
func NewSeedHandler(seed *service.SeedService) *SeedHandler {
	return &SeedHandler{seed: seed}
}

// Seed обрабатывает POST /api/seed. Доступен только вне production:
// маршрут регистрируется в роутере по окружению.
func (h *SeedHandler) Seed(c *gin.Context) {
	req := dto.SeedRequest{
		NumBuyers:    common.ParseIntQuery(c, "num_buyers", 5),
		NumSuppliers: common.ParseIntQuery(c, "num_suppliers", 10),
		NumProjects:  common.ParseIntQuery(c, "num_projects", 20),
	}

	if c.Request.Method == http.MethodPost && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			common.RespondBadRequest(c, "некорректное тело запроса")
			return
		}
	}

	if req.NumBuyers < 1 {
		req.NumBuyers = 5
	}
	if req.NumSuppliers < 1 {
		req.NumSuppliers = 10
	}
	if req.NumProjects < 1 {
		req.NumProjects = 20
	}
	if req.NumBuyers > 100 {
		req.NumBuyers = 100
	}
	if req.NumSuppliers > 500 {
		req.NumSuppliers = 500
	}
	if req.NumProjects > 1000 {
		req.NumProjects = 1000
	}

	if err := h.seed.SeedData(c.Request.Context(), req.NumBuyers, req.NumSuppliers, req.NumProjects); err != nil {
		common.RespondInternalError(c, "не удалось сгенерировать данные")
		return
	}

	common.RespondSuccess(c, http.StatusOK, "демонстрационные данные сгенерированы", gin.H{
		"num_buyers":    req.NumBuyers,
		"num_suppliers": req.NumSuppliers,
		"num_projects":  req.NumProjects,
		"demo_password": "Password123",
	})
}
