package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b2bid/bidding-backend/internal/http/middleware"
	"github.com/b2bid/bidding-backend/internal/scoring"
)

func newComparisonRouter(authenticated bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if authenticated {
		userID := uuid.New()
		r.Use(func(c *gin.Context) {
			c.Set(middleware.ContextUserIDKey, userID)
			c.Next()
		})
	}
	handler := &ComparisonHandler{bids: nil}
	r.GET("/projects/:id/comparison", handler.CompareBids)
	r.POST("/weights/redistribute", handler.RedistributeWeights)
	return r
}

func TestComparisonHandler_CompareBids_Unauthorized(t *testing.T) {
	r := newComparisonRouter(false)

	req, _ := http.NewRequest("GET", "/projects/"+uuid.New().String()+"/comparison", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestComparisonHandler_CompareBids_MalformedWeightQuery(t *testing.T) {
	r := newComparisonRouter(true)

	// Нечисловой вес — ошибка валидации, а не молчаливый дефолт.
	for _, query := range []string{"w_price=abc", "w_delivery=1.5", "w_quality=%20"} {
		req, _ := http.NewRequest("GET", "/projects/"+uuid.New().String()+"/comparison?"+query, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}
}

func TestComparisonHandler_RedistributeWeights_NonHundredSum(t *testing.T) {
	r := newComparisonRouter(true)

	body := `{"weights":{"price":0,"delivery":0,"quality":300},"edited_key":"quality","new_value":0}`
	req, _ := http.NewRequest("POST", "/weights/redistribute", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Weights scoring.Weights `json:"weights"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 100, resp.Weights.Sum())
	assert.GreaterOrEqual(t, resp.Weights.Price, 0)
	assert.GreaterOrEqual(t, resp.Weights.Delivery, 0)
	assert.GreaterOrEqual(t, resp.Weights.Quality, 0)
}

func TestComparisonHandler_RedistributeWeights_NegativeInput(t *testing.T) {
	r := newComparisonRouter(true)

	body := `{"weights":{"price":-10,"delivery":60,"quality":50},"edited_key":"price","new_value":40}`
	req, _ := http.NewRequest("POST", "/weights/redistribute", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
