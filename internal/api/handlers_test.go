package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func testRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/valuations", h.CreateValuation)
	router.GET("/api/health", h.GetHealth)
	router.GET("/api/regions", h.GetRegions)
	return router
}

func TestCreateValuationRejectsMissingAddress(t *testing.T) {
	router := testRouter(NewHandler(nil, nil, nil))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/valuations", strings.NewReader(`{"property":{"type":"house"}}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateValuationRejectsUnknownPropertyType(t *testing.T) {
	router := testRouter(NewHandler(nil, nil, nil))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/valuations", strings.NewReader(`{"address":"Musterweg 1","property":{"type":"castle"}}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "house")
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter(NewHandler(nil, nil, nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestRegionsEndpoint(t *testing.T) {
	router := testRouter(NewHandler(nil, nil, nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/regions", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bayern")
}
