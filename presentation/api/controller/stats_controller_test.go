package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/restaurant-hub/product-bulk/application/dto"
	"github.com/restaurant-hub/product-bulk/domain/product"
	"github.com/restaurant-hub/product-bulk/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupStatsControllerTest(mockService *mocks.MockAuditService) *fiber.App {
	app := fiber.New()
	NewStatsController(app, mockService)
	return app
}

func TestStatsController_GetStats(t *testing.T) {
	t.Run("successful query returns 200", func(t *testing.T) {
		mockService := new(mocks.MockAuditService)
		app := setupStatsControllerTest(mockService)

		expected := &dto.StatsResponse{
			Batches:        3,
			TotalRequested: 30,
			TotalAffected:  28,
			TotalFailed:    2,
			GroupedData: []dto.GroupedStats{
				{Key: "activate", Batches: 2, TotalRequested: 20, TotalAffected: 18, TotalFailed: 2},
				{Key: "delete", Batches: 1, TotalRequested: 10, TotalAffected: 10},
			},
		}

		mockService.On("GetStats", mock.Anything, &product.GetStatsQuery{
			From:      1723000000,
			To:        1723100000,
			Operation: product.OperationActivate,
			GroupBy:   "operation",
		}).Return(expected, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/products/bulk/stats?from=1723000000&to=1723100000&operation=activate&group_by=operation", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result dto.StatsResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, int64(3), result.Batches)
		assert.Len(t, result.GroupedData, 2)
		mockService.AssertExpectations(t)
	})

	t.Run("validation error returns 400", func(t *testing.T) {
		mockService := new(mocks.MockAuditService)
		app := setupStatsControllerTest(mockService)

		validationErr := product.NewValidationError()
		validationErr.Add(product.ErrorDetail{Field: "from", Code: product.ErrCodeValidationRequired, Message: "from timestamp is required"})
		mockService.On("GetStats", mock.Anything, mock.Anything).Return(nil, validationErr)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/products/bulk/stats", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var result dto.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, "validation failed", result.Error)
		require.Len(t, result.Details, 1)
		assert.Equal(t, "from", result.Details[0].Field)
	})

	t.Run("service error returns 500", func(t *testing.T) {
		mockService := new(mocks.MockAuditService)
		app := setupStatsControllerTest(mockService)

		mockService.On("GetStats", mock.Anything, mock.Anything).Return(nil, assert.AnError)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/products/bulk/stats?from=1&to=2", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

		var result dto.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, "failed to get stats", result.Error)
	})
}
