package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ibrahim99035/library-backend/internal/adapters/http/middleware"
	"github.com/ibrahim99035/library-backend/internal/adapters/persistence/models"
	"github.com/ibrahim99035/library-backend/internal/config"
)

var routesDBSeq atomic.Int64

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:routestest%d?mode=memory&cache=shared", routesDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.CustomErrorHandler,
	})
	Setup(app, db, &config.Config{AppMode: "dev"})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func dataField(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()

	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %v", body)
	return data
}

func TestBorrowingFlowOverHTTP(t *testing.T) {
	app := newTestApp(t)

	status, body := doJSON(t, app, http.MethodPost, "/api/v1/books", map[string]interface{}{
		"title":        "The Go Programming Language",
		"isbn":         "0134190440",
		"author":       "Donovan & Kernighan",
		"total_copies": 1,
	})
	require.Equal(t, http.StatusCreated, status, "body: %v", body)
	bookID := dataField(t, body)["id"].(float64)

	status, body = doJSON(t, app, http.MethodPost, "/api/v1/members", map[string]interface{}{
		"name":            "Ada",
		"email":           "ada@example.org",
		"membership_type": "student",
	})
	require.Equal(t, http.StatusCreated, status, "body: %v", body)
	memberID := dataField(t, body)["id"].(float64)

	status, body = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/members/%.0f/eligibility", memberID), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, dataField(t, body)["allowed"])

	status, body = doJSON(t, app, http.MethodPost, "/api/v1/borrowings", map[string]interface{}{
		"member_id": memberID,
		"book_id":   bookID,
	})
	require.Equal(t, http.StatusCreated, status, "body: %v", body)
	borrowingID := dataField(t, body)["id"].(float64)

	// Same pair again conflicts
	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/borrowings", map[string]interface{}{
		"member_id": memberID,
		"book_id":   bookID,
	})
	assert.Equal(t, http.StatusConflict, status)

	status, body = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/books/%.0f/availability", bookID), nil)
	require.Equal(t, http.StatusOK, status)
	availability := dataField(t, body)
	assert.Equal(t, float64(0), availability["available_copies"])
	assert.Equal(t, false, availability["available"])

	status, body = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/v1/borrowings/%.0f/return", borrowingID), nil)
	require.Equal(t, http.StatusOK, status, "body: %v", body)
	assert.Equal(t, "returned", dataField(t, body)["state"])
}

func TestDomainErrorMapping(t *testing.T) {
	app := newTestApp(t)

	status, _ := doJSON(t, app, http.MethodGet, "/api/v1/members/9999", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body := doJSON(t, app, http.MethodPost, "/api/v1/books", map[string]interface{}{
		"title":        "Bad ISBN",
		"isbn":         "garbage",
		"total_copies": 1,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])

	// Suspended member hits a domain rule, not a validation failure
	status, body = doJSON(t, app, http.MethodPost, "/api/v1/members", map[string]interface{}{
		"name":  "Grace",
		"email": "grace@example.org",
	})
	require.Equal(t, http.StatusCreated, status)
	memberID := dataField(t, body)["id"].(float64)

	status, body = doJSON(t, app, http.MethodPost, "/api/v1/books", map[string]interface{}{
		"title":        "Reserved Title",
		"isbn":         "9780306406157",
		"total_copies": 1,
	})
	require.Equal(t, http.StatusCreated, status)
	bookID := dataField(t, body)["id"].(float64)

	status, _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/v1/members/%.0f/suspend", memberID), nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/borrowings", map[string]interface{}{
		"member_id": memberID,
		"book_id":   bookID,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestPolicyEndpoints(t *testing.T) {
	app := newTestApp(t)

	status, body := doJSON(t, app, http.MethodGet, "/api/v1/policy", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(14), dataField(t, body)["max_borrow_days"])

	status, body = doJSON(t, app, http.MethodPatch, "/api/v1/policy", map[string]interface{}{
		"fine_per_day": 0.25,
	})
	require.Equal(t, http.StatusOK, status)
	updated := dataField(t, body)
	assert.Equal(t, 0.25, updated["fine_per_day"])
	assert.Equal(t, float64(14), updated["max_borrow_days"])
}
