package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"

	"tbs/src/db"
)

var packageColumns = []string{"id", "slug", "title", "location", "summary", "price_per_person", "currency", "duration_days", "active"}

func TestListPackages(t *testing.T) {
	gormDB, mock := NewMockDB()
	db.NewDB(gormDB)
	router := setupTestRouter()

	mock.ExpectQuery(`SELECT (.+) FROM "tour_packages"`).
		WillReturnRows(sqlmock.NewRows(packageColumns).
			AddRow(1, "masai-mara-classic-safari", "Masai Mara Classic Safari", "Masai Mara, Kenya", "Three days of game drives.", 540, "USD", 3, true).
			AddRow(2, "zanzibar-beach-escape", "Zanzibar Beach Escape", "Zanzibar, Tanzania", "Five nights on Nungwi beach.", 780, "USD", 6, true))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/packages", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	body := w.Body.String()
	assert.Equal(t, int64(2), gjson.Get(body, "count").Int())
	assert.Equal(t, "masai-mara-classic-safari", gjson.Get(body, "data.0.slug").String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPackagesByLocation(t *testing.T) {
	gormDB, mock := NewMockDB()
	db.NewDB(gormDB)
	router := setupTestRouter()

	mock.ExpectQuery(`SELECT (.+) FROM "tour_packages"`).
		WillReturnRows(sqlmock.NewRows(packageColumns).
			AddRow(2, "zanzibar-beach-escape", "Zanzibar Beach Escape", "Zanzibar, Tanzania", "Five nights on Nungwi beach.", 780, "USD", 6, true))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/packages?location=zanzibar", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, int64(1), gjson.Get(w.Body.String(), "count").Int())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPackageBySlug(t *testing.T) {
	gormDB, mock := NewMockDB()
	db.NewDB(gormDB)
	router := setupTestRouter()

	mock.ExpectQuery(`SELECT (.+) FROM "tour_packages"`).
		WillReturnRows(sqlmock.NewRows(packageColumns).
			AddRow(3, "mount-kenya-trek", "Mount Kenya Trek", "Mount Kenya, Kenya", "Four-day guided trek.", 460, "USD", 4, true))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/packages/mount-kenya-trek", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "Mount Kenya Trek", gjson.Get(w.Body.String(), "data.title").String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPackageNotFound(t *testing.T) {
	gormDB, mock := NewMockDB()
	db.NewDB(gormDB)
	router := setupTestRouter()

	mock.ExpectQuery(`SELECT (.+) FROM "tour_packages"`).
		WillReturnRows(sqlmock.NewRows(packageColumns))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/packages/no-such-trip", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePackage(t *testing.T) {
	gormDB, mock := NewMockDB()
	db.NewDB(gormDB)
	router := setupTestRouter()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "tour_packages"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectCommit()

	payload := `{
		"title": "Lake Naivasha Day Trip",
		"location": "Naivasha, Kenya",
		"summary": "Boat ride and Crescent Island walk.",
		"price_per_person": 120,
		"currency": "USD",
		"duration_days": 1
	}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/packages", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, 201, w.Code)
	assert.Equal(t, "lake-naivasha-day-trip", gjson.Get(w.Body.String(), "data.slug").String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
