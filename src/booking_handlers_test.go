package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"

	"tbs/src/db"
)

func createBookingRequest(body string) *http.Request {
	req, _ := http.NewRequest("POST", "/api/v1/booking/create", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestCreateBooking(t *testing.T) {
	gormDB, mock := NewMockDB()
	db.NewDB(gormDB)
	router := setupTestRouter()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO "booking_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	payload := `{
		"items": [
			{"type": "package", "catalog_id": 1, "qty": 2, "unit_price": 50, "start_date": "2026-10-01", "end_date": "2026-10-05"}
		],
		"guest_details": {"name": "Jane Achieng", "email": "jane@example.com", "phone": "+254700000000", "country": "KE"},
		"price_breakdown": {"base_amount": 100, "service_fee": 10, "taxes": 5, "currency": "USD"}
	}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, createBookingRequest(payload))

	assert.Equal(t, 201, w.Code)
	body := w.Body.String()
	assert.True(t, strings.HasPrefix(gjson.Get(body, "data.reference").String(), "TRV-"))
	assert.Equal(t, float64(115), gjson.Get(body, "data.total_amount").Float())
	assert.Equal(t, "pending", gjson.Get(body, "data.status").String())
	assert.Equal(t, "pending", gjson.Get(body, "data.payment_status").String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingWithDiscount(t *testing.T) {
	gormDB, mock := NewMockDB()
	db.NewDB(gormDB)
	router := setupTestRouter()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectQuery(`INSERT INTO "booking_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectCommit()

	payload := `{
		"reference": "TRV-CUSTOM01",
		"items": [
			{"type": "excursion", "catalog_id": 3, "qty": 1, "unit_price": 80, "start_date": "2026-11-12"}
		],
		"guest_details": {"name": "Amos Otieno", "email": "amos@example.com"},
		"price_breakdown": {"base_amount": 80, "taxes": 8, "discount": 20, "currency": "USD"}
	}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, createBookingRequest(payload))

	assert.Equal(t, 201, w.Code)
	body := w.Body.String()
	assert.Equal(t, "TRV-CUSTOM01", gjson.Get(body, "data.reference").String())
	assert.Equal(t, float64(68), gjson.Get(body, "data.total_amount").Float())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingRequiresItems(t *testing.T) {
	gormDB, mock := NewMockDB()
	db.NewDB(gormDB)
	router := setupTestRouter()

	payload := `{
		"items": [],
		"guest_details": {"name": "Jane Achieng", "email": "jane@example.com"},
		"price_breakdown": {"base_amount": 100, "currency": "USD"}
	}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, createBookingRequest(payload))

	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "INVALID_REQUEST", gjson.Get(w.Body.String(), "code").String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingRejectsEndDateBeforeStart(t *testing.T) {
	gormDB, mock := NewMockDB()
	db.NewDB(gormDB)
	router := setupTestRouter()

	payload := `{
		"items": [
			{"type": "package", "catalog_id": 1, "qty": 1, "unit_price": 50, "start_date": "2026-10-05", "end_date": "2026-10-01"}
		],
		"guest_details": {"name": "Jane Achieng", "email": "jane@example.com"},
		"price_breakdown": {"base_amount": 50, "currency": "USD"}
	}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, createBookingRequest(payload))

	assert.Equal(t, 400, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBooking(t *testing.T) {
	gormDB, mock := NewMockDB()
	db.NewDB(gormDB)
	router := setupTestRouter()

	mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows(bookingColumns).
			AddRow(1, "TRV-AAAA1111", "Jane Achieng", "jane@example.com", "confirmed", "paid", 115, "USD"))
	mock.ExpectQuery(`SELECT (.+) FROM "booking_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "item_type", "catalog_id", "qty", "unit_price"}).
			AddRow(1, 1, "package", 1, 2, 50))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/booking/TRV-AAAA1111", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	body := w.Body.String()
	assert.Equal(t, "TRV-AAAA1111", gjson.Get(body, "data.reference").String())
	assert.Equal(t, "paid", gjson.Get(body, "data.payment_status").String())
	assert.Equal(t, int64(1), gjson.Get(body, "data.items.#").Int())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBookingNotFound(t *testing.T) {
	gormDB, mock := NewMockDB()
	db.NewDB(gormDB)
	router := setupTestRouter()

	mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows(bookingColumns))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/booking/TRV-MISSING1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLookupBooking(t *testing.T) {
	t.Setenv("APP_HOST", "https://travel.example.com")
	gormDB, mock := NewMockDB()
	db.NewDB(gormDB)
	router := setupTestRouter()

	mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows(bookingColumns).
			AddRow(1, "TRV-AAAA1111", "Jane Achieng", "jane@example.com", "confirmed", "paid", 115, "USD"))

	payload := `{"reference": "TRV-AAAA1111", "email": "JANE@EXAMPLE.COM"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/booking/lookup", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	body := w.Body.String()
	assert.Equal(t, "TRV-AAAA1111", gjson.Get(body, "data.reference").String())
	assert.Equal(t, "https://travel.example.com/booking/TRV-AAAA1111/confirmation", gjson.Get(body, "url").String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// An email mismatch and an unknown reference must be indistinguishable to
// the caller.
func TestLookupBookingWrongEmail(t *testing.T) {
	gormDB, mock := NewMockDB()
	db.NewDB(gormDB)
	router := setupTestRouter()

	mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows(bookingColumns).
			AddRow(1, "TRV-AAAA1111", "Jane Achieng", "jane@example.com", "confirmed", "paid", 115, "USD"))

	payload := `{"reference": "TRV-AAAA1111", "email": "other@example.com"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/booking/lookup", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	mismatchBody := gjson.Get(w.Body.String(), "error").String()

	mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows(bookingColumns))

	payload = `{"reference": "TRV-MISSING1", "email": "other@example.com"}`
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/api/v1/booking/lookup", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	assert.Equal(t, mismatchBody, gjson.Get(w.Body.String(), "error").String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Infrastructure failures are not "not found": the caller should retry, not
// conclude the reference is wrong.
func TestLookupBookingDatabaseError(t *testing.T) {
	gormDB, mock := NewMockDB()
	db.NewDB(gormDB)
	router := setupTestRouter()

	mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnError(errors.New("connection refused"))

	payload := `{"reference": "TRV-AAAA1111", "email": "jane@example.com"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/booking/lookup", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, 500, w.Code)
	assert.NotEmpty(t, gjson.Get(w.Body.String(), "error").String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelBooking(t *testing.T) {
	gormDB, mock := NewMockDB()
	db.NewDB(gormDB)
	router := setupTestRouter()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "bookings"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/v1/booking/TRV-AAAA1111/cancel", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, 204, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelBookingNotPending(t *testing.T) {
	gormDB, mock := NewMockDB()
	db.NewDB(gormDB)
	router := setupTestRouter()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "bookings"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/v1/booking/TRV-AAAA1111/cancel", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
