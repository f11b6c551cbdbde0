package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	expenseapp "github.com/botforce/unity/internal/application/expense"
	"github.com/botforce/unity/internal/domain/expense"
	"github.com/botforce/unity/internal/infrastructure/persistence"
	"github.com/botforce/unity/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScanner struct {
	gotMimeType string
	result      *expense.ScannedReceipt
	err         error
}

func (f *fakeScanner) Scan(_ context.Context, _ []byte, mimeType string) (*expense.ScannedReceipt, error) {
	f.gotMimeType = mimeType
	return f.result, f.err
}

func newExpenseAPI(t *testing.T, scanner expense.ReceiptScanner, maxReceiptSize int64) apiClient {
	t.Helper()
	middleware.SetupValidator()

	repo := persistence.NewGormExpenseRepository(openTestDB(t))
	svc := expenseapp.NewExpenseService(repo, nil, scanner)
	h := NewExpenseHandler(svc, maxReceiptSize)

	tenantID, userID := uuid.New(), uuid.New()
	engine := gin.New()
	api := engine.Group("/api/v1", func(c *gin.Context) {
		c.Set(middleware.TenantIDKey, tenantID)
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	})
	api.POST("/expenses", h.Create)
	api.POST("/expenses/mileage", h.CreateMileage)
	api.POST("/expenses/scan-receipt", h.ScanReceipt)
	api.GET("/expenses/:id", h.GetByID)
	api.POST("/expenses/:id/submit", h.Submit)
	api.POST("/expenses/:id/approve", h.Approve)
	api.POST("/expenses/:id/reject", h.Reject)

	return apiClient{t: t, engine: engine}
}

func receiptUpload(t *testing.T, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "receipt.png")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/expenses/scan-receipt", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestExpenseAPI_ApprovalWorkflow(t *testing.T) {
	api := newExpenseAPI(t, nil, DefaultMaxReceiptSize)

	w := api.do(http.MethodPost, "/api/v1/expenses", gin.H{
		"expense_date": time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		"merchant":     "OBB",
		"category":     "travel",
		"amount":       "59.90",
		"tax_amount":   "5.45",
		"tax_rate":     "reduced_10",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeData[expenseapp.ExpenseResponse](t, w)
	assert.Equal(t, "draft", created.Status)
	assert.Equal(t, "EUR", created.Currency)

	path := "/api/v1/expenses/" + created.ID.String()

	// Only submitted expenses can be approved
	w = api.do(http.MethodPost, path+"/approve", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	w = api.do(http.MethodPost, path+"/submit", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "submitted", decodeData[expenseapp.ExpenseResponse](t, w).Status)

	// A rejection needs a reason
	w = api.do(http.MethodPost, path+"/reject", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))

	w = api.do(http.MethodPost, path+"/approve", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	approved := decodeData[expenseapp.ExpenseResponse](t, w)
	assert.Equal(t, "approved", approved.Status)
	assert.NotNil(t, approved.ApprovedBy)
}

func TestExpenseAPI_CreateMileage(t *testing.T) {
	api := newExpenseAPI(t, nil, DefaultMaxReceiptSize)

	w := api.do(http.MethodPost, "/api/v1/expenses/mileage", gin.H{
		"date":        time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		"route":       "Wien - Linz - Wien",
		"distance_km": "370",
		"rate_per_km": "0.50",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decodeData[expenseapp.ExpenseResponse](t, w)
	assert.True(t, decimal.NewFromInt(185).Equal(created.Amount), created.Amount.String())
	require.NotNil(t, created.DistanceKm)
	assert.True(t, decimal.NewFromInt(370).Equal(*created.DistanceKm))
}

func TestExpenseAPI_ScanReceipt(t *testing.T) {
	t.Run("detects content type and returns the scan", func(t *testing.T) {
		total := decimal.RequireFromString("42.50")
		scanner := &fakeScanner{result: &expense.ScannedReceipt{Merchant: "Billa", Total: &total, Currency: "EUR"}}
		api := newExpenseAPI(t, scanner, DefaultMaxReceiptSize)

		w := httptest.NewRecorder()
		api.engine.ServeHTTP(w, receiptUpload(t, pngHeader))

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "image/png", scanner.gotMimeType)
		scanned := decodeData[expenseapp.ScannedReceiptResponse](t, w)
		assert.Equal(t, "Billa", scanned.Merchant)
		require.NotNil(t, scanned.Amount)
		assert.True(t, total.Equal(*scanned.Amount))
	})

	t.Run("rejects oversized files", func(t *testing.T) {
		scanner := &fakeScanner{}
		api := newExpenseAPI(t, scanner, 8)

		w := httptest.NewRecorder()
		api.engine.ServeHTTP(w, receiptUpload(t, pngHeader))

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Empty(t, scanner.gotMimeType)
	})

	t.Run("requires a file", func(t *testing.T) {
		api := newExpenseAPI(t, &fakeScanner{}, DefaultMaxReceiptSize)

		w := api.do(http.MethodPost, "/api/v1/expenses/scan-receipt", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("scanner not configured", func(t *testing.T) {
		api := newExpenseAPI(t, nil, DefaultMaxReceiptSize)

		w := httptest.NewRecorder()
		api.engine.ServeHTTP(w, receiptUpload(t, pngHeader))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "RECEIPT_SCANNING_DISABLED", errorCode(t, w))
	})
}
