package integration

import (
	"net/http"
	"testing"
	"time"

	accountingapp "github.com/botforce/unity/internal/application/accounting"
	expenseapp "github.com/botforce/unity/internal/application/expense"
	forecastapp "github.com/botforce/unity/internal/application/forecast"
	invoicingapp "github.com/botforce/unity/internal/application/invoicing"
	partnerapp "github.com/botforce/unity/internal/application/partner"
	recurringapp "github.com/botforce/unity/internal/application/recurring"
	"github.com/botforce/unity/internal/infrastructure/auth"
	"github.com/botforce/unity/internal/infrastructure/cache"
	"github.com/botforce/unity/internal/infrastructure/config"
	"github.com/botforce/unity/internal/infrastructure/persistence"
	"github.com/botforce/unity/internal/infrastructure/storage"
	"github.com/botforce/unity/internal/interfaces/http/handler"
	"github.com/botforce/unity/internal/interfaces/http/middleware"
	"github.com/botforce/unity/internal/interfaces/http/router"
	"github.com/botforce/unity/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const testJWTSecret = "integration-secret-at-least-32-bytes!"

// TestServer wires the production services and routes over a test database
type TestServer struct {
	DB        *TestDB
	Engine    *gin.Engine
	Events    *testutil.EventRecorder
	Storage   *storage.MemoryObjectStorage
	Documents *invoicingapp.DocumentService
	Templates *recurringapp.TemplateService
	Exports   *accountingapp.ExportService
}

func NewTestServer(t *testing.T, testDB *TestDB) *TestServer {
	t.Helper()

	db := testDB.DB
	customerRepo := persistence.NewGormCustomerRepository(db)
	profileRepo := persistence.NewGormCompanyProfileRepository(db)
	documentRepo := persistence.NewGormDocumentRepository(db)
	expenseRepo := persistence.NewGormExpenseRepository(db)
	templateRepo := persistence.NewGormRecurringTemplateRepository(db)
	costRepo := persistence.NewGormRecurringCostRepository(db)
	exportRepo := persistence.NewGormAccountingExportRepository(db)

	events := testutil.NewEventRecorder()
	objects := storage.NewMemoryObjectStorage()

	customers := partnerapp.NewCustomerService(customerRepo, documentRepo)
	customers.SetEventPublisher(events)
	profiles := partnerapp.NewCompanyProfileService(profileRepo, 14)

	documents := invoicingapp.NewDocumentService(documentRepo, customerRepo, profileRepo, expenseRepo, invoicingapp.Settings{})
	documents.SetEventPublisher(events)

	expenses := expenseapp.NewExpenseService(expenseRepo, objects, nil)
	expenses.SetEventPublisher(events)

	claims := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = claims.Close() })
	templates := recurringapp.NewTemplateService(templateRepo, documentRepo, customerRepo, documents)
	templates.SetEventPublisher(events)
	templates.SetIdempotencyStore(claims, time.Hour)

	forecasts := forecastapp.NewForecastService(costRepo, documentRepo)

	exports := accountingapp.NewExportService(exportRepo, documentRepo, expenseRepo, objects)
	exports.SetEventPublisher(events)

	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(middleware.RequestID())

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: auth.NewJWTService(config.JWTConfig{Secret: testJWTSecret, Issuer: "unity-test"}),
		DevHeaders: true,
	}))
	router.RegisterAPI(r, router.Handlers{
		Customers:          handler.NewCustomerHandler(customers),
		CompanyProfile:     handler.NewCompanyProfileHandler(profiles),
		Documents:          handler.NewDocumentHandler(documents),
		Expenses:           handler.NewExpenseHandler(expenses, 0),
		RecurringTemplates: handler.NewRecurringTemplateHandler(templates),
		Forecast:           handler.NewForecastHandler(forecasts),
		AccountingExports:  handler.NewAccountingExportHandler(exports),
		System:             handler.NewSystemHandler("Unity test", "test"),
	}).Setup()

	return &TestServer{
		DB:        testDB,
		Engine:    engine,
		Events:    events,
		Storage:   objects,
		Documents: documents,
		Templates: templates,
		Exports:   exports,
	}
}

// Client returns an API client authenticated as userID of tenantID through
// the development identity headers
func (s *TestServer) Client(t *testing.T, tenantID, userID uuid.UUID) *testutil.APIClient {
	return testutil.NewAPIClient(t, s.Engine).
		WithHeader(middleware.TenantIDHeader, tenantID.String()).
		WithHeader(middleware.UserIDHeader, userID.String())
}

// seedTenant stores a company profile and one customer and returns the customer ID
func seedTenant(t *testing.T, client *testutil.APIClient, companyName string) uuid.UUID {
	t.Helper()

	w := client.Do(http.MethodPut, "/api/v1/company-profile", map[string]any{
		"name":   companyName,
		"vat_id": "ATU12345678",
		"iban":   "AT611904300234573201",
		"address": map[string]any{
			"street":      "Mariahilfer Straße 1",
			"postal_code": "1060",
			"city":        "Wien",
			"country":     "AT",
		},
	})
	testutil.DecodeData[partnerapp.CompanyProfileResponse](t, w)

	w = client.Do(http.MethodPost, "/api/v1/customers", map[string]any{
		"name":               "ACME GmbH",
		"email":              "billing@acme.example",
		"payment_terms_days": 30,
		"address":            map[string]any{"city": "Graz", "country": "AT"},
	})
	customer := testutil.DecodeData[partnerapp.CustomerResponse](t, w)
	return customer.ID
}

func invoiceBody(customerID uuid.UUID, lines ...map[string]any) map[string]any {
	return map[string]any{
		"type":        "invoice",
		"customer_id": customerID,
		"lines":       lines,
	}
}

func line(description, quantity, unitPrice, taxRate string) map[string]any {
	return map[string]any{
		"description": description,
		"quantity":    quantity,
		"unit_price":  unitPrice,
		"tax_rate":    taxRate,
	}
}
