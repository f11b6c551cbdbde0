package router

import (
	"github.com/botforce/unity/internal/interfaces/http/handler"
)

// Handlers bundles the HTTP handlers mounted under the API prefix.
// A nil handler leaves its domain unmounted.
type Handlers struct {
	Customers          *handler.CustomerHandler
	CompanyProfile     *handler.CompanyProfileHandler
	Documents          *handler.DocumentHandler
	Expenses           *handler.ExpenseHandler
	RecurringTemplates *handler.RecurringTemplateHandler
	Forecast           *handler.ForecastHandler
	AccountingExports  *handler.AccountingExportHandler
	System             *handler.SystemHandler
}

// DomainGroups builds the route groups of every configured domain
func DomainGroups(h Handlers) []*DomainGroup {
	var groups []*DomainGroup

	if h.Customers != nil {
		customers := NewDomainGroup("customers", "/customers")
		customers.POST("", h.Customers.Create).
			GET("", h.Customers.List).
			GET("/:id", h.Customers.GetByID).
			PUT("/:id", h.Customers.Update).
			DELETE("/:id", h.Customers.Delete).
			POST("/:id/activate", h.Customers.Activate).
			POST("/:id/deactivate", h.Customers.Deactivate)
		groups = append(groups, customers)
	}

	if h.CompanyProfile != nil {
		profile := NewDomainGroup("company-profile", "/company-profile")
		profile.GET("", h.CompanyProfile.Get).
			PUT("", h.CompanyProfile.Upsert)
		groups = append(groups, profile)
	}

	if h.Documents != nil {
		documents := NewDomainGroup("documents", "/documents")
		documents.POST("", h.Documents.Create).
			GET("", h.Documents.List).
			POST("/from-expenses", h.Documents.CreateFromExpenses).
			GET("/:id", h.Documents.GetByID).
			PUT("/:id", h.Documents.Update).
			DELETE("/:id", h.Documents.Delete).
			POST("/:id/issue", h.Documents.Issue).
			POST("/:id/mark-paid", h.Documents.MarkPaid).
			POST("/:id/cancel", h.Documents.Cancel).
			POST("/:id/credit-note", h.Documents.CreateCreditNote).
			POST("/:id/expenses", h.Documents.AddExpenses)
		groups = append(groups, documents)
	}

	if h.Expenses != nil {
		expenses := NewDomainGroup("expenses", "/expenses")
		expenses.POST("", h.Expenses.Create).
			GET("", h.Expenses.List).
			POST("/mileage", h.Expenses.CreateMileage).
			POST("/scan-receipt", h.Expenses.ScanReceipt).
			GET("/:id", h.Expenses.GetByID).
			PUT("/:id", h.Expenses.Update).
			PUT("/:id/mileage", h.Expenses.UpdateMileage).
			DELETE("/:id", h.Expenses.Delete).
			POST("/:id/submit", h.Expenses.Submit).
			POST("/:id/approve", h.Expenses.Approve).
			POST("/:id/reject", h.Expenses.Reject).
			POST("/:id/reopen", h.Expenses.Reopen)

		receipt := expenses.Group("receipt", "/:id/receipt")
		receipt.POST("/upload-url", h.Expenses.InitiateReceiptUpload).
			POST("/confirm", h.Expenses.ConfirmReceipt)
		groups = append(groups, expenses)
	}

	if h.RecurringTemplates != nil {
		templates := NewDomainGroup("recurring-templates", "/recurring-templates")
		templates.POST("", h.RecurringTemplates.Create).
			GET("", h.RecurringTemplates.List).
			GET("/:id", h.RecurringTemplates.GetByID).
			PUT("/:id", h.RecurringTemplates.Update).
			DELETE("/:id", h.RecurringTemplates.Delete).
			POST("/:id/activate", h.RecurringTemplates.Activate).
			POST("/:id/deactivate", h.RecurringTemplates.Deactivate).
			POST("/:id/tick", h.RecurringTemplates.Tick)
		groups = append(groups, templates)
	}

	if h.Forecast != nil {
		forecast := NewDomainGroup("forecast", "/forecast")
		forecast.GET("", h.Forecast.Project)

		costs := forecast.Group("recurring-costs", "/recurring-costs")
		costs.POST("", h.Forecast.CreateCost).
			GET("", h.Forecast.ListCosts).
			GET("/:id", h.Forecast.GetCost).
			PUT("/:id", h.Forecast.UpdateCost).
			PUT("/:id/active", h.Forecast.SetCostActive).
			DELETE("/:id", h.Forecast.DeleteCost)
		groups = append(groups, forecast)
	}

	if h.AccountingExports != nil {
		exports := NewDomainGroup("accounting-exports", "/accounting-exports")
		exports.POST("", h.AccountingExports.Create).
			GET("", h.AccountingExports.List).
			GET("/:id", h.AccountingExports.GetByID).
			DELETE("/:id", h.AccountingExports.Delete).
			POST("/:id/lock", h.AccountingExports.Lock).
			GET("/:id/download", h.AccountingExports.Download)
		groups = append(groups, exports)
	}

	if h.System != nil {
		system := NewDomainGroup("system", "/system")
		system.GET("/info", h.System.GetSystemInfo).
			GET("/ping", h.System.Ping)
		groups = append(groups, system)
	}

	return groups
}

// RegisterAPI mounts every configured domain group on r
func RegisterAPI(r *Router, h Handlers) *Router {
	for _, group := range DomainGroups(h) {
		r.Register(group)
	}
	return r
}
