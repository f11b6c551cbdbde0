package integration

import (
	"net/http"
	"testing"
	"time"

	invoicingapp "github.com/botforce/unity/internal/application/invoicing"
	partnerapp "github.com/botforce/unity/internal/application/partner"
	"github.com/botforce/unity/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTenantIsolation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	srv := NewTestServer(t, NewTestDB(t))
	alpha := srv.Client(t, testutil.TestTenantID(), testutil.TestUserID())
	beta := srv.Client(t, testutil.OtherTenantID(), testutil.NewTestUUID("beta-user"))

	alphaCustomer := seedTenant(t, alpha, "Alpha OG")
	betaCustomer := seedTenant(t, beta, "Beta KG")

	issueOne := func(client *testutil.APIClient, customerID string) invoicingapp.DocumentResponse {
		t.Helper()
		w := client.Do(http.MethodPost, "/api/v1/documents", map[string]any{
			"type":        "invoice",
			"customer_id": customerID,
			"lines":       []map[string]any{line("Retainer", "1", "500.00", "standard_20")},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		draft := testutil.DecodeData[invoicingapp.DocumentResponse](t, w)

		w = client.Do(http.MethodPost, "/api/v1/documents/"+draft.ID.String()+"/issue", map[string]any{
			"issue_date": testutil.Date(2026, time.February, 2),
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return testutil.DecodeData[invoicingapp.DocumentResponse](t, w)
	}

	alphaInvoice := issueOne(alpha, alphaCustomer.String())
	betaInvoice := issueOne(beta, betaCustomer.String())

	t.Run("each tenant has its own number series", func(t *testing.T) {
		assert.Equal(t, "INV-2026-0001", *alphaInvoice.DocumentNumber)
		assert.Equal(t, "INV-2026-0001", *betaInvoice.DocumentNumber)
	})

	t.Run("documents of another tenant are not found", func(t *testing.T) {
		w := beta.Do(http.MethodGet, "/api/v1/documents/"+alphaInvoice.ID.String(), nil)
		testutil.AssertError(t, w, http.StatusNotFound, "NOT_FOUND")

		w = beta.Do(http.MethodPost, "/api/v1/documents/"+alphaInvoice.ID.String()+"/mark-paid", nil)
		testutil.AssertError(t, w, http.StatusNotFound, "NOT_FOUND")
	})

	t.Run("customers of another tenant are not found", func(t *testing.T) {
		w := alpha.Do(http.MethodGet, "/api/v1/customers/"+betaCustomer.String(), nil)
		testutil.AssertError(t, w, http.StatusNotFound, "NOT_FOUND")

		w = alpha.Do(http.MethodPost, "/api/v1/documents", map[string]any{
			"type":        "invoice",
			"customer_id": betaCustomer,
			"lines":       []map[string]any{line("Sneaky", "1", "1.00", "zero")},
		})
		testutil.AssertError(t, w, http.StatusNotFound, "NOT_FOUND")
	})

	t.Run("lists only show own records", func(t *testing.T) {
		w := alpha.Do(http.MethodGet, "/api/v1/customers", nil)
		customers := testutil.DecodeData[[]partnerapp.CustomerResponse](t, w)
		require.Len(t, customers, 1)
		assert.Equal(t, alphaCustomer, customers[0].ID)

		w = beta.Do(http.MethodGet, "/api/v1/documents", nil)
		docs := testutil.DecodeData[[]invoicingapp.DocumentListResponse](t, w)
		require.Len(t, docs, 1)
		assert.Equal(t, betaInvoice.ID, docs[0].ID)
	})

	t.Run("company profile is per tenant", func(t *testing.T) {
		w := beta.Do(http.MethodGet, "/api/v1/company-profile", nil)
		profile := testutil.DecodeData[partnerapp.CompanyProfileResponse](t, w)
		assert.Equal(t, "Beta KG", profile.Name)
	})
}

func TestUnauthenticatedRequestsAreRejected(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	srv := NewTestServer(t, NewTestDB(t))
	anonymous := testutil.NewAPIClient(t, srv.Engine)

	w := anonymous.Do(http.MethodGet, "/api/v1/documents", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = anonymous.WithHeader("Authorization", "Bearer not-a-token").Do(http.MethodGet, "/api/v1/customers", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
