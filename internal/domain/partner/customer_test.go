package partner

import (
	"testing"

	"github.com/botforce/unity/internal/domain/invoicing"
	"github.com/botforce/unity/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestNewCustomer(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates active customer", func(t *testing.T) {
		customer, err := NewCustomer(tenantID, uuid.New(), CustomerDetails{
			Name:    "  Acme GmbH ",
			Email:   "billing@acme.at",
			VATID:   "atu 123.456.78",
			Address: valueobject.Address{Street: "Ring 1", PostalCode: "1010", City: "Wien", Country: "AT"},
		})

		require.NoError(t, err)
		assert.Equal(t, "Acme GmbH", customer.Name)
		assert.Equal(t, "ATU12345678", customer.VATID)
		assert.True(t, customer.IsActive)
		assert.Equal(t, tenantID, customer.TenantID)
		assert.Len(t, customer.GetDomainEvents(), 1)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		customer, err := NewCustomer(tenantID, uuid.New(), CustomerDetails{Name: " "})

		assert.Error(t, err)
		assert.Nil(t, customer)
		assert.Contains(t, err.Error(), "Name cannot be empty")
	})

	t.Run("fails with invalid email", func(t *testing.T) {
		_, err := NewCustomer(tenantID, uuid.New(), CustomerDetails{Name: "Acme", Email: "nope"})
		assert.Error(t, err)
	})

	t.Run("fails with invalid terms", func(t *testing.T) {
		_, err := NewCustomer(tenantID, uuid.New(), CustomerDetails{Name: "Acme", PaymentTermsDays: intPtr(-1)})
		assert.Error(t, err)
	})

	t.Run("fails with address without city", func(t *testing.T) {
		_, err := NewCustomer(tenantID, uuid.New(), CustomerDetails{Name: "Acme", Address: valueobject.Address{Street: "Ring 1"}})
		assert.Error(t, err)
	})
}

func TestCustomerStatus(t *testing.T) {
	customer, err := NewCustomer(uuid.New(), uuid.New(), CustomerDetails{Name: "Acme"})
	require.NoError(t, err)

	assert.Error(t, customer.Activate())
	require.NoError(t, customer.Deactivate())
	assert.False(t, customer.IsActive)
	assert.Error(t, customer.Deactivate())
	require.NoError(t, customer.Activate())
	assert.Equal(t, 3, customer.Version)
}

func TestCustomerSnapshot(t *testing.T) {
	customer, err := NewCustomer(uuid.New(), uuid.New(), CustomerDetails{Name: "Acme", Email: "a@acme.at"})
	require.NoError(t, err)

	snap := customer.Snapshot(30)
	assert.Equal(t, customer.ID, snap.CustomerID)
	assert.Equal(t, 30, snap.PaymentTermsDays)

	require.NoError(t, customer.Update(CustomerDetails{Name: "Acme AG", PaymentTermsDays: intPtr(7)}))
	assert.Equal(t, 7, customer.Snapshot(30).PaymentTermsDays)
	assert.Equal(t, "Acme", snap.Name, "earlier snapshot is a copy")
}

func TestCompanyProfile(t *testing.T) {
	details := CompanyDetails{
		Name:             "BOTFORCE GmbH",
		IBAN:             "at61 1904 3002 3457 3201",
		BIC:              "bkauatww",
		InvoicePrefix:    "re",
		CreditNotePrefix: "gs",
	}

	t.Run("normalizes banking data", func(t *testing.T) {
		p, err := NewCompanyProfile(uuid.New(), uuid.New(), details)
		require.NoError(t, err)
		assert.Equal(t, "AT611904300234573201", p.IBAN)
		assert.Equal(t, "BKAUATWW", p.BIC)
		assert.Equal(t, DefaultPaymentTermsDays, p.DefaultPaymentTermsDays)
		assert.Equal(t, "AT611904300234573201", p.Snapshot().IBAN)
	})

	t.Run("prefixes override fallback", func(t *testing.T) {
		p, err := NewCompanyProfile(uuid.New(), uuid.New(), details)
		require.NoError(t, err)
		prefixes := p.Prefixes(invoicing.NumberPrefixes{Invoice: "INV", CreditNote: "CN"})
		assert.Equal(t, "RE", prefixes.For(invoicing.DocumentTypeInvoice))
		assert.Equal(t, "GS", prefixes.For(invoicing.DocumentTypeCreditNote))

		var missing *CompanyProfile
		assert.Equal(t, "INV", missing.Prefixes(invoicing.NumberPrefixes{}).For(invoicing.DocumentTypeInvoice))
	})

	t.Run("rejects identical prefixes", func(t *testing.T) {
		d := details
		d.CreditNotePrefix = "RE"
		_, err := NewCompanyProfile(uuid.New(), uuid.New(), d)
		assert.Error(t, err)
	})

	t.Run("rejects bad iban", func(t *testing.T) {
		d := details
		d.IBAN = "12345"
		_, err := NewCompanyProfile(uuid.New(), uuid.New(), d)
		assert.Error(t, err)
	})

	t.Run("update terms", func(t *testing.T) {
		p, err := NewCompanyProfile(uuid.New(), uuid.New(), details)
		require.NoError(t, err)
		d := details
		d.DefaultPaymentTermsDays = intPtr(30)
		require.NoError(t, p.Update(d))
		assert.Equal(t, 30, p.DefaultPaymentTermsDays)
	})
}
