package partner

import (
	"context"
	"testing"

	"github.com/botforce/unity/internal/domain/partner"
	"github.com/botforce/unity/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCompanyProfileRepository struct {
	mock.Mock
}

func (m *MockCompanyProfileRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID) (*partner.CompanyProfile, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.CompanyProfile), args.Error(1)
}

func (m *MockCompanyProfileRepository) Save(ctx context.Context, profile *partner.CompanyProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func TestCompanyProfileService_Upsert_CreatesOnFirstUse(t *testing.T) {
	repo := new(MockCompanyProfileRepository)
	service := NewCompanyProfileService(repo, 0)

	ctx := context.Background()
	tenantID := uuid.New()
	repo.On("FindForTenant", ctx, tenantID).Return(nil, shared.ErrNotFound)
	repo.On("Save", ctx, mock.AnythingOfType("*partner.CompanyProfile")).Return(nil)

	result, err := service.Upsert(ctx, tenantID, uuid.New(), CompanyProfileRequest{
		Name:          "BOTFORCE GmbH",
		IBAN:          "AT61 1904 3002 3457 3201",
		InvoicePrefix: "re",
	})

	require.NoError(t, err)
	assert.Equal(t, "BOTFORCE GmbH", result.Name)
	assert.Equal(t, "AT611904300234573201", result.IBAN)
	assert.Equal(t, "RE", result.InvoicePrefix)
	assert.Equal(t, partner.DefaultPaymentTermsDays, result.DefaultPaymentTermsDays)
	repo.AssertExpectations(t)
}

func TestCompanyProfileService_Upsert_SeedsConfiguredTerms(t *testing.T) {
	repo := new(MockCompanyProfileRepository)
	service := NewCompanyProfileService(repo, 30)

	ctx := context.Background()
	tenantID := uuid.New()
	repo.On("FindForTenant", ctx, tenantID).Return(nil, shared.ErrNotFound)
	repo.On("Save", ctx, mock.AnythingOfType("*partner.CompanyProfile")).Return(nil)

	result, err := service.Upsert(ctx, tenantID, uuid.New(), CompanyProfileRequest{Name: "BOTFORCE GmbH"})

	require.NoError(t, err)
	assert.Equal(t, 30, result.DefaultPaymentTermsDays)
}

func TestCompanyProfileService_Upsert_UpdatesExisting(t *testing.T) {
	repo := new(MockCompanyProfileRepository)
	service := NewCompanyProfileService(repo, 0)

	ctx := context.Background()
	tenantID := uuid.New()
	existing, err := partner.NewCompanyProfile(tenantID, uuid.New(), partner.CompanyDetails{Name: "Old Name"})
	require.NoError(t, err)

	repo.On("FindForTenant", ctx, tenantID).Return(existing, nil)
	repo.On("Save", ctx, existing).Return(nil)

	terms := 30
	result, err := service.Upsert(ctx, tenantID, uuid.New(), CompanyProfileRequest{Name: "New Name", DefaultPaymentTermsDays: &terms})

	require.NoError(t, err)
	assert.Equal(t, existing.ID, result.ID)
	assert.Equal(t, "New Name", result.Name)
	assert.Equal(t, 30, result.DefaultPaymentTermsDays)
}

func TestCompanyProfileService_Upsert_RejectsEqualPrefixes(t *testing.T) {
	repo := new(MockCompanyProfileRepository)
	service := NewCompanyProfileService(repo, 0)

	ctx := context.Background()
	tenantID := uuid.New()
	repo.On("FindForTenant", ctx, tenantID).Return(nil, shared.ErrNotFound)

	_, err := service.Upsert(ctx, tenantID, uuid.New(), CompanyProfileRequest{
		Name:             "BOTFORCE GmbH",
		InvoicePrefix:    "RE",
		CreditNotePrefix: "re",
	})

	assert.Error(t, err)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCompanyProfileService_Get_NotFound(t *testing.T) {
	repo := new(MockCompanyProfileRepository)
	service := NewCompanyProfileService(repo, 0)

	ctx := context.Background()
	tenantID := uuid.New()
	repo.On("FindForTenant", ctx, tenantID).Return(nil, shared.ErrNotFound)

	_, err := service.Get(ctx, tenantID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
