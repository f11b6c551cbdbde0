package partner

import (
	"context"
	"errors"

	"github.com/botforce/unity/internal/domain/partner"
	"github.com/botforce/unity/internal/domain/shared"
	"github.com/google/uuid"
)

// CompanyProfileService manages the issuing company of a tenant
type CompanyProfileService struct {
	profileRepo  partner.CompanyProfileRepository
	defaultTerms int
}

// NewCompanyProfileService creates a new CompanyProfileService. defaultTerms
// seeds new profiles that do not set their own payment terms; zero keeps the
// built-in default.
func NewCompanyProfileService(profileRepo partner.CompanyProfileRepository, defaultTerms int) *CompanyProfileService {
	return &CompanyProfileService{profileRepo: profileRepo, defaultTerms: defaultTerms}
}

// Get returns the tenant's company profile
func (s *CompanyProfileService) Get(ctx context.Context, tenantID uuid.UUID) (*CompanyProfileResponse, error) {
	profile, err := s.profileRepo.FindForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	response := ToCompanyProfileResponse(profile)
	return &response, nil
}

// Upsert creates the profile on first use and replaces it afterwards
func (s *CompanyProfileService) Upsert(ctx context.Context, tenantID, userID uuid.UUID, req CompanyProfileRequest) (*CompanyProfileResponse, error) {
	profile, err := s.profileRepo.FindForTenant(ctx, tenantID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		details := req.details()
		if details.DefaultPaymentTermsDays == nil && s.defaultTerms > 0 {
			terms := s.defaultTerms
			details.DefaultPaymentTermsDays = &terms
		}
		profile, err = partner.NewCompanyProfile(tenantID, userID, details)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := profile.Update(req.details()); err != nil {
			return nil, err
		}
	}

	if err := s.profileRepo.Save(ctx, profile); err != nil {
		return nil, err
	}

	response := ToCompanyProfileResponse(profile)
	return &response, nil
}
