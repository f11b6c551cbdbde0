package invoicing

import (
	"github.com/botforce/unity/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// CustomerSnapshot freezes the billed customer's data at issuance
type CustomerSnapshot struct {
	CustomerID       uuid.UUID           `json:"customer_id"`
	Name             string              `json:"name"`
	Email            string              `json:"email,omitempty"`
	VATID            string              `json:"vat_id,omitempty"`
	Address          valueobject.Address `json:"address"`
	PaymentTermsDays int                 `json:"payment_terms_days"`
}

// CompanySnapshot freezes the issuing company's data at issuance
type CompanySnapshot struct {
	Name    string              `json:"name"`
	Email   string              `json:"email,omitempty"`
	VATID   string              `json:"vat_id,omitempty"`
	IBAN    string              `json:"iban,omitempty"`
	BIC     string              `json:"bic,omitempty"`
	Address valueobject.Address `json:"address"`
}
