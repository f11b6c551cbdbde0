package models

import (
	"github.com/botforce/unity/internal/domain/partner"
	"github.com/botforce/unity/internal/domain/shared/valueobject"
)

// CustomerModel is the persistence model for the Customer aggregate root.
type CustomerModel struct {
	TenantAggregateModel
	Name             string `gorm:"type:varchar(200);not null;index"`
	Email            string `gorm:"type:varchar(200)"`
	Street           string `gorm:"type:varchar(200)"`
	PostalCode       string `gorm:"type:varchar(20)"`
	City             string `gorm:"type:varchar(100)"`
	Country          string `gorm:"type:char(2);not null;default:'AT'"`
	VATID            string `gorm:"column:vat_id;type:varchar(20)"`
	PaymentTermsDays *int
	IsActive         bool `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer
func (m *CustomerModel) ToDomain() *partner.Customer {
	c := &partner.Customer{
		Name:  m.Name,
		Email: m.Email,
		Address: valueobject.Address{
			Street:     m.Street,
			PostalCode: m.PostalCode,
			City:       m.City,
			Country:    m.Country,
		},
		VATID:            m.VATID,
		PaymentTermsDays: m.PaymentTermsDays,
		IsActive:         m.IsActive,
	}
	m.PopulateTenantAggregateRoot(&c.TenantAggregateRoot)
	return c
}

// FromDomain populates the persistence model from a domain Customer
func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.Name = c.Name
	m.Email = c.Email
	m.Street = c.Address.Street
	m.PostalCode = c.Address.PostalCode
	m.City = c.Address.City
	m.Country = c.Address.Country
	m.VATID = c.VATID
	m.PaymentTermsDays = c.PaymentTermsDays
	m.IsActive = c.IsActive
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}

// CompanyProfileModel is the persistence model for the tenant's company profile.
type CompanyProfileModel struct {
	TenantAggregateModel
	Name                    string `gorm:"type:varchar(200);not null"`
	Email                   string `gorm:"type:varchar(200)"`
	Street                  string `gorm:"type:varchar(200)"`
	PostalCode              string `gorm:"type:varchar(20)"`
	City                    string `gorm:"type:varchar(100)"`
	Country                 string `gorm:"type:char(2);not null;default:'AT'"`
	VATID                   string `gorm:"column:vat_id;type:varchar(20)"`
	IBAN                    string `gorm:"column:iban;type:varchar(34)"`
	BIC                     string `gorm:"column:bic;type:varchar(11)"`
	InvoicePrefix           string `gorm:"type:varchar(10)"`
	CreditNotePrefix        string `gorm:"type:varchar(10)"`
	DefaultPaymentTermsDays int    `gorm:"not null;default:14"`
}

// TableName returns the table name for GORM
func (CompanyProfileModel) TableName() string {
	return "company_profiles"
}

// ToDomain converts the persistence model to a domain CompanyProfile
func (m *CompanyProfileModel) ToDomain() *partner.CompanyProfile {
	p := &partner.CompanyProfile{
		Name:  m.Name,
		Email: m.Email,
		Address: valueobject.Address{
			Street:     m.Street,
			PostalCode: m.PostalCode,
			City:       m.City,
			Country:    m.Country,
		},
		VATID:                   m.VATID,
		IBAN:                    m.IBAN,
		BIC:                     m.BIC,
		InvoicePrefix:           m.InvoicePrefix,
		CreditNotePrefix:        m.CreditNotePrefix,
		DefaultPaymentTermsDays: m.DefaultPaymentTermsDays,
	}
	m.PopulateTenantAggregateRoot(&p.TenantAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain CompanyProfile
func (m *CompanyProfileModel) FromDomain(p *partner.CompanyProfile) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.Name = p.Name
	m.Email = p.Email
	m.Street = p.Address.Street
	m.PostalCode = p.Address.PostalCode
	m.City = p.Address.City
	m.Country = p.Address.Country
	m.VATID = p.VATID
	m.IBAN = p.IBAN
	m.BIC = p.BIC
	m.InvoicePrefix = p.InvoicePrefix
	m.CreditNotePrefix = p.CreditNotePrefix
	m.DefaultPaymentTermsDays = p.DefaultPaymentTermsDays
}

// CompanyProfileModelFromDomain creates a new persistence model from a domain CompanyProfile
func CompanyProfileModelFromDomain(p *partner.CompanyProfile) *CompanyProfileModel {
	m := &CompanyProfileModel{}
	m.FromDomain(p)
	return m
}
