package valueobject

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultCountry is assumed when an address omits its country
const DefaultCountry = "AT"

var countryPattern = regexp.MustCompile(`^[A-Z]{2}$`)

// Address is a postal address. It is stored as plain columns on customers and
// company profiles and copied verbatim into document snapshots.
type Address struct {
	Street     string `json:"street"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Country    string `json:"country"`
}

// NewAddress trims and validates an address. All fields are optional except
// that a postal code or street requires a city.
func NewAddress(street, postalCode, city, country string) (Address, error) {
	addr := Address{
		Street:     strings.TrimSpace(street),
		PostalCode: strings.TrimSpace(postalCode),
		City:       strings.TrimSpace(city),
		Country:    strings.ToUpper(strings.TrimSpace(country)),
	}
	if addr.Country == "" {
		addr.Country = DefaultCountry
	}
	if err := addr.Validate(); err != nil {
		return Address{}, err
	}
	return addr, nil
}

// Validate checks field lengths and the country code
func (a Address) Validate() error {
	if len(a.Street) > 200 {
		return fmt.Errorf("street cannot exceed 200 characters")
	}
	if len(a.PostalCode) > 20 {
		return fmt.Errorf("postal code cannot exceed 20 characters")
	}
	if len(a.City) > 100 {
		return fmt.Errorf("city cannot exceed 100 characters")
	}
	if (a.Street != "" || a.PostalCode != "") && a.City == "" {
		return fmt.Errorf("city is required when street or postal code is set")
	}
	if a.Country != "" && !countryPattern.MatchString(a.Country) {
		return fmt.Errorf("country must be a two-letter ISO code, got %q", a.Country)
	}
	return nil
}

// IsZero reports whether no address line is set
func (a Address) IsZero() bool {
	return a.Street == "" && a.PostalCode == "" && a.City == ""
}

// Lines returns the address as printable lines
func (a Address) Lines() []string {
	lines := make([]string, 0, 3)
	if a.Street != "" {
		lines = append(lines, a.Street)
	}
	if locality := strings.TrimSpace(a.PostalCode + " " + a.City); locality != "" {
		lines = append(lines, locality)
	}
	if a.Country != "" && a.Country != DefaultCountry {
		lines = append(lines, a.Country)
	}
	return lines
}

// String returns a single-line representation
func (a Address) String() string {
	return strings.Join(a.Lines(), ", ")
}
