package ariregister

import "context"

// Company represents one registered organization as it appears in the
// company master dump. RegistryCode is the primary key and is immutable
// once imported.
type Company struct {
	RegistryCode      string `json:"registryCode"`
	Name              string `json:"name"`
	Status            string `json:"status"`
	StatusText        string `json:"statusText"`
	LegalForm         string `json:"legalForm"`
	VATNumber         string `json:"vatNumber"`
	Address           string `json:"address"`
	NormalizedAddress string `json:"normalizedAddress"`
	PostalCode        string `json:"postalCode"`
	FirstRegistered   string `json:"firstRegistered"`
}

// Validate returns an error if the company contains invalid fields.
func (c *Company) Validate() error {
	if c.RegistryCode == "" {
		return Errorf(EINVALID, "company registry code required")
	}
	if c.Name == "" {
		return Errorf(EINVALID, "company name required")
	}
	return nil
}

// GeneralData carries the supplementary attributes sourced from the
// general-data JSON dump. Fields not modeled here are retained verbatim
// in Raw so nothing from the dump is lost.
type GeneralData struct {
	RegistryCode    string `json:"registryCode"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Capital         string `json:"capital"`
	CapitalCurrency string `json:"capitalCurrency"`
	ActivityCode    string `json:"activityCode"`
	ActivityText    string `json:"activityText"`
	Raw             string `json:"raw"`
	RawHash         string `json:"rawHash"`
}

// Validate returns an error if the record contains invalid fields.
func (g *GeneralData) Validate() error {
	if g.RegistryCode == "" {
		return Errorf(EINVALID, "general data registry code required")
	}
	return nil
}

// CompanyDetails is a company joined with whatever supplementary
// attributes the answering source had available. General is nil when the
// source could not provide it; sources never fail a query over a missing
// secondary dump.
type CompanyDetails struct {
	Company
	General *GeneralData `json:"general,omitempty"`
}

// DefaultSearchLimit bounds search results when the caller does not ask
// for a limit. MaxSearchLimit is the hard cap regardless of the caller.
const (
	DefaultSearchLimit = 100
	MaxSearchLimit     = 100
)

// CompanyFilter represents search criteria for SearchCompanies. Criteria
// combine with AND; an unmatched combination yields an empty result, not
// an error. All substring matches are case-insensitive.
type CompanyFilter struct {
	// Exact registry code.
	RegistryCode *string `json:"registryCode"`
	// Substring of the company name.
	Name *string `json:"name"`
	// Substring of the free-text or normalized address.
	Address *string `json:"address"`
	// Free text matched against name, address and registry code.
	Query *string `json:"query"`

	Limit int `json:"limit"`
}

// Validate returns an error if the filter contains invalid fields.
func (f *CompanyFilter) Validate() error {
	if f.Limit < 0 {
		return Errorf(EINVALID, "search limit must not be negative")
	}
	if f.RegistryCode == nil && f.Name == nil && f.Address == nil && f.Query == nil {
		return Errorf(EINVALID, "at least one search criterion required")
	}
	return nil
}

// EffectiveLimit returns the bounded result limit for the filter.
func (f *CompanyFilter) EffectiveLimit() int {
	if f.Limit <= 0 {
		return DefaultSearchLimit
	}
	if f.Limit > MaxSearchLimit {
		return MaxSearchLimit
	}
	return f.Limit
}

// RegistryStats reports per-table totals and grouped company counts.
type RegistryStats struct {
	Companies   int            `json:"companies"`
	Persons     int            `json:"persons"`
	GeneralData int            `json:"generalData"`
	ByStatus    map[string]int `json:"byStatus"`
	ByLegalForm map[string]int `json:"byLegalForm"`
}

// CompanyService is the query surface shared by every data tier.
type CompanyService interface {
	// SearchCompanies retrieves companies matching the filter, joined
	// with available supplementary attributes. Returns an empty slice
	// when nothing matches.
	SearchCompanies(ctx context.Context, filter CompanyFilter) ([]*CompanyDetails, error)

	// FindCompanyByCode retrieves one company with its supplementary
	// attributes. Returns ENOTFOUND if the code is absent.
	FindCompanyByCode(ctx context.Context, code string) (*CompanyDetails, error)

	// FindPersonsByCompany retrieves all affiliated-person rows for a
	// company, most recent tenure first. Returns an empty slice, not an
	// error, when none exist.
	FindPersonsByCompany(ctx context.Context, code string) ([]*Person, error)

	// SearchPersonsByName retrieves (person, company) pairs whose derived
	// full name contains the given substring, most recent tenure first.
	SearchPersonsByName(ctx context.Context, name string) ([]*PersonAffiliation, error)

	// Stats reports totals per table and grouped company counts.
	Stats(ctx context.Context) (*RegistryStats, error)
}

// Source is a CompanyService tier the resolver can probe and order.
type Source interface {
	CompanyService

	// Name identifies the tier in availability reports and errors.
	Name() string

	// Check reports whether the source can currently answer queries.
	// Returns nil when usable, EUNAVAILABLE with a reason otherwise.
	Check(ctx context.Context) error
}

// SourceStatus reports the availability of one tier.
type SourceStatus struct {
	Source    string `json:"source"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// Availability is the per-source availability report exposed by the
// resolver so callers can explain degraded results.
type Availability struct {
	Sources []SourceStatus `json:"sources"`
}
