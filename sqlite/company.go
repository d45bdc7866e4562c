package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/stefanoamorelli/ariregister"
)

// Compile-time interface verification.
var _ ariregister.Source = (*CompanyService)(nil)

// CompanyService implements ariregister.CompanyService over a populated
// store. It is the first and most trusted resolver tier. All queries are
// parameterized; user input is never concatenated into query text.
type CompanyService struct {
	db *DB
}

// NewCompanyService creates a new CompanyService.
func NewCompanyService(db *DB) *CompanyService {
	return &CompanyService{db: db}
}

// Name identifies this tier in availability reports.
func (s *CompanyService) Name() string {
	return "store"
}

// Check reports whether the store is present and non-empty.
func (s *CompanyService) Check(ctx context.Context) error {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM companies").Scan(&n); err != nil {
		return ariregister.Errorf(ariregister.EUNAVAILABLE, "store not readable: %v", err)
	}
	if n == 0 {
		return ariregister.Errorf(ariregister.EUNAVAILABLE, "store is empty; run an import first")
	}
	return nil
}

// detailColumns is the joined column list shared by search and detail
// queries.
const detailColumns = `
	c.registry_code, c.name, c.status, c.status_text, c.legal_form, c.vat_number,
	c.address, c.normalized_address, c.postal_code, c.first_registered,
	g.registry_code, g.email, g.phone, g.capital, g.capital_currency,
	g.activity_code, g.activity_text, g.raw, g.raw_hash`

// scanDetails scans one joined (company, general_data) row. The general
// columns come from a LEFT JOIN and may all be NULL.
func scanDetails(scan func(dest ...any) error) (*ariregister.CompanyDetails, error) {
	var d ariregister.CompanyDetails
	var gCode, gEmail, gPhone, gCapital, gCurrency, gActCode, gActText, gRaw, gHash sql.NullString

	err := scan(
		&d.RegistryCode, &d.Name, &d.Status, &d.StatusText, &d.LegalForm, &d.VATNumber,
		&d.Address, &d.NormalizedAddress, &d.PostalCode, &d.FirstRegistered,
		&gCode, &gEmail, &gPhone, &gCapital, &gCurrency, &gActCode, &gActText, &gRaw, &gHash,
	)
	if err != nil {
		return nil, err
	}

	if gCode.Valid {
		d.General = &ariregister.GeneralData{
			RegistryCode:    gCode.String,
			Email:           gEmail.String,
			Phone:           gPhone.String,
			Capital:         gCapital.String,
			CapitalCurrency: gCurrency.String,
			ActivityCode:    gActCode.String,
			ActivityText:    gActText.String,
			Raw:             gRaw.String,
			RawHash:         gHash.String,
		}
	}
	return &d, nil
}

// SearchCompanies retrieves companies matching the filter.
func (s *CompanyService) SearchCompanies(ctx context.Context, filter ariregister.CompanyFilter) ([]*ariregister.CompanyDetails, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	var query strings.Builder
	var args []any

	query.WriteString("SELECT" + detailColumns + `
		FROM companies c
		LEFT JOIN general_data g ON g.registry_code = c.registry_code
		WHERE 1=1`)

	if filter.RegistryCode != nil {
		query.WriteString(" AND c.registry_code = ?")
		args = append(args, *filter.RegistryCode)
	}
	if filter.Name != nil {
		query.WriteString(" AND c.name LIKE '%' || ? || '%'")
		args = append(args, *filter.Name)
	}
	if filter.Address != nil {
		query.WriteString(" AND (c.address LIKE '%' || ? || '%' OR c.normalized_address LIKE '%' || ? || '%')")
		args = append(args, *filter.Address, *filter.Address)
	}
	if filter.Query != nil {
		query.WriteString(" AND (c.name LIKE '%' || ? || '%' OR c.address LIKE '%' || ? || '%' OR c.registry_code LIKE '%' || ? || '%')")
		args = append(args, *filter.Query, *filter.Query, *filter.Query)
	}

	query.WriteString(" ORDER BY c.name LIMIT ?")
	args = append(args, filter.EffectiveLimit())

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []*ariregister.CompanyDetails{}
	for rows.Next() {
		d, err := scanDetails(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, d)
	}

	return results, rows.Err()
}

// FindCompanyByCode retrieves one company with its supplementary
// attributes.
func (s *CompanyService) FindCompanyByCode(ctx context.Context, code string) (*ariregister.CompanyDetails, error) {
	if code == "" {
		return nil, ariregister.Errorf(ariregister.EINVALID, "registry code required")
	}

	row := s.db.QueryRowContext(ctx, "SELECT"+detailColumns+`
		FROM companies c
		LEFT JOIN general_data g ON g.registry_code = c.registry_code
		WHERE c.registry_code = ?`, code)

	d, err := scanDetails(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ariregister.Errorf(ariregister.ENOTFOUND, "company %q not found", code)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// FindPersonsByCompany retrieves all child rows for a company, most
// recent tenure first.
func (s *CompanyService) FindPersonsByCompany(ctx context.Context, code string) ([]*ariregister.Person, error) {
	if code == "" {
		return nil, ariregister.Errorf(ariregister.EINVALID, "registry code required")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT registry_code, kind, position, first_name, last_name, full_name,
			role, role_text, start_date, end_date, email
		FROM persons
		WHERE registry_code = ?
		ORDER BY start_date DESC
	`, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPersons(rows)
}

// SearchPersonsByName retrieves (person, company) pairs whose derived
// full name contains the substring. The inner join is the query-time
// enforcement of the soft parent reference: dangling children never
// surface here.
func (s *CompanyService) SearchPersonsByName(ctx context.Context, name string) ([]*ariregister.PersonAffiliation, error) {
	if name == "" {
		return nil, ariregister.Errorf(ariregister.EINVALID, "person name required")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.registry_code, p.kind, p.position, p.first_name, p.last_name, p.full_name,
			p.role, p.role_text, p.start_date, p.end_date, p.email,
			c.name, c.status_text
		FROM persons p
		JOIN companies c ON c.registry_code = p.registry_code
		WHERE p.full_name LIKE '%' || ? || '%'
		ORDER BY p.start_date DESC
	`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []*ariregister.PersonAffiliation{}
	for rows.Next() {
		var a ariregister.PersonAffiliation
		var kind string
		if err := rows.Scan(
			&a.RegistryCode, &kind, &a.Position, &a.FirstName, &a.LastName, &a.FullName,
			&a.Role, &a.RoleText, &a.StartDate, &a.EndDate, &a.Email,
			&a.CompanyName, &a.CompanyStatus,
		); err != nil {
			return nil, err
		}
		a.Kind = ariregister.PersonKind(kind)
		results = append(results, &a)
	}

	return results, rows.Err()
}

// Stats reports totals per table and grouped company counts, computed by
// the engine with grouped counting queries rather than application-side
// scans.
func (s *CompanyService) Stats(ctx context.Context) (*ariregister.RegistryStats, error) {
	stats := &ariregister.RegistryStats{
		ByStatus:    map[string]int{},
		ByLegalForm: map[string]int{},
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM companies").Scan(&stats.Companies); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM persons").Scan(&stats.Persons); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM general_data").Scan(&stats.GeneralData); err != nil {
		return nil, err
	}

	for _, g := range []struct {
		column string
		into   map[string]int
	}{
		{"status", stats.ByStatus},
		{"legal_form", stats.ByLegalForm},
	} {
		rows, err := s.db.QueryContext(ctx,
			"SELECT "+g.column+", COUNT(*) FROM companies GROUP BY "+g.column)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var key string
			var n int
			if err := rows.Scan(&key, &n); err != nil {
				rows.Close()
				return nil, err
			}
			g.into[key] = n
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}

	return stats, nil
}

// scanPersons scans person rows into domain records.
func scanPersons(rows *sql.Rows) ([]*ariregister.Person, error) {
	results := []*ariregister.Person{}
	for rows.Next() {
		var p ariregister.Person
		var kind string
		if err := rows.Scan(
			&p.RegistryCode, &kind, &p.Position, &p.FirstName, &p.LastName, &p.FullName,
			&p.Role, &p.RoleText, &p.StartDate, &p.EndDate, &p.Email,
		); err != nil {
			return nil, err
		}
		p.Kind = ariregister.PersonKind(kind)
		results = append(results, &p)
	}
	return results, rows.Err()
}
