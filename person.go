package ariregister

import "strings"

// PersonKind distinguishes which nested dump a child row came from.
type PersonKind string

// PersonKind values, one per JSON person dump.
const (
	KindBoardMember     PersonKind = "board_member"
	KindShareholder     PersonKind = "shareholder"
	KindBeneficialOwner PersonKind = "beneficial_owner"
)

// Person represents an affiliated-person child row: a person or
// organization linked to a company in a specific role over a time range.
// RegistryCode is a soft reference to the owning company; children may be
// imported before their parents, so it is enforced by query-time joins,
// not a hard constraint.
type Person struct {
	RegistryCode string     `json:"registryCode"`
	Kind         PersonKind `json:"kind"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	// FullName is derived from FirstName and LastName at write time and
	// is never independently mutated.
	FullName  string `json:"fullName"`
	Role      string `json:"role"`
	RoleText  string `json:"roleText"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Email     string `json:"email"`
	// Position is the row's index inside the parent's nested array. It
	// makes re-imports idempotent: (registry code, kind, position)
	// identifies a row across runs.
	Position int `json:"position"`
}

// Validate returns an error if the person contains invalid fields.
func (p *Person) Validate() error {
	if p.RegistryCode == "" {
		return Errorf(EINVALID, "person registry code required")
	}
	if p.Kind == "" {
		return Errorf(EINVALID, "person kind required")
	}
	if p.FirstName == "" && p.LastName == "" {
		return Errorf(EINVALID, "person name required")
	}
	return nil
}

// JoinName derives a full name from its parts with a single separating
// space. Organizations appear with an empty first name, in which case
// the result is just the last/business name.
func JoinName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

// PersonAffiliation pairs a person row with the display name and status
// of the owning company, for person-name search results.
type PersonAffiliation struct {
	Person
	CompanyName   string `json:"companyName"`
	CompanyStatus string `json:"companyStatus"`
}
