package ariregister

import (
	"context"
	"time"
)

// RegistryWriter persists parsed records during a bulk-load pass.
// Implementations buffer and commit in batches; Add calls are
// synchronous so a streaming parser cannot race ahead of disk writes.
type RegistryWriter interface {
	// AddCompany upserts a company row (last write wins on re-import).
	AddCompany(ctx context.Context, company *Company) error

	// AddPerson inserts a child row, ignoring rows already present from
	// a previous import of the same dump.
	AddPerson(ctx context.Context, person *Person) error

	// AddGeneralData upserts a supplementary-attributes row.
	AddGeneralData(ctx context.Context, data *GeneralData) error

	// Flush commits any buffered records.
	Flush(ctx context.Context) error
}

// ImportReport summarizes one importer pass over one source file.
// Malformed rows are recovered locally and surface only here.
type ImportReport struct {
	RunID    string        `json:"runId"`
	Source   string        `json:"source"`
	Records  int           `json:"records"`
	Skipped  int           `json:"skipped"`
	Dangling int           `json:"dangling"`
	Duration time.Duration `json:"duration"`
}
