package sqlite

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/stefanoamorelli/ariregister"
)

// DefaultBatchSize is the number of records committed per transaction.
// Batching amortizes the synchronous commit cost over many rows.
const DefaultBatchSize = 1000

// Compile-time interface verification.
var _ ariregister.RegistryWriter = (*Writer)(nil)

// Writer implements ariregister.RegistryWriter using batched explicit
// transactions with prepared statements. Add calls are synchronous: a
// streaming parser feeding the writer blocks while a batch commit is in
// flight, which is the backpressure that keeps imports bounded in
// memory.
//
// Companies and general data use INSERT OR REPLACE (re-imports refresh
// attribute values); persons use INSERT OR IGNORE (re-imports of
// previously seen rows are no-ops). Rows are never deleted here: stale
// records are shed by building into a fresh store file and swapping.
type Writer struct {
	db        *DB
	batchSize int
	progress  func(written int)

	tx          *sql.Tx
	stmtCompany *sql.Stmt
	stmtPerson  *sql.Stmt
	stmtGeneral *sql.Stmt
	pending     int
	written     int
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithBatchSize overrides the per-transaction batch size.
func WithBatchSize(n int) WriterOption {
	return func(w *Writer) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

// WithProgress registers an advisory progress callback invoked after
// each committed batch with the total records written so far. It never
// affects correctness.
func WithProgress(fn func(written int)) WriterOption {
	return func(w *Writer) {
		w.progress = fn
	}
}

// NewWriter creates a batch writer over an open DB.
func NewWriter(db *DB, opts ...WriterOption) *Writer {
	w := &Writer{
		db:        db,
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Written returns the total number of records written so far.
func (w *Writer) Written() int {
	return w.written
}

// hashPayload computes xxHash of a raw payload and returns a hex string.
func hashPayload(payload string) string {
	h := xxhash.Sum64String(payload)
	b := make([]byte, 8)
	b[0] = byte(h >> 56)
	b[1] = byte(h >> 48)
	b[2] = byte(h >> 40)
	b[3] = byte(h >> 32)
	b[4] = byte(h >> 24)
	b[5] = byte(h >> 16)
	b[6] = byte(h >> 8)
	b[7] = byte(h)
	return hex.EncodeToString(b)
}

// AddCompany upserts a company row.
func (w *Writer) AddCompany(ctx context.Context, company *ariregister.Company) error {
	if err := company.Validate(); err != nil {
		return err
	}
	if err := w.begin(ctx); err != nil {
		return err
	}

	_, err := w.stmtCompany.ExecContext(ctx,
		company.RegistryCode, company.Name, company.Status, company.StatusText,
		company.LegalForm, company.VATNumber, company.Address,
		company.NormalizedAddress, company.PostalCode, company.FirstRegistered)
	if err != nil {
		return fmt.Errorf("insert company %s: %w", company.RegistryCode, err)
	}

	return w.bump(ctx)
}

// AddPerson inserts a child row. The full_name column is a generated
// column recomputed by the engine; FullName is set on the struct as well
// so the in-memory record matches what lands on disk.
func (w *Writer) AddPerson(ctx context.Context, person *ariregister.Person) error {
	if err := person.Validate(); err != nil {
		return err
	}
	if err := w.begin(ctx); err != nil {
		return err
	}

	person.FullName = ariregister.JoinName(person.FirstName, person.LastName)

	_, err := w.stmtPerson.ExecContext(ctx,
		person.RegistryCode, string(person.Kind), person.Position,
		person.FirstName, person.LastName, person.Role, person.RoleText,
		person.StartDate, person.EndDate, person.Email)
	if err != nil {
		return fmt.Errorf("insert person for %s: %w", person.RegistryCode, err)
	}

	return w.bump(ctx)
}

// AddGeneralData upserts a supplementary-attributes row. The raw payload
// hash is recomputed here so it always reflects the stored payload.
func (w *Writer) AddGeneralData(ctx context.Context, data *ariregister.GeneralData) error {
	if err := data.Validate(); err != nil {
		return err
	}
	if err := w.begin(ctx); err != nil {
		return err
	}

	data.RawHash = hashPayload(data.Raw)

	_, err := w.stmtGeneral.ExecContext(ctx,
		data.RegistryCode, data.Email, data.Phone, data.Capital,
		data.CapitalCurrency, data.ActivityCode, data.ActivityText,
		data.Raw, data.RawHash)
	if err != nil {
		return fmt.Errorf("insert general data for %s: %w", data.RegistryCode, err)
	}

	return w.bump(ctx)
}

// Flush commits any buffered records. Safe to call when nothing is
// pending.
func (w *Writer) Flush(ctx context.Context) error {
	if w.tx == nil {
		return nil
	}
	return w.commit()
}

// begin lazily opens a transaction and prepares the insert statements.
func (w *Writer) begin(ctx context.Context) error {
	if w.tx != nil {
		return nil
	}

	tx, err := w.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}

	stmtCompany, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO companies (registry_code, name, status, status_text,
			legal_form, vat_number, address, normalized_address, postal_code, first_registered)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	stmtPerson, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO persons (registry_code, kind, position,
			first_name, last_name, role, role_text, start_date, end_date, email)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		_ = stmtCompany.Close()
		_ = tx.Rollback()
		return err
	}

	stmtGeneral, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO general_data (registry_code, email, phone, capital,
			capital_currency, activity_code, activity_text, raw, raw_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		_ = stmtCompany.Close()
		_ = stmtPerson.Close()
		_ = tx.Rollback()
		return err
	}

	w.tx = tx
	w.stmtCompany = stmtCompany
	w.stmtPerson = stmtPerson
	w.stmtGeneral = stmtGeneral
	return nil
}

// bump counts a written record and commits the batch when full.
func (w *Writer) bump(ctx context.Context) error {
	w.pending++
	w.written++
	if w.pending < w.batchSize {
		return nil
	}
	if err := w.commit(); err != nil {
		return err
	}
	if w.progress != nil {
		w.progress(w.written)
	}
	return nil
}

// commit closes the prepared statements and commits the transaction.
func (w *Writer) commit() error {
	_ = w.stmtCompany.Close()
	_ = w.stmtPerson.Close()
	_ = w.stmtGeneral.Close()
	w.stmtCompany, w.stmtPerson, w.stmtGeneral = nil, nil, nil

	err := w.tx.Commit()
	w.tx = nil
	w.pending = 0
	if err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}
