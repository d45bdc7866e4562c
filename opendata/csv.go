// Package opendata parses the e-Business Register open-data dump files:
// the semicolon-delimited company master file and the JSON array dumps
// of nested person and general-data records. It also provides the
// file-backed fallback client that answers queries directly from those
// files when no populated store exists.
//
// All parsing here is streaming: dump files reach multiple gigabytes
// and are never materialized in memory by the importers.
package opendata

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/stefanoamorelli/ariregister"
)

// DefaultDelimiter is the field separator used by the registry's
// company master dump.
const DefaultDelimiter = ';'

// Company master dump column names, as documented by the registry.
const (
	colRegistryCode      = "ariregistri_kood"
	colName              = "nimi"
	colStatus            = "ettevotja_staatus"
	colStatusText        = "ettevotja_staatus_tekstina"
	colLegalForm         = "ettevotja_oiguslik_vorm"
	colVATNumber         = "kmkr_nr"
	colAddress           = "ettevotja_aadress"
	colNormalizedAddress = "asukoht_ettevotja_aadressis"
	colPostalCode        = "indeks_ettevotja_aadressis"
	colFirstRegistered   = "ettevotja_esmakande_kpv"
)

// CompanyReader streams typed company records out of the delimited
// master dump, one row at a time.
type CompanyReader struct {
	path      string
	delimiter rune
}

// CompanyReaderOption configures a CompanyReader.
type CompanyReaderOption func(*CompanyReader)

// WithDelimiter overrides the field separator.
func WithDelimiter(d rune) CompanyReaderOption {
	return func(r *CompanyReader) {
		r.delimiter = d
	}
}

// NewCompanyReader creates a reader for the dump at path.
func NewCompanyReader(path string, opts ...CompanyReaderOption) *CompanyReader {
	r := &CompanyReader{
		path:      path,
		delimiter: DefaultDelimiter,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read streams every well-formed row to emit and returns the number of
// malformed rows skipped. A header-only file is a success with zero
// records. A missing file maps to EUNAVAILABLE with a remediation hint
// so callers can fall back; a malformed row is skipped and counted,
// never fatal to the run.
func (r *CompanyReader) Read(ctx context.Context, emit func(*ariregister.Company) error) (skipped int, err error) {
	f, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ariregister.Errorf(ariregister.EUNAVAILABLE,
				"company file %s not found; re-download it from avaandmed.ariregister.rik.ee", r.path)
		}
		return 0, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.Comma = r.delimiter
	// Column counts are validated per row so a bad row is skipped
	// instead of aborting the whole pass.
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return 0, ariregister.Errorf(ariregister.EINVALID, "company file %s is empty", r.path)
	}
	if err != nil {
		return 0, err
	}

	cols, err := indexHeader(header)
	if err != nil {
		return 0, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return skipped, err
		}

		record, err := cr.Read()
		if err == io.EOF {
			return skipped, nil
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			skipped++
			continue
		}
		if err != nil {
			return skipped, err
		}

		if len(record) != len(header) {
			skipped++
			continue
		}

		company := &ariregister.Company{
			RegistryCode:      field(record, cols, colRegistryCode),
			Name:              field(record, cols, colName),
			Status:            field(record, cols, colStatus),
			StatusText:        field(record, cols, colStatusText),
			LegalForm:         field(record, cols, colLegalForm),
			VATNumber:         field(record, cols, colVATNumber),
			Address:           field(record, cols, colAddress),
			NormalizedAddress: field(record, cols, colNormalizedAddress),
			PostalCode:        field(record, cols, colPostalCode),
			FirstRegistered:   field(record, cols, colFirstRegistered),
		}
		if company.Validate() != nil {
			skipped++
			continue
		}

		if err := emit(company); err != nil {
			return skipped, err
		}
	}
}

// indexHeader maps column names to positions, tolerating a UTF-8 byte
// order marker on the first header field.
func indexHeader(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\uFEFF")
		}
		cols[strings.TrimSpace(name)] = i
	}
	if _, ok := cols[colRegistryCode]; !ok {
		return nil, ariregister.Errorf(ariregister.EINVALID,
			"company file header is missing the %q column", colRegistryCode)
	}
	if _, ok := cols[colName]; !ok {
		return nil, ariregister.Errorf(ariregister.EINVALID,
			"company file header is missing the %q column", colName)
	}
	return cols, nil
}

// field returns a trimmed column value, or "" when the column is absent.
func field(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
