package opendata

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/stefanoamorelli/ariregister"
	"github.com/stefanoamorelli/ariregister/bloom"
)

// expectedCompanies sizes the registry-code Bloom filter. The register
// publishes on the order of 300k active companies.
const expectedCompanies = 400_000

// Importer runs the bulk-load passes: one sequential pass per source
// file, each streaming records into the writer. The writer's synchronous
// Add calls couple the parser to the batch commits, so a pass never
// reads arbitrarily far ahead of disk writes.
//
// Running two importer passes concurrently against the same store is
// unsupported; the register dumps are imported one file after another
// within a run.
type Importer struct {
	writer ariregister.RegistryWriter
	logger *slog.Logger

	// seen tracks registry codes from the company pass so child passes
	// can report parents that never appeared. Advisory only: Bloom
	// false positives merely undercount.
	seen        *bloom.Filter
	companyPass bool
}

// NewImporter creates an Importer writing through w.
func NewImporter(w ariregister.RegistryWriter, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		writer: w,
		logger: logger,
		seen:   bloom.NewFilter(expectedCompanies, 0.001),
	}
}

// ImportCompanies streams the delimited master dump into the store.
func (imp *Importer) ImportCompanies(ctx context.Context, path string) (*ariregister.ImportReport, error) {
	report := newReport(path)
	begin := time.Now()

	reader := NewCompanyReader(path)
	skipped, err := reader.Read(ctx, func(c *ariregister.Company) error {
		if err := imp.writer.AddCompany(ctx, c); err != nil {
			return err
		}
		imp.seen.Add(c.RegistryCode)
		report.Records++
		return nil
	})
	report.Skipped = skipped
	if err != nil {
		return report, err
	}
	if err := imp.writer.Flush(ctx); err != nil {
		return report, err
	}

	imp.companyPass = true
	report.Duration = time.Since(begin)
	imp.logReport("company import complete", report)
	return report, nil
}

// ImportPersons streams one nested-person JSON dump into the store,
// flattening each top-level object's nested array into child rows.
func (imp *Importer) ImportPersons(ctx context.Context, path string, dump PersonDump) (*ariregister.ImportReport, error) {
	report := newReport(path)
	begin := time.Now()

	skipped, err := streamArray(ctx, path, func(obj map[string]any) error {
		code, persons, ok := decodePersons(obj, dump)
		if !ok {
			report.Skipped++
			return nil
		}
		if imp.companyPass && !imp.seen.Test(code) {
			report.Dangling++
		}
		for _, p := range persons {
			if err := imp.writer.AddPerson(ctx, p); err != nil {
				return err
			}
			report.Records++
		}
		return nil
	})
	report.Skipped += skipped
	if err != nil {
		return report, err
	}
	if err := imp.writer.Flush(ctx); err != nil {
		return report, err
	}

	report.Duration = time.Since(begin)
	imp.logReport("person import complete", report)
	return report, nil
}

// ImportGeneralData streams the general-data JSON dump into the store.
func (imp *Importer) ImportGeneralData(ctx context.Context, path string) (*ariregister.ImportReport, error) {
	report := newReport(path)
	begin := time.Now()

	skipped, err := streamArray(ctx, path, func(obj map[string]any) error {
		data, ok := decodeGeneralData(obj)
		if !ok {
			report.Skipped++
			return nil
		}
		if imp.companyPass && !imp.seen.Test(data.RegistryCode) {
			report.Dangling++
		}
		if err := imp.writer.AddGeneralData(ctx, data); err != nil {
			return err
		}
		report.Records++
		return nil
	})
	report.Skipped += skipped
	if err != nil {
		return report, err
	}
	if err := imp.writer.Flush(ctx); err != nil {
		return report, err
	}

	report.Duration = time.Since(begin)
	imp.logReport("general data import complete", report)
	return report, nil
}

func newReport(path string) *ariregister.ImportReport {
	return &ariregister.ImportReport{
		RunID:  uuid.New().String(),
		Source: filepath.Base(path),
	}
}

func (imp *Importer) logReport(msg string, report *ariregister.ImportReport) {
	imp.logger.Info(msg,
		"run_id", report.RunID,
		"source", report.Source,
		"records", report.Records,
		"skipped", report.Skipped,
		"dangling", report.Dangling,
		"duration", report.Duration,
	)
}
