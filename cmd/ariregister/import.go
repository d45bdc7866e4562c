package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/stefanoamorelli/ariregister"
	"github.com/stefanoamorelli/ariregister/opendata"
	"github.com/stefanoamorelli/ariregister/sqlite"
)

// Run executes the import command. The store is built next to the live
// database and swapped in only after every file imported cleanly, so a
// failed import never leaves a half-written store behind.
func (c *ImportCmd) Run(deps *Dependencies) error {
	companies := filepath.Join(c.DataDir, companiesFile)
	if _, err := os.Stat(companies); err != nil {
		fmt.Fprintf(deps.Stderr, "Hint: download the dump files from avaandmed.ariregister.rik.ee\n")
		return fmt.Errorf("company file %q not found", companies)
	}

	tmp := deps.DBPath + ".import"
	_ = os.Remove(tmp)
	defer os.Remove(tmp)

	db := sqlite.NewDB(tmp)
	if err := db.Open(); err != nil {
		return fmt.Errorf("failed to create database at %q: %w", tmp, err)
	}

	writer := sqlite.NewWriter(db, sqlite.WithProgress(func(written int) {
		fmt.Fprintf(deps.Stdout, "\r  %d rows written", written)
	}))
	imp := opendata.NewImporter(writer, deps.Logger)

	report, err := imp.ImportCompanies(deps.Ctx, companies)
	if err != nil {
		db.Close()
		return fmt.Errorf("importing %s: %w", companiesFile, err)
	}
	printReport(deps, report)

	// The secondary dumps are optional; a missing file is noted, not
	// fatal.
	passes := []struct {
		file string
		run  func(path string) (*ariregister.ImportReport, error)
	}{
		{generalDataFile, func(path string) (*ariregister.ImportReport, error) {
			return imp.ImportGeneralData(deps.Ctx, path)
		}},
		{boardMembersFile, func(path string) (*ariregister.ImportReport, error) {
			return imp.ImportPersons(deps.Ctx, path, opendata.BoardMemberDump)
		}},
		{shareholdersFile, func(path string) (*ariregister.ImportReport, error) {
			return imp.ImportPersons(deps.Ctx, path, opendata.ShareholderDump)
		}},
		{beneficialOwnersFile, func(path string) (*ariregister.ImportReport, error) {
			return imp.ImportPersons(deps.Ctx, path, opendata.BeneficialOwnerDump)
		}},
	}
	for _, pass := range passes {
		path := filepath.Join(c.DataDir, pass.file)
		if _, err := os.Stat(path); err != nil {
			fmt.Fprintf(deps.Stdout, "%s: not found, skipped\n", pass.file)
			continue
		}
		report, err := pass.run(path)
		if err != nil {
			db.Close()
			return fmt.Errorf("importing %s: %w", pass.file, err)
		}
		printReport(deps, report)
	}

	if err := db.Close(); err != nil {
		return fmt.Errorf("closing new database: %w", err)
	}

	// Swap the finished store into place, dropping any stale WAL
	// sidecars of the previous store.
	_ = os.Remove(deps.DBPath + "-wal")
	_ = os.Remove(deps.DBPath + "-shm")
	if err := os.Rename(tmp, deps.DBPath); err != nil {
		return fmt.Errorf("activating new database: %w", err)
	}

	fmt.Fprintf(deps.Stdout, "Store ready at %s\n", deps.DBPath)
	return nil
}

func printReport(deps *Dependencies, report *ariregister.ImportReport) {
	fmt.Fprintf(deps.Stdout, "\r%s: %d records, %d skipped", report.Source, report.Records, report.Skipped)
	if report.Dangling > 0 {
		fmt.Fprintf(deps.Stdout, ", %d referenced unknown companies", report.Dangling)
	}
	fmt.Fprintf(deps.Stdout, " (%s)\n", report.Duration.Round(10*time.Millisecond))
}
