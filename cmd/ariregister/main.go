package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/stefanoamorelli/ariregister"
	arigoquery "github.com/stefanoamorelli/ariregister/goquery"
	arihttp "github.com/stefanoamorelli/ariregister/http"
	"github.com/stefanoamorelli/ariregister/opendata"
	"github.com/stefanoamorelli/ariregister/resolver"
	arislog "github.com/stefanoamorelli/ariregister/slog"
	"github.com/stefanoamorelli/ariregister/sqlite"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database backing the store tier.
	DB *sqlite.DB

	// Resolver for end-to-end testing.
	Resolver *resolver.Resolver
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		DBPath: m.DBPath,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("ariregister"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags using Kong
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'ariregister --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	deps.Logger = newLogger(stderr, cli.Verbose)

	// The import command builds its own store; every other command
	// queries through the tiered resolver. The selected command comes
	// from the parsed context, so global flags may precede it.
	if selectedCommand(kongCtx) != "import" {
		m.DB = sqlite.NewDB(m.DBPath)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set ARIREGISTER_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
		}
		defer m.Close()
		deps.DB = m.DB

		m.Resolver = resolver.NewResolver(m.buildSources(deps, cli)...)
		deps.Resolver = m.Resolver
		deps.Service = m.Resolver
	}

	return kongCtx.Run(deps)
}

// selectedCommand extracts the command name from a parsed context.
// kong reports the full command path including positional placeholders
// ("import <data-dir>"); only the leading word identifies the command.
func selectedCommand(kongCtx *kong.Context) string {
	fields := strings.Fields(kongCtx.Command())
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// buildSources assembles the resolver tiers in precedence order: the
// embedded store, then the raw dump files when a data directory is
// configured, then the live portal unless running offline.
func (m *Main) buildSources(deps *Dependencies, cli *CLI) []ariregister.Source {
	sources := []ariregister.Source{
		arislog.NewLoggingSource(sqlite.NewCompanyService(m.DB), deps.Logger),
	}

	if cli.DataDir != "" {
		sources = append(sources, arislog.NewLoggingSource(newFileClient(cli.DataDir), deps.Logger))
	}

	if !cli.Offline {
		fetcher := arislog.NewLoggingFetcher(arihttp.NewFetcher(), deps.Logger)
		sources = append(sources, arislog.NewLoggingSource(arigoquery.NewClient(fetcher), deps.Logger))
	}

	return sources
}

// Conventional file names in the register's open-data distribution.
const (
	companiesFile        = "ettevotja_rekvisiidid__lihtandmed.csv"
	generalDataFile      = "ettevotja_rekvisiidid__yldandmed.json"
	boardMembersFile     = "ettevotja_rekvisiidid__kaardile_kantud_isikud.json"
	shareholdersFile     = "ettevotja_rekvisiidid__osanikud.json"
	beneficialOwnersFile = "ettevotja_rekvisiidid__kasusaajad.json"
)

// newFileClient wires the file-backed tier over a directory holding the
// conventionally named dump files.
func newFileClient(dataDir string) *opendata.Client {
	return opendata.NewClient(filepath.Join(dataDir, companiesFile),
		opendata.WithGeneralDataPath(filepath.Join(dataDir, generalDataFile)),
		opendata.WithPersonDump(filepath.Join(dataDir, boardMembersFile), opendata.BoardMemberDump),
		opendata.WithPersonDump(filepath.Join(dataDir, shareholdersFile), opendata.ShareholderDump),
		opendata.WithPersonDump(filepath.Join(dataDir, beneficialOwnersFile), opendata.BeneficialOwnerDump),
	)
}

func newLogger(stderr io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
}

func defaultDBPath() string {
	if path := os.Getenv("ARIREGISTER_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "ariregister.db"
	}
	dir := filepath.Join(home, ".ariregister")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "ariregister.db")
}
