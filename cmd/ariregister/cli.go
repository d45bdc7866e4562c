package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/stefanoamorelli/ariregister"
	"github.com/stefanoamorelli/ariregister/resolver"
	"github.com/stefanoamorelli/ariregister/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	DBPath   string
	DB       *sqlite.DB
	Service  ariregister.CompanyService
	Resolver *resolver.Resolver
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DataDir string `short:"d" env:"ARIREGISTER_DATA" help:"Directory with open-data dump files, used as a fallback source"`
	Offline bool   `help:"Never query the live portal"`
	Verbose bool   `short:"v" help:"Verbose logging"`

	Import       ImportCmd       `cmd:"" help:"Build the local store from open-data dump files"`
	Search       SearchCmd       `cmd:"" help:"Search companies by name, code or address"`
	Details      DetailsCmd      `cmd:"" help:"Show full company details"`
	Persons      PersonsCmd      `cmd:"" help:"List persons related to a company"`
	PersonSearch PersonSearchCmd `cmd:"" name:"person-search" help:"Find companies a person is related to"`
	Stats        StatsCmd        `cmd:"" help:"Show registry statistics"`
	Status       StatusCmd       `cmd:"" help:"Report availability of each data source"`
}

// ImportCmd is the "import" subcommand.
type ImportCmd struct {
	DataDir string `arg:"" help:"Directory containing the open-data dump files"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query   string `arg:"" optional:"" help:"Free-text query matched against name, address and code"`
	Name    string `help:"Match company name"`
	Code    string `help:"Match registry code exactly"`
	Address string `help:"Match address"`
	Limit   int    `short:"n" help:"Maximum number of results"`
}

// DetailsCmd is the "details" subcommand.
type DetailsCmd struct {
	Code string `arg:"" help:"Registry code"`
}

// PersonsCmd is the "persons" subcommand.
type PersonsCmd struct {
	Code string `arg:"" help:"Registry code"`
}

// PersonSearchCmd is the "person-search" subcommand.
type PersonSearchCmd struct {
	Name string `arg:"" help:"Person name or part of it"`
}

// StatsCmd is the "stats" subcommand.
type StatsCmd struct{}

// StatusCmd is the "status" subcommand.
type StatusCmd struct{}
