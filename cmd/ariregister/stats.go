package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/stefanoamorelli/ariregister"
)

// Run executes the stats command.
func (c *StatsCmd) Run(deps *Dependencies) error {
	stats, err := deps.Service.Stats(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", ariregister.ErrorMessage(err))
		return err
	}

	out := deps.Stdout
	fmt.Fprintf(out, "Companies:    %d\n", stats.Companies)
	fmt.Fprintf(out, "Persons:      %d\n", stats.Persons)
	fmt.Fprintf(out, "General data: %d\n", stats.GeneralData)

	printGroup(out, "By status", stats.ByStatus)
	printGroup(out, "By legal form", stats.ByLegalForm)

	return nil
}

func printGroup(out io.Writer, label string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(out, "%s:\n", label)
	for _, k := range keys {
		fmt.Fprintf(out, "  %-10s %d\n", k, counts[k])
	}
}
