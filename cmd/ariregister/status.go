package main

import (
	"fmt"
)

// Run executes the status command.
func (c *StatusCmd) Run(deps *Dependencies) error {
	report := deps.Resolver.Availability(deps.Ctx)

	for _, s := range report.Sources {
		state := "available"
		if !s.Available {
			state = "unavailable"
		}
		fmt.Fprintf(deps.Stdout, "%-8s %s", s.Source, state)
		if s.Reason != "" {
			fmt.Fprintf(deps.Stdout, "  (%s)", s.Reason)
		}
		fmt.Fprintln(deps.Stdout)
	}

	return nil
}
