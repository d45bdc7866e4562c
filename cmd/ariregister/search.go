package main

import (
	"fmt"

	"github.com/stefanoamorelli/ariregister"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	filter := ariregister.CompanyFilter{Limit: c.Limit}
	if c.Query != "" {
		filter.Query = &c.Query
	}
	if c.Name != "" {
		filter.Name = &c.Name
	}
	if c.Code != "" {
		filter.RegistryCode = &c.Code
	}
	if c.Address != "" {
		filter.Address = &c.Address
	}

	results, err := deps.Service.SearchCompanies(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", ariregister.ErrorMessage(err))
		return err
	}

	if len(results) == 0 {
		fmt.Fprintln(deps.Stdout, "No companies found.")
		return nil
	}

	for _, d := range results {
		fmt.Fprintf(deps.Stdout, "%s  %-40s  %s\n", d.RegistryCode, d.Name, d.StatusText)
	}

	return nil
}
