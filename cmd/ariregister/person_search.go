package main

import (
	"fmt"

	"github.com/stefanoamorelli/ariregister"
)

// Run executes the person-search command.
func (c *PersonSearchCmd) Run(deps *Dependencies) error {
	affiliations, err := deps.Service.SearchPersonsByName(deps.Ctx, c.Name)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", ariregister.ErrorMessage(err))
		return err
	}

	if len(affiliations) == 0 {
		fmt.Fprintln(deps.Stdout, "No related companies found.")
		return nil
	}

	for _, a := range affiliations {
		fmt.Fprintf(deps.Stdout, "%-30s  %s  %-40s  %s\n",
			a.FullName, a.RegistryCode, a.CompanyName, a.CompanyStatus)
	}

	return nil
}
