package main

import (
	"fmt"

	"github.com/stefanoamorelli/ariregister"
)

// Run executes the persons command.
func (c *PersonsCmd) Run(deps *Dependencies) error {
	persons, err := deps.Service.FindPersonsByCompany(deps.Ctx, c.Code)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", ariregister.ErrorMessage(err))
		return err
	}

	if len(persons) == 0 {
		fmt.Fprintln(deps.Stdout, "No related persons found.")
		return nil
	}

	for _, p := range persons {
		role := p.RoleText
		if role == "" {
			role = string(p.Kind)
		}
		tenure := p.StartDate
		if p.EndDate != "" {
			tenure += " - " + p.EndDate
		}
		fmt.Fprintf(deps.Stdout, "%-30s  %-25s  %s\n", p.FullName, role, tenure)
	}

	return nil
}
