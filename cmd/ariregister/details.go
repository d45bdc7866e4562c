package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/stefanoamorelli/ariregister"
)

// Run executes the details command.
func (c *DetailsCmd) Run(deps *Dependencies) error {
	details, err := deps.Service.FindCompanyByCode(deps.Ctx, c.Code)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", ariregister.ErrorMessage(err))
		return err
	}

	out := deps.Stdout
	fmt.Fprintf(out, "%s (%s)\n", details.Name, details.RegistryCode)
	printField(out, "Status", details.StatusText)
	printField(out, "Legal form", details.LegalForm)
	printField(out, "Address", details.Address)
	printField(out, "VAT number", details.VATNumber)
	printField(out, "First registered", details.FirstRegistered)

	if g := details.General; g != nil {
		printField(out, "Email", g.Email)
		printField(out, "Phone", g.Phone)
		if g.Capital != "" {
			printField(out, "Capital", strings.TrimSpace(g.Capital+" "+g.CapitalCurrency))
		}
		printField(out, "Main activity", g.ActivityText)
	}

	return nil
}

// printField writes one labeled line, skipping fields the answering
// source could not provide.
func printField(out io.Writer, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(out, "  %-18s %s\n", label+":", value)
}
