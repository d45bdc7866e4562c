package mock

import (
	"context"

	"github.com/stefanoamorelli/ariregister"
)

var _ ariregister.RegistryWriter = (*RegistryWriter)(nil)

// RegistryWriter is a mock implementation of ariregister.RegistryWriter
// that records every added record. The zero value accepts everything.
type RegistryWriter struct {
	AddCompanyFn     func(ctx context.Context, company *ariregister.Company) error
	AddPersonFn      func(ctx context.Context, person *ariregister.Person) error
	AddGeneralDataFn func(ctx context.Context, data *ariregister.GeneralData) error
	FlushFn          func(ctx context.Context) error

	Companies    []*ariregister.Company
	Persons      []*ariregister.Person
	GeneralData  []*ariregister.GeneralData
	FlushInvoked int
}

func (w *RegistryWriter) AddCompany(ctx context.Context, company *ariregister.Company) error {
	if w.AddCompanyFn != nil {
		if err := w.AddCompanyFn(ctx, company); err != nil {
			return err
		}
	}
	w.Companies = append(w.Companies, company)
	return nil
}

func (w *RegistryWriter) AddPerson(ctx context.Context, person *ariregister.Person) error {
	if w.AddPersonFn != nil {
		if err := w.AddPersonFn(ctx, person); err != nil {
			return err
		}
	}
	w.Persons = append(w.Persons, person)
	return nil
}

func (w *RegistryWriter) AddGeneralData(ctx context.Context, data *ariregister.GeneralData) error {
	if w.AddGeneralDataFn != nil {
		if err := w.AddGeneralDataFn(ctx, data); err != nil {
			return err
		}
	}
	w.GeneralData = append(w.GeneralData, data)
	return nil
}

func (w *RegistryWriter) Flush(ctx context.Context) error {
	w.FlushInvoked++
	if w.FlushFn != nil {
		return w.FlushFn(ctx)
	}
	return nil
}
