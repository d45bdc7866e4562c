// Package mock provides function-field test doubles for the domain
// interfaces. Invocation counters let tests assert which resolver tiers
// were actually consulted.
package mock

import (
	"context"

	"github.com/stefanoamorelli/ariregister"
)

var _ ariregister.Source = (*Source)(nil)

// Source is a mock implementation of ariregister.Source.
type Source struct {
	NameFn                 func() string
	CheckFn                func(ctx context.Context) error
	SearchCompaniesFn      func(ctx context.Context, filter ariregister.CompanyFilter) ([]*ariregister.CompanyDetails, error)
	FindCompanyByCodeFn    func(ctx context.Context, code string) (*ariregister.CompanyDetails, error)
	FindPersonsByCompanyFn func(ctx context.Context, code string) ([]*ariregister.Person, error)
	SearchPersonsByNameFn  func(ctx context.Context, name string) ([]*ariregister.PersonAffiliation, error)
	StatsFn                func(ctx context.Context) (*ariregister.RegistryStats, error)

	// Invocation counts, one per operation.
	SearchCompaniesInvoked      int
	FindCompanyByCodeInvoked    int
	FindPersonsByCompanyInvoked int
	SearchPersonsByNameInvoked  int
	StatsInvoked                int
	CheckInvoked                int
}

func (s *Source) Name() string {
	if s.NameFn == nil {
		return "mock"
	}
	return s.NameFn()
}

func (s *Source) Check(ctx context.Context) error {
	s.CheckInvoked++
	if s.CheckFn == nil {
		return nil
	}
	return s.CheckFn(ctx)
}

func (s *Source) SearchCompanies(ctx context.Context, filter ariregister.CompanyFilter) ([]*ariregister.CompanyDetails, error) {
	s.SearchCompaniesInvoked++
	return s.SearchCompaniesFn(ctx, filter)
}

func (s *Source) FindCompanyByCode(ctx context.Context, code string) (*ariregister.CompanyDetails, error) {
	s.FindCompanyByCodeInvoked++
	return s.FindCompanyByCodeFn(ctx, code)
}

func (s *Source) FindPersonsByCompany(ctx context.Context, code string) ([]*ariregister.Person, error) {
	s.FindPersonsByCompanyInvoked++
	return s.FindPersonsByCompanyFn(ctx, code)
}

func (s *Source) SearchPersonsByName(ctx context.Context, name string) ([]*ariregister.PersonAffiliation, error) {
	s.SearchPersonsByNameInvoked++
	return s.SearchPersonsByNameFn(ctx, name)
}

func (s *Source) Stats(ctx context.Context) (*ariregister.RegistryStats, error) {
	s.StatsInvoked++
	return s.StatsFn(ctx)
}
