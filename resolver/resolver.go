// Package resolver provides the tiered ariregister.CompanyService that
// answers each query from the first source able to serve it: the
// embedded store, then the raw dump files, then the live portal.
package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/stefanoamorelli/ariregister"
	"golang.org/x/sync/errgroup"
)

var _ ariregister.CompanyService = (*Resolver)(nil)

// Resolver dispatches each call across an ordered list of sources. A
// source that errors or has no answer is skipped and the next tier is
// tried; the first non-empty success wins. Tier selection happens per
// call, so a store imported mid-process is picked up on the next query.
type Resolver struct {
	sources []ariregister.Source
}

// NewResolver creates a Resolver over sources, tried in the given order.
func NewResolver(sources ...ariregister.Source) *Resolver {
	return &Resolver{sources: sources}
}

// resolve runs op against each source in order. op reports whether the
// source produced an answer; empty answers and not-found both advance
// to the next tier. When every tier fails outright the failures are
// aggregated into a single EUNAVAILABLE; when at least one tier
// answered "nothing there", miss decides the outcome.
func resolve[T any](ctx context.Context, sources []ariregister.Source, op func(ariregister.Source) (T, bool, error), miss func() (T, error)) (T, error) {
	var zero T
	if len(sources) == 0 {
		return zero, ariregister.Errorf(ariregister.EINTERNAL, "no sources configured")
	}

	var failures []string
	missed := false
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		v, ok, err := op(source)
		if err != nil {
			if ariregister.ErrorCode(err) == ariregister.ENOTFOUND {
				missed = true
				continue
			}
			failures = append(failures, fmt.Sprintf("%s: %s", source.Name(), ariregister.ErrorMessage(err)))
			continue
		}
		if !ok {
			missed = true
			continue
		}
		return v, nil
	}

	if !missed && len(failures) == len(sources) {
		return zero, ariregister.Errorf(ariregister.EUNAVAILABLE,
			"all sources failed: %s", strings.Join(failures, "; "))
	}
	return miss()
}

// SearchCompanies returns matches from the first tier with any. An
// empty result everywhere is an empty slice, not an error.
func (r *Resolver) SearchCompanies(ctx context.Context, filter ariregister.CompanyFilter) ([]*ariregister.CompanyDetails, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return resolve(ctx, r.sources,
		func(s ariregister.Source) ([]*ariregister.CompanyDetails, bool, error) {
			results, err := s.SearchCompanies(ctx, filter)
			return results, len(results) > 0, err
		},
		func() ([]*ariregister.CompanyDetails, error) {
			return []*ariregister.CompanyDetails{}, nil
		})
}

// FindCompanyByCode returns the company from the first tier that knows
// it. ENOTFOUND only when at least one tier answered and none knew the
// code; failure of every tier is EUNAVAILABLE instead.
func (r *Resolver) FindCompanyByCode(ctx context.Context, code string) (*ariregister.CompanyDetails, error) {
	if code == "" {
		return nil, ariregister.Errorf(ariregister.EINVALID, "registry code required")
	}
	return resolve(ctx, r.sources,
		func(s ariregister.Source) (*ariregister.CompanyDetails, bool, error) {
			details, err := s.FindCompanyByCode(ctx, code)
			return details, details != nil, err
		},
		func() (*ariregister.CompanyDetails, error) {
			return nil, ariregister.Errorf(ariregister.ENOTFOUND, "company %q not found", code)
		})
}

// FindPersonsByCompany returns related persons from the first tier with
// any.
func (r *Resolver) FindPersonsByCompany(ctx context.Context, code string) ([]*ariregister.Person, error) {
	if code == "" {
		return nil, ariregister.Errorf(ariregister.EINVALID, "registry code required")
	}
	return resolve(ctx, r.sources,
		func(s ariregister.Source) ([]*ariregister.Person, bool, error) {
			persons, err := s.FindPersonsByCompany(ctx, code)
			return persons, len(persons) > 0, err
		},
		func() ([]*ariregister.Person, error) {
			return []*ariregister.Person{}, nil
		})
}

// SearchPersonsByName returns affiliations from the first tier with
// any.
func (r *Resolver) SearchPersonsByName(ctx context.Context, name string) ([]*ariregister.PersonAffiliation, error) {
	if name == "" {
		return nil, ariregister.Errorf(ariregister.EINVALID, "person name required")
	}
	return resolve(ctx, r.sources,
		func(s ariregister.Source) ([]*ariregister.PersonAffiliation, bool, error) {
			affiliations, err := s.SearchPersonsByName(ctx, name)
			return affiliations, len(affiliations) > 0, err
		},
		func() ([]*ariregister.PersonAffiliation, error) {
			return []*ariregister.PersonAffiliation{}, nil
		})
}

// Stats returns registry statistics from the first tier able to compute
// them.
func (r *Resolver) Stats(ctx context.Context) (*ariregister.RegistryStats, error) {
	return resolve(ctx, r.sources,
		func(s ariregister.Source) (*ariregister.RegistryStats, bool, error) {
			stats, err := s.Stats(ctx)
			return stats, stats != nil, err
		},
		func() (*ariregister.RegistryStats, error) {
			return nil, ariregister.Errorf(ariregister.EUNAVAILABLE, "no source could compute registry statistics")
		})
}

// Availability probes every source concurrently and reports per-source
// status in configuration order.
func (r *Resolver) Availability(ctx context.Context) *ariregister.Availability {
	statuses := make([]ariregister.SourceStatus, len(r.sources))

	var g errgroup.Group
	for i, source := range r.sources {
		g.Go(func() error {
			status := ariregister.SourceStatus{Source: source.Name()}
			if err := source.Check(ctx); err != nil {
				status.Reason = ariregister.ErrorMessage(err)
			} else {
				status.Available = true
			}
			statuses[i] = status
			return nil
		})
	}
	_ = g.Wait()

	return &ariregister.Availability{Sources: statuses}
}
