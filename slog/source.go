// Package slog provides logging decorators for the domain interfaces.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/stefanoamorelli/ariregister"
)

// Ensure LoggingSource implements ariregister.Source.
var _ ariregister.Source = (*LoggingSource)(nil)

// LoggingSource wraps a Source with per-operation logging: operation,
// source name, duration, result count and error code.
type LoggingSource struct {
	next   ariregister.Source
	logger *slog.Logger
}

// NewLoggingSource creates a new LoggingSource.
func NewLoggingSource(next ariregister.Source, logger *slog.Logger) *LoggingSource {
	return &LoggingSource{next: next, logger: logger}
}

// Name delegates to the wrapped source.
func (s *LoggingSource) Name() string {
	return s.next.Name()
}

// Check delegates to the wrapped source and logs the outcome.
func (s *LoggingSource) Check(ctx context.Context) error {
	begin := time.Now()
	err := s.next.Check(ctx)
	s.log(ctx, "availability check", begin, -1, err)
	return err
}

// SearchCompanies delegates and logs the result count.
func (s *LoggingSource) SearchCompanies(ctx context.Context, filter ariregister.CompanyFilter) ([]*ariregister.CompanyDetails, error) {
	begin := time.Now()
	results, err := s.next.SearchCompanies(ctx, filter)
	s.log(ctx, "company search", begin, len(results), err)
	return results, err
}

// FindCompanyByCode delegates and logs the outcome.
func (s *LoggingSource) FindCompanyByCode(ctx context.Context, code string) (*ariregister.CompanyDetails, error) {
	begin := time.Now()
	details, err := s.next.FindCompanyByCode(ctx, code)
	count := 0
	if details != nil {
		count = 1
	}
	s.log(ctx, "company lookup", begin, count, err)
	return details, err
}

// FindPersonsByCompany delegates and logs the result count.
func (s *LoggingSource) FindPersonsByCompany(ctx context.Context, code string) ([]*ariregister.Person, error) {
	begin := time.Now()
	persons, err := s.next.FindPersonsByCompany(ctx, code)
	s.log(ctx, "person lookup", begin, len(persons), err)
	return persons, err
}

// SearchPersonsByName delegates and logs the result count.
func (s *LoggingSource) SearchPersonsByName(ctx context.Context, name string) ([]*ariregister.PersonAffiliation, error) {
	begin := time.Now()
	affiliations, err := s.next.SearchPersonsByName(ctx, name)
	s.log(ctx, "person search", begin, len(affiliations), err)
	return affiliations, err
}

// Stats delegates and logs the outcome.
func (s *LoggingSource) Stats(ctx context.Context) (*ariregister.RegistryStats, error) {
	begin := time.Now()
	stats, err := s.next.Stats(ctx)
	count := 0
	if stats != nil {
		count = stats.Companies
	}
	s.log(ctx, "registry stats", begin, count, err)
	return stats, err
}

// log emits one record per operation. Successful calls log at debug,
// failed ones at info with the error code; a count of -1 means the
// operation has no countable result.
func (s *LoggingSource) log(ctx context.Context, op string, begin time.Time, count int, err error) {
	attrs := []any{
		"source", s.next.Name(),
		"duration", time.Since(begin),
	}
	if count >= 0 {
		attrs = append(attrs, "count", count)
	}
	if err != nil {
		attrs = append(attrs, "code", ariregister.ErrorCode(err), "error", ariregister.ErrorMessage(err))
		s.logger.InfoContext(ctx, op, attrs...)
		return
	}
	s.logger.DebugContext(ctx, op, attrs...)
}
