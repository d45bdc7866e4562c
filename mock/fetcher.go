package mock

import (
	"context"

	"github.com/stefanoamorelli/ariregister"
)

var _ ariregister.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of ariregister.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error

	FetchInvoked int
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.FetchInvoked++
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}
