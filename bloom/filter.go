// Package bloom provides registry-code membership tracking using Bloom
// filters. The importer uses it to flag child rows whose parent company
// was never seen in the master dump.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter wraps a Bloom filter keyed by registry code.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected codes
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Add adds a registry code to the filter.
func (f *Filter) Add(code string) {
	f.f.AddString(code)
}

// Test returns true if the code might be in the filter.
// False positives are possible; false negatives are not.
func (f *Filter) Test(code string) bool {
	return f.f.TestString(code)
}

// EstimatedCount returns the approximate number of codes in the filter.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}
