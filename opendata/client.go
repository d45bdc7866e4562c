package opendata

import (
	"context"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stefanoamorelli/ariregister"
)

// DefaultCacheTTL bounds how long parsed dump contents are reused
// before the files are re-read.
const DefaultCacheTTL = 5 * time.Minute

// Compile-time interface verification.
var _ ariregister.Source = (*Client)(nil)

// Client answers the query surface directly from the raw dump files.
// It is the middle resolver tier: slower and less complete than the
// store, exercised only when no populated store exists. The company
// file is loaded fully into a keyed map (acceptable on this degraded
// path); person and general-data dumps are parsed with the same
// streaming reader the importer uses.
//
// Parsed files are held in a cache owned by this instance with a
// configured time-to-live; there is no process-wide cache state.
type Client struct {
	companyPath string
	generalPath string
	personDumps map[ariregister.PersonKind]personSource
	ttl         time.Duration
	now         func() time.Time

	mu        sync.Mutex
	companies *companyCache
	persons   map[ariregister.PersonKind]*personCache
	general   *generalCache
}

type personSource struct {
	path string
	dump PersonDump
}

type companyCache struct {
	byCode  map[string]*ariregister.Company
	ordered []*ariregister.Company
	expires time.Time
}

type personCache struct {
	byCode  map[string][]*ariregister.Person
	expires time.Time
}

type generalCache struct {
	byCode  map[string]*ariregister.GeneralData
	expires time.Time
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithGeneralDataPath points the client at the general-data dump.
// Without it, supplementary attributes are simply omitted.
func WithGeneralDataPath(path string) ClientOption {
	return func(c *Client) {
		c.generalPath = path
	}
}

// WithPersonDump registers one nested-person dump file.
func WithPersonDump(path string, dump PersonDump) ClientOption {
	return func(c *Client) {
		c.personDumps[dump.Kind] = personSource{path: path, dump: dump}
	}
}

// WithCacheTTL overrides how long parsed files are reused.
func WithCacheTTL(ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.ttl = ttl
	}
}

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a file-backed client over the company master dump.
func NewClient(companyPath string, opts ...ClientOption) *Client {
	c := &Client{
		companyPath: companyPath,
		personDumps: map[ariregister.PersonKind]personSource{},
		ttl:         DefaultCacheTTL,
		now:         time.Now,
		persons:     map[ariregister.PersonKind]*personCache{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies this tier in availability reports.
func (c *Client) Name() string {
	return "files"
}

// Check reports whether the company master dump is present on disk.
func (c *Client) Check(ctx context.Context) error {
	if _, err := os.Stat(c.companyPath); err != nil {
		return ariregister.Errorf(ariregister.EUNAVAILABLE,
			"company file %s not found; re-download it from avaandmed.ariregister.rik.ee", c.companyPath)
	}
	return nil
}

// loadCompanies parses the company file into the keyed cache, reusing a
// previous parse within the TTL window.
func (c *Client) loadCompanies(ctx context.Context) (*companyCache, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.companies != nil && c.now().Before(c.companies.expires) {
		return c.companies, nil
	}

	cache := &companyCache{byCode: map[string]*ariregister.Company{}}
	reader := NewCompanyReader(c.companyPath)
	if _, err := reader.Read(ctx, func(company *ariregister.Company) error {
		clone := *company
		cache.byCode[clone.RegistryCode] = &clone
		cache.ordered = append(cache.ordered, &clone)
		return nil
	}); err != nil {
		return nil, err
	}
	cache.expires = c.now().Add(c.ttl)
	c.companies = cache
	return cache, nil
}

// loadPersons parses one person dump into a keyed cache within the TTL
// window. A missing dump is not an error on this tier: the data is
// simply absent.
func (c *Client) loadPersons(ctx context.Context, kind ariregister.PersonKind) (*personCache, error) {
	src, ok := c.personDumps[kind]
	if !ok {
		return &personCache{byCode: map[string][]*ariregister.Person{}}, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if cached := c.persons[kind]; cached != nil && c.now().Before(cached.expires) {
		return cached, nil
	}

	cache := &personCache{byCode: map[string][]*ariregister.Person{}}
	_, err := streamArray(ctx, src.path, func(obj map[string]any) error {
		code, persons, ok := decodePersons(obj, src.dump)
		if !ok {
			return nil
		}
		cache.byCode[code] = append(cache.byCode[code], persons...)
		return nil
	})
	if err != nil {
		if ariregister.ErrorCode(err) == ariregister.EUNAVAILABLE {
			cache.expires = c.now().Add(c.ttl)
			c.persons[kind] = cache
			return cache, nil
		}
		return nil, err
	}
	cache.expires = c.now().Add(c.ttl)
	c.persons[kind] = cache
	return cache, nil
}

// loadGeneral parses the general-data dump within the TTL window.
// Best-effort: a missing or unconfigured dump yields an empty cache.
func (c *Client) loadGeneral(ctx context.Context) *generalCache {
	if c.generalPath == "" {
		return &generalCache{byCode: map[string]*ariregister.GeneralData{}}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.general != nil && c.now().Before(c.general.expires) {
		return c.general
	}

	cache := &generalCache{byCode: map[string]*ariregister.GeneralData{}}
	_, err := streamArray(ctx, c.generalPath, func(obj map[string]any) error {
		if data, ok := decodeGeneralData(obj); ok {
			cache.byCode[data.RegistryCode] = data
		}
		return nil
	})
	if err != nil {
		// Supplementary joins are best-effort on this tier: fields are
		// omitted rather than failing the whole query.
		cache.byCode = map[string]*ariregister.GeneralData{}
	}
	cache.expires = c.now().Add(c.ttl)
	c.general = cache
	return cache
}

// containsFold reports whether s contains substr case-insensitively.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func (c *Client) details(company *ariregister.Company, general *generalCache) *ariregister.CompanyDetails {
	return &ariregister.CompanyDetails{
		Company: *company,
		General: general.byCode[company.RegistryCode],
	}
}

// SearchCompanies scans the in-memory company map against the filter.
func (c *Client) SearchCompanies(ctx context.Context, filter ariregister.CompanyFilter) ([]*ariregister.CompanyDetails, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	companies, err := c.loadCompanies(ctx)
	if err != nil {
		return nil, err
	}
	general := c.loadGeneral(ctx)

	limit := filter.EffectiveLimit()
	results := []*ariregister.CompanyDetails{}
	for _, company := range companies.ordered {
		if len(results) >= limit {
			break
		}
		if filter.RegistryCode != nil && company.RegistryCode != *filter.RegistryCode {
			continue
		}
		if filter.Name != nil && !containsFold(company.Name, *filter.Name) {
			continue
		}
		if filter.Address != nil &&
			!containsFold(company.Address, *filter.Address) &&
			!containsFold(company.NormalizedAddress, *filter.Address) {
			continue
		}
		if filter.Query != nil &&
			!containsFold(company.Name, *filter.Query) &&
			!containsFold(company.Address, *filter.Query) &&
			!containsFold(company.RegistryCode, *filter.Query) {
			continue
		}
		results = append(results, c.details(company, general))
	}
	return results, nil
}

// FindCompanyByCode looks the company up in the keyed map.
func (c *Client) FindCompanyByCode(ctx context.Context, code string) (*ariregister.CompanyDetails, error) {
	if code == "" {
		return nil, ariregister.Errorf(ariregister.EINVALID, "registry code required")
	}

	companies, err := c.loadCompanies(ctx)
	if err != nil {
		return nil, err
	}

	company, ok := companies.byCode[code]
	if !ok {
		return nil, ariregister.Errorf(ariregister.ENOTFOUND, "company %q not found", code)
	}
	return c.details(company, c.loadGeneral(ctx)), nil
}

// FindPersonsByCompany collects child rows across all configured dumps,
// most recent tenure first.
func (c *Client) FindPersonsByCompany(ctx context.Context, code string) ([]*ariregister.Person, error) {
	if code == "" {
		return nil, ariregister.Errorf(ariregister.EINVALID, "registry code required")
	}

	results := []*ariregister.Person{}
	for kind := range c.personDumps {
		cache, err := c.loadPersons(ctx, kind)
		if err != nil {
			return nil, err
		}
		results = append(results, cache.byCode[code]...)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].StartDate > results[j].StartDate
	})
	return results, nil
}

// SearchPersonsByName scans all configured dumps for matching full
// names, joined against loaded companies. Dangling children are
// filtered, mirroring the store tier's join semantics.
func (c *Client) SearchPersonsByName(ctx context.Context, name string) ([]*ariregister.PersonAffiliation, error) {
	if name == "" {
		return nil, ariregister.Errorf(ariregister.EINVALID, "person name required")
	}

	companies, err := c.loadCompanies(ctx)
	if err != nil {
		return nil, err
	}

	results := []*ariregister.PersonAffiliation{}
	for kind := range c.personDumps {
		cache, err := c.loadPersons(ctx, kind)
		if err != nil {
			return nil, err
		}
		for code, persons := range cache.byCode {
			company, ok := companies.byCode[code]
			if !ok {
				continue
			}
			for _, p := range persons {
				if !containsFold(p.FullName, name) {
					continue
				}
				results = append(results, &ariregister.PersonAffiliation{
					Person:        *p,
					CompanyName:   company.Name,
					CompanyStatus: company.StatusText,
				})
			}
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].StartDate > results[j].StartDate
	})
	return results, nil
}

// Stats counts records across the loaded files. Grouping happens in
// application code here; this tier is explicitly the degraded path.
func (c *Client) Stats(ctx context.Context) (*ariregister.RegistryStats, error) {
	companies, err := c.loadCompanies(ctx)
	if err != nil {
		return nil, err
	}

	stats := &ariregister.RegistryStats{
		Companies:   len(companies.ordered),
		ByStatus:    map[string]int{},
		ByLegalForm: map[string]int{},
	}
	for _, company := range companies.ordered {
		stats.ByStatus[company.Status]++
		stats.ByLegalForm[company.LegalForm]++
	}

	for kind := range c.personDumps {
		cache, err := c.loadPersons(ctx, kind)
		if err != nil {
			return nil, err
		}
		for _, persons := range cache.byCode {
			stats.Persons += len(persons)
		}
	}

	stats.GeneralData = len(c.loadGeneral(ctx).byCode)
	return stats, nil
}
