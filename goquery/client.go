// Package goquery provides a live-fetch implementation of
// ariregister.Source that scrapes the public e-Business Register portal.
// It is the last resolver tier: lossy, rate-limited and best-effort.
package goquery

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/stefanoamorelli/ariregister"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public portal address.
const DefaultBaseURL = "https://ariregister.rik.ee"

// DefaultRequestsPerSecond throttles portal requests. Single token
// bucket with burst 1; the portal is a shared public service.
const DefaultRequestsPerSecond = 1.0

var _ ariregister.Source = (*Client)(nil)

// Client answers the query surface by fetching and parsing portal
// pages. Field extraction is best-effort: markup the selectors do not
// recognize leaves fields zero rather than failing the query. The
// portal exposes no person listings or registry totals in markup this
// client understands.
type Client struct {
	fetcher ariregister.Fetcher
	limiter *rate.Limiter
	baseURL string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the portal address, for tests.
func WithBaseURL(base string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

// WithRateLimit overrides the portal request rate.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// NewClient creates a live portal client fetching through f.
func NewClient(f ariregister.Fetcher, opts ...ClientOption) *Client {
	c := &Client{
		fetcher: f,
		limiter: rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), 1),
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies this tier in availability reports.
func (c *Client) Name() string {
	return "live"
}

// Check probes the portal front page.
func (c *Client) Check(ctx context.Context) error {
	_, err := c.fetch(ctx, c.baseURL+"/eng")
	return err
}

// fetch waits on the rate limiter and retrieves one page.
func (c *Client) fetch(ctx context.Context, pageURL string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return c.fetcher.Fetch(ctx, pageURL)
}

func (c *Client) searchURL(term string) string {
	return c.baseURL + "/eng/company_search_result?name_or_code=" + url.QueryEscape(term)
}

func (c *Client) detailURL(code string) string {
	return c.baseURL + "/eng/company/" + url.PathEscape(code)
}

// searchTerm picks the portal search-box input from the filter. The
// portal's search accepts a name or registry code; address-only filters
// fall back to the address text.
func searchTerm(filter ariregister.CompanyFilter) string {
	switch {
	case filter.RegistryCode != nil:
		return *filter.RegistryCode
	case filter.Name != nil:
		return *filter.Name
	case filter.Query != nil:
		return *filter.Query
	case filter.Address != nil:
		return *filter.Address
	default:
		return ""
	}
}

// SearchCompanies fetches the portal search-result page and parses the
// result table. Rows the selectors do not recognize are dropped.
func (c *Client) SearchCompanies(ctx context.Context, filter ariregister.CompanyFilter) ([]*ariregister.CompanyDetails, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	html, err := c.fetch(ctx, c.searchURL(searchTerm(filter)))
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, ariregister.Errorf(ariregister.EUNAVAILABLE, "failed to parse portal response: %v", err)
	}

	limit := filter.EffectiveLimit()
	results := []*ariregister.CompanyDetails{}
	doc.Find("table.search-results tbody tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		company := parseSearchRow(row)
		if company == nil {
			return true
		}
		results = append(results, &ariregister.CompanyDetails{Company: *company})
		return len(results) < limit
	})
	return results, nil
}

// parseSearchRow maps one result-table row onto a company. Expected
// cells: linked name, registry code, status, address.
func parseSearchRow(row *goquery.Selection) *ariregister.Company {
	cells := row.Find("td")
	if cells.Length() < 2 {
		return nil
	}

	company := &ariregister.Company{
		Name:         strings.TrimSpace(cells.Eq(0).Text()),
		RegistryCode: strings.TrimSpace(cells.Eq(1).Text()),
	}
	if company.RegistryCode == "" || company.Name == "" {
		return nil
	}
	if cells.Length() > 2 {
		company.StatusText = strings.TrimSpace(cells.Eq(2).Text())
	}
	if cells.Length() > 3 {
		company.Address = strings.TrimSpace(cells.Eq(3).Text())
	}
	return company
}

// FindCompanyByCode fetches the portal detail page for the code. A page
// without a recognizable company heading means the code is unknown.
func (c *Client) FindCompanyByCode(ctx context.Context, code string) (*ariregister.CompanyDetails, error) {
	if code == "" {
		return nil, ariregister.Errorf(ariregister.EINVALID, "registry code required")
	}

	html, err := c.fetch(ctx, c.detailURL(code))
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, ariregister.Errorf(ariregister.EUNAVAILABLE, "failed to parse portal response: %v", err)
	}

	details := parseDetailPage(doc, code)
	if details == nil {
		return nil, ariregister.Errorf(ariregister.ENOTFOUND, "company %q not found", code)
	}
	return details, nil
}

// parseDetailPage extracts the labeled attribute rows of a company
// detail page. Unrecognized labels are ignored; a page without a
// company heading yields nil.
func parseDetailPage(doc *goquery.Document, code string) *ariregister.CompanyDetails {
	name := strings.TrimSpace(doc.Find("h1.company-name").First().Text())
	if name == "" {
		name = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if name == "" {
		return nil
	}

	details := &ariregister.CompanyDetails{
		Company: ariregister.Company{
			RegistryCode: code,
			Name:         name,
		},
	}
	general := &ariregister.GeneralData{RegistryCode: code}
	haveGeneral := false

	doc.Find("table.company-data tr").Each(func(_ int, row *goquery.Selection) {
		label := strings.ToLower(strings.TrimSpace(row.Find("th").First().Text()))
		value := strings.TrimSpace(row.Find("td").First().Text())
		if label == "" || value == "" {
			return
		}

		switch {
		case strings.Contains(label, "registry code"):
			details.RegistryCode = value
			general.RegistryCode = value
		case strings.Contains(label, "legal form"):
			details.LegalForm = value
		case strings.Contains(label, "status"):
			details.StatusText = value
		case strings.Contains(label, "vat"):
			details.VATNumber = value
		case strings.Contains(label, "address"):
			details.Address = value
		case strings.Contains(label, "first entry"), strings.Contains(label, "registered"):
			details.FirstRegistered = value
		case strings.Contains(label, "capital"):
			general.Capital = value
			haveGeneral = true
		case strings.Contains(label, "email"):
			general.Email = value
			haveGeneral = true
		case strings.Contains(label, "phone"):
			general.Phone = value
			haveGeneral = true
		case strings.Contains(label, "activity"):
			general.ActivityText = value
			haveGeneral = true
		}
	})

	if haveGeneral {
		details.General = general
	}
	return details
}

// FindPersonsByCompany returns an empty slice: the portal exposes no
// person listings in markup this client understands, and an empty
// answer lets the resolver treat this tier as exhausted rather than
// failed.
func (c *Client) FindPersonsByCompany(ctx context.Context, code string) ([]*ariregister.Person, error) {
	if code == "" {
		return nil, ariregister.Errorf(ariregister.EINVALID, "registry code required")
	}
	return []*ariregister.Person{}, nil
}

// SearchPersonsByName returns an empty slice for the same reason as
// FindPersonsByCompany.
func (c *Client) SearchPersonsByName(ctx context.Context, name string) ([]*ariregister.PersonAffiliation, error) {
	if name == "" {
		return nil, ariregister.Errorf(ariregister.EINVALID, "person name required")
	}
	return []*ariregister.PersonAffiliation{}, nil
}

// Stats is unavailable from this tier: the portal publishes no
// registry-wide totals on pages this client fetches.
func (c *Client) Stats(ctx context.Context) (*ariregister.RegistryStats, error) {
	return nil, ariregister.Errorf(ariregister.EUNAVAILABLE, "registry statistics are not available from the live portal")
}
