package sqlite_test

import (
	"context"
	"testing"

	"github.com/stefanoamorelli/ariregister"
	"github.com/stefanoamorelli/ariregister/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedStore populates a test store with one company, its supplementary
// attributes and two board members.
func seedStore(t *testing.T, db *sqlite.DB) {
	t.Helper()
	ctx := context.Background()

	w := sqlite.NewWriter(db)
	c := testCompany("10000000", "Example OÜ")
	c.Address = "Harju maakond, Tallinn, Kesklinna linnaosa, Pikk tn 1"
	c.NormalizedAddress = "Pikk tn 1, Tallinn"
	c.PostalCode = "10123"
	require.NoError(t, w.AddCompany(ctx, c))

	require.NoError(t, w.AddGeneralData(ctx, &ariregister.GeneralData{
		RegistryCode: "10000000",
		Email:        "info@example.ee",
		Capital:      "2500",
	}))

	require.NoError(t, w.AddPerson(ctx, &ariregister.Person{
		RegistryCode: "10000000",
		Kind:         ariregister.KindBoardMember,
		Position:     0,
		FirstName:    "Mari",
		LastName:     "Maasikas",
		Role:         "JUHL",
		RoleText:     "juhatuse liige",
		StartDate:    "2015-03-01",
	}))
	require.NoError(t, w.AddPerson(ctx, &ariregister.Person{
		RegistryCode: "10000000",
		Kind:         ariregister.KindBoardMember,
		Position:     1,
		FirstName:    "Jaan",
		LastName:     "Tamm",
		Role:         "JUHL",
		RoleText:     "juhatuse liige",
		StartDate:    "2021-06-15",
	}))
	require.NoError(t, w.Flush(ctx))
}

func TestCompanyService_SearchCompanies(t *testing.T) {
	t.Parallel()

	t.Run("matches a name substring case-insensitively", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		seedStore(t, db)
		svc := sqlite.NewCompanyService(db)

		name := "example"
		results, err := svc.SearchCompanies(context.Background(), ariregister.CompanyFilter{Name: &name})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "10000000", results[0].RegistryCode)
		assert.Equal(t, "Registered", results[0].StatusText)
	})

	t.Run("case folding covers letters beyond ASCII", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		seedStore(t, db)
		svc := sqlite.NewCompanyService(db)

		name := "oü"
		results, err := svc.SearchCompanies(context.Background(), ariregister.CompanyFilter{Name: &name})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Example OÜ", results[0].Name)
	})

	t.Run("matches an exact registry code", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		seedStore(t, db)
		svc := sqlite.NewCompanyService(db)

		code := "10000000"
		results, err := svc.SearchCompanies(context.Background(), ariregister.CompanyFilter{RegistryCode: &code})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Example OÜ", results[0].Name)
	})

	t.Run("matches an address substring", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		seedStore(t, db)
		svc := sqlite.NewCompanyService(db)

		addr := "Pikk tn"
		results, err := svc.SearchCompanies(context.Background(), ariregister.CompanyFilter{Address: &addr})
		require.NoError(t, err)
		require.Len(t, results, 1)
	})

	t.Run("free text spans name, address and code", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		seedStore(t, db)
		svc := sqlite.NewCompanyService(db)

		for _, q := range []string{"Example", "Tallinn", "10000000"} {
			query := q
			results, err := svc.SearchCompanies(context.Background(), ariregister.CompanyFilter{Query: &query})
			require.NoError(t, err)
			assert.Len(t, results, 1, "query %q", q)
		}
	})

	t.Run("joins supplementary attributes when present", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		seedStore(t, db)
		svc := sqlite.NewCompanyService(db)

		name := "Example"
		results, err := svc.SearchCompanies(context.Background(), ariregister.CompanyFilter{Name: &name})
		require.NoError(t, err)
		require.Len(t, results, 1)
		require.NotNil(t, results[0].General)
		assert.Equal(t, "info@example.ee", results[0].General.Email)
	})

	t.Run("unmatched criteria return an empty set, not an error", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		seedStore(t, db)
		svc := sqlite.NewCompanyService(db)

		name := "no such company"
		results, err := svc.SearchCompanies(context.Background(), ariregister.CompanyFilter{Name: &name})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("rejects an empty filter", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewCompanyService(db)

		_, err := svc.SearchCompanies(context.Background(), ariregister.CompanyFilter{})
		assert.Equal(t, ariregister.EINVALID, ariregister.ErrorCode(err))
	})
}

func TestCompanyService_FindCompanyByCode(t *testing.T) {
	t.Parallel()

	t.Run("returns the company with supplementary attributes", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		seedStore(t, db)
		svc := sqlite.NewCompanyService(db)

		found, err := svc.FindCompanyByCode(context.Background(), "10000000")
		require.NoError(t, err)
		assert.Equal(t, "Example OÜ", found.Name)
		require.NotNil(t, found.General)
		assert.Equal(t, "2500", found.General.Capital)
	})

	t.Run("returns ENOTFOUND for an absent code", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		seedStore(t, db)
		svc := sqlite.NewCompanyService(db)

		_, err := svc.FindCompanyByCode(context.Background(), "99999999")
		assert.Equal(t, ariregister.ENOTFOUND, ariregister.ErrorCode(err))
	})
}

func TestCompanyService_FindPersonsByCompany(t *testing.T) {
	t.Parallel()

	t.Run("orders by tenure start descending", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		seedStore(t, db)
		svc := sqlite.NewCompanyService(db)

		persons, err := svc.FindPersonsByCompany(context.Background(), "10000000")
		require.NoError(t, err)
		require.Len(t, persons, 2)
		assert.Equal(t, "Jaan Tamm", persons[0].FullName)
		assert.Equal(t, "Mari Maasikas", persons[1].FullName)
	})

	t.Run("empty child table returns an empty slice, not an error", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		w := sqlite.NewWriter(db)
		require.NoError(t, w.AddCompany(ctx, testCompany("10000000", "Example OÜ")))
		require.NoError(t, w.Flush(ctx))

		svc := sqlite.NewCompanyService(db)
		persons, err := svc.FindPersonsByCompany(ctx, "10000000")
		require.NoError(t, err)
		assert.Equal(t, []*ariregister.Person{}, persons)
	})
}

func TestCompanyService_SearchPersonsByName(t *testing.T) {
	t.Parallel()

	t.Run("matches substring and joins the owning company", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		seedStore(t, db)
		svc := sqlite.NewCompanyService(db)

		results, err := svc.SearchPersonsByName(context.Background(), "Tamm")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Jaan Tamm", results[0].FullName)
		assert.Equal(t, "Example OÜ", results[0].CompanyName)
		assert.Equal(t, "Registered", results[0].CompanyStatus)
	})

	t.Run("dangling child rows never surface", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		// Child imported without its parent: tolerated at load time,
		// filtered by the query-time join.
		w := sqlite.NewWriter(db)
		require.NoError(t, w.AddPerson(ctx, &ariregister.Person{
			RegistryCode: "77777777",
			Kind:         ariregister.KindBoardMember,
			FirstName:    "Orphan",
			LastName:     "Row",
		}))
		require.NoError(t, w.Flush(ctx))

		svc := sqlite.NewCompanyService(db)
		results, err := svc.SearchPersonsByName(ctx, "Orphan")
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestCompanyService_Stats(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	w := sqlite.NewWriter(db)
	require.NoError(t, w.AddCompany(ctx, testCompany("10000000", "Example OÜ")))
	c := testCompany("10000001", "Liquidated AS")
	c.Status, c.StatusText, c.LegalForm = "L", "Liquidated", "AS"
	require.NoError(t, w.AddCompany(ctx, c))
	require.NoError(t, w.AddPerson(ctx, &ariregister.Person{
		RegistryCode: "10000000",
		Kind:         ariregister.KindBoardMember,
		FirstName:    "Mari",
		LastName:     "Maasikas",
	}))
	require.NoError(t, w.Flush(ctx))

	svc := sqlite.NewCompanyService(db)
	stats, err := svc.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Companies)
	assert.Equal(t, 1, stats.Persons)
	assert.Equal(t, 0, stats.GeneralData)
	assert.Equal(t, map[string]int{"R": 1, "L": 1}, stats.ByStatus)
	assert.Equal(t, map[string]int{"OÜ": 1, "AS": 1}, stats.ByLegalForm)
}

func TestCompanyService_Check(t *testing.T) {
	t.Parallel()

	t.Run("empty store is unavailable", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewCompanyService(db)

		err := svc.Check(context.Background())
		assert.Equal(t, ariregister.EUNAVAILABLE, ariregister.ErrorCode(err))
	})

	t.Run("populated store is available", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		seedStore(t, db)
		svc := sqlite.NewCompanyService(db)

		assert.NoError(t, svc.Check(context.Background()))
	})
}
