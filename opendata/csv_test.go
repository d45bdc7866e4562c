package opendata_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stefanoamorelli/ariregister"
	"github.com/stefanoamorelli/ariregister/opendata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const companyHeader = "ariregistri_kood;nimi;ettevotja_staatus;ettevotja_staatus_tekstina;" +
	"ettevotja_oiguslik_vorm;kmkr_nr;ettevotja_aadress;asukoht_ettevotja_aadressis;" +
	"indeks_ettevotja_aadressis;ettevotja_esmakande_kpv"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func readAll(t *testing.T, path string) ([]*ariregister.Company, int) {
	t.Helper()
	reader := opendata.NewCompanyReader(path)
	var companies []*ariregister.Company
	skipped, err := reader.Read(context.Background(), func(c *ariregister.Company) error {
		companies = append(companies, c)
		return nil
	})
	require.NoError(t, err)
	return companies, skipped
}

func TestCompanyReader_Read(t *testing.T) {
	t.Parallel()

	t.Run("parses rows into typed records", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "companies.csv", companyHeader+"\n"+
			"10000000;Example OÜ;R;Registered;OÜ;EE100000000;Pikk tn 1, Tallinn;Tallinn, Harju maakond;10123;1998-04-02\n"+
			"10000001;Teine AS;L;Liquidated;AS;;Lai tn 2, Tartu;Tartu, Tartu maakond;51005;2001-09-14\n")

		companies, skipped := readAll(t, path)
		require.Len(t, companies, 2)
		assert.Zero(t, skipped)

		assert.Equal(t, "10000000", companies[0].RegistryCode)
		assert.Equal(t, "Example OÜ", companies[0].Name)
		assert.Equal(t, "Registered", companies[0].StatusText)
		assert.Equal(t, "OÜ", companies[0].LegalForm)
		assert.Equal(t, "EE100000000", companies[0].VATNumber)
		assert.Equal(t, "10123", companies[0].PostalCode)
		assert.Equal(t, "1998-04-02", companies[0].FirstRegistered)
	})

	t.Run("tolerates a BOM on the first header field", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "companies.csv", "\uFEFF"+companyHeader+"\n"+
			"10000000;Example OÜ;R;Registered;OÜ;;;;;\n")

		companies, skipped := readAll(t, path)
		require.Len(t, companies, 1)
		assert.Zero(t, skipped)
		assert.Equal(t, "10000000", companies[0].RegistryCode)
	})

	t.Run("trims per-field whitespace", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "companies.csv", companyHeader+"\n"+
			" 10000000 ; Example OÜ ;R;Registered;OÜ;;;;;\n")

		companies, _ := readAll(t, path)
		require.Len(t, companies, 1)
		assert.Equal(t, "10000000", companies[0].RegistryCode)
		assert.Equal(t, "Example OÜ", companies[0].Name)
	})

	t.Run("header-only file yields zero records and zero skips", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "companies.csv", companyHeader+"\n")

		companies, skipped := readAll(t, path)
		assert.Empty(t, companies)
		assert.Zero(t, skipped)
	})

	t.Run("skips and counts rows with the wrong column count", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "companies.csv", companyHeader+"\n"+
			"10000000;Example OÜ;R;Registered;OÜ;;;;;\n"+
			"10000001;Broken Row\n"+
			"10000002;Teine AS;L;Liquidated;AS;;;;;\n")

		companies, skipped := readAll(t, path)
		assert.Len(t, companies, 2)
		assert.Equal(t, 1, skipped)
	})

	t.Run("skips rows missing the registry code", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "companies.csv", companyHeader+"\n"+
			";Nameless OÜ;R;Registered;OÜ;;;;;\n")

		companies, skipped := readAll(t, path)
		assert.Empty(t, companies)
		assert.Equal(t, 1, skipped)
	})

	t.Run("missing file returns EUNAVAILABLE with a remediation hint", func(t *testing.T) {
		t.Parallel()

		reader := opendata.NewCompanyReader(filepath.Join(t.TempDir(), "absent.csv"))
		_, err := reader.Read(context.Background(), func(*ariregister.Company) error { return nil })

		assert.Equal(t, ariregister.EUNAVAILABLE, ariregister.ErrorCode(err))
		assert.Contains(t, ariregister.ErrorMessage(err), "re-download")
	})

	t.Run("missing required header column is invalid", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "companies.csv", "foo;bar\n1;2\n")

		reader := opendata.NewCompanyReader(path)
		_, err := reader.Read(context.Background(), func(*ariregister.Company) error { return nil })
		assert.Equal(t, ariregister.EINVALID, ariregister.ErrorCode(err))
	})
}
