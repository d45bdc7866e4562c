package ariregister_test

import (
	"errors"
	"testing"

	"github.com/stefanoamorelli/ariregister"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := ariregister.Errorf(ariregister.ENOTFOUND, "company %q not found", "10000000")

	assert.Equal(t, ariregister.ENOTFOUND, ariregister.ErrorCode(err))
	assert.Equal(t, "company \"10000000\" not found", ariregister.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, ariregister.ErrorCode(nil))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ariregister.EINTERNAL, ariregister.ErrorCode(errors.New("boom")))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, ariregister.ErrorMessage(nil))
}

func TestCompany_Validate(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		c := &ariregister.Company{RegistryCode: "10000000", Name: "Example OÜ"}
		assert.NoError(t, c.Validate())
	})

	t.Run("missing registry code", func(t *testing.T) {
		t.Parallel()

		c := &ariregister.Company{Name: "Example OÜ"}
		err := c.Validate()
		assert.Equal(t, ariregister.EINVALID, ariregister.ErrorCode(err))
	})

	t.Run("missing name", func(t *testing.T) {
		t.Parallel()

		c := &ariregister.Company{RegistryCode: "10000000"}
		err := c.Validate()
		assert.Equal(t, ariregister.EINVALID, ariregister.ErrorCode(err))
	})
}

func TestCompanyFilter_Validate(t *testing.T) {
	t.Parallel()

	t.Run("requires a criterion", func(t *testing.T) {
		t.Parallel()

		f := &ariregister.CompanyFilter{}
		assert.Equal(t, ariregister.EINVALID, ariregister.ErrorCode(f.Validate()))
	})

	t.Run("rejects negative limit", func(t *testing.T) {
		t.Parallel()

		name := "example"
		f := &ariregister.CompanyFilter{Name: &name, Limit: -1}
		assert.Equal(t, ariregister.EINVALID, ariregister.ErrorCode(f.Validate()))
	})
}

func TestCompanyFilter_EffectiveLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"default when zero", 0, ariregister.DefaultSearchLimit},
		{"caller limit within cap", 10, 10},
		{"capped at max", 10000, ariregister.MaxSearchLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := &ariregister.CompanyFilter{Limit: tt.limit}
			assert.Equal(t, tt.want, f.EffectiveLimit())
		})
	}
}

func TestJoinName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		first string
		last  string
		want  string
	}{
		{"both parts", "Mari", "Maasikas", "Mari Maasikas"},
		{"organization without first name", "", "Holding OÜ", "Holding OÜ"},
		{"whitespace trimmed", " Mari ", " Maasikas ", "Mari Maasikas"},
		{"empty", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, ariregister.JoinName(tt.first, tt.last))
		})
	}
}

func TestPerson_Validate(t *testing.T) {
	t.Parallel()

	t.Run("requires some name part", func(t *testing.T) {
		t.Parallel()

		p := &ariregister.Person{RegistryCode: "10000000", Kind: ariregister.KindBoardMember}
		assert.Equal(t, ariregister.EINVALID, ariregister.ErrorCode(p.Validate()))
	})

	t.Run("valid with last name only", func(t *testing.T) {
		t.Parallel()

		p := &ariregister.Person{
			RegistryCode: "10000000",
			Kind:         ariregister.KindShareholder,
			LastName:     "Holding OÜ",
		}
		assert.NoError(t, p.Validate())
	})
}
