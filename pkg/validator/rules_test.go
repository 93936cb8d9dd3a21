package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonatahq/sonata-api/pkg/validator"
)

func TestApply_AllPass(t *testing.T) {
	t.Parallel()

	err := validator.Apply(
		validator.RequiredString("email", "a@b.com"),
		validator.ValidEmail("email", "a@b.com"),
		validator.MinLenString("password", "longenough1", 8),
	)
	assert.NoError(t, err)
}

func TestApply_CollectsAllFailures(t *testing.T) {
	t.Parallel()

	err := validator.Apply(
		validator.RequiredString("first_name", "  "),
		validator.MinLenString("password", "short", 8),
		validator.InListString("account_type", "admin", []string{"student", "teacher", "parent"}),
	)
	require.Error(t, err)

	ve := validator.ExtractValidationErrors(err)
	require.Len(t, ve, 3)
	assert.True(t, ve.Has("first_name"))
	assert.True(t, ve.Has("password"))
	assert.True(t, ve.Has("account_type"))
	assert.Equal(t, []string{"first_name", "password", "account_type"}, ve.Fields())
}

func TestValidEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		email string
		valid bool
	}{
		{"a@b.com", true},
		{"user.name+tag@example.co.uk", true},
		{"", false},
		{"no-at-sign", false},
		{"user@localhost", false},
		{"user@.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			t.Parallel()
			err := validator.Apply(validator.ValidEmail("email", tt.email))
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidURLWithScheme(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validator.Apply(validator.ValidURLWithScheme("url", "https://cdn.example.com/x.png", []string{"http", "https"})))
	assert.Error(t, validator.Apply(validator.ValidURLWithScheme("url", "ftp://cdn.example.com/x.png", []string{"http", "https"})))
	assert.Error(t, validator.Apply(validator.ValidURLWithScheme("url", "not a url", []string{"http", "https"})))
}

func TestExtractValidationErrors_NonValidationError(t *testing.T) {
	t.Parallel()

	assert.Nil(t, validator.ExtractValidationErrors(nil))
	assert.Nil(t, validator.ExtractValidationErrors(assert.AnError))
}
