package validators

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Username string `validate:"required,min=3,alphanum"`
	Email    string `validate:"required,email"`
	Privacy  string `validate:"omitempty,oneof=public private"`
}

func TestValidate(t *testing.T) {
	v := NewValidator()

	require.NoError(t, v.Validate(&signup{Username: "gopher", Email: "g@example.com"}))

	tests := []struct {
		name    string
		in      signup
		message string
	}{
		{"required", signup{Email: "g@example.com"}, "username is required"},
		{"min", signup{Username: "go", Email: "g@example.com"}, "username must be at least 3"},
		{"alphanum", signup{Username: "go pher", Email: "g@example.com"}, "username must contain only letters and digits"},
		{"email", signup{Username: "gopher", Email: "nope"}, "email must be a valid email"},
		{"oneof", signup{Username: "gopher", Email: "g@example.com", Privacy: "secret"}, "privacy must be one of: public private"},
		{"several", signup{}, "username is required; email is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.in)
			require.Error(t, err)
			he, ok := err.(*echo.HTTPError)
			require.True(t, ok)
			assert.Equal(t, http.StatusBadRequest, he.Code)
			assert.Equal(t, tt.message, he.Message)
		})
	}
}
