package valueobject

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCredentials(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid", "a@x.com", "Secret123!", nil},
		{"missing at", "ax.com", "Secret123!", ErrInvalidEmail},
		{"display name", "Alice <a@x.com>", "Secret123!", ErrInvalidEmail},
		{"empty email", "", "Secret123!", ErrInvalidEmail},
		{"short password", "a@x.com", "short", ErrPasswordTooShort},
		{"long password", "a@x.com", strings.Repeat("p", 37), ErrPasswordTooLong},
		{"max length password", "a@x.com", strings.Repeat("p", 36), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds, err := NewCredentials(tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, creds)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.email, creds.Email())
			assert.Equal(t, tt.password, creds.Password())
		})
	}
}
