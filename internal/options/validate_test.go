package options

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/erraggy/oasref/oaserrors"
)

func TestValidateSingleInputSource(t *testing.T) {
	tests := []struct {
		name    string
		sources []bool
		wantErr string
	}{
		{"none", []bool{false, false, false}, "no input"},
		{"one", []bool{false, true, false}, ""},
		{"two", []bool{true, true, false}, "too many inputs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSingleInputSource("no input", "too many inputs", tt.sources...)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, oaserrors.ErrConfig)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
