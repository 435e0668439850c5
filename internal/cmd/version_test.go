package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetVersion(t *testing.T) {
	tests := []struct {
		build   string
		want    string
		wantErr bool
	}{
		{"", "0.0.1-dev", false},
		{"v1.2.3", "1.2.3", false},
		{"1.2.3-dirty", "1.2.3-dirty", false},
		{"nightly", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.build, func(t *testing.T) {
			old := Version
			Version = tt.build
			defer func() { Version = old }()

			got, err := GetVersion()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
