package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckExisting(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, path string)
		wantErr string
	}{
		{
			name:  "no existing file",
			setup: func(t *testing.T, path string) {},
		},
		{
			name: "existing canvas.yml",
			setup: func(t *testing.T, path string) {
				require.NoError(t, os.WriteFile(path, []byte("version: '1.0'"), 0644))
			},
			wantErr: "canvas init --force",
		},
		{
			name: "directory in the way",
			setup: func(t *testing.T, path string) {
				require.NoError(t, os.MkdirAll(path, 0755))
			},
			wantErr: "is a directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "canvas.yml")
			tt.setup(t, path)

			err := CheckExisting(path)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
