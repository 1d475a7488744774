package packager

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/adpbuild/pkg/core"
)

func TestNamingFromConfig(t *testing.T) {
	buildDir := filepath.Join("build", "fsriov2")

	tests := []struct {
		name    string
		cfg     core.PackageConfig
		env     string
		want    string
		wantErr bool
	}{
		{
			name: "default is environment naming",
			cfg:  core.PackageConfig{},
			env:  "fsriov2",
			want: filepath.Join(buildDir, "fsriov2.adpf"),
		},
		{
			name: "environment naming with custom extension",
			cfg:  core.PackageConfig{Naming: "environment", Extension: ".zip"},
			env:  "esp32s3",
			want: filepath.Join(buildDir, "esp32s3.zip"),
		},
		{
			name: "fixed naming with explicit name",
			cfg:  core.PackageConfig{Naming: "fixed", FixedName: "release.adpf"},
			env:  "fsriov2",
			want: filepath.Join(buildDir, "release.adpf"),
		},
		{
			name: "fixed naming derives name from extension",
			cfg:  core.PackageConfig{Naming: "fixed"},
			env:  "fsriov2",
			want: filepath.Join(buildDir, "firmware.adpf"),
		},
		{
			name:    "fixed naming rejects nested paths",
			cfg:     core.PackageConfig{Naming: "fixed", FixedName: "../escape.adpf"},
			env:     "fsriov2",
			wantErr: true,
		},
		{
			name:    "environment naming needs an env",
			cfg:     core.PackageConfig{},
			env:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			naming, err := NamingFromConfig(tt.cfg)
			require.NoError(t, err)

			got, err := naming.PackagePath(buildDir, tt.env)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := NamingFromConfig(core.PackageConfig{Naming: "random"})
	assert.Error(t, err)
}
