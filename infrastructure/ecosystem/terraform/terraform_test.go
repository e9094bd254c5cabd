package terraform //nolint:testpackage // tests unexported functions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depscout/depscout/domain"
	testdoubles "github.com/depscout/depscout/test"
)

const sampleModuleFile = `module "networking" {
  source = "git::https://github.com/my-org/terraform-networking.git?ref=v1.2.0"
}

module "local_tools" {
  source = "./modules/tools"
}
`

func TestTerraformEcosystem_Name(t *testing.T) {
	t.Parallel()

	t.Run("should return terraform", func(t *testing.T) {
		t.Parallel()

		// given
		e := New()

		// when
		name := e.Name()

		// then
		assert.Equal(t, "terraform", name)
	})
}

func TestTerraformEcosystem_Detect(t *testing.T) {
	t.Parallel()

	t.Run("should detect a tree with .tf files", func(t *testing.T) {
		t.Parallel()

		// given
		e := New()
		files := []domain.File{
			{Path: "envs/prod/main.tf"},
			{Path: "README.md"},
		}

		// when
		detected := e.Detect(files)

		// then
		assert.True(t, detected)
	})

	t.Run("should not detect a tree without .tf files", func(t *testing.T) {
		t.Parallel()

		// given
		e := New()
		files := []domain.File{{Path: "main.go"}}

		// when
		detected := e.Detect(files)

		// then
		assert.False(t, detected)
	})
}

func TestTerraformEcosystem_Scan(t *testing.T) {
	t.Parallel()

	t.Run("should report only files with git module dependencies", func(t *testing.T) {
		t.Parallel()

		// given
		ctx := context.Background()
		e := New()
		files := []domain.File{
			{Path: "main.tf"},
			{Path: "variables.tf"},
		}
		prov := &testdoubles.SpyProvider{
			FileContents: map[string]string{
				"main.tf":      sampleModuleFile,
				"variables.tf": `variable "region" {}` + "\n",
			},
		}

		// when
		manifests, err := e.Scan(ctx, prov, domain.Repository{Name: "infra"}, files)

		// then
		require.NoError(t, err)
		require.Len(t, manifests, 1)
		assert.Equal(t, "main.tf", manifests[0].Path)
		require.Len(t, manifests[0].Dependencies, 1)
		assert.Equal(t, "networking", manifests[0].Dependencies[0].Name)
	})
}

func TestScanFile(t *testing.T) {
	t.Parallel()

	t.Run("should extract git module source, version, and line", func(t *testing.T) {
		t.Parallel()

		// when
		deps := ScanFile(sampleModuleFile, "main.tf")

		// then
		require.Len(t, deps, 1)
		assert.Equal(t, "networking", deps[0].Name)
		assert.Equal(t, "git::https://github.com/my-org/terraform-networking.git", deps[0].Source)
		assert.Equal(t, "v1.2.0", deps[0].Version)
		assert.Equal(t, 1, deps[0].Line)
	})

	t.Run("should skip modules without a ref pin", func(t *testing.T) {
		t.Parallel()

		// given
		content := `module "unpinned" {
  source = "git::https://github.com/my-org/terraform-unpinned.git"
}
`

		// when
		deps := ScanFile(content, "main.tf")

		// then
		assert.Empty(t, deps)
	})

	t.Run("should skip local module sources", func(t *testing.T) {
		t.Parallel()

		// given
		content := `module "tools" {
  source = "../modules/tools"
}
`

		// when
		deps := ScanFile(content, "main.tf")

		// then
		assert.Empty(t, deps)
	})

	t.Run("should fall back to regex parsing for broken HCL", func(t *testing.T) {
		t.Parallel()

		// given
		content := `module "networking" {
  source = "git::https://github.com/my-org/terraform-networking.git?ref=v2.0.0"
  count = [broken
`

		// when
		deps := ScanFile(content, "main.tf")

		// then
		require.Len(t, deps, 1)
		assert.Equal(t, "v2.0.0", deps[0].Version)
	})
}

func TestSourceHelpers(t *testing.T) {
	t.Parallel()

	t.Run("isGitModule", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name     string
			source   string
			expected bool
		}{
			{
				name:     "should match git:: prefixed sources",
				source:   "git::https://example.com/modules/vpc.git",
				expected: true,
			},
			{
				name:     "should match SSH sources",
				source:   "git@github.com:org/module.git",
				expected: true,
			},
			{
				name:     "should match gitlab.com sources",
				source:   "https://gitlab.com/group/module.git",
				expected: true,
			},
			{
				name:     "should not match registry sources",
				source:   "hashicorp/consul/aws",
				expected: false,
			},
			{
				name:     "should not match local paths",
				source:   "./modules/vpc",
				expected: false,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				// when
				result := isGitModule(tt.source)

				// then
				assert.Equal(t, tt.expected, result)
			})
		}
	})

	t.Run("extractVersion", func(t *testing.T) {
		t.Parallel()

		t.Run("should extract the ref query parameter", func(t *testing.T) {
			t.Parallel()

			// when
			version := extractVersion("git::https://github.com/org/mod.git?ref=v1.5.0")

			// then
			assert.Equal(t, "v1.5.0", version)
		})

		t.Run("should return empty without a ref", func(t *testing.T) {
			t.Parallel()

			// when
			version := extractVersion("git::https://github.com/org/mod.git")

			// then
			assert.Empty(t, version)
		})
	})

	t.Run("removeVersionFromSource", func(t *testing.T) {
		t.Parallel()

		t.Run("should strip the ref query parameter", func(t *testing.T) {
			t.Parallel()

			// when
			source := removeVersionFromSource("git::https://github.com/org/mod.git?ref=v1.5.0")

			// then
			assert.Equal(t, "git::https://github.com/org/mod.git", source)
		})
	})
}
