package javascript //nolint:testpackage // tests unexported functions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depscout/depscout/domain"
	testdoubles "github.com/depscout/depscout/test"
)

const samplePackageJSON = `{
  "name": "app",
  "dependencies": {
    "express": "^4.19.0",
    "axios": "^1.7.0"
  },
  "devDependencies": {
    "jest": "^29.7.0"
  }
}`

func TestJavaScriptEcosystem_Name(t *testing.T) {
	t.Parallel()

	t.Run("should return javascript", func(t *testing.T) {
		t.Parallel()

		// given
		e := New()

		// when
		name := e.Name()

		// then
		assert.Equal(t, "javascript", name)
	})
}

func TestJavaScriptEcosystem_Detect(t *testing.T) {
	t.Parallel()

	t.Run("should detect a tree with package.json", func(t *testing.T) {
		t.Parallel()

		// given
		e := New()
		files := []domain.File{{Path: "package.json"}}

		// when
		detected := e.Detect(files)

		// then
		assert.True(t, detected)
	})

	t.Run("should detect a nested package.json", func(t *testing.T) {
		t.Parallel()

		// given
		e := New()
		files := []domain.File{{Path: "frontend/package.json"}}

		// when
		detected := e.Detect(files)

		// then
		assert.True(t, detected)
	})

	t.Run("should not detect a tree with only a lockfile", func(t *testing.T) {
		t.Parallel()

		// given
		e := New()
		files := []domain.File{{Path: "yarn.lock"}}

		// when
		detected := e.Detect(files)

		// then
		assert.False(t, detected)
	})

	t.Run("should not detect a tree without Node manifests", func(t *testing.T) {
		t.Parallel()

		// given
		e := New()
		files := []domain.File{{Path: "go.mod"}}

		// when
		detected := e.Detect(files)

		// then
		assert.False(t, detected)
	})
}

func TestJavaScriptEcosystem_Scan(t *testing.T) {
	t.Parallel()

	t.Run("should parse package.json and detect the package manager", func(t *testing.T) {
		t.Parallel()

		// given
		ctx := context.Background()
		e := New()
		files := []domain.File{
			{Path: "package.json"},
			{Path: "yarn.lock"},
		}
		prov := &testdoubles.SpyProvider{
			FileContents: map[string]string{
				"package.json": samplePackageJSON,
			},
		}

		// when
		manifests, err := e.Scan(ctx, prov, domain.Repository{Name: "repo"}, files)

		// then
		require.NoError(t, err)
		require.Len(t, manifests, 1)
		assert.Equal(t, "yarn", manifests[0].System)
		assert.Len(t, manifests[0].Dependencies, 3)
	})

	t.Run("should not treat lockfiles as manifests", func(t *testing.T) {
		t.Parallel()

		// given
		ctx := context.Background()
		e := New()
		files := []domain.File{{Path: "pnpm-lock.yaml"}}
		prov := &testdoubles.SpyProvider{}

		// when
		manifests, err := e.Scan(ctx, prov, domain.Repository{Name: "repo"}, files)

		// then
		require.NoError(t, err)
		assert.Empty(t, manifests)
		assert.Empty(t, prov.FetchedPaths)
	})
}

func TestDetectPackageManager(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		manifest string
		files    []domain.File
		expected string
	}{
		{
			name:     "should pick pnpm for a sibling pnpm-lock.yaml",
			manifest: "package.json",
			files:    []domain.File{{Path: "pnpm-lock.yaml"}},
			expected: "pnpm",
		},
		{
			name:     "should pick yarn for a sibling yarn.lock",
			manifest: "package.json",
			files:    []domain.File{{Path: "yarn.lock"}},
			expected: "yarn",
		},
		{
			name:     "should default to npm without lockfiles",
			manifest: "package.json",
			files:    nil,
			expected: "npm",
		},
		{
			name:     "should ignore lockfiles in other directories",
			manifest: "services/web/package.json",
			files:    []domain.File{{Path: "yarn.lock"}},
			expected: "npm",
		},
		{
			name:     "should match lockfiles in the manifest's directory",
			manifest: "services/web/package.json",
			files:    []domain.File{{Path: "services/web/yarn.lock"}},
			expected: "yarn",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// when
			result := DetectPackageManager(tt.manifest, tt.files)

			// then
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseManifest(t *testing.T) {
	t.Parallel()

	t.Run("should merge dependencies and devDependencies sorted by name", func(t *testing.T) {
		t.Parallel()

		// when
		manifest := ParseManifest("package.json", samplePackageJSON)

		// then
		assert.Equal(t, "javascript", manifest.Ecosystem)
		require.Len(t, manifest.Dependencies, 3)
		assert.Equal(t, "axios", manifest.Dependencies[0].Name)
		assert.Equal(t, "express", manifest.Dependencies[1].Name)
		assert.Equal(t, "^4.19.0", manifest.Dependencies[1].Version)
		assert.Equal(t, "jest", manifest.Dependencies[2].Name)
	})

	t.Run("should keep the manifest when parsing fails", func(t *testing.T) {
		t.Parallel()

		// when
		manifest := ParseManifest("package.json", "{ not json")

		// then
		assert.Equal(t, "package.json", manifest.Path)
		assert.Empty(t, manifest.Dependencies)
	})
}
