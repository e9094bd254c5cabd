package golang //nolint:testpackage // tests unexported functions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depscout/depscout/domain"
	testdoubles "github.com/depscout/depscout/test"
)

const sampleGoMod = `module example.com/app

go 1.22

require (
	github.com/spf13/cobra v1.8.0
	github.com/stretchr/testify v1.9.0
)

require github.com/inconshreveable/mousetrap v1.1.0 // indirect
`

func TestGoEcosystem_Name(t *testing.T) {
	t.Parallel()

	t.Run("should return golang", func(t *testing.T) {
		t.Parallel()

		// given
		e := New()

		// when
		name := e.Name()

		// then
		assert.Equal(t, "golang", name)
	})
}

func TestGoEcosystem_Detect(t *testing.T) {
	t.Parallel()

	t.Run("should detect a tree with go.mod", func(t *testing.T) {
		t.Parallel()

		// given
		e := New()
		files := []domain.File{
			{Path: "main.go"},
			{Path: "go.mod"},
		}

		// when
		detected := e.Detect(files)

		// then
		assert.True(t, detected)
	})

	t.Run("should not detect a tree without go.mod", func(t *testing.T) {
		t.Parallel()

		// given
		e := New()
		files := []domain.File{{Path: "requirements.txt"}}

		// when
		detected := e.Detect(files)

		// then
		assert.False(t, detected)
	})
}

func TestGoEcosystem_Scan(t *testing.T) {
	t.Parallel()

	t.Run("should parse every go.mod in a multi-module repo", func(t *testing.T) {
		t.Parallel()

		// given
		ctx := context.Background()
		e := New()
		files := []domain.File{
			{Path: "go.mod"},
			{Path: "tools/go.mod"},
		}
		prov := &testdoubles.SpyProvider{
			FileContents: map[string]string{
				"go.mod":       sampleGoMod,
				"tools/go.mod": "module example.com/tools\n\ngo 1.22\n",
			},
		}

		// when
		manifests, err := e.Scan(ctx, prov, domain.Repository{Name: "repo"}, files)

		// then
		require.NoError(t, err)
		require.Len(t, manifests, 2)
		assert.Equal(t, "go modules", manifests[0].System)
		assert.Len(t, manifests[0].Dependencies, 2)
		assert.Empty(t, manifests[1].Dependencies)
	})
}

func TestParseManifest(t *testing.T) {
	t.Parallel()

	t.Run("should extract direct requirements with line numbers", func(t *testing.T) {
		t.Parallel()

		// when
		manifest := ParseManifest("go.mod", sampleGoMod)

		// then
		assert.Equal(t, "golang", manifest.Ecosystem)
		assert.Equal(t, "go modules", manifest.System)
		require.Len(t, manifest.Dependencies, 2)
		assert.Equal(t, "github.com/spf13/cobra", manifest.Dependencies[0].Name)
		assert.Equal(t, "v1.8.0", manifest.Dependencies[0].Version)
		assert.Positive(t, manifest.Dependencies[0].Line)
	})

	t.Run("should skip indirect requirements", func(t *testing.T) {
		t.Parallel()

		// when
		manifest := ParseManifest("go.mod", sampleGoMod)

		// then
		for _, dep := range manifest.Dependencies {
			assert.NotEqual(t, "github.com/inconshreveable/mousetrap", dep.Name)
		}
	})

	t.Run("should keep the manifest when parsing fails", func(t *testing.T) {
		t.Parallel()

		// when
		manifest := ParseManifest("go.mod", "not a go.mod {{{")

		// then
		assert.Equal(t, "go.mod", manifest.Path)
		assert.Equal(t, "go modules", manifest.System)
		assert.Empty(t, manifest.Dependencies)
	})
}
