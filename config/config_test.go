package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depscout/depscout/config"
)

//nolint:tparallel // some subtests use t.Setenv which is incompatible with t.Parallel on parent
func TestResolveToken(t *testing.T) {
	t.Run("should return empty string for empty input", func(t *testing.T) {
		t.Parallel()

		// given
		raw := ""

		// when
		result := config.ResolveToken(raw)

		// then
		assert.Empty(t, result)
	})

	t.Run("should return inline token unchanged", func(t *testing.T) {
		t.Parallel()

		// given
		raw := "ghp_abc123xyz"

		// when
		result := config.ResolveToken(raw)

		// then
		assert.Equal(t, "ghp_abc123xyz", result)
	})

	t.Run("should expand environment variable reference", func(t *testing.T) {
		// NOTE: cannot use t.Parallel() with t.Setenv()

		// given
		t.Setenv("TEST_TOKEN_RESOLVE", "my-secret-token")
		raw := "${TEST_TOKEN_RESOLVE}"

		// when
		result := config.ResolveToken(raw)

		// then
		assert.Equal(t, "my-secret-token", result)
	})

	t.Run("should return empty for unset env var", func(t *testing.T) {
		t.Parallel()

		// given
		raw := "${DEFINITELY_NOT_SET_VAR_12345}"

		// when
		result := config.ResolveToken(raw)

		// then
		assert.Empty(t, result)
	})

	t.Run("should read token from file when path exists", func(t *testing.T) {
		t.Parallel()

		// given
		tmpDir := t.TempDir()
		tokenFile := filepath.Join(tmpDir, "token.key")
		err := os.WriteFile(tokenFile, []byte("  file-based-token  \n"), 0o600)
		require.NoError(t, err)

		// when
		result := config.ResolveToken(tokenFile)

		// then
		assert.Equal(t, "file-based-token", result)
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("should fail when no providers configured", func(t *testing.T) {
		t.Parallel()

		// given
		cfg := &config.Config{
			Providers: []config.ProviderConfig{},
		}

		// when
		err := config.Validate(cfg)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one provider")
	})

	t.Run("should fail when provider type is empty", func(t *testing.T) {
		t.Parallel()

		// given
		cfg := &config.Config{
			Providers: []config.ProviderConfig{
				{Token: "tok", Organizations: []string{"acme"}},
			},
		}

		// when
		err := config.Validate(cfg)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "type is required")
	})

	t.Run("should fail when provider has no organizations", func(t *testing.T) {
		t.Parallel()

		// given
		cfg := &config.Config{
			Providers: []config.ProviderConfig{
				{Type: "github", Token: "tok"},
			},
		}

		// when
		err := config.Validate(cfg)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "organizations")
	})

	t.Run("should accept a complete provider", func(t *testing.T) {
		t.Parallel()

		// given
		cfg := &config.Config{
			Providers: []config.ProviderConfig{
				{Type: "github", Token: "tok", Organizations: []string{"acme"}},
			},
		}

		// when
		err := config.Validate(cfg)

		// then
		require.NoError(t, err)
	})
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("should load a valid config file", func(t *testing.T) {
		t.Parallel()

		// given
		tmpDir := t.TempDir()
		path := filepath.Join(tmpDir, "depscout.yaml")
		content := `
providers:
  - type: github
    token: inline-token
    organizations: [acme]
language: Python
output:
  dir: reports
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		// when
		cfg, err := config.Load(path)

		// then
		require.NoError(t, err)
		require.Len(t, cfg.Providers, 1)
		assert.Equal(t, "github", cfg.Providers[0].Type)
		assert.Equal(t, "inline-token", cfg.Providers[0].Token)
		assert.Equal(t, []string{"acme"}, cfg.Providers[0].Organizations)
		assert.Equal(t, "Python", cfg.Language)
		assert.Equal(t, "reports", cfg.Output.Dir)
	})

	t.Run("should default output dir to current directory", func(t *testing.T) {
		t.Parallel()

		// given
		tmpDir := t.TempDir()
		path := filepath.Join(tmpDir, "depscout.yaml")
		content := `
providers:
  - type: gitlab
    token: tok
    organizations: [group]
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		// when
		cfg, err := config.Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, ".", cfg.Output.Dir)
	})

	t.Run("should fail for missing file", func(t *testing.T) {
		t.Parallel()

		// given
		path := filepath.Join(t.TempDir(), "nope.yaml")

		// when
		_, err := config.Load(path)

		// then
		require.Error(t, err)
	})

	t.Run("should fail for invalid yaml", func(t *testing.T) {
		t.Parallel()

		// given
		tmpDir := t.TempDir()
		path := filepath.Join(tmpDir, "depscout.yaml")
		require.NoError(t, os.WriteFile(path, []byte("providers: [broken"), 0o600))

		// when
		_, err := config.Load(path)

		// then
		require.Error(t, err)
	})
}

//nolint:tparallel // t.Setenv is incompatible with t.Parallel
func TestFromEnvironment(t *testing.T) {
	t.Run("should build a github provider from env vars", func(t *testing.T) {
		// given
		t.Setenv(config.EnvGitHubToken, "env-token")
		t.Setenv(config.EnvGitLabToken, "")
		t.Setenv(config.EnvOrganization, "acme")
		t.Setenv(config.EnvLanguage, "Python")

		// when
		cfg, err := config.FromEnvironment()

		// then
		require.NoError(t, err)
		require.Len(t, cfg.Providers, 1)
		assert.Equal(t, "github", cfg.Providers[0].Type)
		assert.Equal(t, "env-token", cfg.Providers[0].Token)
		assert.Equal(t, []string{"acme"}, cfg.Providers[0].Organizations)
		assert.Equal(t, "Python", cfg.Language)
	})

	t.Run("should fail when ORGANIZATION is not set", func(t *testing.T) {
		// given
		t.Setenv(config.EnvOrganization, "")

		// when
		_, err := config.FromEnvironment()

		// then
		require.Error(t, err)
	})

	t.Run("should fail when no token is set", func(t *testing.T) {
		// given
		t.Setenv(config.EnvOrganization, "acme")
		t.Setenv(config.EnvGitHubToken, "")
		t.Setenv(config.EnvGitLabToken, "")

		// when
		_, err := config.FromEnvironment()

		// then
		require.Error(t, err)
	})
}
