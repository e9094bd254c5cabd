package config

// Exported for tests only.
var (
	ResolveToken = resolveToken
	Validate     = validate
)
