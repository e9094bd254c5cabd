package ecosystem

import (
	"github.com/depscout/depscout/domain"
	"github.com/depscout/depscout/infrastructure/ecosystem/definitions"
)

// MatchFiles returns the tree entries covered by any manifest rule of the
// given definition, skipping directories.
func MatchFiles(def definitions.Definition, files []domain.File) []domain.File {
	var matched []domain.File
	for _, f := range files {
		if f.IsDir {
			continue
		}
		if _, ok := def.Match(f.Path); ok {
			matched = append(matched, f)
		}
	}
	return matched
}
