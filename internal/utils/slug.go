// internal/utils/slug.go
package utils

import "github.com/gosimple/slug"

// Slugify lowercases and hyphenates a display name. Different names may map to
// the same slug; callers do not disambiguate.
func Slugify(name string) string {
	return slug.Make(name)
}
