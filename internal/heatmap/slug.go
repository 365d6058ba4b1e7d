package heatmap

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// slugTransformer folds diacritics to their ASCII base letter by decomposing,
// stripping the combining marks, and recomposing.
var slugTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slug converts a show title into a filesystem-safe filename fragment.
// Diacritics are folded to ASCII, spaces become underscores, and runes
// outside [A-Za-z0-9._-] are dropped.
func Slug(title string) string {
	folded, _, err := transform.String(slugTransformer, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r == ' ':
			b.WriteRune('_')
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		}
	}

	slug := b.String()
	if slug == "" {
		slug = "series"
	}

	return slug
}

// DefaultFilename returns the download filename for a rendered heatmap,
// shaped like Breaking_Bad_Heatmap.png.
func DefaultFilename(title, format string) string {
	if format == "" {
		format = DefaultFormat
	}

	return fmt.Sprintf("%s_Heatmap.%s", Slug(title), format)
}
