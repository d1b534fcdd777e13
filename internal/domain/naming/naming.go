// Package naming derives storage names from model and content type names.
//
// The rules match the exporter that produces the entry files:
//
//	Slug("Blog Post")  == "blog_post"
//	Slug("BlogPost")   == "blog_post"
//	Slug("Café Menu")  == "cafe_menu"
//
// Transliterate folds accented Latin letters to ASCII and replaces anything
// else outside ASCII with "?". Underscore splits CamelCase words with "_",
// turns "-" into "_" and lower-cases. Slug applies both, then replaces spaces
// with underscores.
package naming

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Replacement is substituted for characters that have no ASCII form.
const Replacement = "?"

var (
	// reAcronymBoundary splits "HTMLParser" into "HTML_Parser".
	reAcronymBoundary = regexp.MustCompile(`([A-Z\d]+)([A-Z][a-z])`)
	// reWordBoundary splits "blogPost" into "blog_Post".
	reWordBoundary = regexp.MustCompile(`([a-z\d])([A-Z])`)

	// ligatures have no decomposition in Unicode.
	ligatures = strings.NewReplacer(
		"ß", "ss", "Æ", "AE", "æ", "ae", "Œ", "OE", "œ", "oe",
		"Ø", "O", "ø", "o", "Ł", "L", "ł", "l", "Đ", "D", "đ", "d",
		"Þ", "Th", "þ", "th",
	)
)

// Transliterate converts s to ASCII.
func Transliterate(s string) string {
	s = ligatures.Replace(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r <= unicode.MaxASCII {
			b.WriteRune(r)
			continue
		}
		b.WriteString(Replacement)
	}
	return b.String()
}

// Underscore converts a CamelCase or dashed name to snake case.
func Underscore(s string) string {
	s = strings.ReplaceAll(s, "::", "/")
	s = reAcronymBoundary.ReplaceAllString(s, "${1}_${2}")
	s = reWordBoundary.ReplaceAllString(s, "${1}_${2}")
	s = strings.ReplaceAll(s, "-", "_")
	return strings.ToLower(s)
}

// Slug returns the storage name of a content type or model.
func Slug(name string) string {
	return strings.ReplaceAll(Underscore(Transliterate(name)), " ", "_")
}

// EntryName returns the file base name of the entry of collection with the
// given foreign value, e.g. EntryName("comment", "10") == "comment_10".
func EntryName(collection, foreignValue string) string {
	return collection + "_" + foreignValue
}

// IndexFileName returns the helper index file name for a primary field and
// related model, e.g. IndexFileName("post_id", "Comment") == "post_id_comment.json".
func IndexFileName(primaryID, relatedModel string) string {
	return primaryID + "_" + Slug(relatedModel) + ".json"
}
