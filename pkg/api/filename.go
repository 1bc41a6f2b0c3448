package api

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SecureFilename reduces an uploaded file name to a flat name made of ASCII
// letters, digits, underscores, dots and dashes. Path separators become
// underscores, so "a/b.txt" is "a_b.txt". It returns an empty string when
// nothing usable is left.
func SecureFilename(name string) string {
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)

	// Strip accents so "résumé" becomes "resume"
	var b strings.Builder
	for _, r := range norm.NFKD.String(name) {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}

	name = strings.Join(strings.Fields(b.String()), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "._")
	return name
}
