package workspace

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SecureFilename reduces name to a safe base name: accents are folded to
// ASCII, path separators and whitespace become underscores, anything
// outside [A-Za-z0-9_.-] is dropped and leading or trailing dots and
// underscores are trimmed. The result may be empty.
func SecureFilename(name string) string {
	name = norm.NFKD.String(name)
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")

	var b strings.Builder
	for _, r := range name {
		if r > unicode.MaxASCII {
			continue
		}
		if r == '_' || r == '.' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "._")
}
