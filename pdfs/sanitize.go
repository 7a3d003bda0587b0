package pdfs

import "strings"

// characters illegal in filenames across common filesystems
const illegalFilenameChars = `<>:"/\|?*`

// SanitizeFilename strips characters a filesystem or zip extractor would
// reject and trims surrounding whitespace. Everything else, including
// non-ASCII script characters, passes through untouched so names in
// Devanagari, Gujarati etc. stay readable.
func SanitizeFilename(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(illegalFilenameChars, r) {
			return -1
		}
		return r
	}, name)
	return strings.TrimSpace(cleaned)
}
