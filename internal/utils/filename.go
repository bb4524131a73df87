package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// maxFilenameBytes keeps scratch names well inside filesystem limits.
const maxFilenameBytes = 100

var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// SanitizeFilename strips characters that are invalid in filenames on common
// filesystems and caps the result at 100 bytes without splitting a rune.
// An empty result becomes "cover".
func SanitizeFilename(filename string) string {
	filename = invalidFilenameChars.ReplaceAllString(filename, "")
	filename = Clean(filename)

	if len(filename) > maxFilenameBytes {
		cut := maxFilenameBytes
		for cut > 0 && !utf8.RuneStart(filename[cut]) {
			cut--
		}
		filename = strings.TrimSpace(filename[:cut])
	}

	if filename == "" {
		filename = "cover"
	}
	return filename
}
