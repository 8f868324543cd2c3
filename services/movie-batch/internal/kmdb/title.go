package kmdb

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// EncodeTitle percent-encodes title as UTF-8 for the title query parameter. Titles are
// NFC-normalized first so decomposed Hangul from the listing source matches KMDB's index.
func EncodeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: empty title", ErrEncoding)
	}
	if !utf8.ValidString(title) {
		return "", fmt.Errorf("%w: title %q is not valid UTF-8", ErrEncoding, title)
	}
	return url.QueryEscape(norm.NFC.String(title)), nil
}
