package parser

import (
	"io"

	"golang.org/x/net/html/charset"
)

// NewUTF8Reader wraps an io.Reader with automatic character encoding
// detection and conversion to UTF-8 before parsing with goquery. IMDB serves
// UTF-8, in which case this is a cheap pass-through, but the charset is
// detected from meta tags, BOMs, or content heuristics when it is not.
func NewUTF8Reader(body io.Reader) (io.Reader, error) {
	// contentType is empty so detection runs on the HTML content itself
	return charset.NewReader(body, "")
}
