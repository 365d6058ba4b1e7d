package parser

import "io"

// Parser is the common shape of the HTML list parsers: one scraped document
// in, the extracted records out in page order.
type Parser[T any] interface {
	ParseHtml(body io.Reader) ([]T, error)
}
