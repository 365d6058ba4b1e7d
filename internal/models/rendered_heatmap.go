package models

// RenderedHeatmap represents an encoded heatmap image ready to serve or
// write to disk
type RenderedHeatmap struct {
	Filename    string // Download filename derived from the show title
	Content     []byte // Encoded image bytes
	ContentType string // MIME type (e.g., "image/png", "image/svg+xml")
}
