package client

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// acceptEncodings is offered upstream when the request does not pick its own.
const acceptEncodings = "gzip, br, zstd"

// bodyDecoders maps a content coding to a wrapper that undoes it.
var bodyDecoders = map[string]func(io.Reader) (io.ReadCloser, error){
	"gzip": func(r io.Reader) (io.ReadCloser, error) {
		return gzip.NewReader(r)
	},
	"br": func(r io.Reader) (io.ReadCloser, error) {
		return io.NopCloser(brotli.NewReader(r)), nil
	},
	"zstd": func(r io.Reader) (io.ReadCloser, error) {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	},
}

// decodingTransport asks upstream for compressed pages and transparently
// undoes gzip, brotli, or zstd coding on the way back.
type decodingTransport struct {
	next http.RoundTripper
}

func newDecodingTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &decodingTransport{next: next}
}

func (t *decodingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Round trippers must not mutate the caller's request.
	req = req.Clone(req.Context())
	if req.Header.Get("Accept-Encoding") == "" {
		req.Header.Set("Accept-Encoding", acceptEncodings)
	}

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	// HEAD, 204, and 304 responses carry nothing to decode.
	if resp.Body == nil || resp.Body == http.NoBody {
		return resp, nil
	}

	decode, ok := bodyDecoders[lastEncoding(resp.Header.Get("Content-Encoding"))]
	if !ok {
		return resp, nil
	}

	decoded, err := decode(resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, err
	}

	resp.Body = &decodedBody{ReadCloser: decoded, raw: resp.Body}
	// The recorded length and coding describe the compressed stream.
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1

	return resp, nil
}

// decodedBody closes both the decoder and the network body underneath it.
type decodedBody struct {
	io.ReadCloser
	raw io.ReadCloser
}

func (b *decodedBody) Close() error {
	decodeErr := b.ReadCloser.Close()
	rawErr := b.raw.Close()
	if decodeErr != nil {
		return decodeErr
	}

	return rawErr
}

// lastEncoding returns the outermost coding from a Content-Encoding header,
// which is the one that must be undone first. Codings are listed in the
// order they were applied, so the outermost is the final entry.
func lastEncoding(header string) string {
	parts := strings.Split(header, ",")
	return strings.ToLower(strings.TrimSpace(parts[len(parts)-1]))
}
