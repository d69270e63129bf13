// Package wire implements the binary protocol spoken between the editing
// core and the external filter-execution service, plus HTTP client and
// server transports for it.
//
// A request is framed as a little-endian uint32 header length, a UTF-8
// JSON header {"width": w, "height": h, "params": {...}}, and exactly
// w*h*4 bytes of raw straight-alpha RGBA pixels, row-major with the top
// row first. A successful response is exactly w*h*4 raw pixel bytes for
// the same dimensions. A failure response is a JSON object with a
// "detail" string, which the core surfaces verbatim.
package wire

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Codec errors.
var (
	// ErrShortFrame is returned when a request ends before the declared
	// header or pixel payload is complete.
	ErrShortFrame = errors.New("wire: short request frame")

	// ErrHeaderSize is returned when the declared header length is zero
	// or implausibly large.
	ErrHeaderSize = errors.New("wire: bad header length")

	// ErrBadDimensions is returned when a header declares a non-positive
	// width or height.
	ErrBadDimensions = errors.New("wire: bad region dimensions")

	// ErrPixelSize is returned when a pixel payload does not hold exactly
	// width*height*4 bytes.
	ErrPixelSize = errors.New("wire: pixel payload size mismatch")
)

// maxHeaderLen bounds the JSON header so a corrupt length prefix cannot
// force a huge allocation.
const maxHeaderLen = 1 << 20

// Request is one filter-execution call: the region dimensions, the
// filter parameters, and the region's raw pixels.
type Request struct {
	// Width and Height are the pixel dimensions of the region.
	Width  int
	Height int

	// Params holds the filter parameter values keyed by parameter id.
	Params map[string]any

	// Pixels is the straight-alpha RGBA input, Width*Height*4 bytes,
	// row-major with the top row first.
	Pixels []uint8
}

// header is the JSON block leading an encoded request.
type header struct {
	Width  int            `json:"width"`
	Height int            `json:"height"`
	Params map[string]any `json:"params"`
}

// EncodeRequest frames a request for transport.
func EncodeRequest(req Request) ([]byte, error) {
	if req.Width <= 0 || req.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadDimensions, req.Width, req.Height)
	}
	want := req.Width * req.Height * 4
	if len(req.Pixels) != want {
		return nil, fmt.Errorf("%w: want %d bytes, have %d", ErrPixelSize, want, len(req.Pixels))
	}
	params := req.Params
	if params == nil {
		params = map[string]any{}
	}
	hdr, err := json.Marshal(header{Width: req.Width, Height: req.Height, Params: params})
	if err != nil {
		return nil, fmt.Errorf("wire: encode header: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(4 + len(hdr) + len(req.Pixels))
	var lenPrefix [4]byte
	binary.LittleEndian.PutUint32(lenPrefix[:], uint32(len(hdr)))
	buf.Write(lenPrefix[:])
	buf.Write(hdr)
	buf.Write(req.Pixels)
	return buf.Bytes(), nil
}

// DecodeRequest reads one framed request from r.
func DecodeRequest(r io.Reader) (Request, error) {
	var lenPrefix [4]byte
	if _, err := io.ReadFull(r, lenPrefix[:]); err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrShortFrame, err)
	}
	hdrLen := binary.LittleEndian.Uint32(lenPrefix[:])
	if hdrLen == 0 || hdrLen > maxHeaderLen {
		return Request{}, fmt.Errorf("%w: %d", ErrHeaderSize, hdrLen)
	}

	hdrBytes := make([]byte, hdrLen)
	if _, err := io.ReadFull(r, hdrBytes); err != nil {
		return Request{}, fmt.Errorf("%w: header: %v", ErrShortFrame, err)
	}
	var hdr header
	if err := json.Unmarshal(hdrBytes, &hdr); err != nil {
		return Request{}, fmt.Errorf("wire: decode header: %w", err)
	}
	if hdr.Width <= 0 || hdr.Height <= 0 {
		return Request{}, fmt.Errorf("%w: %dx%d", ErrBadDimensions, hdr.Width, hdr.Height)
	}

	pixels := make([]uint8, hdr.Width*hdr.Height*4)
	if _, err := io.ReadFull(r, pixels); err != nil {
		return Request{}, fmt.Errorf("%w: pixels: %v", ErrShortFrame, err)
	}
	return Request{
		Width:  hdr.Width,
		Height: hdr.Height,
		Params: hdr.Params,
		Pixels: pixels,
	}, nil
}

// ValidateResponse checks that a success body holds exactly the pixel
// bytes the request's dimensions call for.
func ValidateResponse(req Request, body []uint8) error {
	want := req.Width * req.Height * 4
	if len(body) != want {
		return fmt.Errorf("%w: want %d bytes, got %d", ErrPixelSize, want, len(body))
	}
	return nil
}

// ServiceError is a failure reported by the filter-execution service.
// The detail string travels verbatim from the service to the user.
type ServiceError struct {
	Detail string `json:"detail"`
}

// Error implements error. It is the service's own message, unchanged.
func (e *ServiceError) Error() string {
	return e.Detail
}

// EncodeError frames a failure response body.
func EncodeError(detail string) []byte {
	b, err := json.Marshal(ServiceError{Detail: detail})
	if err != nil {
		return []byte(`{"detail":"internal error"}`)
	}
	return b
}

// DecodeError parses a failure response body. It returns nil when the
// body is not the protocol's failure shape, so transports can fall back
// to a generic error.
func DecodeError(body []byte) *ServiceError {
	var e ServiceError
	if err := json.Unmarshal(body, &e); err != nil || e.Detail == "" {
		return nil
	}
	return &e
}
