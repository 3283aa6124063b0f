// Package imaging shrinks product photos before upload. Terminal cameras
// produce multi-megabyte frames; the backend only needs a catalog-sized
// JPEG, and warehouse Wi-Fi is slow enough that shrinking client-side
// matters.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"

	"golang.org/x/image/draw"
)

// MaxDimension caps the longer edge of an uploaded photo.
const MaxDimension = 800

// JPEGQuality is the re-encode quality for uploads.
const JPEGQuality = 80

// Upload is an upload-ready photo: JPEG bytes and the filename to use for
// the multipart part.
type Upload struct {
	Data     []byte
	Filename string
}

// Prepare reads a photo, verifies it really is a JPEG or PNG by sniffing
// the bytes, scales it down so the longer edge fits MaxDimension, and
// re-encodes it as JPEG. The returned filename keeps the original base
// name with a .jpg extension.
func Prepare(r io.Reader, filename string) (*Upload, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading photo: %w", err)
	}

	switch detected := http.DetectContentType(data); detected {
	case "image/jpeg", "image/png":
	default:
		return nil, fmt.Errorf("unsupported photo format: %s (only JPEG and PNG accepted)", detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding photo: %w", err)
	}

	img = shrink(img, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}

	return &Upload{Data: buf.Bytes(), Filename: jpegName(filename)}, nil
}

// shrink scales the image down so neither dimension exceeds maxDim,
// preserving aspect ratio. Uses Catmull-Rom interpolation. Images already
// within bounds are returned untouched.
func shrink(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := maxDim, maxDim
	if w > h {
		newH = max(1, h*maxDim/w)
	} else {
		newW = max(1, w*maxDim/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// jpegName swaps the extension of a filename for .jpg.
func jpegName(filename string) string {
	if idx := strings.LastIndex(filename, "."); idx > 0 {
		filename = filename[:idx]
	}
	if filename == "" {
		filename = "photo"
	}
	return filename + ".jpg"
}

func init() {
	image.RegisterFormat("jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig)
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
}
