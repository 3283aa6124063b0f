package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func testJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{200, 30, 30, 255})
		}
	}
	var buf bytes.Buffer
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func TestPrepareJPEG(t *testing.T) {
	upload, err := Prepare(bytes.NewReader(testJPEG(t, 100, 100)), "photo.jpeg")
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if len(upload.Data) == 0 {
		t.Error("expected non-empty upload data")
	}
	if upload.Filename != "photo.jpg" {
		t.Errorf("expected photo.jpg, got %q", upload.Filename)
	}
}

func TestPreparePNGBecomesJPEG(t *testing.T) {
	upload, err := Prepare(bytes.NewReader(testPNG(t, 100, 100)), "shot.png")
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if upload.Filename != "shot.jpg" {
		t.Errorf("expected shot.jpg, got %q", upload.Filename)
	}

	img, _, err := image.Decode(bytes.NewReader(upload.Data))
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if img.Bounds().Dx() != 100 {
		t.Errorf("small image must keep its size, got %d", img.Bounds().Dx())
	}
}

func TestPrepareShrinksLargePhoto(t *testing.T) {
	upload, err := Prepare(bytes.NewReader(testJPEG(t, 1600, 1200)), "big.jpg")
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(upload.Data))
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w != MaxDimension {
		t.Errorf("expected longer edge %d, got %d", MaxDimension, w)
	}
	if h != 600 {
		t.Errorf("expected aspect-preserving height 600, got %d", h)
	}
}

func TestPrepareRejectsNonImage(t *testing.T) {
	_, err := Prepare(strings.NewReader("definitely not a picture"), "note.txt")
	if err == nil {
		t.Fatal("expected error for non-image input")
	}
}
