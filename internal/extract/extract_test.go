package extract

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

func encodeJPEG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestTensorFromJPEG(t *testing.T) {
	b := encodeJPEG(t, 224, 224, color.RGBA{R: 200, G: 100, B: 50, A: 255})
	tensor, err := tensorFromJPEG(b)
	if err != nil {
		t.Fatalf("tensor: %v", err)
	}
	if len(tensor) != imageSide || len(tensor[0]) != imageSide || len(tensor[0][0]) != 3 {
		t.Fatalf("shape: %d x %d x %d", len(tensor), len(tensor[0]), len(tensor[0][0]))
	}
	px := tensor[imageSide/2][imageSide/2]
	// JPEG is lossy; allow a generous band around the source color
	if px[0] < 150 || px[1] < 50 || px[1] > 150 || px[2] > 100 {
		t.Fatalf("center pixel: %v", px)
	}
}

func TestTensorFromJPEGUpscales(t *testing.T) {
	b := encodeJPEG(t, 32, 32, color.White)
	tensor, err := tensorFromJPEG(b)
	if err != nil {
		t.Fatalf("tensor: %v", err)
	}
	if len(tensor) != imageSide {
		t.Fatalf("rows=%d", len(tensor))
	}
}

func TestTensorFromJPEGRejectsGarbage(t *testing.T) {
	if _, err := tensorFromJPEG([]byte("definitely not a jpeg")); err == nil {
		t.Fatalf("expected decode error")
	}
}
