package imageopt

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// gradientPNG builds a compressible test image of the given width.
func gradientPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestOptimizeProducesBothVariants(t *testing.T) {
	o := NewOptimizer(Options{})
	pair, err := o.Optimize(gradientPNG(t, 1600, 900))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pair.PC.Width != 800 {
		t.Errorf("expected PC width 800, got %d", pair.PC.Width)
	}
	if pair.Mobile.Width != 350 {
		t.Errorf("expected mobile width 350, got %d", pair.Mobile.Width)
	}
	if pair.PC.Size != len(pair.PC.Data) {
		t.Errorf("size field mismatch: %d vs %d bytes", pair.PC.Size, len(pair.PC.Data))
	}
	if pair.Mobile.Size >= pair.PC.Size {
		t.Errorf("mobile variant (%d) should be smaller than PC (%d)", pair.Mobile.Size, pair.PC.Size)
	}
}

func TestOptimizeKeepsSmallImages(t *testing.T) {
	o := NewOptimizer(Options{PCWidth: 800, MobileWidth: 350})
	pair, err := o.Optimize(gradientPNG(t, 400, 225))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pair.PC.Width != 400 {
		t.Errorf("expected PC width to stay 400, got %d", pair.PC.Width)
	}
	if pair.Mobile.Width != 350 {
		t.Errorf("expected mobile width 350, got %d", pair.Mobile.Width)
	}
}

func TestOptimizeRejectsGarbage(t *testing.T) {
	o := NewOptimizer(Options{})
	if _, err := o.Optimize([]byte("not an image")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestOptimizeStopsAtMinimumQuality(t *testing.T) {
	// A 1-byte budget cannot be met; the optimizer must still return data.
	o := NewOptimizer(Options{PCMaxBytes: 1, MobileMaxBytes: 1})
	pair, err := o.Optimize(gradientPNG(t, 1600, 900))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pair.PC.Data) == 0 || len(pair.Mobile.Data) == 0 {
		t.Error("expected image data despite unreachable budget")
	}
}
