// Package imageopt resizes and compresses generated images for the web.
package imageopt

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	"autoblog/internal/core"
	"autoblog/internal/logger"
)

const (
	startQuality = 90
	qualityStep  = 10
	minQuality   = 20
)

// Options sets the target widths and byte budgets per variant.
type Options struct {
	PCWidth        int
	PCMaxBytes     int
	MobileWidth    int
	MobileMaxBytes int
}

// Optimizer produces PC and mobile JPEG variants of a source image.
type Optimizer struct {
	opts Options
}

// NewOptimizer creates an image optimizer
func NewOptimizer(opts Options) *Optimizer {
	if opts.PCWidth <= 0 {
		opts.PCWidth = 800
	}
	if opts.PCMaxBytes <= 0 {
		opts.PCMaxBytes = 30 * 1024
	}
	if opts.MobileWidth <= 0 {
		opts.MobileWidth = 350
	}
	if opts.MobileMaxBytes <= 0 {
		opts.MobileMaxBytes = 10 * 1024
	}
	return &Optimizer{opts: opts}
}

// Optimize decodes the source image and produces both variants.
func (o *Optimizer) Optimize(data []byte) (*core.OptimizedImagePair, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	logger.Debug("Decoded source image",
		"format", format,
		"width", src.Bounds().Dx(),
		"height", src.Bounds().Dy())

	pc, err := o.optimizeVariant(src, o.opts.PCWidth, o.opts.PCMaxBytes, "pc")
	if err != nil {
		return nil, err
	}
	mobile, err := o.optimizeVariant(src, o.opts.MobileWidth, o.opts.MobileMaxBytes, "mobile")
	if err != nil {
		return nil, err
	}
	return &core.OptimizedImagePair{PC: pc, Mobile: mobile}, nil
}

// optimizeVariant scales to the target width and walks JPEG quality down
// until the byte budget is met. Missing the budget at minimum quality is
// logged, not fatal.
func (o *Optimizer) optimizeVariant(src image.Image, width, maxBytes int, label string) (core.OptimizedImage, error) {
	scaled := resize(src, width)

	var encoded []byte
	quality := startQuality
	for {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: quality}); err != nil {
			return core.OptimizedImage{}, fmt.Errorf("failed to encode %s variant: %w", label, err)
		}
		encoded = buf.Bytes()
		if len(encoded) <= maxBytes || quality <= minQuality {
			break
		}
		quality -= qualityStep
	}

	if len(encoded) > maxBytes {
		logger.Warn("Image exceeds byte budget at minimum quality",
			"variant", label, "size", len(encoded), "budget", maxBytes)
	}
	logger.Debug("Optimized image variant",
		"variant", label, "width", scaled.Bounds().Dx(), "size", len(encoded), "quality", quality)

	return core.OptimizedImage{
		Data:  encoded,
		Width: scaled.Bounds().Dx(),
		Size:  len(encoded),
	}, nil
}

// resize scales the image to the target width preserving aspect ratio.
// Images already narrower than the target are kept as-is.
func resize(src image.Image, width int) image.Image {
	bounds := src.Bounds()
	if bounds.Dx() <= width {
		return src
	}
	height := bounds.Dy() * width / bounds.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}
