package service

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"log"

	"github.com/disintegration/imaging"

	"offert-mockup-me/models"
)

// Placement is a named preset for where the logo lands on the product photo
type Placement string

// Placement presets
const (
	PlacementTopLeft     Placement = "top-left"
	PlacementTopRight    Placement = "top-right"
	PlacementBottomLeft  Placement = "bottom-left"
	PlacementBottomRight Placement = "bottom-right"
	PlacementCenter      Placement = "center"
)

const (
	// Canvas settings
	defaultCanvasWidth  = 400
	defaultCanvasHeight = 400
	// Overlay square side, per caller
	DefaultOverlaySize = 80
	QuickOverlaySize   = 60
	// Inset from the canvas edge for the corner presets
	placementInset = 20
)

// neutralFill is the flat background used when the product photo is absent
// or cannot be decoded; the composite still shows the logo placement.
var neutralFill = color.NRGBA{R: 235, G: 235, B: 235, A: 255}

// CompositeOptions configures canvas and overlay dimensions.
// Zero values fall back to the defaults.
type CompositeOptions struct {
	CanvasWidth  int
	CanvasHeight int
	OverlaySize  int
}

func (o CompositeOptions) withDefaults() CompositeOptions {
	if o.CanvasWidth <= 0 {
		o.CanvasWidth = defaultCanvasWidth
	}
	if o.CanvasHeight <= 0 {
		o.CanvasHeight = defaultCanvasHeight
	}
	if o.OverlaySize <= 0 {
		o.OverlaySize = DefaultOverlaySize
	}
	return o
}

// PlacementOffset maps a placement preset to the overlay's draw origin.
// Unknown or empty presets default to top-left. For any preset the overlay
// square stays fully inside the canvas as long as it fits at all.
func PlacementOffset(placement Placement, canvasW, canvasH, overlaySize int) image.Point {
	switch placement {
	case PlacementTopRight:
		return image.Pt(canvasW-overlaySize-placementInset, placementInset)
	case PlacementBottomLeft:
		return image.Pt(placementInset, canvasH-overlaySize-placementInset)
	case PlacementBottomRight:
		return image.Pt(canvasW-overlaySize-placementInset, canvasH-overlaySize-placementInset)
	case PlacementCenter:
		return image.Pt((canvasW-overlaySize)/2, (canvasH-overlaySize)/2)
	default:
		return image.Pt(placementInset, placementInset)
	}
}

// Compositor draws a logo onto a product photo at a preset position and
// rasterizes the result to PNG
type Compositor struct{}

// NewCompositor creates a new Compositor instance
func NewCompositor() *Compositor {
	return &Compositor{}
}

// Composite renders the mockup: background stretched onto the canvas (or a
// flat neutral fill when absent/undecodable), then the overlay stretched
// into its preset square and drawn on top. The overlay is required: a
// mockup without a logo is meaningless, so its failure fails the call with
// LoadError. Encoding failure fails with EncodeError.
func (c *Compositor) Composite(background io.Reader, overlay io.Reader, placement Placement, opts CompositeOptions) ([]byte, error) {
	opts = opts.withDefaults()

	canvas := imaging.New(opts.CanvasWidth, opts.CanvasHeight, neutralFill)
	if background != nil {
		bg, err := imaging.Decode(background)
		if err != nil {
			log.Printf("⚠️  Composite: background failed to decode, using neutral fill: %v", err)
		} else {
			// Simple stretch to the fixed canvas, matching the overlay's
			// stretch-into-square treatment
			scaled := imaging.Resize(bg, opts.CanvasWidth, opts.CanvasHeight, imaging.Lanczos)
			canvas = imaging.Overlay(canvas, scaled, image.Pt(0, 0), 1.0)
		}
	}

	if overlay == nil {
		return nil, &models.LoadError{URL: "overlay", Err: fmt.Errorf("no overlay image provided")}
	}
	logo, err := imaging.Decode(overlay)
	if err != nil {
		return nil, &models.LoadError{URL: "overlay", Err: fmt.Errorf("failed to decode overlay: %w", err)}
	}

	// Stretch into the preset square; aspect ratio is deliberately not
	// preserved beyond this simple stretch
	logo = imaging.Resize(logo, opts.OverlaySize, opts.OverlaySize, imaging.Lanczos)

	offset := PlacementOffset(placement, opts.CanvasWidth, opts.CanvasHeight, opts.OverlaySize)
	result := imaging.Overlay(canvas, logo, offset, 1.0)

	// PNG keeps the composite lossless
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, result, imaging.PNG); err != nil {
		return nil, &models.EncodeError{Err: err}
	}

	return buf.Bytes(), nil
}
