package maskpaint

import (
	"context"
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/gogpu/maskpaint/brush"
	"github.com/gogpu/maskpaint/worker"
)

// ExportMaskImageData renders the mask as an overlay image: RGB is the
// overlay colour and alpha equals the mask value.
func (c *Canvas) ExportMaskImageData(ctx context.Context) (*image.NRGBA, error) {
	if c.closed {
		return nil, ErrClosed
	}
	if !c.loaded {
		return nil, ErrNotLoaded
	}
	img, err := c.exec.ExportMask(ctx, worker.ExportRequest{Mask: c.maskRef(), Color: c.opts.overlay})
	if err != nil {
		return nil, fmt.Errorf("maskpaint: export: %w", err)
	}
	return img, nil
}

// MaskImage returns a copy of the mask as a grayscale image, or nil
// before a load.
func (c *Canvas) MaskImage() *image.Gray {
	if !c.loaded {
		return nil
	}
	g := image.NewGray(image.Rect(0, 0, c.width, c.height))
	copy(g.Pix, c.mask)
	return g
}

// ImportMask replaces the mask with img, which must match the image size.
// Alpha images contribute their alpha channel, others their luminance;
// values are binarized. The history is discarded.
func (c *Canvas) ImportMask(img image.Image) error {
	if c.closed {
		return ErrClosed
	}
	if !c.loaded {
		return ErrNotLoaded
	}
	b := img.Bounds()
	if b.Dx() != c.width || b.Dy() != c.height {
		return &ImageError{Op: "import", Err: fmt.Errorf("%w: %dx%d, want %dx%d",
			ErrMaskSize, b.Dx(), b.Dy(), c.width, c.height)}
	}
	// Alpha sources convert to gray with Y = A.
	g := image.NewGray(image.Rect(0, 0, c.width, c.height))
	draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
	c.bulk("import", func(m []byte) {
		for i, v := range g.Pix {
			m[i] = brush.Binarize(v)
		}
	})
	return nil
}
