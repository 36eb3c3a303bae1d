package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// ImageAdapter downsamples photos before either path, bounding both the
// direct-upload time and the local queue's storage footprint.
type ImageAdapter struct {
	*Adapter
	maxWidth int
	quality  int
}

// NewImageAdapter creates an image adapter with the given bounds.
func NewImageAdapter(a *Adapter, maxWidth, quality int) *ImageAdapter {
	return &ImageAdapter{Adapter: a, maxWidth: maxWidth, quality: quality}
}

// Upload decodes, downsamples and re-encodes the photo as JPEG, then
// routes it online or into the queue.
func (a *ImageAdapter) Upload(ctx context.Context, r io.Reader, req Request) (*Result, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding image (%v): %w", err, ErrInvalidMedia)
	}

	if img.Bounds().Dx() > a.maxWidth {
		// Height 0 preserves the aspect ratio.
		img = imaging.Resize(img, a.maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(a.quality)); err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}

	filename := uuid.NewString() + ".jpg"
	return a.put(ctx, buf.Bytes(), "image/jpeg", filename, req)
}
