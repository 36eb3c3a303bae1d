package upload

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// audioExtensions maps the content types the recorder produces to file
// extensions. Anything else is rejected before it reaches storage.
var audioExtensions = map[string]string{
	"audio/webm": ".webm",
	"audio/ogg":  ".ogg",
	"audio/mpeg": ".mp3",
	"audio/mp4":  ".m4a",
	"audio/wav":  ".wav",
}

// AudioAdapter passes voice notes through unmodified.
type AudioAdapter struct {
	*Adapter
}

// NewAudioAdapter creates an audio adapter.
func NewAudioAdapter(a *Adapter) *AudioAdapter {
	return &AudioAdapter{Adapter: a}
}

// Upload routes a recorded clip online or into the queue.
func (a *AudioAdapter) Upload(ctx context.Context, r io.Reader, contentType string, req Request) (*Result, error) {
	ext, ok := audioExtensions[contentType]
	if !ok {
		return nil, fmt.Errorf("unsupported audio content type %q: %w", contentType, ErrInvalidMedia)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading audio: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty audio payload: %w", ErrInvalidMedia)
	}

	filename := uuid.NewString() + ext
	return a.put(ctx, data, contentType, filename, req)
}
