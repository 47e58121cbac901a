package ocr

import (
	"context"
	"image"
)

// TextClient is the subset of the inference client used for recognition.
type TextClient interface {
	ExtractText(ctx context.Context, png []byte) (string, error)
}

// Remote recognizes text through an inference server.
type Remote struct {
	client TextClient
}

// NewRemote creates a recognizer backed by client.
func NewRemote(client TextClient) *Remote {
	return &Remote{client: client}
}

func (r *Remote) Recognize(ctx context.Context, img image.Image) (string, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return "", err
	}
	return r.client.ExtractText(ctx, data)
}
