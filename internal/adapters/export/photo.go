package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"

	"github.com/disintegration/imaging"
)

const thumbnailSize = 240

// thumbnail decodes a photo, crops it to a centred square and returns it as a
// JPEG data URI.
func thumbnail(data []byte) (template.URL, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode photo: %w", err)
	}

	square := imaging.Fill(img, thumbnailSize, thumbnailSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, square, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("encode photo: %w", err)
	}

	//nolint:gosec // generated from decoded pixels, never user markup
	return template.URL("data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())), nil
}
