package archive

import (
	"bytes"
	"fmt"
	"image"

	// Register decoders for every accepted image format.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// MinImageSize is the smallest byte count accepted as a real image.
// Anything shorter cannot hold a valid header for any supported format.
const MinImageSize = 100

// ValidateImage checks that data holds a decodable raster image of at
// least MinImageSize bytes.
func ValidateImage(data []byte) error {
	if len(data) < MinImageSize {
		return fmt.Errorf("image data is empty or too small (%d bytes)", len(data))
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	return nil
}
