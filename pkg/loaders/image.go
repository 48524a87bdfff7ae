package loaders

import (
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"os"

	_ "golang.org/x/image/bmp"  // BMP decoder
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // TIFF decoder
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/df07/go-scene-raytracer/pkg/core"
)

// ImageData contains loaded image data as Vec3 color array
type ImageData struct {
	Width  int
	Height int
	Pixels []core.Vec3 // Row-major from the top row, channels in [0,1]
}

// LoadImage loads a PNG, JPEG, GIF, BMP, TIFF or WebP image.
// When maxSize is positive, images whose larger side exceeds it are scaled down
// to fit, keeping the aspect ratio.
func LoadImage(filename string, maxSize int) (*ImageData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", filename, err)
	}

	return ImageDataFrom(img, maxSize), nil
}

// ImageDataFrom converts a decoded image to linear float colors
func ImageDataFrom(img image.Image, maxSize int) *ImageData {
	bounds := img.Bounds()
	width, height := fitWithin(bounds.Dx(), bounds.Dy(), maxSize)

	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	if width == bounds.Dx() && height == bounds.Dy() {
		xdraw.Draw(rgba, rgba.Bounds(), img, bounds.Min, xdraw.Src)
	} else {
		xdraw.CatmullRom.Scale(rgba, rgba.Bounds(), img, bounds, xdraw.Src, nil)
	}

	pixels := make([]core.Vec3, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := rgba.PixOffset(x, y)
			pixels[y*width+x] = core.NewVec3(
				float64(rgba.Pix[i])/255.0,
				float64(rgba.Pix[i+1])/255.0,
				float64(rgba.Pix[i+2])/255.0,
			)
		}
	}

	return &ImageData{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}
}

func fitWithin(width, height, maxSize int) (int, int) {
	if maxSize <= 0 || (width <= maxSize && height <= maxSize) {
		return width, height
	}
	if width >= height {
		return maxSize, max(1, height*maxSize/width)
	}
	return max(1, width*maxSize/height), maxSize
}
