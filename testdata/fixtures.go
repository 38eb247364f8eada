// Package testdata builds deterministic synthetic frames for tests.
package testdata

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"
)

// LogoRect is where PatternFrame draws its logo-like block.
var LogoRect = image.Rect(200, 120, 360, 220)

// PatternFrame returns a BGR frame with a textured background and a
// distinctive logo block at LogoRect. The caller must Close it.
func PatternFrame(rows, cols int) gocv.Mat {
	frame := BackgroundFrame(rows, cols)
	gocv.Rectangle(&frame, LogoRect, color.RGBA{240, 240, 240, 0}, -1)
	gocv.Circle(&frame, image.Pt(LogoRect.Min.X+40, LogoRect.Min.Y+50), 30, color.RGBA{20, 20, 200, 0}, -1)
	gocv.Rectangle(&frame, image.Rect(LogoRect.Min.X+90, LogoRect.Min.Y+20, LogoRect.Min.X+140, LogoRect.Min.Y+80), color.RGBA{200, 20, 20, 0}, -1)

	return frame
}

// BackgroundFrame returns the textured BGR background of PatternFrame with
// no logo. The caller must Close it.
func BackgroundFrame(rows, cols int) gocv.Mat {
	frame := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8UC3)
	frame.SetTo(gocv.NewScalar(30, 30, 30, 0))

	// Background grid so that no region is flat.
	for x := 0; x < cols; x += 40 {
		gocv.Line(&frame, image.Pt(x, 0), image.Pt(x, rows-1), color.RGBA{70, 70, 70, 0}, 1)
	}
	for y := 0; y < rows; y += 40 {
		gocv.Line(&frame, image.Pt(0, y), image.Pt(cols-1, y), color.RGBA{70, 70, 70, 0}, 1)
	}
	return frame
}

// GrayPatternFrame returns PatternFrame converted to grayscale.
func GrayPatternFrame(rows, cols int) gocv.Mat {
	frame := PatternFrame(rows, cols)
	defer frame.Close()

	gray := gocv.NewMat()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
	return gray
}

// Crop returns a copy of the rect region of img.
func Crop(img gocv.Mat, rect image.Rectangle) gocv.Mat {
	region := img.Region(rect)
	defer region.Close()
	return region.Clone()
}

// LogoTemplate returns the grayscale logo block as a standalone image.
func LogoTemplate() gocv.Mat {
	gray := GrayPatternFrame(480, 640)
	defer gray.Close()
	return Crop(gray, LogoRect)
}

// WriteImage encodes img into dir/name and returns the path.
func WriteImage(dir, name string, img gocv.Mat) (string, error) {
	path := filepath.Join(dir, name)
	if ok := gocv.IMWrite(path, img); !ok {
		return "", fmt.Errorf("write image %s", name)
	}
	return path, nil
}

// EncodePNG returns img as PNG bytes.
func EncodePNG(img gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.PNGFileExt, img)
	if err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

// WriteFile writes raw bytes into dir/name, for unreadable-file cases.
func WriteFile(dir, name string, data []byte) error {
	return os.WriteFile(filepath.Join(dir, name), data, 0644)
}
