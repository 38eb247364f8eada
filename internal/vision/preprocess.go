package vision

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Preprocessing constants.
const (
	// MaxDimension is the largest allowed side of the working image.
	MaxDimension = 1280
	// MedianBlurSize is the aperture of the denoising median blur.
	MedianBlurSize = 3
)

// ErrUnsupportedChannels is returned for images that are not gray, BGR or BGRA.
var ErrUnsupportedChannels = errors.New("vision: unsupported channel count")

// Preprocessor turns an arbitrary raster image into a Frame.
type Preprocessor struct {
	maxDimension int
	blurSize     int
}

// NewPreprocessor creates a Preprocessor with the default working size.
func NewPreprocessor() *Preprocessor {
	return &Preprocessor{
		maxDimension: MaxDimension,
		blurSize:     MedianBlurSize,
	}
}

// Prepare normalizes img into a Frame. It does not modify or take ownership of
// img; the caller must Close both img and the returned Frame.
//
// Steps:
//  1. Promote gray and BGRA input to 3-channel BGR
//  2. Downscale with area interpolation so the larger side is <= 1280
//  3. Convert to grayscale
//  4. Median blur (3px) and Otsu binarization for OCR
func (p *Preprocessor) Prepare(img gocv.Mat) (*Frame, error) {
	if err := Validate(img); err != nil {
		return nil, err
	}

	bgr, err := toBGR(img)
	if err != nil {
		return nil, err
	}

	if size, ok := ScaledSize(bgr.Cols(), bgr.Rows(), p.maxDimension); ok {
		resized := gocv.NewMat()
		gocv.Resize(bgr, &resized, size, 0, 0, gocv.InterpolationArea)
		bgr.Close()
		if resized.Empty() {
			resized.Close()
			return nil, fmt.Errorf("resize frame to %dx%d failed", size.X, size.Y)
		}
		bgr = resized
	}

	gray := gocv.NewMat()
	gocv.CvtColor(bgr, &gray, gocv.ColorBGRToGray)
	if gray.Empty() {
		bgr.Close()
		gray.Close()
		return nil, errors.New("convert frame to grayscale failed")
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.MedianBlur(gray, &blurred, p.blurSize)

	binary := gocv.NewMat()
	gocv.Threshold(blurred, &binary, 0, 255, gocv.ThresholdBinary+gocv.ThresholdOtsu)
	if binary.Empty() {
		bgr.Close()
		gray.Close()
		binary.Close()
		return nil, errors.New("binarize frame failed")
	}

	return &Frame{Color: bgr, Gray: gray, Binary: binary}, nil
}

// toBGR returns a new 3-channel copy of img.
func toBGR(img gocv.Mat) (gocv.Mat, error) {
	bgr := gocv.NewMat()

	switch img.Channels() {
	case 1:
		gocv.CvtColor(img, &bgr, gocv.ColorGrayToBGR)
	case 3:
		img.CopyTo(&bgr)
	case 4:
		gocv.CvtColor(img, &bgr, gocv.ColorBGRAToBGR)
	default:
		bgr.Close()
		return gocv.NewMat(), fmt.Errorf("%w: %d", ErrUnsupportedChannels, img.Channels())
	}

	if bgr.Empty() {
		bgr.Close()
		return gocv.NewMat(), errors.New("convert frame to BGR failed")
	}
	return bgr, nil
}

// ScaledSize returns the downscaled size for a width x height image so that
// its larger side does not exceed maxDim. It reports false when no resize is
// needed; images are never upscaled.
func ScaledSize(width, height, maxDim int) (image.Point, bool) {
	longest := max(width, height)
	if maxDim <= 0 || longest <= maxDim {
		return image.Point{X: width, Y: height}, false
	}

	scale := float64(maxDim) / float64(longest)
	w := int(float64(width) * scale)
	h := int(float64(height) * scale)

	// Very thin images must keep at least one pixel.
	return image.Point{X: max(w, 1), Y: max(h, 1)}, true
}
