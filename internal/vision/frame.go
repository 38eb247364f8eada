// Package vision normalizes captured frames into the working images used for
// text extraction and template matching.
package vision

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

var (
	// ErrEmptyFrame is returned for images with a zero dimension.
	ErrEmptyFrame = errors.New("vision: frame has zero dimension")
	// ErrDecode is returned when an upload is not a readable image.
	ErrDecode = errors.New("vision: cannot decode image")
)

// Frame holds the working images derived from one captured frame.
// The caller owns the frame and must Close it.
type Frame struct {
	// Color is 3-channel BGR, at most MaxDimension on its larger side.
	Color gocv.Mat
	// Gray is the grayscale version of Color.
	Gray gocv.Mat
	// Binary is Gray after median blur and Otsu thresholding.
	Binary gocv.Mat
}

// Close releases the frame's Mats.
func (f *Frame) Close() {
	if f == nil {
		return
	}
	f.Color.Close()
	f.Gray.Close()
	f.Binary.Close()
}

// Decode reads encoded image bytes (PNG, JPEG, ...) into an 8-bit Mat, keeping
// grayscale images single-channel. The caller must Close the returned Mat.
func Decode(data []byte) (gocv.Mat, error) {
	if len(data) == 0 {
		return gocv.NewMat(), ErrEmptyFrame
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadAnyColor)
	if err != nil {
		mat.Close()
		return gocv.NewMat(), fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if mat.Empty() {
		mat.Close()
		return gocv.NewMat(), ErrDecode
	}

	if err := Validate(mat); err != nil {
		mat.Close()
		return gocv.NewMat(), err
	}

	return mat, nil
}

// Validate reports ErrEmptyFrame for an empty or zero-dimension image.
func Validate(img gocv.Mat) error {
	if img.Empty() || img.Rows() <= 0 || img.Cols() <= 0 {
		return ErrEmptyFrame
	}
	return nil
}
