package vision

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"
)

func TestScaledSize(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		height     int
		wantSize   image.Point
		wantResize bool
	}{
		{
			name:       "already small",
			width:      640,
			height:     480,
			wantSize:   image.Point{X: 640, Y: 480},
			wantResize: false,
		},
		{
			name:       "exactly max",
			width:      1280,
			height:     720,
			wantSize:   image.Point{X: 1280, Y: 720},
			wantResize: false,
		},
		{
			name:       "full hd landscape",
			width:      1920,
			height:     1080,
			wantSize:   image.Point{X: 1280, Y: 720},
			wantResize: true,
		},
		{
			name:       "portrait",
			width:      1000,
			height:     2560,
			wantSize:   image.Point{X: 500, Y: 1280},
			wantResize: true,
		},
		{
			name:       "thin strip keeps one pixel",
			width:      5000,
			height:     1,
			wantSize:   image.Point{X: 1280, Y: 1},
			wantResize: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size, resize := ScaledSize(tt.width, tt.height, MaxDimension)
			if resize != tt.wantResize {
				t.Errorf("resize = %v, want %v", resize, tt.wantResize)
			}
			if size != tt.wantSize {
				t.Errorf("size = %v, want %v", size, tt.wantSize)
			}
		})
	}
}

func TestPreprocessor_Prepare(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	p := NewPreprocessor()

	t.Run("downscales large color frame", func(t *testing.T) {
		img := gocv.NewMatWithSize(1080, 1920, gocv.MatTypeCV8UC3)
		defer img.Close()
		img.SetTo(gocv.NewScalar(40, 80, 120, 0))

		frame, err := p.Prepare(img)
		if err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		defer frame.Close()

		if frame.Color.Cols() != 1280 || frame.Color.Rows() != 720 {
			t.Errorf("color size = %dx%d, want 1280x720", frame.Color.Cols(), frame.Color.Rows())
		}
		if frame.Color.Channels() != 3 {
			t.Errorf("color channels = %d, want 3", frame.Color.Channels())
		}
		if frame.Gray.Channels() != 1 || frame.Binary.Channels() != 1 {
			t.Error("gray and binary should be single-channel")
		}
	})

	t.Run("does not upscale", func(t *testing.T) {
		img := gocv.NewMatWithSize(120, 200, gocv.MatTypeCV8UC3)
		defer img.Close()

		frame, err := p.Prepare(img)
		if err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		defer frame.Close()

		if frame.Color.Cols() != 200 || frame.Color.Rows() != 120 {
			t.Errorf("color size = %dx%d, want 200x120", frame.Color.Cols(), frame.Color.Rows())
		}
	})

	t.Run("promotes grayscale input", func(t *testing.T) {
		img := gocv.NewMatWithSize(100, 100, gocv.MatTypeCV8UC1)
		defer img.Close()

		frame, err := p.Prepare(img)
		if err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		defer frame.Close()

		if frame.Color.Channels() != 3 {
			t.Errorf("color channels = %d, want 3", frame.Color.Channels())
		}
	})

	t.Run("binary image is black and white", func(t *testing.T) {
		img := gocv.NewMatWithSize(200, 300, gocv.MatTypeCV8UC3)
		defer img.Close()
		gocv.Rectangle(&img, image.Rect(50, 50, 150, 150), color.RGBA{255, 255, 255, 0}, -1)

		frame, err := p.Prepare(img)
		if err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		defer frame.Close()

		for row := 0; row < frame.Binary.Rows(); row += 10 {
			for col := 0; col < frame.Binary.Cols(); col += 10 {
				v := frame.Binary.GetUCharAt(row, col)
				if v != 0 && v != 255 {
					t.Fatalf("binary pixel (%d,%d) = %d, want 0 or 255", row, col, v)
				}
			}
		}
		if gocv.CountNonZero(frame.Binary) == 0 {
			t.Error("expected white pixels in binarized frame")
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		img := gocv.NewMatWithSize(900, 1600, gocv.MatTypeCV8UC3)
		defer img.Close()
		gocv.PutText(&img, "VALORANT", image.Pt(100, 400), gocv.FontHersheySimplex, 6, color.RGBA{255, 255, 255, 0}, 8)

		a, err := p.Prepare(img)
		if err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		defer a.Close()
		b, err := p.Prepare(img)
		if err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		defer b.Close()

		if !bytes.Equal(a.Binary.ToBytes(), b.Binary.ToBytes()) {
			t.Error("binary output differs between identical inputs")
		}
		if !bytes.Equal(a.Color.ToBytes(), b.Color.ToBytes()) {
			t.Error("color output differs between identical inputs")
		}
	})

	t.Run("empty input is a validation error", func(t *testing.T) {
		img := gocv.NewMat()
		defer img.Close()

		frame, err := p.Prepare(img)
		if !errors.Is(err, ErrEmptyFrame) {
			t.Errorf("Prepare() error = %v, want ErrEmptyFrame", err)
		}
		if frame != nil {
			frame.Close()
			t.Error("expected nil frame")
		}
	})
}

func TestDecode(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	t.Run("empty payload", func(t *testing.T) {
		mat, err := Decode(nil)
		defer mat.Close()
		if !errors.Is(err, ErrEmptyFrame) {
			t.Errorf("Decode(nil) error = %v, want ErrEmptyFrame", err)
		}
	})

	t.Run("garbage payload", func(t *testing.T) {
		mat, err := Decode([]byte("definitely not an image"))
		defer mat.Close()
		if !errors.Is(err, ErrDecode) {
			t.Errorf("Decode() error = %v, want ErrDecode", err)
		}
	})

	t.Run("png round trip", func(t *testing.T) {
		src := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
		defer src.Close()

		buf, err := gocv.IMEncode(gocv.PNGFileExt, src)
		if err != nil {
			t.Fatalf("IMEncode() error = %v", err)
		}
		defer buf.Close()

		mat, err := Decode(buf.GetBytes())
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		defer mat.Close()

		if mat.Cols() != 64 || mat.Rows() != 48 {
			t.Errorf("decoded size = %dx%d, want 64x48", mat.Cols(), mat.Rows())
		}
	})
}
