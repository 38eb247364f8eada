// Package capture grabs single frames from a capture device (webcam or
// HDMI capture card) using GoCV.
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Default device settings. Capture cards usually deliver the console's
// native resolution.
const (
	DefaultWidth  = 1920
	DefaultHeight = 1080
	DefaultWarmup = 5
)

// ErrCameraNotOpen is returned when trying to read from a device that is not open.
var ErrCameraNotOpen = errors.New("camera is not open")

// Source is a frame source.
type Source interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	IsOpen() bool
}

// Config holds device options.
type Config struct {
	DeviceID int
	Width    int
	Height   int
}

// DefaultConfig returns a Config for device 0 at 1920x1080.
func DefaultConfig() Config {
	return Config{Width: DefaultWidth, Height: DefaultHeight}
}

// Camera reads frames from a capture device.
type Camera struct {
	config  Config
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
}

// NewCamera creates a Camera. Zero width or height keeps the device default.
func NewCamera(config Config) *Camera {
	return &Camera{config: config}
}

// DeviceID returns the configured device index.
func (c *Camera) DeviceID() int {
	return c.config.DeviceID
}

// Open opens the device for capturing frames.
func (c *Camera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.config.DeviceID)
	if err != nil {
		return fmt.Errorf("open capture device %d: %w", c.config.DeviceID, err)
	}

	if c.config.Width > 0 && c.config.Height > 0 {
		capture.Set(gocv.VideoCaptureFrameWidth, float64(c.config.Width))
		capture.Set(gocv.VideoCaptureFrameHeight, float64(c.config.Height))
	}

	c.capture = capture
	c.running = true

	return nil
}

// Close closes the device and releases resources.
func (c *Camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false

	return err
}

// ReadFrame reads a single frame from the device.
// The caller is responsible for closing the returned Mat.
func (c *Camera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		return nil, errors.New("failed to read frame from camera")
	}

	if mat.Empty() {
		mat.Close()
		return nil, errors.New("captured frame is empty")
	}

	return &mat, nil
}

// IsOpen returns true if the device is currently open.
func (c *Camera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}

// Grab opens src, drops warmup frames, returns the next frame and closes src
// again. Capture cards often deliver black frames right after opening.
// The caller must Close the returned Mat.
func Grab(src Source, warmup int) (gocv.Mat, error) {
	if err := src.Open(); err != nil {
		return gocv.NewMat(), err
	}
	defer src.Close()

	for i := 0; i < warmup; i++ {
		frame, err := src.ReadFrame()
		if err != nil {
			return gocv.NewMat(), fmt.Errorf("warmup frame %d: %w", i, err)
		}
		frame.Close()
	}

	frame, err := src.ReadFrame()
	if err != nil {
		return gocv.NewMat(), err
	}
	return *frame, nil
}
