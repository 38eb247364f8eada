package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gocv.io/x/gocv"

	"github.com/ayusman/gamesight/internal/capture"
)

var errNoTitleMatch = errors.New("no game matched the window title")

func newDetectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <image>",
		Short: "Detect the game in an image file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.build(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}

			result, err := rt.app.DetectImage(cmd.Context(), data)
			if err != nil {
				return err
			}
			return writeJSON(cmd, result)
		},
	}
}

func newTitleCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "title <window title>",
		Short: "Match a window title against known games",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.build(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			title := strings.Join(args, " ")
			result, ok := rt.app.DetectWindowTitle(cmd.Context(), title)
			if !ok {
				return fmt.Errorf("%w: %q", errNoTitleMatch, title)
			}
			return writeJSON(cmd, result)
		},
	}
}

func newGrabCommand(ctx *commandContext) *cobra.Command {
	var (
		device   int
		width    int
		height   int
		warmup   int
		savePath string
	)

	cmd := &cobra.Command{
		Use:   "grab",
		Short: "Capture one frame from a capture device and detect the game",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.build(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			camera := capture.NewCamera(capture.Config{DeviceID: device, Width: width, Height: height})
			frame, err := capture.Grab(camera, warmup)
			if err != nil {
				return fmt.Errorf("grab frame from device %d: %w", device, err)
			}
			defer frame.Close()

			if savePath != "" {
				if !gocv.IMWrite(savePath, frame) {
					return fmt.Errorf("write frame to %s", savePath)
				}
			}

			return writeJSON(cmd, rt.app.DetectFrame(cmd.Context(), frame))
		},
	}

	cmd.Flags().IntVarP(&device, "device", "d", 0, "Capture device index")
	cmd.Flags().IntVar(&width, "width", capture.DefaultWidth, "Requested frame width")
	cmd.Flags().IntVar(&height, "height", capture.DefaultHeight, "Requested frame height")
	cmd.Flags().IntVar(&warmup, "warmup", capture.DefaultWarmup, "Frames to discard after opening the device")
	cmd.Flags().StringVarP(&savePath, "save", "o", "", "Also write the captured frame to this file")
	return cmd
}
