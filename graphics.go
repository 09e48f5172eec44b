package main

import (
	"fmt"
	"image/color"

	"github.com/disintegration/imaging"
)

func imageSize(path string) (int, int, error) {
	img, err := imaging.Open(path)
	if IsError(err) {
		return 0, 0, fmt.Errorf("failed to open image: %v", err)
	}
	size := img.Bounds().Size()
	return size.X, size.Y, nil
}

// fitResolution fills in a missing height from the source aspect ratio.
// Full-resolution entries and complete WxH pairs pass through unchanged.
func fitResolution(res Resolution, srcWidth, srcHeight int) Resolution {
	if res.IsFullRes() || res.Height > 0 || srcWidth == 0 {
		return res
	}
	return Resolution{
		Width:  res.Width,
		Height: srcHeight * res.Width / srcWidth,
	}
}

// resizeImage writes a resized copy of srcFile to destFile. A zero height
// preserves the aspect ratio.
func resizeImage(srcFile, destFile string, width, height int) error {
	src, err := imaging.Open(srcFile)
	if IsError(err) {
		return fmt.Errorf("failed to open image: %v", err)
	}

	resized := imaging.Resize(src, width, height, imaging.Lanczos)

	if err := imaging.Save(resized, destFile); IsError(err) {
		return fmt.Errorf("failed to save image: %v", err)
	}

	return nil
}

// rotateImage rotates the file in place by the given angle in degrees.
func rotateImage(path string, angle int) error {
	src, err := imaging.Open(path)
	if IsError(err) {
		return fmt.Errorf("failed to open image: %v", err)
	}

	var rotated = src
	switch angle {
	case 0:
		return nil
	case 90:
		rotated = imaging.Rotate90(src)
	case 180:
		rotated = imaging.Rotate180(src)
	case 270:
		rotated = imaging.Rotate270(src)
	default:
		rotated = imaging.Rotate(src, float64(angle), color.Black)
	}

	if err := imaging.Save(rotated, path); IsError(err) {
		return fmt.Errorf("failed to save image: %v", err)
	}

	return nil
}
