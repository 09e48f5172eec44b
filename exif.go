package main

import (
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// MetadataIO reads and writes the embedded capture time of an image.
// Both operations report failure through the error return; neither may
// panic, so the date cascade can fall through cleanly.
type MetadataIO interface {
	ReadCaptureTime(path string) (time.Time, error)
	WriteCaptureTime(path string, t time.Time) error
}

// exifIO is the production implementation: goexif for reads, the exiftool
// binary for best-effort writes.
type exifIO struct{}

func (exifIO) ReadCaptureTime(path string) (time.Time, error) {
	f, err := os.Open(path)
	if IsError(err) {
		return time.Time{}, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if IsError(err) {
		return time.Time{}, err
	}

	return x.DateTime()
}

func (exifIO) WriteCaptureTime(path string, t time.Time) error {
	out, err := exec.Command("exiftool", "-overwrite_original",
		"-DateTimeOriginal="+t.Format(ExifDateLayout), path).CombinedOutput()
	if IsError(err) {
		return fmt.Errorf("exiftool write on %s failed: %v: %s", path, err, out)
	}
	return nil
}
