package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// makeTimestreamName expands the camera's resolved file-name template with
// a resolution tag and step tag.
func makeTimestreamName(cfg *CameraConfig, res, step string) string {
	name := strings.ReplaceAll(cfg.FnStructure, "{res}", res)
	return strings.ReplaceAll(name, "{step}", step)
}

// expandStructure expands the camera's resolved directory template.
func expandStructure(cfg *CameraConfig, folder, res, step string) string {
	dir := strings.ReplaceAll(cfg.TsStructure, "{folder}", folder)
	dir = strings.ReplaceAll(dir, "{res}", res)
	return strings.ReplaceAll(dir, "{step}", step)
}

// newFileName builds the date-encoded relative path of one timestream
// image: the hour-deep directory hierarchy plus the stamped file name.
// A zero timestamp or empty name is a hard precondition failure that
// skips the image, never a silent default.
func newFileName(t time.Time, name string, subsec int, ext string) (string, error) {
	if t.IsZero() {
		return "", skipErrf("new file name needs a valid date")
	}
	if name == "" {
		return "", skipErrf("new file name needs a timestream name")
	}
	file := fmt.Sprintf("%s_%s_%02d.%s", name, t.Format(TsDateLayout), subsec, ext)
	return filepath.Join(t.Format(TsDirLayout), file), nil
}
