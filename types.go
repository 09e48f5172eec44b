package main

import (
	"fmt"
	"time"
)

// Resolution is one entry of a camera's target resolution list. A non-empty
// Keyword marks a full-resolution constant; otherwise Width is set and
// Height may be 0, meaning "derive from the source aspect ratio".
type Resolution struct {
	Keyword string
	Width   int
	Height  int
}

func (r Resolution) IsFullRes() bool {
	return r.Keyword != ""
}

func (r Resolution) String() string {
	if r.IsFullRes() {
		return ResFullres
	}
	if r.Height > 0 {
		return fmt.Sprintf("%dx%d", r.Width, r.Height)
	}
	return fmt.Sprintf("%d", r.Width)
}

// HourMinute holds an integer-encoded HHMM time of day or offset.
type HourMinute struct {
	Hour   int
	Minute int
}

// CameraConfig is one validated camera row. It is built once by parseCamera
// and resolveStructure and read-only afterwards, shared across all image
// processing for that camera.
type CameraConfig struct {
	Use         bool
	Expt        string
	Location    string
	CamNum      string
	Dataset     string
	DisplayName string

	Source      string
	Destination string
	ArchiveDest string

	ExptStart  time.Time
	ExptEnd    time.Time
	ExptEndNow bool

	Interval   int
	ImageTypes []string
	Method     string
	Mode       string

	Resolutions []Resolution
	Rotation    int

	FilenameDateMask string
	FnParse          string
	TsStructure      string
	FnStructure      string

	Timezone  HourMinute
	TimeShift int

	// JSONUpdates gates the camera.json sidecar entirely; LargeJSON gates
	// its thumbnail list, the only part that grows with the image count.
	JSONUpdates bool
	LargeJSON   bool
	SubFolders  bool
}

// ImageFile is one discovered source image, consumed by a single
// ImageProcessor invocation.
type ImageFile struct {
	Path string
	Type string
}

// SummaryRecord is the per camera/type sidecar document appended to
// camera.json at the destination root.
type SummaryRecord struct {
	Name            string   `json:"name"`
	Expt            string   `json:"expt"`
	UTC             string   `json:"utc"`
	TsVersion       string   `json:"ts_version"`
	ImageType       string   `json:"image_type"`
	Width           string   `json:"width"`
	Height          string   `json:"height"`
	WidthHires      string   `json:"width_hires"`
	HeightHires     string   `json:"height_hires"`
	PosixStart      string   `json:"posix_start"`
	PosixEnd        string   `json:"posix_end"`
	ExptEnd         string   `json:"expt_end"`
	PeriodInMinutes string   `json:"period_in_minutes"`
	Timezone        string   `json:"timezone"`
	Access          string   `json:"access"`
	WebRoot         string   `json:"webroot"`
	WebRootHires    string   `json:"webroot_hires"`
	Thumbnails      []string `json:"thumbnails"`
}

// RunStats accumulates per-run counters for the final totals line.
type RunStats struct {
	Processed  int64
	Skipped    int64
	OutOfRange int64
	Cameras    int
}
