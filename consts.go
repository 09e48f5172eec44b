package main

const (
	AppName    = "timestream"
	AppVersion = "2.0.0"

	DirPerms  = 0755
	FilePerms = 0644

	// Timestream v1 layout: hour-deep directory hierarchy plus a
	// second-resolution datestamp in the file name.
	TsDirLayout  = "2006/2006_01/2006_01_02/2006_01_02_15"
	TsDateLayout = "2006_01_02_15_04_05"

	ExifDateLayout   = "2006:01:02 15:04:05"
	ConfigDateLayout = "2006_01_02"
	LogStampLayout   = "20060102T150405"

	DefaultFilenameDateMask = "%Y_%m_%d_%H_%M_%S"

	FolderOriginals = "originals"
	FolderOutputs   = "outputs"

	StepOrig = "orig"
	StepRaw  = "raw"

	ResFullres = "fullres"

	MethodCopy    = "copy"
	MethodArchive = "archive"
	MethodMove    = "move"
	MethodResize  = "resize"
	MethodJSON    = "json"

	ModeBatch = "batch"
	ModeWatch = "watch"

	SummaryFile = "camera.json"

	// Destinations under this path segment are publicly served; summary
	// records only carry webroot URLs for those.
	WebRootSegment = "a_data"
	WebRootPrefix  = "http://phenocam.anu.edu.au/cloud/a_data"
)

var (
	FullResNames = map[string]bool{"original": true, "orig": true, "fullres": true}

	ImageTypeNames = map[string]bool{"raw": true, "jpg": true}

	RawFormats = map[string]bool{"cr2": true, "nef": true, "tif": true, "tiff": true}

	DateNowNames = map[string]bool{"now": true, "current": true}

	MethodNames = map[string]bool{
		MethodCopy: true, MethodArchive: true, MethodMove: true,
		MethodResize: true, MethodJSON: true,
	}

	ModeNames = map[string]bool{ModeBatch: true, ModeWatch: true}
)
