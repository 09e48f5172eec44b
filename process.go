package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// procError tags a pipeline failure with an explicit severity instead of
// encoding it in the error's dynamic type. Skips drop one image; fatals
// abort the whole run.
type procSeverity int

const (
	severitySkip procSeverity = iota
	severityFatal
)

type procError struct {
	severity procSeverity
	msg      string
	err      error
}

func (e *procError) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *procError) Unwrap() error {
	return e.err
}

func skipErrf(format string, args ...interface{}) error {
	return &procError{severity: severitySkip, msg: fmt.Sprintf(format, args...)}
}

func skipWrap(err error, format string, args ...interface{}) error {
	return &procError{severity: severitySkip, msg: fmt.Sprintf(format, args...), err: err}
}

// ProcStatus is the terminal state of one image's pass through the
// pipeline.
type ProcStatus int

const (
	// ProcDone means the image went through its method's full path.
	ProcDone ProcStatus = iota
	// ProcOutOfRange means the capture time fell outside the experiment
	// window; nothing was touched.
	ProcOutOfRange
	// ProcSkipped means a precondition or I/O failure dropped the image;
	// the batch continued.
	ProcSkipped
)

// ImageProcessor runs the per-image state machine for one camera. It is
// stateless apart from read-only access to the shared config, so any
// number of workers can drive it at once.
type ImageProcessor struct {
	Camera   *CameraConfig
	Resolver DateResolver
	Index    *ImageIndex
}

// Process runs one image through the pipeline. Every per-image failure is
// caught here and downgraded to a logged skip; only fatal errors surface.
func (p *ImageProcessor) Process(img ImageFile) (ProcStatus, error) {
	status, err := p.run(img)
	if IsError(err) {
		var pe *procError
		if errors.As(err, &pe) && pe.severity == severityFatal {
			return ProcSkipped, err
		}
		logger.Warn().Err(err).Str("file", img.Path).Msg("skipping image")
		return ProcSkipped, nil
	}
	return status, nil
}

func (p *ImageProcessor) run(img ImageFile) (ProcStatus, error) {
	cam := p.Camera

	date, ok := p.Resolver.Resolve(img.Path, cam.FilenameDateMask, cam.Interval*60, cam.TimeShift)
	if !ok {
		return ProcSkipped, skipErrf("couldn't get date for image")
	}

	if !p.inWindow(date) {
		logger.Debug().Str("file", img.Path).
			Time("date", date).
			Msg("outside of experiment date range")
		return ProcOutOfRange, nil
	}

	switch cam.Method {
	case MethodJSON:
		// Summary metadata is recomputed by the orchestrator; nothing to
		// move here.
		return ProcDone, nil
	case MethodResize:
		if err := p.resizeToOutputs(img.Path, date); IsError(err) {
			return ProcSkipped, err
		}
		return ProcDone, nil
	case MethodArchive:
		// Archive the pristine original before anything can transform it.
		if err := p.archive(img); IsError(err) {
			return ProcSkipped, err
		}
	}

	if err := p.timestream(img, date); IsError(err) {
		if cam.Method != MethodArchive {
			return ProcSkipped, err
		}
		// The original is already archived, so a failed timestream pass
		// still falls through to cleanup.
		logger.Warn().Err(err).Str("file", img.Path).Msg("timestreaming failed after archive")
	}

	if cam.Method == MethodMove || cam.Method == MethodArchive {
		if err := os.Remove(img.Path); IsError(err) {
			logger.Error().Err(err).Str("file", img.Path).Msg("could not delete source image")
		} else {
			logger.Debug().Str("file", img.Path).Msg("deleted source image")
		}
	}

	return ProcDone, nil
}

// inWindow checks the experiment date range. An open-ended experiment has
// no upper bound.
func (p *ImageProcessor) inWindow(date time.Time) bool {
	if date.Before(p.Camera.ExptStart) {
		return false
	}
	return p.Camera.ExptEndNow || !date.After(p.Camera.ExptEnd)
}

// archive copies the byte-identical original into the archive tree.
func (p *ImageProcessor) archive(img ImageFile) error {
	cam := p.Camera
	tsName := makeTimestreamName(cam, ResFullres, StepOrig)
	dest := filepath.Join(cam.ArchiveDest, cam.Expt, img.Type, tsName, filepath.Base(img.Path))

	if err := makeDirs(filepath.Dir(dest)); IsError(err) {
		return skipWrap(err, "could not make archive dir")
	}
	dest = dontClobber(dest)

	if err := fileCopy(img.Path, dest, true); IsError(err) {
		return skipWrap(err, "couldn't archive image")
	}

	srcSum, err := fileChecksum(img.Path)
	if err == nil {
		destSum, err := fileChecksum(dest)
		if err == nil && srcSum != destSum {
			return skipErrf("archive copy differs from source")
		}
	}

	logger.Debug().Str("file", img.Path).Str("archive", dest).Msg("archived image")
	return nil
}

// timestream moves the image into its date-encoded place under the
// destination tree, then applies rotation and extra resolutions.
func (p *ImageProcessor) timestream(img ImageFile, date time.Time) error {
	cam := p.Camera

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(img.Path), "."))
	step := StepOrig
	if img.Type == "raw" || RawFormats[ext] {
		step = StepRaw
	}

	tsName := makeTimestreamName(cam, ResFullres, step)
	rel, err := newFileName(date, tsName, 0, ext)
	if IsError(err) {
		return err
	}

	dest := filepath.Join(
		cam.Destination,
		expandStructure(cam, FolderOriginals, ResFullres, StepOrig),
		rel)

	if err := makeDirs(filepath.Dir(dest)); IsError(err) {
		return skipWrap(err, "could not make dir %q", filepath.Dir(dest))
	}
	dest = dontClobber(dest)

	if err := fileCopy(img.Path, dest, true); IsError(err) {
		return skipWrap(err, "couldn't copy %q to %q", img.Path, dest)
	}
	logger.Info().Str("from", img.Path).Str("to", dest).Msg("copied image")

	if cam.Rotation != 0 {
		if err := rotateImage(dest, cam.Rotation); IsError(err) {
			return skipWrap(err, "couldn't rotate %q", dest)
		}
		// Rotation re-encodes the file; put the capture time back.
		if werr := p.Resolver.Meta.WriteCaptureTime(dest, date); IsError(werr) {
			logger.Debug().Err(werr).Str("file", dest).Msg("unable to restamp capture time")
		}
	}

	if len(cam.Resolutions) > 1 {
		if err := p.resizeToOutputs(dest, date); IsError(err) {
			return err
		}
	}

	if p.Index != nil {
		p.recordImage(img, dest, date)
	}

	return nil
}

// resizeToOutputs writes one derivative per extra configured resolution
// into its resolution-tagged outputs subtree.
func (p *ImageProcessor) resizeToOutputs(src string, date time.Time) error {
	cam := p.Camera
	if len(cam.Resolutions) < 2 {
		return nil
	}

	srcWidth, srcHeight, err := imageSize(src)
	if IsError(err) {
		return skipWrap(err, "couldn't read image size of %q", src)
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(src), "."))

	for _, res := range cam.Resolutions[1:] {
		if res.IsFullRes() {
			continue
		}
		fit := fitResolution(res, srcWidth, srcHeight)
		resTag := fmt.Sprintf("%d", fit.Width)

		tsName := makeTimestreamName(cam, resTag, StepOrig)
		rel, err := newFileName(date, tsName, 0, ext)
		if IsError(err) {
			return err
		}

		dest := filepath.Join(
			cam.Destination,
			expandStructure(cam, FolderOutputs, resTag, StepOrig),
			rel)
		if pathExists(dest) {
			continue
		}
		if err := makeDirs(filepath.Dir(dest)); IsError(err) {
			return skipWrap(err, "could not make dir %q", filepath.Dir(dest))
		}

		if err := resizeImage(src, dest, res.Width, res.Height); IsError(err) {
			return skipWrap(err, "couldn't resize %q", src)
		}
		if werr := p.Resolver.Meta.WriteCaptureTime(dest, date); IsError(werr) {
			logger.Debug().Err(werr).Str("file", dest).Msg("unable to stamp resized image")
		}
		logger.Debug().Str("file", dest).Int("width", fit.Width).Msg("wrote resized image")
	}

	return nil
}

func (p *ImageProcessor) recordImage(img ImageFile, dest string, date time.Time) {
	sum, err := fileChecksum(dest)
	if IsError(err) {
		logger.Debug().Err(err).Str("file", dest).Msg("could not checksum for index")
		return
	}
	var size int64
	if info, err := os.Stat(dest); err == nil {
		size = info.Size()
	}
	rec := &ImageRecord{
		Checksum:    sum,
		SourcePath:  img.Path,
		DestPath:    dest,
		Camera:      p.Camera.Expt + "-" + p.Camera.Location + "-" + p.Camera.CamNum,
		ImageType:   img.Type,
		Method:      p.Camera.Method,
		CaptureTime: date,
		Size:        size,
	}
	if err := p.Index.Record(rec); IsError(err) {
		logger.Debug().Err(err).Str("file", dest).Msg("could not index image")
	}
}
