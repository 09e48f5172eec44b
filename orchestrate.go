package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Orchestrator drives the whole conversion run: cameras strictly one after
// another, images of each camera/type batch through a bounded worker pool.
type Orchestrator struct {
	Cameras []CameraConfig
	Threads int
	Meta    MetadataIO
	Index   *ImageIndex
}

// poolSize bounds the per-batch worker count, keeping one core free for
// the rest of the system. One configured thread means strictly sequential
// execution.
func poolSize(threads int) int {
	limit := runtime.NumCPU() - 1
	if threads > 0 && threads < limit {
		limit = threads
	}
	if limit < 1 {
		limit = 1
	}
	return limit
}

// Run processes every camera and reports run totals. The only fatal
// conditions are an unreachable source tree; everything else degrades to
// per-image skips.
func (o *Orchestrator) Run() (RunStats, error) {
	stats := RunStats{}
	start := time.Now()

	for i := range o.Cameras {
		cam := &o.Cameras[i]
		if err := o.runCamera(cam, &stats); IsError(err) {
			return stats, err
		}
		stats.Cameras++
	}

	elapsed := time.Since(start).Seconds()
	PrintLn("Processed a total of %d images in %.2f seconds", stats.Processed, elapsed)
	if o.Index != nil {
		if indexed, err := o.Index.Count(); err == nil {
			PrintLn("Image index now holds %d images", indexed)
		} else {
			logger.Error().Err(err).Msg("could not count indexed images")
		}
	}
	logger.Info().
		Int64("processed", stats.Processed).
		Int64("skipped", stats.Skipped).
		Int64("out_of_range", stats.OutOfRange).
		Float64("seconds", elapsed).
		Msg("run finished")

	return stats, nil
}

func (o *Orchestrator) runCamera(cam *CameraConfig, stats *RunStats) error {
	PrintLn("Processing experiment %s, location %s", cam.Expt, cam.Location)
	PrintLn("Images are coming from %s, being put in %s", cam.Source, cam.Destination)
	logger.Info().
		Str("expt", cam.Expt).Str("location", cam.Location).
		Str("source", cam.Source).Str("destination", cam.Destination).
		Msg("processing camera")

	byType, err := locateImages(cam)
	if IsError(err) {
		return err
	}

	types := make([]string, 0, len(byType))
	for imageType := range byType {
		types = append(types, imageType)
	}
	sort.Strings(types)

	resolver := DateResolver{Meta: o.Meta}
	proc := &ImageProcessor{Camera: cam, Resolver: resolver, Index: o.Index}

	var summaries []SummaryRecord
	for _, imageType := range types {
		images := byType[imageType]
		// Sorted submission keeps subsecond ordering and thumbnail picks
		// reproducible.
		sort.Strings(images)
		PrintLn("%d %s images from this camera", len(images), imageType)

		// Summaries sample the sources, so they are assembled before a
		// move/archive pass can delete them.
		summary := o.summarize(cam, imageType, images, resolver)

		o.runBatch(proc, imageType, images, stats)

		if cam.JSONUpdates {
			summaries = append(summaries, summary)
		}
	}

	if len(summaries) > 0 {
		if err := writeSummaries(cam, summaries); IsError(err) {
			logger.Error().Err(err).Str("expt", cam.Expt).Msg("could not write camera summary")
		}
	}

	return nil
}

func (o *Orchestrator) runBatch(proc *ImageProcessor, imageType string, images []string, stats *RunStats) {
	total := len(images)
	if total == 0 {
		return
	}

	workers := poolSize(o.Threads)
	logger.Info().Int("workers", workers).Str("type", imageType).Msg("starting worker pool")

	var count int64
	g := new(errgroup.Group)
	g.SetLimit(workers)

	for _, image := range images {
		image := image
		g.Go(func() error {
			status, err := proc.Process(ImageFile{Path: image, Type: imageType})
			if IsError(err) {
				logger.Error().Err(err).Str("file", image).Msg("processing failed")
				atomic.AddInt64(&stats.Skipped, 1)
			} else {
				switch status {
				case ProcDone:
					atomic.AddInt64(&stats.Processed, 1)
				case ProcOutOfRange:
					atomic.AddInt64(&stats.OutOfRange, 1)
				case ProcSkipped:
					atomic.AddInt64(&stats.Skipped, 1)
				}
			}
			done := atomic.AddInt64(&count, 1)
			PrintReplaceLn("[%s] Processed %5d/%d %s images", AppName, done, total, imageType)
			return nil
		})
	}
	_ = g.Wait()

	PrintLn("Processed %5d images. Finished this cam!", count)
}

// webRootFor derives the public URL base for a destination, or "" when the
// destination is not under a recognized public data segment.
func webRootFor(cam *CameraConfig, folder, res string) string {
	if !strings.Contains(cam.Destination, WebRootSegment) {
		return ""
	}
	suffix := strings.SplitN(cam.Destination, WebRootSegment, 2)[1]
	structure := expandStructure(cam, folder, res, StepOrig)
	return WebRootPrefix + filepath.ToSlash(suffix) + "/" + filepath.ToSlash(structure)
}

// summarize assembles the per camera/type sidecar record: effective
// resolution, true in-window time range and midpoint thumbnails.
func (o *Orchestrator) summarize(cam *CameraConfig, imageType string, images []string, resolver DateResolver) SummaryRecord {
	name := cam.DisplayName
	if name == "" {
		name = cam.Expt + "-" + cam.Location + "-" + cam.CamNum
	}

	rec := SummaryRecord{
		Name:            name,
		Expt:            cam.Expt,
		UTC:             "false",
		TsVersion:       "1",
		ImageType:       strings.ToUpper(imageType),
		PeriodInMinutes: strconv.Itoa(cam.Interval),
		Timezone:        strconv.Itoa(cam.Timezone.Hour),
		Access:          "0",
		Thumbnails:      []string{},
	}

	if cam.ExptEndNow {
		rec.ExptEnd = "now"
	} else {
		rec.ExptEnd = cam.ExptEnd.Format(ConfigDateLayout)
	}

	if len(images) == 0 {
		return rec
	}

	srcWidth, srcHeight, err := imageSize(images[0])
	if IsError(err) {
		logger.Debug().Err(err).Str("file", images[0]).Msg("could not probe image size")
	}
	if cam.Rotation == 90 || cam.Rotation == 270 {
		srcWidth, srcHeight = srcHeight, srcWidth
	}
	rec.WidthHires = strconv.Itoa(srcWidth)
	rec.HeightHires = strconv.Itoa(srcHeight)

	outRes := ResFullres
	if len(cam.Resolutions) > 1 && !cam.Resolutions[1].IsFullRes() {
		fit := fitResolution(cam.Resolutions[1], srcWidth, srcHeight)
		rec.Width = strconv.Itoa(fit.Width)
		rec.Height = strconv.Itoa(fit.Height)
		outRes = strconv.Itoa(fit.Width)
	} else {
		rec.Width = strconv.Itoa(srcWidth)
		rec.Height = strconv.Itoa(srcHeight)
	}

	rec.WebRoot = webRootFor(cam, FolderOutputs, outRes)
	rec.WebRootHires = webRootFor(cam, FolderOriginals, ResFullres)

	roundSecs := cam.Interval * 60
	inWindow := func(t time.Time) bool {
		return !t.Before(cam.ExptStart) && (cam.ExptEndNow || !t.After(cam.ExptEnd))
	}

	for _, image := range images {
		if t, ok := resolver.Resolve(image, cam.FilenameDateMask, roundSecs, cam.TimeShift); ok && inWindow(t) {
			rec.PosixStart = strconv.FormatInt(t.Unix(), 10)
			break
		}
	}
	for i := len(images) - 1; i >= 0; i-- {
		if t, ok := resolver.Resolve(images[i], cam.FilenameDateMask, roundSecs, cam.TimeShift); ok && inWindow(t) {
			rec.PosixEnd = strconv.FormatInt(t.Unix(), 10)
			break
		}
	}

	if cam.LargeJSON {
		rec.Thumbnails = o.thumbnails(cam, images, resolver)
	}

	return rec
}

// thumbnails picks three images around the middle of the sorted list and
// resolves them to public URLs, when the destination has one.
func (o *Orchestrator) thumbnails(cam *CameraConfig, images []string, resolver DateResolver) []string {
	if len(images) <= 3 {
		return []string{}
	}

	webRoot := webRootFor(cam, FolderOriginals, ResFullres)
	mid := len(images) / 2
	tsName := makeTimestreamName(cam, ResFullres, StepOrig)

	thumbs := make([]string, 0, 3)
	for _, idx := range []int{mid - 1, mid, mid + 1} {
		image := images[idx]
		t, ok := resolver.Resolve(image, cam.FilenameDateMask, cam.Interval*60, cam.TimeShift)
		if !ok || webRoot == "" {
			thumbs = append(thumbs, "")
			continue
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(image), "."))
		rel, err := newFileName(t, tsName, 0, ext)
		if IsError(err) {
			thumbs = append(thumbs, "")
			continue
		}
		thumbs = append(thumbs, webRoot+"/"+filepath.ToSlash(rel))
	}

	return thumbs
}

// writeSummaries appends this camera's records to camera.json at the
// destination root, merging with whatever a previous run left there.
func writeSummaries(cam *CameraConfig, records []SummaryRecord) error {
	summaryPath := filepath.Join(cam.Destination, SummaryFile)

	var all []SummaryRecord
	if data, err := os.ReadFile(summaryPath); err == nil {
		if err := json.Unmarshal(data, &all); IsError(err) {
			logger.Warn().Err(err).Str("file", summaryPath).Msg("existing summary unreadable, replacing")
			all = nil
		}
	}
	all = append(all, records...)

	data, err := JsonEncodePretty(all)
	if IsError(err) {
		return err
	}
	return os.WriteFile(summaryPath, data, FilePerms)
}
