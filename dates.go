package main

import (
	"path/filepath"
	"regexp"
	"time"
)

// maskTokens maps the strftime-style tokens allowed in a filename date mask
// to a fixed-width digit pattern and the equivalent Go layout element.
var maskTokens = []struct {
	token   string
	pattern string
	layout  string
}{
	{"%Y", `\d{4}`, "2006"},
	{"%m", `\d{2}`, "01"},
	{"%d", `\d{2}`, "02"},
	{"%H", `\d{2}`, "15"},
	{"%M", `\d{2}`, "04"},
	{"%S", `\d{2}`, "05"},
}

func maskToRegexp(mask string) (*regexp.Regexp, error) {
	pattern := regexp.QuoteMeta(mask)
	for _, t := range maskTokens {
		pattern = regexp.MustCompile(regexp.QuoteMeta(t.token)).ReplaceAllLiteralString(pattern, t.pattern)
	}
	return regexp.Compile(pattern)
}

func maskToLayout(mask string) string {
	for _, t := range maskTokens {
		mask = regexp.MustCompile(regexp.QuoteMeta(t.token)).ReplaceAllLiteralString(mask, t.layout)
	}
	return mask
}

// timeFromFilename scans name for substrings matching the date mask and
// returns the first one that parses.
func timeFromFilename(name, mask string) (time.Time, bool) {
	if mask == "" {
		mask = DefaultFilenameDateMask
	}
	re, err := maskToRegexp(mask)
	if IsError(err) {
		logger.Debug().Err(err).Str("mask", mask).Msg("bad filename date mask")
		return time.Time{}, false
	}
	layout := maskToLayout(mask)
	for _, match := range re.FindAllString(name, -1) {
		if t, err := time.ParseInLocation(layout, match, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// roundTime rounds t to the nearest multiple of roundSecs since the epoch.
// Only the epoch magnitude changes; weekday and DST fall out of the new
// instant, so rounding an already-rounded value is a no-op.
func roundTime(t time.Time, roundSecs int) time.Time {
	if roundSecs <= 1 {
		return t
	}
	step := int64(roundSecs)
	rounded := (t.Unix() + step/2) / step * step
	return time.Unix(rounded, 0).In(t.Location())
}

// DateResolver determines when an image was captured: embedded metadata
// first, then the filename date mask, then nothing. The mask travels in as
// an argument on every call; there is no shared mutable mask, so resolvers
// are safe under concurrent workers.
type DateResolver struct {
	Meta MetadataIO
}

// Resolve returns the capture time of path, rounded to roundSecs and
// shifted by timeshiftHours, or ok=false when no source yields a date.
func (r DateResolver) Resolve(path, mask string, roundSecs, timeshiftHours int) (time.Time, bool) {
	t, err := r.Meta.ReadCaptureTime(path)
	if IsError(err) {
		name := filepath.Base(path)
		logger.Debug().Str("file", name).Msg("no capture time in metadata, trying filename")

		t, ok := timeFromFilename(name, mask)
		if !ok {
			logger.Debug().Str("file", name).Msg("unable to scrape date from filename")
			return time.Time{}, false
		}
		// Persist the reconstructed time so the next pass reads it straight
		// from metadata. Failing to write is not fatal.
		if werr := r.Meta.WriteCaptureTime(path, t); IsError(werr) {
			logger.Debug().Err(werr).Str("file", name).Msg("unable to write capture time")
		}
		return r.finish(t, roundSecs, timeshiftHours), true
	}
	return r.finish(t, roundSecs, timeshiftHours), true
}

func (r DateResolver) finish(t time.Time, roundSecs, timeshiftHours int) time.Time {
	if roundSecs > 1 {
		t = roundTime(t, roundSecs)
	}
	if timeshiftHours != 0 {
		t = t.Add(time.Duration(timeshiftHours) * time.Hour)
	}
	return t
}
