package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Canonical camera config field names. They double as the uppercase tokens
// substituted into custom path templates.
const (
	FieldUse         = "USE"
	FieldExpt        = "EXPT"
	FieldLocation    = "LOCATION"
	FieldCamNum      = "CAM_NUM"
	FieldDataset     = "DATASET"
	FieldSource      = "SOURCE"
	FieldDestination = "DESTINATION"
	FieldArchiveDest = "ARCHIVE_DEST"
	FieldExptStart   = "EXPT_START"
	FieldExptEnd     = "EXPT_END"
	FieldInterval    = "INTERVAL"
	FieldImageTypes  = "IMAGE_TYPES"
	FieldMethod      = "METHOD"
	FieldResolutions = "RESOLUTIONS"
	FieldTimezone    = "CAMERA_TIMEZONE"
	FieldTimeShift   = "TIMESHIFT"
	FieldOrientation = "ORIENTATION"
	FieldDateMask    = "FILENAME_DATE_MASK"
	FieldFnParse     = "FN_PARSE"
	FieldTsStructure = "TS_STRUCTURE"
	FieldFnStructure = "FN_STRUCTURE"
	FieldMode        = "MODE"
	FieldDisplayName = "CAMERA_NAME_F"
	FieldJSONUpdates = "JSON_UPDATES"
	FieldLargeJSON   = "LARGE_JSON"
	FieldSubFolders  = "SUB_FOLDER"
)

// fieldOrder is the canonical column order for generated config templates.
var fieldOrder = []string{
	FieldUse, FieldExpt, FieldLocation, FieldCamNum, FieldDataset,
	FieldSource, FieldDestination, FieldArchiveDest,
	FieldExptStart, FieldExptEnd, FieldInterval, FieldImageTypes,
	FieldMethod, FieldResolutions, FieldTimezone, FieldTimeShift,
	FieldOrientation, FieldDateMask, FieldFnParse,
	FieldTsStructure, FieldFnStructure, FieldMode,
	FieldDisplayName, FieldJSONUpdates, FieldLargeJSON, FieldSubFolders,
}

var requiredFields = []string{
	FieldUse, FieldExpt, FieldLocation, FieldCamNum,
	FieldSource, FieldDestination, FieldArchiveDest,
	FieldExptStart, FieldExptEnd, FieldImageTypes, FieldResolutions,
}

// ValidationError reports one bad field in one config row. The row is
// dropped; parsing of other rows continues.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func validationErrf(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Err: fmt.Errorf(format, args...)}
}

// parseBool accepts 1/0, t/f, true/false, y/n and yes/no, case-insensitive.
func parseBool(value string) (bool, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if n, err := strconv.Atoi(v); err == nil {
		return n != 0, nil
	}
	switch v {
	case "t", "true", "y", "yes":
		return true, nil
	case "f", "false", "n", "no":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", value)
}

// parseHourMinute converts an integer-encoded HHMM value, e.g. 1100 or -930.
func parseHourMinute(value string) (HourMinute, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if IsError(err) {
		return HourMinute{}, fmt.Errorf("not an HHMM time: %q", value)
	}
	return HourMinute{Hour: n / 100, Minute: n % 100}, nil
}

// parseDate reads a YYYY_MM_DD date, or the "now"/"current" keywords which
// mark an open-ended window.
func parseDate(value string) (time.Time, bool, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if DateNowNames[v] {
		return time.Now(), true, nil
	}
	t, err := time.ParseInLocation(ConfigDateLayout, v, time.Local)
	if IsError(err) {
		return time.Time{}, false, fmt.Errorf("not a YYYY_MM_DD date: %q", value)
	}
	return t, false, nil
}

// parseResolutions splits a "~"-delimited resolution list. Each entry is a
// full-resolution keyword, a WxH pair, or a bare width.
func parseResolutions(value string) ([]Resolution, error) {
	var list []Resolution
	for _, token := range strings.Split(strings.TrimSpace(value), "~") {
		token = strings.ToLower(strings.TrimSpace(token))
		if token == "" {
			continue
		}
		if FullResNames[token] {
			list = append(list, Resolution{Keyword: token})
			continue
		}
		if xy := strings.Split(token, "x"); len(xy) == 2 {
			w, errW := strconv.Atoi(xy[0])
			h, errH := strconv.Atoi(xy[1])
			if errW != nil || errH != nil {
				return nil, fmt.Errorf("bad resolution %q", token)
			}
			list = append(list, Resolution{Width: w, Height: h})
			continue
		}
		w, err := strconv.Atoi(token)
		if IsError(err) {
			return nil, fmt.Errorf("bad resolution %q", token)
		}
		list = append(list, Resolution{Width: w})
	}
	if len(list) == 0 {
		return nil, errors.New("resolution list is empty")
	}
	return list, nil
}

func parseImageTypes(value string) ([]string, error) {
	var types []string
	for _, t := range strings.Split(strings.ToLower(strings.TrimSpace(value)), "~") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if !ImageTypeNames[t] {
			return nil, fmt.Errorf("unknown image type %q", t)
		}
		types = append(types, t)
	}
	if len(types) == 0 {
		return nil, errors.New("image type list is empty")
	}
	return types, nil
}

func parseExistingPath(value string) (string, error) {
	p := filepath.FromSlash(strings.TrimSpace(value))
	if !pathExists(p) {
		return "", fmt.Errorf("path %q doesn't exist", p)
	}
	return p, nil
}

func parseRotation(value string) (int, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return 0, nil
	}
	angle, err := strconv.Atoi(v)
	if IsError(err) {
		return 0, fmt.Errorf("not a rotation angle: %q", value)
	}
	angle = ((angle % 360) + 360) % 360
	return angle, nil
}

// normalizeName makes a field value safe for use inside timestream names,
// which reserve underscores for date separators.
func normalizeName(value string) string {
	return strings.ReplaceAll(strings.TrimSpace(value), "_", "-")
}

func padCamNum(value string) string {
	v := strings.TrimSpace(value)
	if len(v) == 1 {
		return "0" + v
	}
	return v
}

// fieldValidators maps each config field to its converter. The registry is
// static: dispatch is a plain map lookup, no reflection.
var fieldValidators = map[string]func(value string, cfg *CameraConfig) error{
	FieldUse: func(v string, cfg *CameraConfig) error {
		use, err := parseBool(v)
		cfg.Use = use
		return err
	},
	FieldExpt: func(v string, cfg *CameraConfig) error {
		cfg.Expt = normalizeName(v)
		return nil
	},
	FieldLocation: func(v string, cfg *CameraConfig) error {
		cfg.Location = normalizeName(v)
		return nil
	},
	FieldCamNum: func(v string, cfg *CameraConfig) error {
		cfg.CamNum = padCamNum(v)
		return nil
	},
	FieldDataset: func(v string, cfg *CameraConfig) error {
		cfg.Dataset = normalizeName(v)
		return nil
	},
	FieldDisplayName: func(v string, cfg *CameraConfig) error {
		cfg.DisplayName = normalizeName(v)
		return nil
	},
	FieldSource: func(v string, cfg *CameraConfig) error {
		p, err := parseExistingPath(v)
		cfg.Source = p
		return err
	},
	FieldDestination: func(v string, cfg *CameraConfig) error {
		p, err := parseExistingPath(v)
		cfg.Destination = p
		return err
	},
	FieldArchiveDest: func(v string, cfg *CameraConfig) error {
		p, err := parseExistingPath(v)
		cfg.ArchiveDest = p
		return err
	},
	FieldExptStart: func(v string, cfg *CameraConfig) error {
		t, _, err := parseDate(v)
		cfg.ExptStart = t
		return err
	},
	FieldExptEnd: func(v string, cfg *CameraConfig) error {
		t, now, err := parseDate(v)
		cfg.ExptEnd = t
		cfg.ExptEndNow = now
		return err
	},
	FieldInterval: func(v string, cfg *CameraConfig) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if IsError(err) || n < 1 {
			return fmt.Errorf("not a positive interval: %q", v)
		}
		cfg.Interval = n
		return nil
	},
	FieldImageTypes: func(v string, cfg *CameraConfig) error {
		types, err := parseImageTypes(v)
		cfg.ImageTypes = types
		return err
	},
	FieldMethod: func(v string, cfg *CameraConfig) error {
		m := strings.ToLower(strings.TrimSpace(v))
		if !MethodNames[m] {
			return fmt.Errorf("unknown method %q", v)
		}
		cfg.Method = m
		return nil
	},
	FieldMode: func(v string, cfg *CameraConfig) error {
		m := strings.ToLower(strings.TrimSpace(v))
		if !ModeNames[m] {
			return fmt.Errorf("unknown mode %q", v)
		}
		cfg.Mode = m
		return nil
	},
	FieldResolutions: func(v string, cfg *CameraConfig) error {
		list, err := parseResolutions(v)
		cfg.Resolutions = list
		return err
	},
	FieldTimezone: func(v string, cfg *CameraConfig) error {
		tz, err := parseHourMinute(v)
		cfg.Timezone = tz
		return err
	},
	FieldTimeShift: func(v string, cfg *CameraConfig) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if IsError(err) {
			return fmt.Errorf("not a timeshift hour count: %q", v)
		}
		cfg.TimeShift = n
		return nil
	},
	FieldOrientation: func(v string, cfg *CameraConfig) error {
		angle, err := parseRotation(v)
		cfg.Rotation = angle
		return err
	},
	FieldDateMask: func(v string, cfg *CameraConfig) error {
		cfg.FilenameDateMask = strings.TrimSpace(v)
		return nil
	},
	FieldFnParse: func(v string, cfg *CameraConfig) error {
		cfg.FnParse = strings.TrimSpace(v)
		return nil
	},
	FieldTsStructure: func(v string, cfg *CameraConfig) error {
		cfg.TsStructure = strings.TrimSpace(v)
		return nil
	},
	FieldFnStructure: func(v string, cfg *CameraConfig) error {
		cfg.FnStructure = strings.TrimSpace(v)
		return nil
	},
	FieldJSONUpdates: func(v string, cfg *CameraConfig) error {
		b, err := parseBool(v)
		cfg.JSONUpdates = b
		return err
	},
	FieldLargeJSON: func(v string, cfg *CameraConfig) error {
		b, err := parseBool(v)
		cfg.LargeJSON = b
		return err
	},
	FieldSubFolders: func(v string, cfg *CameraConfig) error {
		b, err := parseBool(v)
		cfg.SubFolders = b
		return err
	},
}

// parseCamera validates one raw config row. It returns (nil, nil) for rows
// that are switched off, and a ValidationError for bad rows so the caller
// can drop them and keep going.
func parseCamera(row map[string]string) (*CameraConfig, error) {
	cfg := &CameraConfig{
		Interval:    1,
		Method:      MethodArchive,
		Mode:        ModeBatch,
		JSONUpdates: true,
		LargeJSON:   true,
	}

	var firstErr error

	for _, field := range requiredFields {
		if strings.TrimSpace(row[field]) == "" && firstErr == nil {
			firstErr = validationErrf(field, "required field is missing")
		}
	}

	for field, value := range row {
		validate, known := fieldValidators[field]
		if !known || strings.TrimSpace(value) == "" {
			continue
		}
		if err := validate(value, cfg); IsError(err) && firstErr == nil {
			firstErr = &ValidationError{Field: field, Err: err}
		}
	}

	if !cfg.Use {
		// Rows that are switched off are dropped silently, even when their
		// remaining fields don't validate.
		return nil, nil
	}
	if firstErr != nil {
		return nil, firstErr
	}

	return cfg, nil
}

// templateFields snapshots the token/value pairs substituted into custom
// path templates. Substitution walks this fixed list exactly once, so a
// value that happens to contain another field's token is never re-expanded.
func templateFields(cfg *CameraConfig) [][2]string {
	return [][2]string{
		{FieldExpt, cfg.Expt},
		{FieldLocation, cfg.Location},
		{FieldCamNum, cfg.CamNum},
		{FieldDataset, cfg.Dataset},
		{FieldDisplayName, cfg.DisplayName},
		{FieldInterval, strconv.Itoa(cfg.Interval)},
	}
}

func substituteFields(template string, fields [][2]string) string {
	for _, f := range fields {
		template = strings.ReplaceAll(template, f[0], f[1])
	}
	return template
}

// resolveStructure finalizes the camera's directory and file-name templates.
// After it runs, both templates contain only the {folder}, {res} and {step}
// placeholders.
func resolveStructure(cfg *CameraConfig) {
	fields := templateFields(cfg)

	if cfg.TsStructure == "" {
		cfg.TsStructure = filepath.Join(
			cfg.Expt,
			"{folder}",
			cfg.Expt+"-"+cfg.Location+"-C"+cfg.CamNum+"~{res}-{step}")
	} else {
		ts := substituteFields(cfg.TsStructure, fields)
		ts = strings.ReplaceAll(ts, "_", "-")
		ts = strings.TrimPrefix(ts, "/")
		dir, name := filepath.Split(filepath.FromSlash(ts))
		cfg.TsStructure = filepath.Join(dir, "{folder}", name+"~{res}-{step}")
	}

	if cfg.FnStructure == "" {
		cfg.FnStructure = cfg.Expt + "-" + cfg.Location + "-c" + cfg.CamNum + "~{res}-{step}"
	} else {
		fn := substituteFields(cfg.FnStructure, fields)
		fn = strings.ReplaceAll(fn, "/", "")
		fn = strings.ReplaceAll(fn, "_", "-")
		cfg.FnStructure = fn + "~{res}-{step}"
	}
}

// loadCameras parses the camera config CSV. Invalid rows are logged and
// dropped; the remaining rows come back validated, with their path
// templates resolved, ready for processing.
func loadCameras(path string) ([]CameraConfig, error) {
	f, err := os.Open(path)
	if IsError(err) {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if IsError(err) {
		return nil, fmt.Errorf("cannot read config header: %w", err)
	}

	var cameras []CameraConfig
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if IsError(err) {
			logger.Warn().Err(err).Int("line", line).Msg("dropping unreadable config row")
			continue
		}

		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				row[strings.TrimSpace(name)] = record[i]
			}
		}

		cfg, err := parseCamera(row)
		if IsError(err) {
			logger.Warn().Err(err).Int("line", line).Msg("dropping invalid camera row")
			continue
		}
		if cfg == nil {
			continue
		}

		resolveStructure(cfg)
		logger.Debug().Str("expt", cfg.Expt).Str("location", cfg.Location).Msg("validated camera")
		cameras = append(cameras, *cfg)
	}

	return cameras, nil
}

// generateConfigTemplate writes an empty config CSV with the canonical
// header row.
func generateConfigTemplate(path string) error {
	return os.WriteFile(path, []byte(strings.Join(fieldOrder, ",")+"\n"), FilePerms)
}
