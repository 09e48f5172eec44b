package main

import (
	"path/filepath"
	"testing"
	"time"
)

func pathsTestCamera() *CameraConfig {
	cfg := &CameraConfig{Expt: "BVZ0022", Location: "GC02L", CamNum: "01"}
	resolveStructure(cfg)
	return cfg
}

func TestMakeTimestreamName(t *testing.T) {
	cfg := pathsTestCamera()

	if got := makeTimestreamName(cfg, ResFullres, StepOrig); got != "BVZ0022-GC02L-c01~fullres-orig" {
		t.Errorf("unexpected name %q", got)
	}
	if got := makeTimestreamName(cfg, "640", StepRaw); got != "BVZ0022-GC02L-c01~640-raw" {
		t.Errorf("unexpected name %q", got)
	}
}

func TestExpandStructure(t *testing.T) {
	cfg := pathsTestCamera()

	got := expandStructure(cfg, FolderOriginals, ResFullres, StepOrig)
	want := filepath.Join("BVZ0022", "originals", "BVZ0022-GC02L-C01~fullres-orig")
	if got != want {
		t.Errorf("expandStructure = %q, want %q", got, want)
	}

	got = expandStructure(cfg, FolderOutputs, "640", StepOrig)
	want = filepath.Join("BVZ0022", "outputs", "BVZ0022-GC02L-C01~640-orig")
	if got != want {
		t.Errorf("expandStructure = %q, want %q", got, want)
	}
}

func TestNewFileName(t *testing.T) {
	when := time.Date(2013, 11, 12, 20, 55, 0, 0, time.Local)

	got, err := newFileName(when, "BVZ0022-GC02L-c01~fullres-orig", 0, "jpg")
	if err != nil {
		t.Fatalf("newFileName: %v", err)
	}
	want := filepath.Join(
		"2013", "2013_11", "2013_11_12", "2013_11_12_20",
		"BVZ0022-GC02L-c01~fullres-orig_2013_11_12_20_55_00_00.jpg")
	if got != want {
		t.Errorf("newFileName = %q, want %q", got, want)
	}

	got, err = newFileName(when, "cam", 1, "jpg")
	if err != nil {
		t.Fatalf("newFileName: %v", err)
	}
	if filepath.Base(got) != "cam_2013_11_12_20_55_00_01.jpg" {
		t.Errorf("subsecond counter not encoded: %q", got)
	}
}

func TestNewFileNameRejectsBadInput(t *testing.T) {
	when := time.Date(2013, 11, 12, 20, 55, 0, 0, time.Local)

	if _, err := newFileName(time.Time{}, "cam", 0, "jpg"); err == nil {
		t.Error("zero time should not produce a file name")
	}
	if _, err := newFileName(time.Time{}, "", 0, "jpg"); err == nil {
		t.Error("zero time and empty name should not produce a file name")
	}
	if _, err := newFileName(when, "", 0, "jpg"); err == nil {
		t.Error("empty name should not produce a file name")
	}
}
