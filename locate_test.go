package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), DirPerms); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not really an image"), FilePerms); err != nil {
		t.Fatal(err)
	}
}

func TestMatchesType(t *testing.T) {
	if !matchesType("jpg", "jpg") {
		t.Error("jpg should match jpg")
	}
	if !matchesType("cr2", "raw") || !matchesType("nef", "raw") || !matchesType("tiff", "raw") {
		t.Error("raw formats should match the raw tag")
	}
	if matchesType("jpg", "raw") || matchesType("cr2", "jpg") {
		t.Error("types should not cross-match")
	}
}

func TestTypeRootPrefersLikeNamedSubdir(t *testing.T) {
	source := t.TempDir()
	jpgDir := filepath.Join(source, "JPG")
	if err := os.MkdirAll(jpgDir, DirPerms); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(source, "_jpg"), DirPerms); err != nil {
		t.Fatal(err)
	}

	if got := typeRoot(source, "jpg"); got != jpgDir {
		t.Errorf("typeRoot = %q, want %q", got, jpgDir)
	}
	if got := typeRoot(source, "raw"); got != source {
		t.Errorf("typeRoot without a raw subdir = %q, want source root", got)
	}
}

func TestLocateImages(t *testing.T) {
	source := t.TempDir()
	writeTestFile(t, filepath.Join(source, "a_2013_11_12_20_55_00.jpg"))
	writeTestFile(t, filepath.Join(source, "b_2013_11_12_21_00_00.JPG"))
	writeTestFile(t, filepath.Join(source, "c_2013_11_12_21_05_00.cr2"))
	writeTestFile(t, filepath.Join(source, ".hidden.jpg"))
	writeTestFile(t, filepath.Join(source, "_partial.jpg"))
	writeTestFile(t, filepath.Join(source, "notes.txt"))
	writeTestFile(t, filepath.Join(source, "deeper", "d_2013_11_12_21_10_00.jpg"))
	writeTestFile(t, filepath.Join(source, "_skipme", "e_2013_11_12_21_15_00.jpg"))

	cfg := &CameraConfig{Source: source, ImageTypes: []string{"jpg", "raw"}}

	found, err := locateImages(cfg)
	if err != nil {
		t.Fatalf("locateImages: %v", err)
	}
	// Without SubFolders only the root level is scanned.
	if got := len(found["jpg"]); got != 2 {
		t.Errorf("found %d jpg images, want 2: %v", got, found["jpg"])
	}
	if got := len(found["raw"]); got != 1 {
		t.Errorf("found %d raw images, want 1: %v", got, found["raw"])
	}

	cfg.SubFolders = true
	found, err = locateImages(cfg)
	if err != nil {
		t.Fatalf("locateImages: %v", err)
	}
	// Subfolder scanning picks up deeper/ but still skips _skipme/.
	if got := len(found["jpg"]); got != 3 {
		t.Errorf("found %d jpg images with subfolders, want 3: %v", got, found["jpg"])
	}
}

func TestLocateImagesFilenameFilter(t *testing.T) {
	source := t.TempDir()
	writeTestFile(t, filepath.Join(source, "north_2013_11_12_20_55_00.jpg"))
	writeTestFile(t, filepath.Join(source, "south_2013_11_12_20_55_00.jpg"))

	cfg := &CameraConfig{Source: source, ImageTypes: []string{"jpg"}, FnParse: "north"}

	found, err := locateImages(cfg)
	if err != nil {
		t.Fatalf("locateImages: %v", err)
	}
	if got := len(found["jpg"]); got != 1 {
		t.Fatalf("found %d filtered images, want 1: %v", got, found["jpg"])
	}
	if filepath.Base(found["jpg"][0]) != "north_2013_11_12_20_55_00.jpg" {
		t.Fatalf("wrong image survived the filter: %v", found["jpg"])
	}
}

func TestLocateImagesUnreadableSource(t *testing.T) {
	cfg := &CameraConfig{Source: "/definitely/not/a/real/path", ImageTypes: []string{"jpg"}}
	if _, err := locateImages(cfg); err == nil {
		t.Fatal("an unreachable source tree must be fatal")
	}
}
