package main

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
)

func testIndex(t *testing.T) *ImageIndex {
	t.Helper()
	ix, err := OpenImageIndex(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("OpenImageIndex: %v", err)
	}
	return ix
}

func TestImageIndexRecordDeduplicates(t *testing.T) {
	ix := testIndex(t)

	rec := &ImageRecord{
		Checksum:    "aabbccdd",
		SourcePath:  "/src/cam_2013_11_12_20_55_00.jpg",
		DestPath:    "/dest/a.jpg",
		Camera:      "BVZ0022-GC02L-01",
		ImageType:   "jpg",
		Method:      MethodCopy,
		CaptureTime: time.Date(2013, 11, 12, 20, 55, 0, 0, time.Local),
	}
	if err := ix.Record(rec); err != nil {
		t.Fatalf("Record: %v", err)
	}
	// A second insert with the same checksum is a silent no-op.
	if err := ix.Record(&ImageRecord{Checksum: "aabbccdd", DestPath: "/dest/b.jpg"}); err != nil {
		t.Fatalf("duplicate Record: %v", err)
	}
	if err := ix.Record(&ImageRecord{Checksum: "eeff0011", DestPath: "/dest/c.jpg"}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	n, err := ix.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Fatalf("Count = %d, want 2 distinct checksums", n)
	}
}

func TestOrchestratorRunIndexesImages(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dest := filepath.Join(dir, "dest")
	archive := filepath.Join(dir, "archive")
	for _, d := range []string{src, dest, archive} {
		if err := os.MkdirAll(d, DirPerms); err != nil {
			t.Fatal(err)
		}
	}

	// Distinct pixel content per image, so the checksum-keyed index gets
	// one row each instead of deduplicating them.
	stamps := []string{"2013_11_12_20_55_00", "2013_11_12_21_00_00"}
	for i, stamp := range stamps {
		canvas := imaging.New(324, 216, color.NRGBA{R: uint8(40 + 100*i), G: 90, B: 60, A: 255})
		if err := imaging.Save(canvas, filepath.Join(src, "cam_"+stamp+".jpg")); err != nil {
			t.Fatal(err)
		}
	}

	cam := CameraConfig{
		Use:              true,
		Expt:             "BVZ0022",
		Location:         "GC02L",
		CamNum:           "01",
		Source:           src,
		Destination:      dest,
		ArchiveDest:      archive,
		ExptStart:        time.Date(2013, 11, 1, 0, 0, 0, 0, time.Local),
		ExptEnd:          time.Date(2013, 12, 31, 0, 0, 0, 0, time.Local),
		Interval:         5,
		ImageTypes:       []string{"jpg"},
		Method:           MethodCopy,
		Mode:             ModeBatch,
		Resolutions:      []Resolution{{Keyword: "original"}},
		FilenameDateMask: DefaultFilenameDateMask,
	}
	resolveStructure(&cam)

	ix := testIndex(t)
	orch := &Orchestrator{
		Cameras: []CameraConfig{cam},
		Threads: 1,
		Meta:    &fakeMeta{readErr: errNoExif},
		Index:   ix,
	}

	stats, err := orch.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Processed != int64(len(stamps)) {
		t.Fatalf("stats.Processed = %d, want %d", stats.Processed, len(stamps))
	}

	n, err := ix.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != int64(len(stamps)) {
		t.Fatalf("index holds %d images, want %d", n, len(stamps))
	}
}
