package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileCopyKeepsAttributes(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.jpg")
	dest := filepath.Join(dir, "dest.jpg")

	content := []byte("pretend image bytes")
	if err := os.WriteFile(src, content, 0600); err != nil {
		t.Fatal(err)
	}

	if err := fileCopy(src, dest, true); err != nil {
		t.Fatalf("fileCopy: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, content) {
		t.Error("copied bytes differ")
	}

	srcInfo, _ := os.Stat(src)
	destInfo, _ := os.Stat(dest)
	if srcInfo.Mode() != destInfo.Mode() {
		t.Errorf("mode not kept: %v != %v", destInfo.Mode(), srcInfo.Mode())
	}
	if !srcInfo.ModTime().Equal(destInfo.ModTime()) {
		t.Errorf("mtime not kept: %v != %v", destInfo.ModTime(), srcInfo.ModTime())
	}
}

func TestFileChecksum(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.jpg")
	b := filepath.Join(dir, "b.jpg")
	c := filepath.Join(dir, "c.jpg")

	if err := os.WriteFile(a, []byte("same content"), FilePerms); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte("same content"), FilePerms); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c, []byte("other content"), FilePerms); err != nil {
		t.Fatal(err)
	}

	sumA, err := fileChecksum(a)
	if err != nil {
		t.Fatal(err)
	}
	sumB, _ := fileChecksum(b)
	sumC, _ := fileChecksum(c)

	if sumA != sumB {
		t.Error("identical files should checksum equal")
	}
	if sumA == sumC {
		t.Error("different files should checksum differently")
	}
}

func TestMakeDirsToleratesExisting(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "2013", "2013_11", "2013_11_12")

	if err := makeDirs(dir); err != nil {
		t.Fatalf("makeDirs: %v", err)
	}
	if err := makeDirs(dir); err != nil {
		t.Fatalf("makeDirs on an existing tree: %v", err)
	}
	if !isDir(dir) {
		t.Error("directory tree missing")
	}
}

func TestDontClobber(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "img_2013_11_12_20_55_00_00.jpg")

	if got := dontClobber(path); got != path {
		t.Errorf("free path should pass through, got %q", got)
	}

	if err := os.WriteFile(path, []byte("x"), FilePerms); err != nil {
		t.Fatal(err)
	}
	want := strings.TrimSuffix(path, ".jpg") + "_1.jpg"
	if got := dontClobber(path); got != want {
		t.Errorf("dontClobber = %q, want %q", got, want)
	}
}
