package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kalafut/imohash"
)

func pathExists(path string) bool {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false
	}
	return true
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileChecksum(path string) (string, error) {
	sum, err := imohash.SumFile(path)
	if IsError(err) {
		return "", err
	}
	return fmt.Sprintf("%x", sum), nil
}

// fileCopy copies src to dest. With keepAttributes the destination also
// takes over the source's mode and timestamps, so archived originals stat
// like the uploads they came from.
func fileCopy(src, dest string, keepAttributes bool) error {
	s, err := os.Open(src)
	if IsError(err) {
		return err
	}
	defer s.Close()

	d, err := os.Create(dest)
	if IsError(err) {
		return err
	}
	if _, err := io.Copy(d, s); IsError(err) {
		d.Close()
		return err
	}
	if err := d.Close(); IsError(err) {
		return err
	}

	if keepAttributes {
		if info, err := os.Stat(src); err == nil {
			_ = os.Chmod(dest, info.Mode())
			_ = os.Chtimes(dest, info.ModTime(), info.ModTime())
		}
	}

	return nil
}

// makeDirs creates dir and its parents. "Already exists" is success, so
// concurrent workers racing on the same hour directory all win.
func makeDirs(dir string) error {
	err := os.MkdirAll(dir, DirPerms)
	if err != nil && !os.IsExist(err) {
		return err
	}
	return nil
}

// dontClobber returns path unchanged if it is free, or with a single "_1"
// appended to the stem if something already sits there. One suffix only:
// a third file aimed at the same nominal path will still collide, which is
// a documented limitation of the naming scheme.
func dontClobber(path string) string {
	if !pathExists(path) {
		return path
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	logger.Debug().Str("path", path).Msg("destination exists, appending _1")
	return base + "_1" + ext
}
