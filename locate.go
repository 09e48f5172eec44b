package main

import (
	"os"
	"path/filepath"
	"strings"
)

// matchesType reports whether a file extension belongs to a declared image
// type. The "raw" tag covers the whole known raw-format set.
func matchesType(ext, imageType string) bool {
	if ext == imageType {
		return true
	}
	return imageType == "raw" && RawFormats[ext]
}

// typeRoot picks the directory to scan for one image type: a like-named
// subdirectory directly under source when present, the source root
// otherwise. Dotfiles and underscore-prefixed entries never qualify.
func typeRoot(source, imageType string) string {
	entries, err := os.ReadDir(source)
	if IsError(err) {
		return source
	}
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			continue
		}
		if entry.IsDir() && strings.ToLower(name) == imageType {
			return filepath.Join(source, name)
		}
	}
	return source
}

// locateImages enumerates candidate files per declared image type under the
// camera's source tree. The scan is side-effect free; an unreadable source
// root is the one fatal condition.
func locateImages(cfg *CameraConfig) (map[string][]string, error) {
	if _, err := os.ReadDir(cfg.Source); IsError(err) {
		return nil, err
	}

	found := make(map[string][]string)
	for _, imageType := range cfg.ImageTypes {
		root := typeRoot(cfg.Source, imageType)
		logger.Info().Str("dir", root).Str("type", imageType).Msg("walking for images")

		err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if IsError(err) {
				logger.Warn().Err(err).Str("path", path).Msg("skipping unreadable entry")
				return nil
			}
			name := info.Name()
			hidden := strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")

			if info.IsDir() {
				if path == root {
					return nil
				}
				if hidden || !cfg.SubFolders {
					return filepath.SkipDir
				}
				return nil
			}
			if hidden {
				return nil
			}

			ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
			if !matchesType(ext, imageType) {
				return nil
			}
			if cfg.FnParse != "" && !strings.Contains(path, cfg.FnParse) {
				return nil
			}

			found[imageType] = append(found[imageType], path)
			return nil
		})
		if IsError(err) {
			return nil, err
		}

		logger.Info().Int("count", len(found[imageType])).Str("type", imageType).Msg("found images for camera")
	}

	return found, nil
}
