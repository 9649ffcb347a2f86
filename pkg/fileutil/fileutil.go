// Package fileutil provides file system utility functions.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FindFileCaseInsensitive searches for a file with the given name in the
// specified directory. The search is case-insensitive, which is useful for
// files that come out of old Windows archives with unreliable casing.
//
// Example:
//
//	path, err := FindFileCaseInsensitive("/path/to/dir", "MyFile.MID")
//	// Will find "myfile.mid", "MYFILE.MID", "MyFile.Mid", etc.
func FindFileCaseInsensitive(dir, filename string) (string, error) {
	searchName := strings.ToLower(filename)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.ToLower(entry.Name()) == searchName {
			return filepath.Join(dir, entry.Name()), nil
		}
	}

	return "", fmt.Errorf("file not found: %s (searched in %s)", filename, dir)
}

// FindFileInsensitive searches for a file with case-insensitive matching
// over the whole path, directory components included.
//
// Example:
//   - FindFileInsensitive("BGM.MID") might return "bgm.mid"
//   - FindFileInsensitive("path/to/SONG.MID") might return "path/to/song.mid"
func FindFileInsensitive(filename string) (string, error) {
	// 完全一致を先に試す
	if _, err := os.Stat(filename); err == nil {
		return filename, nil
	}

	dir := filepath.Dir(filename)
	base := filepath.Base(filename)

	if dir != "." && dir != "/" {
		actualDir, err := findDirInsensitive(dir)
		if err != nil {
			return "", fmt.Errorf("directory not found: %s", dir)
		}
		dir = actualDir
	}

	return FindFileCaseInsensitive(dir, base)
}

// findDirInsensitive resolves a directory path component by component,
// matching each name case-insensitively.
func findDirInsensitive(path string) (string, error) {
	components := strings.Split(filepath.ToSlash(path), "/")
	currentPath := "."
	if filepath.IsAbs(path) {
		currentPath = "/"
	}

	for _, component := range components {
		if component == "." || component == "" {
			continue
		}

		entries, err := os.ReadDir(currentPath)
		if err != nil {
			return "", err
		}

		componentLower := strings.ToLower(component)
		found := false
		for _, entry := range entries {
			if entry.IsDir() && strings.ToLower(entry.Name()) == componentLower {
				currentPath = filepath.Join(currentPath, entry.Name())
				found = true
				break
			}
		}

		if !found {
			return "", fmt.Errorf("directory component not found: %s in %s", component, currentPath)
		}
	}

	return currentPath, nil
}
