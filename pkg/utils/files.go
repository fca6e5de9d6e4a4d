package utils

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// StdinPath names standard input wherever a file path is accepted
const StdinPath = "-"

// RecordExtensions are the file types that hold health input records
var RecordExtensions = []string{".json", ".yaml", ".yml", ".csv"}

// FileCollectionOptions configures file collection behavior
type FileCollectionOptions struct {
	Recursive      bool
	Extensions     []string
	FollowSymlinks bool
	// ExcludeTest skips rule test suites (-test.yaml, -test.yml)
	ExcludeTest bool
}

// CollectFiles returns the matching files under path in lexical order. A
// file path is returned as is when its extension matches.
func CollectFiles(path string, options FileCollectionOptions) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if options.matches(path) {
			return []string{path}, nil
		}
		return nil, nil
	}

	var files []string
	if options.Recursive {
		err = filepath.WalkDir(path, func(filePath string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.Type()&fs.ModeSymlink != 0 && !options.FollowSymlinks {
				return nil
			}
			if !d.IsDir() && options.matches(filePath) {
				files = append(files, filePath)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.Type()&fs.ModeSymlink != 0 && !options.FollowSymlinks {
				continue
			}
			filePath := filepath.Join(path, entry.Name())
			if !entry.IsDir() && options.matches(filePath) {
				files = append(files, filePath)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

func (o FileCollectionOptions) matches(filePath string) bool {
	return hasValidExtension(filePath, o.Extensions) && (!o.ExcludeTest || !IsTestFile(filePath))
}

// OpenInput opens path for reading, or returns stdin for "-"
func OpenInput(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == StdinPath {
		return io.NopCloser(stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}

// IsCSV reports whether path names a CSV file
func IsCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}

// hasValidExtension checks if the file has a valid extension
func hasValidExtension(filePath string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, validExt := range extensions {
		if ext == strings.ToLower(validExt) {
			return true
		}
	}
	return false
}

// IsTestFile checks if the file is a rule test suite
func IsTestFile(filePath string) bool {
	baseName := filepath.Base(filePath)
	return strings.HasSuffix(baseName, "-test.yaml") || strings.HasSuffix(baseName, "-test.yml")
}
