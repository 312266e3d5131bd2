package security

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// scanSkipDirs are never descended into, matching the wiki scanner's
// exclusions so both passes see the same file set.
var scanSkipDirs = map[string]bool{
	".git":         true,
	"vendor":       true,
	"node_modules": true,
	"target":       true,
	"build":        true,
	"dist":         true,
	"__pycache__":  true,
}

// CollectFiles resolves the scan target to a list of file paths relative to
// RootDir. An explicit Files list is used as-is, filtered by extension when
// extensions are given; otherwise RootDir is walked, honoring the target's
// exclude patterns.
func CollectFiles(target ScanTarget, extensions []string) ([]string, error) {
	wantExt := extensionSet(extensions)

	if len(target.Files) > 0 {
		if wantExt == nil {
			return target.Files, nil
		}
		var filtered []string
		for _, f := range target.Files {
			if wantExt[filepath.Ext(f)] {
				filtered = append(filtered, f)
			}
		}
		return filtered, nil
	}

	var files []string
	err := filepath.WalkDir(target.RootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if scanSkipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(target.RootDir, path)
		if err != nil {
			return nil
		}
		if IsExcluded(rel, target.ExcludePatterns) {
			return nil
		}
		if wantExt != nil && !wantExt[filepath.Ext(rel)] {
			return nil
		}

		files = append(files, rel)
		return nil
	})
	return files, err
}

// IsExcluded reports whether the relative path matches any exclude pattern.
// Patterns use filepath.Match syntax; a trailing "/**" excludes a whole
// subtree.
func IsExcluded(relPath string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, err := filepath.Match(pattern, relPath); err == nil && matched {
			return true
		}
		if strings.Contains(pattern, "**") {
			prefix := strings.TrimSuffix(pattern, "/**")
			if relPath == prefix || strings.HasPrefix(relPath, prefix+"/") {
				return true
			}
		}
	}
	return false
}

// extensionSet builds a lookup set from the extension list, nil when the
// list is empty (meaning no filtering).
func extensionSet(extensions []string) map[string]bool {
	if len(extensions) == 0 {
		return nil
	}
	set := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		set[ext] = true
	}
	return set
}
