// ABOUTME: Reference validation run before any filesystem access
// ABOUTME: Rejects traversal tokens and, for bare names, any path separator

package assets

import (
	"path/filepath"
	"strings"

	coreerrors "diagnostic-report-api/core/errors"
)

// ValidateName accepts only bare filenames
func ValidateName(name string) error {
	switch {
	case name == "":
		return &coreerrors.InvalidReferenceError{Reference: name, Reason: "name is required"}
	case strings.Contains(name, ".."):
		return &coreerrors.InvalidReferenceError{Reference: name, Reason: "parent directory token"}
	case strings.ContainsAny(name, `/\`):
		return &coreerrors.InvalidReferenceError{Reference: name, Reason: "path separators are not allowed"}
	case strings.ContainsRune(name, 0):
		return &coreerrors.InvalidReferenceError{Reference: name, Reason: "NUL byte"}
	}
	return nil
}

// ValidateRelativePath accepts a relative path without parent tokens and
// returns it cleaned with OS separators.
func ValidateRelativePath(p string) (string, error) {
	if p == "" {
		return "", &coreerrors.InvalidReferenceError{Reference: p, Reason: "path is required"}
	}
	if strings.ContainsRune(p, 0) {
		return "", &coreerrors.InvalidReferenceError{Reference: p, Reason: "NUL byte"}
	}
	if hasParentToken(p) {
		return "", &coreerrors.InvalidReferenceError{Reference: p, Reason: "parent directory token"}
	}
	if isRooted(p) {
		return "", &coreerrors.InvalidReferenceError{Reference: p, Reason: "path must be relative"}
	}
	return filepath.Clean(filepath.FromSlash(strings.ReplaceAll(p, `\`, "/"))), nil
}

// ValidateAbsolutePath accepts a rooted path without parent tokens and
// returns it normalized.
func ValidateAbsolutePath(p string) (string, error) {
	if strings.ContainsRune(p, 0) {
		return "", &coreerrors.InvalidReferenceError{Reference: p, Reason: "NUL byte"}
	}
	if hasParentToken(p) {
		return "", &coreerrors.InvalidReferenceError{Reference: p, Reason: "parent directory token"}
	}
	if !isRooted(p) {
		return "", &coreerrors.InvalidReferenceError{Reference: p, Reason: "path must be absolute"}
	}
	cleaned := filepath.Clean(filepath.FromSlash(strings.ReplaceAll(p, `\`, "/")))
	if len(cleaned) < 3 {
		return "", &coreerrors.InvalidReferenceError{Reference: p, Reason: "path too short"}
	}
	return cleaned, nil
}

// hasParentToken rejects ".." anywhere, matching the name-only rule
func hasParentToken(p string) bool {
	return strings.Contains(p, "..")
}

func isRooted(p string) bool {
	if strings.HasPrefix(p, "/") || strings.HasPrefix(p, `\`) {
		return true
	}
	return filepath.IsAbs(p) || filepath.VolumeName(p) != ""
}

// LooksLikePath reports whether a hint should be resolved directly
func LooksLikePath(p string) bool {
	return isRooted(p)
}

// within reports whether target lies inside root
func within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
