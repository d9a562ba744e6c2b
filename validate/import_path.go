package validate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// VerifyImportsEnv turns import path verification off when set to a false
// boolean value.
const VerifyImportsEnv = "STACKWIRE_VERIFY_IMPORTS"

var ErrUnexpectedImportPath = errors.New("unexpected import path")

type ImportPathVerifier interface {
	// Verify reports an error when none of the frames in callers was
	// defined in a file matching expectedFile.
	Verify(callers []string, expectedFile, message string) error
}

type ToggleableImportPathVerifier struct {
	enabled bool
}

// NewImportPathVerifier reads the toggle from the environment.
func NewImportPathVerifier() *ToggleableImportPathVerifier {
	enabled := true
	if v, ok := os.LookupEnv(VerifyImportsEnv); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			enabled = b
		}
	}
	return &ToggleableImportPathVerifier{enabled: enabled}
}

func NewToggleableImportPathVerifier(enabled bool) *ToggleableImportPathVerifier {
	return &ToggleableImportPathVerifier{enabled: enabled}
}

func (v *ToggleableImportPathVerifier) Enabled() bool {
	return v.enabled
}

func (v *ToggleableImportPathVerifier) Verify(callers []string, expectedFile, message string) error {
	if !v.enabled || len(callers) == 0 {
		return nil
	}
	for _, file := range callers {
		if matchesFile(file, expectedFile) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnexpectedImportPath, message)
}

// matchesFile compares by path suffix so that "backend/main.go" matches
// "/home/me/app/backend/main.go". Glob patterns are matched on the base name.
func matchesFile(file, expected string) bool {
	file = filepath.ToSlash(file)
	expected = filepath.ToSlash(expected)
	if strings.ContainsAny(expected, "*?[") {
		ok, err := filepath.Match(expected, filepath.Base(file))
		return err == nil && ok
	}
	return file == expected || strings.HasSuffix(file, "/"+expected)
}

// CallerFiles returns the source files of the calling goroutine's stack,
// skipping skip frames above the caller of CallerFiles.
func CallerFiles(skip int) []string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip+2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var files []string
	for {
		frame, more := frames.Next()
		if frame.File != "" {
			files = append(files, frame.File)
		}
		if !more {
			break
		}
	}
	return files
}
