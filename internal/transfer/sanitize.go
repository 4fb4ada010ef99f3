package transfer

import (
	"path/filepath"
	"strings"

	"lanchat/internal/types"
)

// SanitizeFileName rejects any name carrying a path separator or a
// ".." component before it is ever joined against the download
// directory. The Rust original materializes TransferRequest.FileName
// unsanitized (its own comment flags this); this implementation
// resolves that by refusing the whole transfer rather than trusting
// the wire value, the course this system settles on for that open
// question.
func SanitizeFileName(name string) (string, error) {
	if name == "" {
		return "", types.InvalidDataError("file name is empty", nil)
	}
	if strings.ContainsAny(name, `/\`) {
		return "", types.InvalidDataError("file name contains a path separator", nil)
	}
	if name == "." || name == ".." {
		return "", types.InvalidDataError("file name is a path traversal component", nil)
	}
	if filepath.Base(name) != name {
		return "", types.InvalidDataError("file name is not a plain base name", nil)
	}
	return name, nil
}
