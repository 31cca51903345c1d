package storage

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Allowed video MIME types for customer uploads.
var allowedVideoTypes = map[string]bool{
	"video/mp4":        true,
	"video/avi":        true,
	"video/quicktime":  true,
	"video/x-ms-wmv":   true,
	"video/x-flv":      true,
	"video/webm":       true,
	"video/x-matroska": true,
}

// IsAllowedVideoType reports whether the MIME type is an accepted video format.
func IsAllowedVideoType(contentType string) bool {
	return allowedVideoTypes[strings.ToLower(strings.TrimSpace(contentType))]
}

// AllowedVideoTypes returns the accepted video MIME types.
func AllowedVideoTypes() []string {
	types := make([]string, 0, len(allowedVideoTypes))
	for t := range allowedVideoTypes {
		types = append(types, t)
	}
	return types
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// BuildUploadKey builds the object key for a customer video upload.
// Keys are unique per upload so repeated file names never collide.
func BuildUploadKey(fileName string) string {
	base := sanitizeFileName(fileName)
	return fmt.Sprintf("uploads/user-video-%d-%s-%s", time.Now().UnixMilli(), uuid.NewString(), base)
}

func sanitizeFileName(fileName string) string {
	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	base = unsafeKeyChars.ReplaceAllString(base, "_")
	if base == "" || base == "." || base == ".." {
		base = "video"
	}
	return base
}
