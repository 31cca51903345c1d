package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAllowedVideoType(t *testing.T) {
	allowed := []string{
		"video/mp4",
		"video/quicktime",
		"video/webm",
		"video/x-matroska",
		"VIDEO/MP4",
		" video/mp4 ",
	}
	for _, ct := range allowed {
		assert.True(t, IsAllowedVideoType(ct), ct)
	}

	rejected := []string{
		"image/png",
		"application/octet-stream",
		"text/html",
		"video/",
		"",
	}
	for _, ct := range rejected {
		assert.False(t, IsAllowedVideoType(ct), ct)
	}
}

func TestBuildUploadKey(t *testing.T) {
	key := BuildUploadKey("my clip.mp4")

	assert.True(t, strings.HasPrefix(key, "uploads/user-video-"))
	assert.True(t, strings.HasSuffix(key, "my_clip.mp4"))

	// Same file name never collides
	other := BuildUploadKey("my clip.mp4")
	assert.NotEqual(t, key, other)
}

func TestBuildUploadKey_StripsPathComponents(t *testing.T) {
	key := BuildUploadKey("../../etc/passwd")
	assert.NotContains(t, key, "..")
	assert.True(t, strings.HasSuffix(key, "passwd"))

	key = BuildUploadKey(`C:\videos\take1.mov`)
	assert.True(t, strings.HasSuffix(key, "take1.mov"))
}

func TestBuildUploadKey_EmptyName(t *testing.T) {
	key := BuildUploadKey("")
	assert.True(t, strings.HasSuffix(key, "video"))
}
