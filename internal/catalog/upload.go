package catalog

import (
	"errors"
	"regexp"
	"strings"
)

// MaxUploadBytes is the largest accepted ball image.
const MaxUploadBytes = 2 * 1024 * 1024

// UploadMimeTypes lists the accepted image types.
var UploadMimeTypes = []string{
	"image/png",
	"image/jpeg",
	"image/webp",
	"image/gif",
	"image/avif",
}

var (
	ErrUnsupportedImage = errors.New("only PNG, JPEG, WEBP, GIF or AVIF images can be uploaded")
	ErrEmptyImage       = errors.New("image file is empty")
	ErrImageTooLarge    = errors.New("image files are limited to 2MB")
)

var dataURLMime = regexp.MustCompile(`(?i)^data:([^;,]+)[;,]`)

// UploadAccept is the value for an HTML accept attribute.
func UploadAccept() string {
	return strings.Join(UploadMimeTypes, ",")
}

func normalizeMime(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// IsAllowedMimeType reports whether mime may be uploaded.
func IsAllowedMimeType(mime string) bool {
	m := normalizeMime(mime)
	for _, t := range UploadMimeTypes {
		if m == t {
			return true
		}
	}
	return false
}

// DataURLMimeType extracts the lower-cased media type of a data URL, or "".
func DataURLMimeType(dataURL string) string {
	m := dataURLMime.FindStringSubmatch(dataURL)
	if len(m) < 2 {
		return ""
	}
	return normalizeMime(m[1])
}

// ValidateUpload checks a file's declared type and size.
func ValidateUpload(mime string, size int64) error {
	if !IsAllowedMimeType(mime) {
		return ErrUnsupportedImage
	}
	if size <= 0 {
		return ErrEmptyImage
	}
	if size > MaxUploadBytes {
		return ErrImageTooLarge
	}
	return nil
}
