// Package imgurl rewrites hosted image URLs to request CDN-side resizing.
package imgurl

import (
	"strconv"
	"strings"
)

const uploadSegment = "/upload/"

// Transform describes a resize request. Zero Width or Height leaves that
// dimension to the CDN.
type Transform struct {
	Width  int
	Height int
	Mode   string // crop mode, e.g. "fill" or "limit"
}

// Presets used by the pages.
var (
	Thumbnail = Transform{Width: 150, Height: 150, Mode: "fill"}
	Card      = Transform{Width: 600, Height: 400, Mode: "fill"}
	Detail    = Transform{Width: 1200, Mode: "limit"}
)

// IsCloudinary reports whether url points at a Cloudinary upload.
func IsCloudinary(url string) bool {
	return strings.Contains(url, "cloudinary.com") && strings.Contains(url, uploadSegment)
}

// Rewrite inserts the transformation segment after /upload/ in a Cloudinary
// URL. Other URLs are returned unchanged.
func Rewrite(url string, t Transform) string {
	if !IsCloudinary(url) {
		return url
	}
	return strings.Replace(url, uploadSegment, uploadSegment+t.segment()+"/", 1)
}

func (t Transform) segment() string {
	parts := make([]string, 0, 5)
	if t.Width > 0 {
		parts = append(parts, "w_"+strconv.Itoa(t.Width))
	}
	if t.Height > 0 {
		parts = append(parts, "h_"+strconv.Itoa(t.Height))
	}
	if t.Mode != "" {
		parts = append(parts, "c_"+t.Mode)
	}
	parts = append(parts, "q_auto", "f_auto")
	return strings.Join(parts, ",")
}

// PublicID extracts the Cloudinary public id from an upload URL: the path
// after /upload/ without the version segment and file extension. It returns
// "" for URLs that are not Cloudinary uploads.
func PublicID(url string) string {
	if !IsCloudinary(url) {
		return ""
	}
	_, rest, _ := strings.Cut(url, uploadSegment)
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}

	segments := strings.Split(rest, "/")
	if len(segments) > 1 && isVersion(segments[0]) {
		segments = segments[1:]
	}
	id := strings.Join(segments, "/")
	if i := strings.LastIndex(id, "."); i > strings.LastIndex(id, "/") {
		id = id[:i]
	}
	return id
}

func isVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	_, err := strconv.ParseUint(s[1:], 10, 64)
	return err == nil
}
