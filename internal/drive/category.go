package drive

import (
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	CategoryImage    = "image"
	CategoryVideo    = "video"
	CategoryDocument = "document"
	CategoryAudio    = "audio"
	CategoryArchive  = "archive"
	CategoryText     = "text"
	CategoryOther    = "other"
)

var categoryMimeTypes = map[string][]string{
	CategoryImage: {
		"image/jpeg", "image/png", "image/gif", "image/webp",
		"image/svg+xml", "image/bmp", "image/tiff", "image/x-icon",
	},
	CategoryVideo: {
		"video/mp4", "video/mpeg", "video/quicktime", "video/x-msvideo",
		"video/x-matroska", "video/webm", "video/ogg",
	},
	CategoryDocument: {
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.ms-powerpoint",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
		"application/vnd.oasis.opendocument.text",
		"application/vnd.oasis.opendocument.spreadsheet",
		"application/rtf",
	},
	CategoryAudio: {
		"audio/mpeg", "audio/wav", "audio/x-wav", "audio/ogg",
		"audio/aac", "audio/flac", "audio/webm", "audio/mp4",
	},
	CategoryArchive: {
		"application/zip", "application/x-rar-compressed", "application/vnd.rar",
		"application/x-7z-compressed", "application/x-tar", "application/gzip",
		"application/x-gzip", "application/x-bzip2",
	},
	CategoryText: {
		"text/plain", "text/csv", "text/html", "text/css", "text/markdown",
		"text/javascript", "application/json", "application/xml", "text/xml",
	},
}

var mimeCategories = func() map[string]string {
	index := make(map[string]string)
	for category, types := range categoryMimeTypes {
		for _, t := range types {
			index[t] = category
		}
	}
	return index
}()

// Categories returns the known category names in stable order.
func Categories() []string {
	names := make([]string, 0, len(categoryMimeTypes))
	for name := range categoryMimeTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CategoryMimeTypes expands a category into its fixed MIME type set.
func CategoryMimeTypes(category string) ([]string, bool) {
	types, ok := categoryMimeTypes[strings.ToLower(category)]
	return types, ok
}

// CategoryOf returns the category of a MIME type or CategoryOther.
func CategoryOf(mimeType string) string {
	if category, ok := mimeCategories[baseMimeType(mimeType)]; ok {
		return category
	}
	return CategoryOther
}

func baseMimeType(mimeType string) string {
	base, _, _ := strings.Cut(mimeType, ";")
	return strings.ToLower(strings.TrimSpace(base))
}

// detectMimeType sniffs the content when the caller did not provide a type.
func detectMimeType(data []byte) string {
	if detected := baseMimeType(mimetype.Detect(data).String()); detected != "" {
		return detected
	}
	return "application/octet-stream"
}
