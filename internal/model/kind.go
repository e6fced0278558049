package model

import "strings"

// Kind is a coarse content category derived from a MIME type.
type Kind string

const (
	KindImage       Kind = "image"
	KindPDF         Kind = "pdf"
	KindWord        Kind = "word"
	KindSpreadsheet Kind = "spreadsheet"
	KindText        Kind = "text"
	KindArchive     Kind = "archive"
	KindOther       Kind = "other"
)

// KindOf classifies a MIME type. Checks run in order, so "text/csv" is text
// while "application/vnd.ms-excel" is a spreadsheet.
func KindOf(mimeType string) Kind {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return KindImage
	case strings.Contains(mimeType, "pdf"):
		return KindPDF
	case strings.Contains(mimeType, "word") || strings.Contains(mimeType, "document"):
		return KindWord
	case strings.Contains(mimeType, "excel") || strings.Contains(mimeType, "spreadsheet"):
		return KindSpreadsheet
	case strings.Contains(mimeType, "text"):
		return KindText
	case strings.Contains(mimeType, "zip") || strings.Contains(mimeType, "rar"):
		return KindArchive
	default:
		return KindOther
	}
}

var typeNames = map[string]string{
	"image/jpeg":         "JPEG image",
	"image/png":          "PNG image",
	"image/gif":          "GIF image",
	"image/bmp":          "BMP image",
	"image/webp":         "WebP image",
	"application/pdf":    "PDF document",
	"application/msword": "Word document",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "Word document",
	"text/plain":               "Text file",
	"application/vnd.ms-excel": "Excel spreadsheet",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": "Excel spreadsheet",
	"application/zip":              "ZIP archive",
	"application/x-rar-compressed": "RAR archive",
}

// TypeName returns a human label for a MIME type, falling back to the type itself.
func TypeName(mimeType string) string {
	if n, ok := typeNames[mimeType]; ok {
		return n
	}
	if mimeType == "" {
		return "Unknown type"
	}
	return mimeType
}
