package model

import "time"

// Document represents a stored file owned by a single user.
// JSON names follow the persisted `documents` collection schema.
type Document struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	MimeType     string    `json:"type"`
	Size         int64     `json:"size"`
	Content      string    `json:"content"`
	OwnerID      string    `json:"ownerId"`
	UploadTime   time.Time `json:"uploadTime"`
	LastModified time.Time `json:"lastModified"`
}

// DocumentDraft carries the caller-supplied fields of a document before it is stored.
// ID and timestamps are assigned by the document store.
type DocumentDraft struct {
	Name     string `json:"name"`
	MimeType string `json:"type"`
	Size     int64  `json:"size"`
	Content  string `json:"content"`
	OwnerID  string `json:"ownerId"`
}

// Stats is a derived, read-only view over one owner's documents.
type Stats struct {
	Count          int        `json:"totalCount"`
	TotalSizeBytes int64      `json:"totalSize"`
	Recent         []Document `json:"recentUploads"`
}
