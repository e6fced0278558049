package handler

import (
	"time"

	"github.com/dustin/go-humanize"

	"docvault/internal/model"
)

// documentView is the API representation of a document. Content is only set on preview.
type documentView struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	MimeType     string     `json:"type"`
	Kind         model.Kind `json:"kind"`
	TypeName     string     `json:"typeName"`
	Size         int64      `json:"size"`
	SizeHuman    string     `json:"sizeHuman"`
	Content      string     `json:"content,omitempty"`
	UploadTime   time.Time  `json:"uploadTime"`
	LastModified time.Time  `json:"lastModified"`
}

type statsView struct {
	TotalCount     int            `json:"totalCount"`
	TotalSize      int64          `json:"totalSize"`
	TotalSizeHuman string         `json:"totalSizeHuman"`
	RecentUploads  []documentView `json:"recentUploads"`
}

type logView struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

type renameRequest struct {
	Name string `json:"name"`
}

func newDocumentView(d model.Document, withContent bool) documentView {
	v := documentView{
		ID:           d.ID,
		Name:         d.Name,
		MimeType:     d.MimeType,
		Kind:         model.KindOf(d.MimeType),
		TypeName:     model.TypeName(d.MimeType),
		Size:         d.Size,
		SizeHuman:    humanize.IBytes(uint64(max(d.Size, 0))),
		UploadTime:   d.UploadTime,
		LastModified: d.LastModified,
	}
	if withContent {
		v.Content = d.Content
	}
	return v
}

func newDocumentViews(docs []model.Document) []documentView {
	out := make([]documentView, 0, len(docs))
	for _, d := range docs {
		out = append(out, newDocumentView(d, false))
	}
	return out
}

func newStatsView(s *model.Stats) statsView {
	return statsView{
		TotalCount:     s.Count,
		TotalSize:      s.TotalSizeBytes,
		TotalSizeHuman: humanize.IBytes(uint64(max(s.TotalSizeBytes, 0))),
		RecentUploads:  newDocumentViews(s.Recent),
	}
}

func newLogViews(entries []model.AuditLogView) []logView {
	out := make([]logView, 0, len(entries))
	for _, e := range entries {
		out = append(out, logView{
			ID:        e.ID,
			UserID:    e.UserID,
			Username:  e.Username,
			Action:    e.Action,
			Timestamp: e.Timestamp,
		})
	}
	return out
}
