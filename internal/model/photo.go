package model

import "time"

type Photo struct {
	ID         int64     `db:"id" json:"id"`
	EventType  EventType `db:"event_type" json:"eventType"`
	EventID    int64     `db:"event_id" json:"eventId"`
	Data       []byte    `db:"data" json:"-"`
	MimeType   string    `db:"mime_type" json:"mimeType"`
	Filename   string    `db:"filename" json:"filename"`
	UploadedBy int64     `db:"uploaded_by" json:"uploadedBy"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	Uploader   string    `db:"uploader" json:"uploader,omitempty"`
}

type CreatePhotoParams struct {
	EventType  EventType
	EventID    int64
	Data       []byte
	MimeType   string
	Filename   string
	UploadedBy int64
}
