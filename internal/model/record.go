package model

import "time"

// Record is the canonical metadata for one certified wipe report.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
//
// ID, OriginalName and UploadTime are immutable after creation: together they
// form the payload the certificate signature is computed over, and the
// verifier must be able to rebuild that payload byte-for-byte at any later
// time. UploadTime is therefore kept as the exact RFC 3339 string that was
// signed, not re-parsed into a time.Time.
type Record struct {
	ID              string    `json:"id"`
	OriginalName    string    `json:"original_name"`
	StoragePath     string    `json:"storage_path"`
	CertificatePath string    `json:"certificate_path"`
	TokenPath       string    `json:"token_path"`
	MimeType        string    `json:"mime_type"`
	Size            int64     `json:"size"`
	UploadTime      string    `json:"upload_time"`
	Snippet         string    `json:"snippet"`
	Signature       string    `json:"signature"`
	CreatedAt       time.Time `json:"created_at"`
}
