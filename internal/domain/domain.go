// Package domain defines cross-cutting entity types used across the system.
package domain

import "strings"

// Collection names in the record store.
const (
	CollectionPending  = "pending"
	CollectionApproved = "approved"
)

// FileKind identifies how a shared artifact must be resent through the transport.
type FileKind string

const (
	FilePhoto    FileKind = "photo"
	FileDocument FileKind = "document"
)

// Record is a contributed course resource. The JSON field names are the
// on-disk schema of the flat collection files and must stay stable.
type Record struct {
	CourseCode   string   `json:"course_code"`
	FileID       string   `json:"file_id"`
	FileKind     FileKind `json:"file_type"`
	UploaderID   int64    `json:"uploader_id"`
	UploaderName string   `json:"uploader_name"`
}

// WellFormed reports whether the record carries enough information to be
// resent through the transport. Records failing this check are treated as
// absent by lookup and deletion, never as errors.
func (r Record) WellFormed() bool {
	if r.FileID == "" {
		return false
	}
	return r.FileKind == FilePhoto || r.FileKind == FileDocument
}

// NormalizeCourseCode canonicalizes a user-supplied course code.
// Any non-empty token is accepted; codes are never validated against a list.
func NormalizeCourseCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Actor identifies a human party on the transport: a contributor, a
// deletion requester, or the administrator.
type Actor struct {
	ID   int64
	Name string
}
