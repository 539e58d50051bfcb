package models

import "time"

// FileInfo represents metadata about a file written to the storage medium.
type FileInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"` // file name including suffix
	Kind      string    `json:"kind"` // "csv" or "txt"
	Size      int64     `json:"size"`
	WrittenAt time.Time `json:"writtenAt"`
}
