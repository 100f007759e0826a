package models

import "time"

// Export describes an encrypted vault export placed in object storage.
type Export struct {
	// Key is the object-storage key of the armored age file.
	Key string
	// URL is a presigned GET URL for downloading it.
	URL string
	// ExpiresAt is when URL stops working.
	ExpiresAt time.Time
	// Count is the number of credentials in the export.
	Count int
}
