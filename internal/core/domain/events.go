package domain

import "time"

// CourseProcessedEvent is emitted after a manifest has been persisted.
type CourseProcessedEvent struct {
	CourseID      string       `json:"courseId"`
	OwnerID       string       `json:"ownerId"`
	OverallStatus CourseStatus `json:"overallStatus"`
	FileCount     int          `json:"fileCount"`
	TextBytes     int64        `json:"textBytes"`
	ProcessedAt   time.Time    `json:"processedAt"`
}
