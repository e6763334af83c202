package model

// MetadataSummaryRequest represents the request body for metadata summarization
type MetadataSummaryRequest struct {
	BPM         *float64 `json:"bpm" validate:"required"`
	Key         string   `json:"key" validate:"required"`
	Instruments string   `json:"instruments" validate:"required"`
	Mood        string   `json:"mood" validate:"required"`
}

// MetadataSummaryResult represents the summary returned for a metadata request
type MetadataSummaryResult struct {
	Summary string `json:"summary" validate:"required,nonblank"`
}
