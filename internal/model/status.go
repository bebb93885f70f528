package model

// RetrievalStatus represents where a retrieval is in its lifecycle
type RetrievalStatus string

const (
	// RetrievalStatusIdle means nothing is in flight
	RetrievalStatusIdle RetrievalStatus = "Idle"

	// RetrievalStatusProbing means the advisory HEAD request is running
	RetrievalStatusProbing RetrievalStatus = "Probing"

	// RetrievalStatusDownloading means the body is being streamed
	RetrievalStatusDownloading RetrievalStatus = "Downloading"

	// RetrievalStatusSaving means the payload is being written to disk
	RetrievalStatusSaving RetrievalStatus = "Saving"

	// RetrievalStatusCompleted means the file was saved
	RetrievalStatusCompleted RetrievalStatus = "Completed"

	// RetrievalStatusError means the retrieval ended with a failure outcome
	RetrievalStatusError RetrievalStatus = "Error"
)

// String returns the string representation of RetrievalStatus
func (rs RetrievalStatus) String() string {
	return string(rs)
}

// IsActive returns true while a retrieval is in flight
func (rs RetrievalStatus) IsActive() bool {
	return rs == RetrievalStatusProbing || rs == RetrievalStatusDownloading || rs == RetrievalStatusSaving
}

// IsFinished returns true if the retrieval reached a terminal outcome
func (rs RetrievalStatus) IsFinished() bool {
	return rs == RetrievalStatusCompleted || rs == RetrievalStatusError
}
