package model

// UpsertResult reports the outcome of an update-or-insert in the shape
// clients already consume: a match/modify count for updates, an upsert
// count plus the new identifier for inserts.
type UpsertResult struct {
	MatchedCount  int64  `json:"matchedCount"`
	ModifiedCount int64  `json:"modifiedCount"`
	UpsertedCount int64  `json:"upsertedCount"`
	UpsertedID    string `json:"upsertedId,omitempty"`
}

// DeleteResult reports how many records a delete removed.
type DeleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
}
