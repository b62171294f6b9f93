package events

import "time"

const (
	// TopicMappingCreated carries MappingCreated events.
	TopicMappingCreated = "mapping.created"
	// TopicMappingDeleted carries MappingDeleted events.
	TopicMappingDeleted = "mapping.deleted"
)

// MappingCreated is emitted after a mapping has been stored.
type MappingCreated struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Code      string    `json:"code"`
	LongURL   string    `json:"longUrl"`
	ShortURL  string    `json:"shortUrl"`
	Custom    bool      `json:"custom"`
	CreatedAt time.Time `json:"createdAt"`
}

// MappingDeleted is emitted after a mapping has been removed.
type MappingDeleted struct {
	Owner     string    `json:"owner"`
	Code      string    `json:"code"`
	DeletedAt time.Time `json:"deletedAt"`
}
