package publishers

import (
	"time"

	"github.com/samvad-hq/samvad-blog-archiver/internal/domain"
)

// Event is the payload published downstream for every newly stored article.
type Event struct {
	SourceID    string                `json:"source_id"`
	SourceName  string                `json:"source_name"`
	RecordID    string                `json:"record_id"`
	Article     domain.ScrapedArticle `json:"article"`
	CollectedAt time.Time             `json:"collected_at"`
}

// NewEvent constructs an Event for an article stored under recordID.
func NewEvent(sourceID, sourceName, recordID string, article domain.ScrapedArticle) Event {
	return Event{
		SourceID:    sourceID,
		SourceName:  sourceName,
		RecordID:    recordID,
		Article:     article,
		CollectedAt: time.Now().UTC(),
	}
}
