// Package search provides full-text search over board posts using Bleve.
// Posts are indexed by message text, alias, topic, and extra tags, with
// fuzzy matching for typo tolerance.
package search

import (
	"github.com/campuswall/campuswall-server/internal/domain"
)

// PostDocument is the document structure for the Bleve index.
type PostDocument struct {
	ID         string   `json:"id"`
	Message    string   `json:"message"`
	Alias      string   `json:"alias"`
	Topic      string   `json:"topic"`
	ExtraTags  []string `json:"extra_tags,omitempty"`
	Score      int      `json:"score"`
	ReplyCount int      `json:"reply_count"`
	CreatedAt  int64    `json:"created_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *PostDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":          d.ID,
		"message":     d.Message,
		"alias":       d.Alias,
		"topic":       d.Topic,
		"score":       d.Score,
		"reply_count": d.ReplyCount,
		"created_at":  d.CreatedAt,
	}
	if len(d.ExtraTags) > 0 {
		m["extra_tags"] = d.ExtraTags
	}
	return m
}

// PostToDocument converts a domain Post to a PostDocument.
func PostToDocument(post *domain.Post) *PostDocument {
	return &PostDocument{
		ID:         post.ID,
		Message:    post.Message,
		Alias:      post.Alias,
		Topic:      string(post.Topic),
		ExtraTags:  post.ExtraTags,
		Score:      post.Score,
		ReplyCount: post.ReplyCount,
		CreatedAt:  post.CreatedAt.UnixMilli(),
	}
}
