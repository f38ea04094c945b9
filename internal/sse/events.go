// Package sse implements Server-Sent Events for the live feed and event broadcasting.
package sse

import (
	"time"

	"github.com/campuswall/campuswall-server/internal/domain"
)

// EventType represents the type of SSE event.
type EventType string

const (
	// EventPostCreated represents a new post on the board.
	EventPostCreated EventType = "post.created"
	// EventPostVoted represents updated counters after a vote transaction.
	EventPostVoted EventType = "post.voted"
	// EventReplyCreated represents a new reply, with the updated reply count.
	EventReplyCreated EventType = "reply.created"

	// EventVerificationPending represents a newly submitted verification document.
	// Only sent to admin users.
	EventVerificationPending EventType = "verification.pending"
	// EventVerificationReviewed represents the outcome of a verification review.
	// Only sent to the affected user.
	EventVerificationReviewed EventType = "verification.reviewed"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"` // Event-specific data as JSON object
	Type      EventType `json:"type"`

	// UserID filters delivery to a specific user when set.
	// Empty string means "broadcast to all". Never sent to the client.
	UserID string `json:"-"`
}

// PostEventData is the data payload for post.created events.
// Carries the full post so clients can render without a follow-up query.
type PostEventData struct {
	Post *domain.Post `json:"post"`
}

// PostVotedEventData is the data payload for post.voted events.
// Counters are the committed values, not deltas, so late or dropped
// events never leave clients with skewed numbers.
type PostVotedEventData struct {
	PostID    string `json:"post_id"`
	Upvotes   int    `json:"upvotes"`
	Downvotes int    `json:"downvotes"`
	Score     int    `json:"score"`
}

// ReplyCreatedEventData is the data payload for reply.created events.
type ReplyCreatedEventData struct {
	Reply      *domain.Reply `json:"reply"`
	ReplyCount int           `json:"reply_count"`
}

// VerificationPendingEventData is the data payload for verification.pending events.
type VerificationPendingEventData struct {
	UserID      string    `json:"user_id"`
	DocumentRef string    `json:"document_ref"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// VerificationReviewedEventData is the data payload for verification.reviewed events.
type VerificationReviewedEventData struct {
	Status domain.VerificationStatus `json:"status"`
	Note   string                    `json:"note,omitempty"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewPostCreatedEvent creates a post.created event.
func NewPostCreatedEvent(post *domain.Post) Event {
	return Event{
		Type:      EventPostCreated,
		Data:      PostEventData{Post: post},
		Timestamp: time.Now(),
	}
}

// NewPostVotedEvent creates a post.voted event from committed counters.
func NewPostVotedEvent(post *domain.Post) Event {
	return Event{
		Type: EventPostVoted,
		Data: PostVotedEventData{
			PostID:    post.ID,
			Upvotes:   post.Upvotes,
			Downvotes: post.Downvotes,
			Score:     post.Score,
		},
		Timestamp: time.Now(),
	}
}

// NewReplyCreatedEvent creates a reply.created event.
func NewReplyCreatedEvent(reply *domain.Reply, replyCount int) Event {
	return Event{
		Type: EventReplyCreated,
		Data: ReplyCreatedEventData{
			Reply:      reply,
			ReplyCount: replyCount,
		},
		Timestamp: time.Now(),
	}
}

// NewVerificationPendingEvent creates a verification.pending event for admins.
func NewVerificationPendingEvent(profile *domain.Profile) Event {
	var submitted time.Time
	if profile.SubmittedAt != nil {
		submitted = *profile.SubmittedAt
	}
	return Event{
		Type: EventVerificationPending,
		Data: VerificationPendingEventData{
			UserID:      profile.UserID,
			DocumentRef: profile.DocumentRef,
			SubmittedAt: submitted,
		},
		Timestamp: time.Now(),
	}
}

// NewVerificationReviewedEvent creates a verification.reviewed event.
// The caller targets it with EmitToUser.
func NewVerificationReviewedEvent(status domain.VerificationStatus, note string) Event {
	return Event{
		Type: EventVerificationReviewed,
		Data: VerificationReviewedEventData{
			Status: status,
			Note:   note,
		},
		Timestamp: time.Now(),
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type: EventHeartbeat,
		Data: HeartbeatEventData{
			ServerTime: time.Now(),
		},
		Timestamp: time.Now(),
	}
}
