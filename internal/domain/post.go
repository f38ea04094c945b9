package domain

// Topic is the primary tag of a post, drawn from a fixed set.
// Every post carries exactly one.
type Topic string

const (
	TopicConfession Topic = "#Confession"
	TopicCrush      Topic = "#Crush"
	TopicRant       Topic = "#Rant"
	TopicQuestion   Topic = "#Question"
	TopicAdvice     Topic = "#Advice"
	TopicCampus     Topic = "#Campus"
)

// Topics lists all valid topics in display order.
func Topics() []Topic {
	return []Topic{
		TopicConfession,
		TopicCrush,
		TopicRant,
		TopicQuestion,
		TopicAdvice,
		TopicCampus,
	}
}

// Valid checks if the topic is one of the fixed set.
func (t Topic) Valid() bool {
	switch t {
	case TopicConfession, TopicCrush, TopicRant, TopicQuestion, TopicAdvice, TopicCampus:
		return true
	default:
		return false
	}
}

// DefaultAlias is used when a post author leaves the alias blank.
const DefaultAlias = "Anonymous"

// Post is a single board entry. Upvotes, Downvotes, and Score are
// denormalized counters maintained alongside the vote ledger; they are
// never written outside a vote or reply transaction after creation.
//
// Invariants: Score == Upvotes - Downvotes, and ReplyCount equals the
// number of Reply records referencing this post.
type Post struct {
	Record
	UserID     string   `json:"user_id"`
	Alias      string   `json:"alias"`
	Message    string   `json:"message"`
	Topic      Topic    `json:"topic"`
	ExtraTags  []string `json:"extra_tags,omitempty"`
	Upvotes    int      `json:"upvotes"`
	Downvotes  int      `json:"downvotes"`
	Score      int      `json:"score"`
	ReplyCount int      `json:"reply_count"`
}

// SortMode selects the feed ordering.
type SortMode string

const (
	// SortNew orders by creation time, newest first.
	SortNew SortMode = "new"
	// SortHot orders by score, highest first.
	SortHot SortMode = "hot"
)

// Valid checks if the sort mode is recognized.
func (m SortMode) Valid() bool {
	return m == SortNew || m == SortHot
}
