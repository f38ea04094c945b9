package domain

// Reply is a response to a post. Creating one increments the parent
// post's ReplyCount in the same transaction.
type Reply struct {
	Record
	PostID  string `json:"post_id"`
	UserID  string `json:"user_id"`
	Alias   string `json:"alias"`
	Message string `json:"message"`
}
