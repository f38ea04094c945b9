package domain

// Direction is the direction of a cast vote.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Valid checks if the direction is recognized.
func (d Direction) Valid() bool {
	return d == DirectionUp || d == DirectionDown
}

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == DirectionUp {
		return DirectionDown
	}
	return DirectionUp
}

// Vote is the ledger record for one user's standing vote on one post.
// At most one exists per (user, post) pair; toggling a vote off deletes
// the record rather than storing a neutral state.
type Vote struct {
	Record
	UserID    string    `json:"user_id"`
	PostID    string    `json:"post_id"`
	Direction Direction `json:"direction"`
}

// VoteDelta is the signed adjustment a vote transition applies to a
// post's counters. Score change is always Up - Down.
type VoteDelta struct {
	Up   int
	Down int
}

// Score returns the net score change of the delta.
func (d VoteDelta) Score() int {
	return d.Up - d.Down
}

// ComputeVoteDelta returns the counter adjustment for moving a user's
// vote from oldDir (nil when no prior vote) to newDir, along with
// whether the ledger record should be removed (toggle-off).
func ComputeVoteDelta(oldDir *Direction, newDir Direction) (delta VoteDelta, removed bool) {
	if oldDir != nil && *oldDir == newDir {
		// Toggle-off: undo the standing vote.
		if newDir == DirectionUp {
			return VoteDelta{Up: -1}, true
		}
		return VoteDelta{Down: -1}, true
	}

	if newDir == DirectionUp {
		delta.Up = 1
	} else {
		delta.Down = 1
	}
	if oldDir != nil {
		// Direction switch: also undo the opposite vote.
		if *oldDir == DirectionUp {
			delta.Up--
		} else {
			delta.Down--
		}
	}
	return delta, false
}
