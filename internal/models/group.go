package models

// Group represents a named collection of users sharing expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string `json:"id"`

	// Title is the display name of the group (e.g. "Roommates", "Goa Trip").
	Title string `json:"title"`

	// CreatedBy is the user ID of the creator. Only the creator may delete
	// the group.
	CreatedBy string `json:"createdBy"`

	// InviteToken is an opaque random credential that admits new members.
	// Unique across groups and long-lived.
	InviteToken string `json:"-"`

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64 `json:"createdAt"`
}

// Membership links a user to a group. A user belongs to a group at most once;
// the store enforces uniqueness on (GroupID, UserID).
type Membership struct {
	GroupID  string `json:"groupId"`
	UserID   string `json:"userId"`
	JoinedAt int64  `json:"joinedAt"`
}

// Member is a membership joined with the user's profile, as returned by
// member listings and balance reports.
type Member struct {
	UserID   string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	JoinedAt int64  `json:"joinedAt"`
}
