package models

import "time"

// RawPost represents an unprocessed record as returned by the post provider.
// Fields may be missing or malformed; the normalizer decides what survives.
type RawPost struct {
	ID             string
	Text           string
	AuthorHandle   string
	AuthorVerified bool
	Likes          int
	Reposts        int
	Replies        int
	CreatedAt      time.Time
	Hashtags       []string
}

// Post is a normalized, validated post. Immutable once created; lives only
// for the duration of one pipeline run.
type Post struct {
	ID               string    `json:"id"`
	Text             string    `json:"text"`
	AuthorHandle     string    `json:"author_handle"`
	Likes            int       `json:"likes"`
	Reposts          int       `json:"reposts"`
	Replies          int       `json:"replies"`
	CreatedAt        time.Time `json:"created_at"`
	Hashtags         []string  `json:"hashtags"`
	IsVerifiedAuthor bool      `json:"is_verified_author"`
}

// EngagementScore weighs reposts double since a repost spreads the post to a
// new audience while a like does not.
func (p *Post) EngagementScore() int {
	return p.Likes + 2*p.Reposts
}

// QueryParams are the caller's filter parameters for one pipeline run.
type QueryParams struct {
	Keyword      string `json:"keyword"`
	MinLikes     int    `json:"min_likes"`
	VerifiedOnly bool   `json:"verified_only"`
	MaxResults   int    `json:"max_results"`
}
