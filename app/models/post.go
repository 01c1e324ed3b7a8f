package models

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BeforeCreate stamps the creation time and makes sure the list fields are
// non-nil so they render as [] rather than null.
func (p *Post) BeforeCreate() {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	p.Normalize()
}

// Normalize replaces nil list fields with empty ones.
func (p *Post) Normalize() {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Likes == nil {
		p.Likes = []string{}
	}
	if p.Comments == nil {
		p.Comments = []string{}
	}
}

// IsOwnedBy reports whether userID created the post.
func (p *Post) IsOwnedBy(userID string) bool {
	return userID != "" && p.Creator == userID
}

// ToggleLike adds userID to the likes if absent, otherwise removes every
// occurrence of it. It returns true when the post ends up liked by userID.
func (p *Post) ToggleLike(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			kept := make([]string, 0, len(p.Likes))
			for _, other := range p.Likes {
				if other != userID {
					kept = append(kept, other)
				}
			}
			p.Likes = kept
			return false
		}
	}
	p.Likes = append(p.Likes, userID)
	return true
}

// AddComment appends a comment to the post
func (p *Post) AddComment(value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("comment cannot be empty")
	}
	p.Comments = append(p.Comments, value)
	return nil
}

// PostQuery selects posts whose title contains Title (case-insensitive) or
// that share at least one tag with Tags.
type PostQuery struct {
	Title string
	Tags  []string
}

// ParsePostQuery builds a query from the raw searchQuery and comma-separated
// tags parameters. Blank tag entries are dropped.
func ParsePostQuery(searchQuery, tags string) PostQuery {
	q := PostQuery{Title: searchQuery}
	for _, tag := range strings.Split(tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			q.Tags = append(q.Tags, tag)
		}
	}
	return q
}

// TitleRegex is the store-side equivalent of the title match: the query
// taken literally, case-insensitive.
func (q PostQuery) TitleRegex() primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(q.Title), Options: "i"}
}

// Matches reports whether the post satisfies the query.
func (q PostQuery) Matches(p *Post) bool {
	if strings.Contains(strings.ToLower(p.Title), strings.ToLower(q.Title)) {
		return true
	}
	for _, want := range q.Tags {
		for _, have := range p.Tags {
			if want == have {
				return true
			}
		}
	}
	return false
}
