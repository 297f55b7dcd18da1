package hnapi

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ItemType discriminates content nodes.
type ItemType string

const (
	TypeStory   ItemType = "story"
	TypeComment ItemType = "comment"
	TypeJob     ItemType = "job"
	TypePoll    ItemType = "poll"
	TypePollOpt ItemType = "pollopt"
)

var itemTypes = []ItemType{TypeStory, TypeComment, TypeJob, TypePoll, TypePollOpt}

// Valid reports whether t is one of the known item types.
func (t ItemType) Valid() bool {
	for _, known := range itemTypes {
		if t == known {
			return true
		}
	}
	return false
}

func itemTypeNames() []string {
	out := make([]string, len(itemTypes))
	for i, t := range itemTypes {
		out[i] = string(t)
	}
	return out
}

// Item is a story, comment, job, poll or poll option. Only ID is guaranteed;
// pointer fields distinguish "absent" from zero.
type Item struct {
	ID          int64    `json:"id"`
	Type        ItemType `json:"type,omitempty"`
	By          string   `json:"by,omitempty"`
	Time        int64    `json:"time,omitempty"`
	Text        string   `json:"text,omitempty"`
	URL         string   `json:"url,omitempty"`
	Title       string   `json:"title,omitempty"`
	Score       *int     `json:"score,omitempty"`
	Descendants *int     `json:"descendants,omitempty"`
	Kids        []int64  `json:"kids,omitempty"`
	Parent      *int64   `json:"parent,omitempty"`
	Poll        *int64   `json:"poll,omitempty"`
	Parts       []int64  `json:"parts,omitempty"`
	Deleted     bool     `json:"deleted,omitempty"`
	Dead        bool     `json:"dead,omitempty"`
}

// PlainText returns Text with HTML markup removed and entities decoded.
func (it *Item) PlainText() string {
	if it == nil || strings.TrimSpace(it.Text) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(it.Text))
	if err != nil {
		return it.Text
	}
	// Paragraph tags separate comment paragraphs; keep them apart.
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml(" ")
	})
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// User is a Hacker News account.
type User struct {
	ID        string  `json:"id"`
	Created   int64   `json:"created"`
	Karma     int     `json:"karma"`
	About     string  `json:"about,omitempty"`
	Submitted []int64 `json:"submitted,omitempty"`
}

// ValidateStory applies the story rules on top of the generic item schema:
// type story, non-empty by and title, positive time, non-negative score and
// descendants.
func ValidateStory(it *Item) error {
	if it == nil {
		return &ValidationError{Resource: "story", Violations: []Violation{{Field: "$", Message: "is required"}}}
	}
	r := rules{resource: fmt.Sprintf("story %d", it.ID)}
	r.itemType(it, TypeStory)
	r.nonEmpty("by", it.By)
	r.positive("time", it.Time)
	r.nonEmpty("title", it.Title)
	r.nonNegative("score", it.Score)
	r.nonNegative("descendants", it.Descendants)
	return r.err()
}

// ValidateComment applies the comment rules: type comment, non-empty by and
// text, positive time and parent.
func ValidateComment(it *Item) error {
	if it == nil {
		return &ValidationError{Resource: "comment", Violations: []Violation{{Field: "$", Message: "is required"}}}
	}
	r := rules{resource: fmt.Sprintf("comment %d", it.ID)}
	r.itemType(it, TypeComment)
	r.nonEmpty("by", it.By)
	r.positive("time", it.Time)
	r.nonEmpty("text", it.Text)
	if it.Parent == nil {
		r.add("parent", "is required")
	} else {
		r.positive("parent", *it.Parent)
	}
	return r.err()
}

type rules struct {
	resource   string
	violations []Violation
}

func (r *rules) add(field, msg string) {
	r.violations = append(r.violations, Violation{Field: field, Message: msg})
}

func (r *rules) itemType(it *Item, want ItemType) {
	if it.Type != want {
		r.add("type", fmt.Sprintf("must be %q, got %q", want, it.Type))
	}
}

func (r *rules) nonEmpty(field, v string) {
	if v == "" {
		r.add(field, "is required")
	}
}

func (r *rules) positive(field string, v int64) {
	if v <= 0 {
		r.add(field, "must be positive")
	}
}

func (r *rules) nonNegative(field string, v *int) {
	switch {
	case v == nil:
		r.add(field, "is required")
	case *v < 0:
		r.add(field, "must not be negative")
	}
}

func (r *rules) err() error {
	if len(r.violations) == 0 {
		return nil
	}
	return &ValidationError{Resource: r.resource, Violations: r.violations}
}
