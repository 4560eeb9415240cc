package models

import "strings"

// Message captures a single entry of a conversation history.

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role       Role           `json:"role"`
	Content    string         `json:"content"`
	References []ReferenceDoc `json:"references,omitempty"`
}

// ReferenceDoc is a retrieved passage attached to an assistant reply for
// provenance display. By convention the first line of Contents is a header
// and the remainder is the body.
type ReferenceDoc struct {
	Title    string `json:"title"`
	Contents string `json:"contents"`
}

// Header returns the first line of Contents.
func (d ReferenceDoc) Header() string {
	if i := strings.IndexByte(d.Contents, '\n'); i >= 0 {
		return d.Contents[:i]
	}
	return d.Contents
}

// Body returns everything after the first line of Contents.
func (d ReferenceDoc) Body() string {
	if i := strings.IndexByte(d.Contents, '\n'); i >= 0 {
		return d.Contents[i+1:]
	}
	return ""
}
