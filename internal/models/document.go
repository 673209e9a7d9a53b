package models

import (
	"errors"
	"fmt"
)

// DocumentType is the required type of a rich-text root node.
const DocumentType = "doc"

const maxDocumentDepth = 32

// Document is the rich-text body of a post: a tagged tree of typed nodes.
type Document struct {
	Type    string `json:"type"`
	Content []Node `json:"content"`
}

// Node is a single element of the rich-text tree.
type Node struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []Node         `json:"content,omitempty"`
	Text    string         `json:"text,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
}

// Mark decorates a text node (bold, link, ...).
type Mark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// EmptyDocument returns the body given to freshly created posts.
func EmptyDocument() Document {
	return Document{Type: DocumentType, Content: []Node{}}
}

// Validate checks the structural rules of the document tree.
func (d Document) Validate() error {
	if d.Type != DocumentType {
		return fmt.Errorf("body type must be %q", DocumentType)
	}
	for i := range d.Content {
		if err := d.Content[i].validate(1); err != nil {
			return err
		}
	}
	return nil
}

func (n Node) validate(depth int) error {
	if depth > maxDocumentDepth {
		return errors.New("body is nested too deeply")
	}
	if n.Type == "" {
		return errors.New("body node is missing a type")
	}
	for _, m := range n.Marks {
		if m.Type == "" {
			return errors.New("body mark is missing a type")
		}
	}
	if n.Type == "text" {
		if n.Text == "" {
			return errors.New("text node must not be empty")
		}
		if len(n.Content) > 0 {
			return errors.New("text node cannot have children")
		}
		return nil
	}
	for i := range n.Content {
		if err := n.Content[i].validate(depth + 1); err != nil {
			return err
		}
	}
	return nil
}
