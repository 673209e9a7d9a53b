package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_Validate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"empty doc", `{"type":"doc","content":[]}`, false},
		{"paragraph with text", `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"hi","marks":[{"type":"bold"}]}]}]}`, false},
		{"wrong root", `{"type":"paragraph","content":[]}`, true},
		{"untyped node", `{"type":"doc","content":[{"content":[]}]}`, true},
		{"empty text", `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":""}]}]}`, true},
		{"text with children", `{"type":"doc","content":[{"type":"text","text":"a","content":[{"type":"text","text":"b"}]}]}`, true},
		{"untyped mark", `{"type":"doc","content":[{"type":"text","text":"a","marks":[{}]}]}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc Document
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &doc))
			err := doc.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDocument_ValidateDepthLimit(t *testing.T) {
	node := Node{Type: "text", Text: "leaf"}
	for i := 0; i < maxDocumentDepth+1; i++ {
		node = Node{Type: "blockquote", Content: []Node{node}}
	}
	doc := Document{Type: DocumentType, Content: []Node{node}}
	assert.Error(t, doc.Validate())
}

func TestEmptyDocument(t *testing.T) {
	doc := EmptyDocument()
	assert.NoError(t, doc.Validate())

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"doc","content":[]}`, string(raw))
}

func TestAppError_Status(t *testing.T) {
	assert.Equal(t, 404, NewNotFoundError("Post not found").Status())
	assert.Equal(t, 400, NewValidationError("bad").Status())
	assert.Equal(t, 401, NewUnauthorizedError("no").Status())
	assert.Equal(t, 500, NewUploadError(nil).Status())
	assert.Equal(t, 500, NewInternalError(nil).Status())
	assert.True(t, IsNotFound(NewNotFoundError("x")))
	assert.False(t, IsNotFound(NewValidationError("x")))
}
