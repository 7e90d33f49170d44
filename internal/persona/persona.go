// Package persona loads the static personality context used to build the
// system prompt: a summary of who the twin is, supporting facts, and style
// guidance. The context is read-only configuration; it never changes during
// a conversation.
package persona

import "context"

// Persona is the personality context. Summary is required; Facts and Style
// may be empty.
type Persona struct {
	Summary string
	Facts   string
	Style   string
}

// Loader loads the personality context from its backing source.
type Loader interface {
	Load(ctx context.Context) (Persona, error)
}
