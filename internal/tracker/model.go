package tracker

import "context"

// Model is the per-hit field accessor passed to send tasks.
type Model struct {
	ctx    context.Context
	fields map[string]string
}

// Get returns the value of field, or "" when unset.
func (m *Model) Get(field string) string {
	return m.fields[field]
}

// Context returns the context the hit was sent with.
func (m *Model) Context() context.Context {
	if m.ctx == nil {
		return context.Background()
	}
	return m.ctx
}
