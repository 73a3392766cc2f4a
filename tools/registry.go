// Package tools provides a metadata-driven registry for MCP tool definitions.
// Tools are defined declaratively and registered through type-safe handlers.
package tools

// ToolSpec defines a tool's metadata for declarative registration.
// Each spec maps to a currents client method with matching Args type.
type ToolSpec struct {
	// Name is the MCP tool name (e.g., "search_news")
	Name string

	// Method is the client method name (e.g., "SearchNews")
	Method string

	// Description is the tool description shown to LLMs
	Description string

	// Title is the human-readable tool title for annotations
	Title string

	// Category groups tools logically (search, latest, reference)
	Category string

	// Tags are published in the tool's _meta for clients that filter by tag
	Tags []string

	// BareErrors means failures are reported as {error} without a success key
	BareErrors bool

	// ReadOnly indicates the tool doesn't modify provider state
	ReadOnly bool

	// Destructive indicates the tool can delete or overwrite data
	Destructive bool

	// Idempotent indicates repeated calls have the same effect
	Idempotent bool

	// OpenWorld indicates the tool accesses external resources
	OpenWorld bool
}

// ptr is a helper to create a pointer to a value.
func ptr[T any](v T) *T {
	return &v
}
