package config

const (
	// MaxComponentKeyLength is the maximum length for component keys.
	// Limited to 400 to fit in PostgreSQL VARCHAR(400); longer keys come
	// from deeply nested file paths and are rejected up front so a bulk
	// rename can never produce an unstorable key.
	MaxComponentKeyLength = 400

	// MaxComponentNameLength is the maximum length for component names.
	MaxComponentNameLength = 255

	// MaxPageSize caps the pageSize parameter of listing endpoints.
	MaxPageSize = 500

	// DefaultPageSize is the page size applied when none is requested.
	DefaultPageSize = 100
)
