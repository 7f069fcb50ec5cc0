package pgsplit

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Parse completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration or parameters
	ExitConnectionError = 11 // Failed to connect to database
	ExitParseError      = 12 // Fatal parse error (truncated or empty dump)
	ExitDumpError       = 13 // External pg_dump invocation failed
)

const (
	// OthersBucket is the schema directory used for statements whose schema
	// is unknown or that are inherently non-schema-qualified.
	OthersBucket = "others"

	// MetadataFileName is the run summary written at the output root.
	MetadataFileName = "METADATA"

	// SQLFileExtension is appended to every routed object file.
	SQLFileExtension = ".sql"
)
