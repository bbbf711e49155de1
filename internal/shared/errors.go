package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Storage errors on the bookkeeping files themselves.
	// Fatal: they abort the running stage.
	ErrManifestNotFound = fmt.Errorf("manifest not found")
	ErrInvalidManifest  = fmt.Errorf("invalid manifest")
	ErrStorage          = fmt.Errorf("storage failure")

	// Per-record errors: recorded and skipped, never abort a batch.
	ErrNoMatch        = fmt.Errorf("no search results")
	ErrNoURL          = fmt.Errorf("no URL provided")
	ErrDownloadFailed = fmt.Errorf("download failed")
	ErrTimeout        = fmt.Errorf("operation timed out")
	ErrFileNotFound   = fmt.Errorf("file not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
