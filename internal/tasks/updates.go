package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Marker  Marker // Outcome marker for per-record updates
	Message string // Human-readable message for display
}

// Marker classifies a per-record outcome for display.
type Marker int

const (
	None Marker = iota
	OK
	Failed
	Skipped
)

// Operation phase enumeration
type Phase int

const (
	SearchTracks Phase = iota
	DownloadTracks
	RetryFailures
	ReconcileDurations
	MigrateSongs
	ExportPlaylists
	FetchThumbnails
)

func (p Phase) String() string {
	switch p {
	case SearchTracks:
		return "search_tracks"
	case DownloadTracks:
		return "download_tracks"
	case RetryFailures:
		return "retry_failures"
	case ReconcileDurations:
		return "reconcile_durations"
	case MigrateSongs:
		return "migrate_songs"
	case ExportPlaylists:
		return "export_playlists"
	case FetchThumbnails:
		return "fetch_thumbnails"
	default:
		return ""
	}
}

func recordUpdate(phase Phase, step, total int, marker Marker, format string, args ...any) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Marker:  marker,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, fmt.Sprintf(format, args...)),
	}
}

func phaseUpdate(phase Phase, format string, args ...any) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Message: fmt.Sprintf(format, args...),
	}
}
