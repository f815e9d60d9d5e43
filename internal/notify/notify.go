// Package notify reports workflow results to an external channel, for
// unattended runs where nobody is watching the terminal.
package notify

// Summary describes the outcome of one workflow run.
type Summary struct {
	RunID    string
	Bucket   string
	Target   string // e.g. "2016-08 iPhone6s image"
	Moved    int
	Uploaded int
	Err      error
}

// Notifier delivers a workflow summary. Implementations must tolerate
// being called with a failed run (Summary.Err non-nil).
type Notifier interface {
	NotifyWorkflowResult(s Summary) error
}

// NopNotifier discards all notifications. Used when no notification
// channel is configured.
type NopNotifier struct{}

func (NopNotifier) NotifyWorkflowResult(Summary) error { return nil }
