package capture

import "fmt"

// ScanPolicy decides what scans do to a completed task.
type ScanPolicy int

const (
	// ReopenOnScan applies scans to completed tasks too; an increment moves
	// the task back to in_progress and a decrement recomputes its status.
	ReopenOnScan ScanPolicy = iota

	// RejectAfterCompletion refuses scans once a task is completed.
	RejectAfterCompletion
)

func (p ScanPolicy) String() string {
	switch p {
	case ReopenOnScan:
		return "reopen_on_scan"
	case RejectAfterCompletion:
		return "reject_after_completion"
	default:
		return fmt.Sprintf("ScanPolicy(%d)", int(p))
	}
}

// AllowsCompleted reports whether scan updates may touch completed tasks.
func (p ScanPolicy) AllowsCompleted() bool {
	return p != RejectAfterCompletion
}

// ParseScanPolicy maps a config value to a policy. Empty means ReopenOnScan.
func ParseScanPolicy(s string) (ScanPolicy, error) {
	switch s {
	case "", "reopen_on_scan", "reopen":
		return ReopenOnScan, nil
	case "reject_after_completion", "reject":
		return RejectAfterCompletion, nil
	default:
		return ReopenOnScan, fmt.Errorf("unknown scan policy %q", s)
	}
}
