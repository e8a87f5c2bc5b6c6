package ui

import (
	"fmt"
	"strings"
	"time"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
)

// StatusTracker keeps track of capture progress across a run
type StatusTracker struct {
	Captured  int
	Attempted int
	Target    int
	StartTime time.Time
}

// NewStatusTracker creates a new status tracker for the given target count
func NewStatusTracker(target int) *StatusTracker {
	return &StatusTracker{
		Target:    target,
		StartTime: time.Now(),
	}
}

// IncrementCaptured records a successful capture
func (st *StatusTracker) IncrementCaptured() {
	st.Captured++
	st.Attempted++
}

// IncrementSkipped records a failed attempt
func (st *StatusTracker) IncrementSkipped() {
	st.Attempted++
}

// GetProgress returns a formatted progress bar toward the target
func (st *StatusTracker) GetProgress() string {
	const width = 20
	if st.Target <= 0 {
		return fmt.Sprintf("%d captured", st.Captured)
	}
	progress := float64(st.Captured) / float64(st.Target)
	if progress > 1 {
		progress = 1
	}
	filled := int(progress * float64(width))

	bar := strings.Repeat(ProgressBar, filled) +
		strings.Repeat(ProgressEmpty, width-filled)

	return fmt.Sprintf("[%s] %d/%d", bar, st.Captured, st.Target)
}

// GetElapsedTime returns the elapsed time since tracking started
func (st *StatusTracker) GetElapsedTime() time.Duration {
	return time.Since(st.StartTime)
}

// GetCaptureRate returns the average capture rate (panoramas per minute)
func (st *StatusTracker) GetCaptureRate() float64 {
	elapsed := st.GetElapsedTime().Minutes()
	if elapsed == 0 {
		return 0
	}
	return float64(st.Captured) / elapsed
}

// PrintProgress prints the current progress status
func (st *StatusTracker) PrintProgress() {
	if quietMode {
		return
	}
	fmt.Printf("\r%s %s | attempts: %d",
		Green("[CAPTURED]"),
		st.GetProgress(),
		st.Attempted)
}

// FinishProgress terminates the progress line and reports the run rate
func (st *StatusTracker) FinishProgress() {
	if quietMode || st.Attempted == 0 {
		return
	}
	fmt.Printf("\n%s %.1f panoramas/min over %s\n",
		Dim("rate:"),
		st.GetCaptureRate(),
		st.GetElapsedTime().Round(time.Second))
}
