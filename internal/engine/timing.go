package engine

import (
	"time"

	"github.com/alexisbeaulieu97/specdriver/internal/domain/result"
)

// Recorder is a nested-stage stopwatch producing a flat list of named
// duration records. Stages nest with stack discipline: a child stage ends
// before or together with its parent, so nested durations are recorded
// independently of the parent's total.
type Recorder struct {
	epoch    time.Time
	records  []result.PerformanceRecord
	finished bool
}

// NewRecorder starts the attempt clock.
func NewRecorder() *Recorder {
	return &Recorder{epoch: time.Now()}
}

// Stage is a scoped timing handle. End records the elapsed wall-clock time.
type Stage struct {
	rec      *Recorder
	category string
	name     string
	start    time.Time
	done     bool
}

// BeginStage opens a named stage. Stages begun after Finish are inert and
// record nothing.
func (r *Recorder) BeginStage(category, name string) *Stage {
	if r == nil || r.finished {
		return &Stage{done: true}
	}
	return &Stage{rec: r, category: category, name: name, start: time.Now()}
}

// End closes the stage and appends its record. Records appear in completion
// order, so nested stages precede their parents.
func (s *Stage) End() {
	if s == nil || s.done || s.rec == nil || s.rec.finished {
		return
	}
	s.done = true
	s.rec.records = append(s.rec.records, result.PerformanceRecord{
		Category: s.category,
		Name:     s.name,
		Start:    s.start.Sub(s.rec.epoch),
		Duration: time.Since(s.start),
	})
}

// Finish closes the recorder and returns the ordered records plus the total
// elapsed time. No stage may record after Finish.
func (r *Recorder) Finish() ([]result.PerformanceRecord, time.Duration) {
	r.finished = true
	records := make([]result.PerformanceRecord, len(r.records))
	copy(records, r.records)
	return records, time.Since(r.epoch)
}
