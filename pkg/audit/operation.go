package audit

import (
	"fmt"
	"time"
)

// Operation brackets a unit of pipeline work with start/success/error
// entries so run timelines reconstruct cleanly from the log alone.
type Operation struct {
	logger *Logger
	runID  string
	name   string
	start  time.Time
}

// Begin emits the start entry for a named operation and returns a handle
// that must be finished with Success or Fail.
func (l *Logger) Begin(runID, name string, data map[string]any) *Operation {
	op := &Operation{logger: l, runID: runID, name: name, start: time.Now()}
	l.Append(name+"_start", runID, data)
	return op
}

// Success records completion with the elapsed duration.
func (op *Operation) Success(data map[string]any) {
	payload := map[string]any{
		"duration_seconds": time.Since(op.start).Seconds(),
		"end_time":         float64(time.Now().UnixNano()) / 1e9,
	}
	for k, v := range data {
		payload[k] = v
	}
	op.logger.Append(op.name+"_success", op.runID, payload)
}

// Fail records the error that ended the operation.
func (op *Operation) Fail(err error) {
	op.logger.Append(op.name+"_error", op.runID, map[string]any{
		"error_type":       fmt.Sprintf("%T", err),
		"error_message":    fmt.Sprint(err),
		"duration_seconds": time.Since(op.start).Seconds(),
	})
}
