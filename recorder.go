// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iterative

import "github.com/rs/zerolog"

// Recorder is notified by LinearSolve about the progress of a solve. method is
// the name of the Method type, for example "GMRES".
type Recorder interface {
	// Start is called once before the first iteration.
	Start(method string, dim int)
	// Record is called after every completed iteration.
	Record(method string, stats Stats)
	// Finish is called once when the solve terminates, with the error
	// LinearSolve is about to return.
	Finish(method string, stats Stats, err error)
}

// LogRecorder writes the progress of a solve as structured log events.
// Iterations are logged at debug level.
type LogRecorder struct {
	Logger zerolog.Logger
}

// NewLogRecorder returns a LogRecorder writing to l.
func NewLogRecorder(l zerolog.Logger) *LogRecorder {
	return &LogRecorder{Logger: l}
}

// Start implements the Recorder interface.
func (r *LogRecorder) Start(method string, dim int) {
	r.Logger.Info().Str("method", method).Int("dim", dim).Msg("Starting linear solve")
}

// Record implements the Recorder interface.
func (r *LogRecorder) Record(method string, stats Stats) {
	r.Logger.Debug().
		Str("method", method).
		Int("iteration", stats.Iterations).
		Float64("residual", stats.ResidualNorm).
		Msg("Iteration finished")
}

// Finish implements the Recorder interface.
func (r *LogRecorder) Finish(method string, stats Stats, err error) {
	var ev *zerolog.Event
	if err != nil {
		ev = r.Logger.Warn().Err(err)
	} else {
		ev = r.Logger.Info()
	}
	ev.Str("method", method).
		Int("iterations", stats.Iterations).
		Int("matvec", stats.MatVec).
		Int("psolve", stats.PSolve).
		Float64("residual", stats.ResidualNorm).
		Dur("runtime", stats.Runtime).
		Msg("Linear solve finished")
}
