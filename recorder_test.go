// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iterative

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logEvents(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var events []map[string]any
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var ev map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &ev))
		events = append(events, ev)
	}
	return events
}

func TestLogRecorder(t *testing.T) {
	var buf bytes.Buffer
	rec := NewLogRecorder(zerolog.New(&buf).Level(zerolog.DebugLevel))

	tc := market("nonsym_40")
	b, _ := rhsOnes(tc.a, tc.n)
	r, err := LinearSolve(tc.a, b, &GMRES{Restart: 5}, Settings{Recorder: rec})
	require.NoError(t, err)

	events := logEvents(t, &buf)
	require.Len(t, events, r.Stats.Iterations+2)

	first := events[0]
	assert.Equal(t, "info", first["level"])
	assert.Equal(t, "Starting linear solve", first["message"])
	assert.Equal(t, "GMRES", first["method"])
	assert.EqualValues(t, tc.n, first["dim"])

	for i, ev := range events[1 : len(events)-1] {
		assert.Equal(t, "debug", ev["level"])
		assert.Equal(t, "Iteration finished", ev["message"])
		assert.EqualValues(t, i+1, ev["iteration"])
	}

	last := events[len(events)-1]
	assert.Equal(t, "info", last["level"])
	assert.Equal(t, "Linear solve finished", last["message"])
	assert.EqualValues(t, r.Stats.Iterations, last["iterations"])
	assert.EqualValues(t, r.Stats.MatVec, last["matvec"])
	assert.NotContains(t, last, "error")
}

func TestLogRecorderFailure(t *testing.T) {
	var buf bytes.Buffer
	rec := NewLogRecorder(zerolog.New(&buf).Level(zerolog.InfoLevel))

	tc := market("lap2d_25")
	b, _ := rhsOnes(tc.a, tc.n)
	_, err := LinearSolve(tc.a, b, &CG{}, Settings{MaxIterations: 1, Recorder: rec})
	require.ErrorIs(t, err, ErrIterationLimit)

	// Iterations are not logged at info level.
	events := logEvents(t, &buf)
	require.Len(t, events, 2)
	last := events[1]
	assert.Equal(t, "warn", last["level"])
	assert.Equal(t, ErrIterationLimit.Error(), last["error"])
	assert.Equal(t, "CG", last["method"])
}
