package logging

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_JSONFieldNames(t *testing.T) {
	event := &Event{
		Timestamp: time.Date(2026, 2, 23, 14, 30, 0, 123000000, time.UTC),
		RunID:     "run-9f8e7d6c",
		EventType: EventCommand,
		Summary:   "p4 edit //depot/main/a.c",
	}
	b, err := json.Marshal(event)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Contains(t, m, "ts")
	assert.Contains(t, m, "run_id")
	assert.Contains(t, m, "event_type")
	assert.Contains(t, m, "summary")
	assert.NotContains(t, m, "component")
	assert.NotContains(t, m, "tags")
	assert.NotContains(t, m, "data")
}

func TestCommandData_ExitCodeNotOmitted(t *testing.T) {
	b, err := json.Marshal(&CommandData{Argv: []string{"p4"}, File: "/f"})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Contains(t, m, "exit_code")
	assert.NotContains(t, m, "timed_out")
}

func TestEvent_Golden(t *testing.T) {
	data, err := json.Marshal(&InterceptData{Op: "delete", File: "/ws/a.c", Decision: "intercepted", Action: "edit"})
	require.NoError(t, err)
	event := &Event{
		Timestamp: time.Date(2026, 2, 23, 14, 30, 0, 123000000, time.UTC),
		RunID:     "run-1",
		EventType: EventIntercept,
		Summary:   "delete /ws/a.c",
		Component: "policy",
		Data:      data,
	}
	got, err := json.Marshal(event)
	require.NoError(t, err)

	expected, err := os.ReadFile(filepath.Join("testdata", "intercept_event.golden"))
	require.NoError(t, err)
	assert.JSONEq(t, string(expected), string(got))
}

func TestJSONLWriter_CreatesParentAndAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "events.jsonl")

	w1, err := NewJSONLWriter(path)
	require.NoError(t, err)
	require.NoError(t, w1.Write(testEvent("first")))
	require.NoError(t, w1.Close())

	w2, err := NewJSONLWriter(path)
	require.NoError(t, err)
	require.NoError(t, w2.Write(testEvent("second")))
	require.NoError(t, w2.Close())

	lines := readLines(t, path)
	require.Len(t, lines, 2)

	var event Event
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &event))
	assert.Equal(t, "second", event.Summary)
}

func TestJSONLWriter_ConcurrentWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	w, err := NewJSONLWriter(path)
	require.NoError(t, err)

	const goroutines = 50
	const perGoroutine = 10

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				_ = w.Write(testEvent("concurrent"))
			}
		}()
	}
	wg.Wait()
	require.NoError(t, w.Close())

	lines := readLines(t, path)
	assert.Len(t, lines, goroutines*perGoroutine)
	for i, line := range lines {
		var event Event
		assert.NoError(t, json.Unmarshal([]byte(line), &event), "line %d", i)
	}
}

func testEvent(summary string) *Event {
	return &Event{
		Timestamp: time.Now().UTC(),
		RunID:     "test-run",
		EventType: EventCommand,
		Summary:   summary,
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	require.NoError(t, scanner.Err())
	return lines
}
