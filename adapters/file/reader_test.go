package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestReadWrappedObject(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "insight.json", `{
		"insight_id": "ins-42",
		"data": {"evidence": {"estimated_savings_eur": 4.2}}
	}`)

	source := NewSource(path, "", "")
	envelopes, err := source.Read(context.Background())
	require.NoError(t, err)
	require.Len(t, envelopes, 1)
	assert.Equal(t, "ins-42", envelopes[0].InsightID)
	assert.Equal(t, 4.2, envelopes[0].Payload["estimated_savings_eur"])
}

func TestReadExplicitDataPath(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "insight.json", `{
		"id": "ins-7",
		"result": {"payload": {"exit_code": 1}}
	}`)

	source := NewSource(path, "result.payload", "id")
	envelopes, err := source.Read(context.Background())
	require.NoError(t, err)
	require.Len(t, envelopes, 1)
	assert.Equal(t, "ins-7", envelopes[0].InsightID)
	assert.Equal(t, 1.0, envelopes[0].Payload["exit_code"])
}

func TestReadBareObjectFallsBackToRoot(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "raw.json", `{"foo": "bar"}`)

	source := NewSource(path, "", "")
	envelopes, err := source.Read(context.Background())
	require.NoError(t, err)
	require.Len(t, envelopes, 1)
	assert.Equal(t, "bar", envelopes[0].Payload["foo"])
	assert.Equal(t, "raw.json", envelopes[0].InsightID, "falls back to the file name")
}

func TestReadArrayBody(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "batch.json", `[
		{"insight_id": "a", "evidence": {"exit_code": 0}},
		{"insight_id": "b", "evidence": {"exit_code": 1}},
		"not-an-object"
	]`)

	source := NewSource(path, "", "")
	envelopes, err := source.Read(context.Background())
	require.NoError(t, err)
	require.Len(t, envelopes, 2, "non-object elements are skipped")
	assert.Equal(t, "a", envelopes[0].InsightID)
	assert.Equal(t, "b", envelopes[1].InsightID)
}

func TestReadNDJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "captures.ndjson",
		`{"insight_id": "x", "evidence": {"estimated_savings_eur": 1}}

{"foo": "bar"}
`)

	source := NewSource(path, "", "")
	envelopes, err := source.Read(context.Background())
	require.NoError(t, err)
	require.Len(t, envelopes, 2, "blank lines are skipped")
	assert.Equal(t, "x", envelopes[0].InsightID)
	assert.Equal(t, "captures.ndjson:3", envelopes[1].InsightID)
}

func TestReadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "one.json", `{"insight_id": "a", "evidence": {"exit_code": 0}}`)
	writeFixture(t, dir, "two.jsonl", `{"insight_id": "b", "evidence": {"exit_code": 1}}`)
	writeFixture(t, dir, "ignored.txt", `not json`)

	source := NewSource(dir, "", "")
	envelopes, err := source.Read(context.Background())
	require.NoError(t, err)
	assert.Len(t, envelopes, 2)
}

func TestReadMissingPath(t *testing.T) {
	source := NewSource(filepath.Join(t.TempDir(), "nope.json"), "", "")
	_, err := source.Read(context.Background())
	assert.Error(t, err)
}
