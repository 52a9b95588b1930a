package report

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lukemcguire/linkaudit/result"
)

// recordingLogger remembers each message and whether the report artifact
// already existed when it was called.
type recordingLogger struct {
	path        string
	messages    []string
	fileExisted []bool
	err         error
}

func (r *recordingLogger) Log(_ context.Context, message string) error {
	r.messages = append(r.messages, message)
	_, statErr := os.Stat(r.path)
	r.fileExisted = append(r.fileExisted, statErr == nil)
	return r.err
}

func brokenAudit() *result.AuditResult {
	return &result.AuditResult{
		Page: result.Page{Source: "grammar.html", Report: "Grammar_brokenLinks.txt"},
		Flagged: []result.LinkResult{
			{URL: "https://example.com/gone", Verdict: result.VerdictBroken, StatusCode: 404},
		},
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestReport_WritesAndLogsSummary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Grammar_brokenLinks.txt")
	rec := &recordingLogger{path: path}
	sink := NewSink(dir, rec, nil, nil)

	summary, err := sink.Report(context.Background(), brokenAudit())
	require.NoError(t, err)

	want := "Broken links detected:\nhttps://example.com/gone (404)"
	assert.Equal(t, want, summary)
	assert.Equal(t, want, readFile(t, path))
	assert.Equal(t, []string{want}, rec.messages)
	assert.Equal(t, []bool{true}, rec.fileExisted)
}

func TestReport_CleanPageWritesSentinel(t *testing.T) {
	dir := t.TempDir()
	sink := NewSink(dir, &recordingLogger{path: filepath.Join(dir, "Reading_brokenLinks.txt")}, func() bool { return true }, nil)
	audit := &result.AuditResult{Page: result.Page{Source: "reading.html", Report: "Reading_brokenLinks.txt"}}

	summary, err := sink.Report(context.Background(), audit)

	require.NoError(t, err, "strict mode must not fail a clean page")
	assert.Equal(t, result.NoBrokenLinks, summary)
	assert.Equal(t, result.NoBrokenLinks, readFile(t, filepath.Join(dir, "Reading_brokenLinks.txt")))
}

func TestReport_OverwritesPreviousReport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Grammar_brokenLinks.txt")
	require.NoError(t, os.WriteFile(path, []byte("stale content that is much longer than the new report"), 0o644))

	sink := NewSink(dir, nil, nil, nil)
	_, err := sink.Report(context.Background(), &result.AuditResult{Page: brokenAudit().Page})
	require.NoError(t, err)

	assert.Equal(t, result.NoBrokenLinks, readFile(t, path))
}

func TestReport_StrictModeFailsAfterPersistingAndLogging(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Grammar_brokenLinks.txt")
	rec := &recordingLogger{path: path}
	calls := 0
	sink := NewSink(dir, rec, func() bool { calls++; return true }, nil)

	summary, err := sink.Report(context.Background(), brokenAudit())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStrictViolation))
	assert.Equal(t, summary, readFile(t, path))
	assert.Len(t, rec.messages, 1)
	assert.Equal(t, 1, calls, "strict flag is read once per page")
}

func TestReport_CreatesResultsDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "results")
	sink := NewSink(dir, nil, nil, nil)

	_, err := sink.Report(context.Background(), brokenAudit())
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "Grammar_brokenLinks.txt"))
}

func TestReport_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	rec := &recordingLogger{}
	sink := NewSink(blocker, rec, nil, nil)

	_, err := sink.Report(context.Background(), brokenAudit())

	assert.Error(t, err)
	assert.Empty(t, rec.messages, "nothing is logged when the report cannot be written")
}

func TestReport_LoggerFailure(t *testing.T) {
	rec := &recordingLogger{err: errors.New("terminal closed")}
	sink := NewSink(t.TempDir(), rec, func() bool { return true }, nil)

	_, err := sink.Report(context.Background(), brokenAudit())

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrStrictViolation))
	assert.Contains(t, err.Error(), "terminal closed")
}

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	z := ZapLogger{L: zap.New(core)}

	err := z.Log(WithPage(context.Background(), "grammar.html"), result.NoBrokenLinks)
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, result.NoBrokenLinks, fields["summary"])
	assert.Equal(t, "grammar.html", fields["page"])
}

func TestWriterLogger(t *testing.T) {
	var buf bytes.Buffer
	w := &WriterLogger{W: &buf}

	require.NoError(t, w.Log(context.Background(), "first"))
	require.NoError(t, w.Log(context.Background(), "second"))

	assert.Equal(t, "first\nsecond\n", buf.String())
}

func TestWriterLogger_LabelsPage(t *testing.T) {
	var buf bytes.Buffer
	w := &WriterLogger{W: &buf}

	ctx := WithPage(context.Background(), "grammar.html")
	require.NoError(t, w.Log(ctx, "Broken links detected:\nmissing.html (404)"))

	assert.Equal(t, "== grammar.html\nBroken links detected:\nmissing.html (404)\n", buf.String())
}
