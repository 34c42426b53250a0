package richtextcmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
)

// flakyWriter rejects its first `failures` writes and buffers the rest.
type flakyWriter struct {
	failures int
	attempts int
	buf      bytes.Buffer
}

func (w *flakyWriter) Write(p []byte) (int, error) {
	w.attempts++
	if w.attempts <= w.failures {
		return 0, errors.New("output unavailable")
	}
	return w.buf.Write(p)
}

func TestDispatchConvertTextRetriesUntilWritten(t *testing.T) {
	set := newHandlers(t)
	sub := dispatcher.SubscribeCommand(set.Convert, runner.WithMaxRetries(1))
	t.Cleanup(sub.Unsubscribe)

	out := &flakyWriter{failures: 1}
	err := dispatcher.Dispatch(context.Background(), ConvertTextCommand{
		Mode:   ModeMarkdownToHTML,
		Text:   "*hi* www.example.com",
		Output: out,
	})
	if err != nil {
		t.Fatalf("dispatch: expected success after retry, got %v", err)
	}
	if out.attempts != 2 {
		t.Fatalf("expected 2 attempts (initial + retry), got %d", out.attempts)
	}
	want := `<strong>hi</strong> <a href="www.example.com" target="_blank">www.example.com</a>`
	if got := out.buf.String(); got != want {
		t.Fatalf("unexpected output\nwant: %s\n got: %s", want, got)
	}
}

func TestDispatchConvertTextRejectsInvalidMessage(t *testing.T) {
	set := newHandlers(t)
	sub := dispatcher.SubscribeCommand(set.Convert)
	t.Cleanup(sub.Unsubscribe)

	var out bytes.Buffer
	err := dispatcher.Dispatch(context.Background(), ConvertTextCommand{Mode: "shout", Text: "x", Output: &out})
	if err == nil {
		t.Fatal("expected validation error for unknown mode")
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

func TestDispatchMergeDocuments(t *testing.T) {
	set := newHandlers(t)
	sub := dispatcher.SubscribeCommand(set.Merge, runner.WithMaxRetries(1))
	t.Cleanup(sub.Unsubscribe)

	out := &flakyWriter{}
	err := dispatcher.Dispatch(context.Background(), MergeDocumentsCommand{
		Target: []byte("a: 1\nb:\n  c: 2\n"),
		Source: []byte(`{"b":{"d":3},"a":null}`),
		Output: out,
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(out.buf.Bytes(), &got); err != nil {
		t.Fatalf("decode merged output: %v\n%s", err, out.buf.String())
	}
	b, ok := got["b"].(map[string]any)
	if !ok || len(got) != 1 || b["c"] != float64(2) || b["d"] != float64(3) {
		t.Fatalf("unexpected merged document %v", got)
	}
}

func TestDispatchMergeDocumentsRetryExhaustionPropagatesError(t *testing.T) {
	set := newHandlers(t)
	sub := dispatcher.SubscribeCommand(set.Merge, runner.WithMaxRetries(2))
	t.Cleanup(sub.Unsubscribe)

	out := &flakyWriter{failures: 10}
	err := dispatcher.Dispatch(context.Background(), MergeDocumentsCommand{
		Source: []byte("a: 1\n"),
		Output: out,
	})
	if err == nil {
		t.Fatal("expected dispatcher to return error after exhausting retries")
	}
	if out.attempts != 3 {
		t.Fatalf("expected 3 attempts (initial + 2 retries), got %d", out.attempts)
	}
}
