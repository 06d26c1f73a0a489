package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

const successBody = `{"success": true, "message": "Success", "response": {
	"processed_summary": "First point. Second point!",
	"length_original": 100, "sentence_original": 5,
	"length_summary": 20, "sentence_summary": 1}}`

func newUpstream(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var mu sync.Mutex
	var ids []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		ids = append(ids, r.URL.Query().Get("id"))
		mu.Unlock()
		if r.URL.Query().Get("id") == "failingVid0" {
			fmt.Fprint(w, `{"success": false, "message": "no transcript"}`)
			return
		}
		fmt.Fprint(w, successBody)
	}))
	t.Cleanup(srv.Close)
	return srv, &ids
}

func TestRunByURL(t *testing.T) {
	srv, ids := newUpstream(t)
	var stdout, stderr bytes.Buffer

	code := run(context.Background(),
		[]string{"-base-url", srv.URL, "-url", "https://www.youtube.com/watch?v=zhUgaKb0s5A"},
		strings.NewReader(""), &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr.String())
	}

	out := stdout.String()
	for _, want := range []string{
		"First point.\nSecond point!",
		"Characters in transcript: 100",
		"Sentences in transcript: 5",
		"Characters in summary: 20",
		"Sentences in summary: 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got %q", want, out)
		}
	}
	if len(*ids) != 1 || (*ids)[0] != "zhUgaKb0s5A" {
		t.Errorf("unexpected upstream calls %v", *ids)
	}
}

func TestRunUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no source", nil},
		{"two sources", []string{"-url", "https://youtu.be/zhUgaKb0s5A", "-id", "zhUgaKb0s5A"}},
		{"bad algorithm", []string{"-id", "zhUgaKb0s5A", "-choice", "gensim-sum"}},
		{"bad id", []string{"-id", "short"}},
		{"unknown flag", []string{"-nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, ids := newUpstream(t)
			var stdout, stderr bytes.Buffer
			args := append([]string{"-base-url", srv.URL}, tt.args...)

			if code := run(context.Background(), args, strings.NewReader(""), &stdout, &stderr); code != exitUsage {
				t.Errorf("expected exit %d, got %d", exitUsage, code)
			}
			if len(*ids) != 0 {
				t.Errorf("expected no upstream calls, got %v", *ids)
			}
		})
	}
}

func TestRunSummarizationFailure(t *testing.T) {
	srv, _ := newUpstream(t)
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"-base-url", srv.URL, "-id", "failingVid0"},
		strings.NewReader(""), &stdout, &stderr)
	if code != exitError {
		t.Errorf("expected exit %d, got %d", exitError, code)
	}
	if !strings.Contains(stderr.String(), "no transcript") {
		t.Errorf("expected service message on stderr, got %q", stderr.String())
	}
}

func TestRunList(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"-list"}, strings.NewReader(""), &stdout, &stderr); code != exitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 6 algorithms, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "text-rank-gensim") {
		t.Errorf("expected default algorithm first, got %q", lines[0])
	}
}

func TestRunBatch(t *testing.T) {
	srv, ids := newUpstream(t)
	input := `Watch https://www.youtube.com/watch?v=zhUgaKb0s5A and
https://youtu.be/dQw4w9WgXcQ, also https://youtu.be/zhUgaKb0s5A again.
Broken: https://youtu.be/failingVid0 and https://example.com/page`

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-base-url", srv.URL, "-batch", "-interval", "0"},
		strings.NewReader(input), &stdout, &stderr)
	if code != exitError {
		t.Errorf("expected exit %d because one video failed, got %d", exitError, code)
	}

	want := []string{"zhUgaKb0s5A", "dQw4w9WgXcQ", "failingVid0"}
	if strings.Join(*ids, ",") != strings.Join(want, ",") {
		t.Errorf("expected calls %v, got %v", want, *ids)
	}
	if strings.Count(stdout.String(), "Summary:") != 2 {
		t.Errorf("expected two summaries, got %q", stdout.String())
	}
}

func TestRunBatchWithoutLinks(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-batch"}, strings.NewReader("nothing here"), &stdout, &stderr)
	if code != exitUsage {
		t.Errorf("expected exit %d, got %d", exitUsage, code)
	}
}

func TestVideoLinks(t *testing.T) {
	links := videoLinks("see https://www.youtube.com/watch?v=zhUgaKb0s5A&t=3 or https://www.youtube.com/watch?v=zhUgaKb0s5A")
	if len(links) != 1 {
		t.Errorf("expected duplicates to collapse, got %v", links)
	}
}
