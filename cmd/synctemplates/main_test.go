package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"dyntemplates/internal/mirror"
	"dyntemplates/internal/syncjob"
)

func TestAppListCollectsRepeatedFlags(t *testing.T) {
	var apps appList
	for _, v := range []string{"blog", "shop, core", " "} {
		if err := apps.Set(v); err != nil {
			t.Fatalf("Set(%q): %v", v, err)
		}
	}
	if got := apps.String(); got != "blog,shop,core" {
		t.Errorf("apps: got %q, want %q", got, "blog,shop,core")
	}
}

func TestPrintReport(t *testing.T) {
	report := &syncjob.Report{
		DirsCreated: []syncjob.DirEvent{{Namespace: "blog", Category: "emails", Path: "blog/templates/emails"}},
		Results: []syncjob.Result{
			{Template: "blog/emails/welcome", Path: "blog/templates/emails/welcome.html", Outcome: mirror.Written},
			{Template: "blog/emails/reset", Outcome: mirror.SkippedCategoryMissing},
			{Template: "blog/emails/broken", Err: errors.New("disk full")},
		},
	}

	var buf bytes.Buffer
	printReport(&buf, report)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")

	want := []string{
		"Created directory blog/templates/emails",
		"Synced blog/emails/welcome -> blog/templates/emails/welcome.html",
		"Skipped blog/emails/reset (skipped_category_missing)",
		"Failed blog/emails/broken: disk full",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), buf.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
}
