package telemetry

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestLogfPrependsTraceID(t *testing.T) {
	orig := log.Writer()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() {
		log.SetOutput(orig)
		SetTraceID("")
	})

	SetTraceID("trace-123")
	Logf("hello %s", "world")

	if got := buf.String(); !strings.Contains(got, "[trace-123] hello world") {
		t.Fatalf("Logf output = %q, want it to contain %q", got, "[trace-123] hello world")
	}
}

func TestLogfNoTraceIDSet(t *testing.T) {
	orig := log.Writer()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() {
		log.SetOutput(orig)
		SetTraceID("")
	})

	SetTraceID("")
	Logf("hello %s", "world")

	if got := buf.String(); strings.Contains(got, "[") || !strings.Contains(got, "hello world") {
		t.Fatalf("Logf output = %q, want plain (no trace ID prefix)", got)
	}
}

func TestNewTraceIDUnique(t *testing.T) {
	a := NewTraceID()
	b := NewTraceID()
	if a == "" || b == "" {
		t.Fatal("NewTraceID returned an empty string")
	}
	if a == b {
		t.Fatalf("NewTraceID returned the same value twice: %q", a)
	}
}

func TestDumpGatedByEnableDebug(t *testing.T) {
	EnableDebug(false)
	if debugEnabled.Load() {
		t.Fatal("debugEnabled should be false after EnableDebug(false)")
	}
	EnableDebug(true)
	if !debugEnabled.Load() {
		t.Fatal("debugEnabled should be true after EnableDebug(true)")
	}
	EnableDebug(false)
}
