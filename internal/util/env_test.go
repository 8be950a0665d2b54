package util

import (
	"testing"
	"time"
)

func TestGetEnvDefaults(t *testing.T) {
	t.Setenv("GENEALOGY_TEST_STRING", "")
	t.Setenv("GENEALOGY_TEST_BOOL", "yes")
	t.Setenv("GENEALOGY_TEST_NUM", "abc")
	t.Setenv("GENEALOGY_TEST_DURATION", "soon")

	if got := GetEnvString("GENEALOGY_TEST_STRING", "fallback"); got != "fallback" {
		t.Fatalf("empty string should fall back, got %q", got)
	}
	if got := GetEnvBool("GENEALOGY_TEST_BOOL", true); !got {
		t.Fatal("unparseable bool should fall back to default")
	}
	if got := GetEnvNumeric("GENEALOGY_TEST_NUM", 7); got != 7 {
		t.Fatalf("unparseable number should fall back, got %v", got)
	}
	if got := GetEnvDuration("GENEALOGY_TEST_DURATION", time.Second); got != time.Second {
		t.Fatalf("unparseable duration should fall back, got %v", got)
	}
	if got := GetEnv("GENEALOGY_TEST_UNSET"); got != "" {
		t.Fatalf("unset variable should be empty, got %q", got)
	}
}

func TestGetEnvParsed(t *testing.T) {
	t.Setenv("GENEALOGY_TEST_STRING", "bolt://localhost:7687")
	t.Setenv("GENEALOGY_TEST_BOOL", "true")
	t.Setenv("GENEALOGY_TEST_NUM", "25")
	t.Setenv("GENEALOGY_TEST_DURATION", "90s")

	if got := GetEnvString("GENEALOGY_TEST_STRING", "x"); got != "bolt://localhost:7687" {
		t.Fatalf("got %q", got)
	}
	if !GetEnvBool("GENEALOGY_TEST_BOOL", false) {
		t.Fatal("expected true")
	}
	if got := GetEnvNumeric("GENEALOGY_TEST_NUM", 1); got != 25 {
		t.Fatalf("got %v", got)
	}
	if got := GetEnvDuration("GENEALOGY_TEST_DURATION", time.Second); got != 90*time.Second {
		t.Fatalf("got %v", got)
	}
}
