package testctl

import (
	"testing"
)

func TestEnvStr(t *testing.T) {
	key := "TESTCTL_ENV_STR"
	if got := envStr(key, "def"); got != "def" {
		t.Fatalf("envStr default: got %q", got)
	}
	t.Setenv(key, "val")
	if got := envStr(key, "def"); got != "val" {
		t.Fatalf("envStr set: got %q", got)
	}
}

func TestSetLogLevel(t *testing.T) {
	t.Cleanup(func() { SetLogLevel("info") })

	SetLogLevel("debug")
	if currentLevel != levelDebug {
		t.Fatalf("debug: got %d", currentLevel)
	}
	SetLogLevel("warning")
	if currentLevel != levelWarn {
		t.Fatalf("warning: got %d", currentLevel)
	}
	SetLogLevel("err")
	if currentLevel != levelError {
		t.Fatalf("err: got %d", currentLevel)
	}
	SetLogLevel("nonsense")
	if currentLevel != levelInfo {
		t.Fatalf("fallback: got %d", currentLevel)
	}

	// the helpers must not panic at any level
	debug("d %d", 1)
	info("i %s", "x")
	warn("w")
}
