package debug

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "debug.log")
	if err := EnableAt(path); err != nil {
		t.Fatal(err)
	}
	defer Disable()

	if !Enabled() {
		t.Fatal("not enabled")
	}
	Log("clock", "tick=%d", 42)
	for i := 0; i < 6; i++ {
		LogEvery(3, "midi", "dropped")
	}
	Disable()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "tick=42") || !strings.Contains(out, "cat=clock") {
		t.Errorf("log missing message:\n%s", out)
	}
	if n := strings.Count(out, "dropped"); n != 2 {
		t.Errorf("LogEvery(3) wrote %d of 6 calls, want 2:\n%s", n, out)
	}
}

func TestLogDisabledIsNoop(t *testing.T) {
	Disable()
	if Enabled() {
		t.Fatal("enabled after Disable")
	}
	Log("x", "nothing %d", 1)
	LogEvery(1, "x", "nothing")
}
