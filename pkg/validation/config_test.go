package validation

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRequired(t *testing.T) {
	cv := NewConfigValidator("Config")
	cv.Required("server", "example.org").Required("user", "")

	err := cv.Err()
	if err == nil {
		t.Fatal("Err() = nil, want error for empty user")
	}
	if !strings.Contains(err.Error(), "Config.user") {
		t.Errorf("error %q does not name the field", err)
	}
	if strings.Contains(err.Error(), "Config.server") {
		t.Errorf("error %q names a valid field", err)
	}
}

func TestPositive(t *testing.T) {
	if err := NewConfigValidator("C").Positive("workers", 4).Err(); err != nil {
		t.Errorf("Err() = %v for positive value", err)
	}
	if err := NewConfigValidator("C").Positive("workers", 0).Err(); err == nil {
		t.Error("Err() = nil for zero value")
	}
}

func TestMinDuration(t *testing.T) {
	if err := NewConfigValidator("C").MinDuration("timeout", time.Second, time.Millisecond).Err(); err != nil {
		t.Errorf("Err() = %v", err)
	}
	if err := NewConfigValidator("C").MinDuration("timeout", 0, time.Millisecond).Err(); err == nil {
		t.Error("Err() = nil for too-small duration")
	}
}

func TestFileAndDirExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plan.yaml")
	if err := os.WriteFile(file, []byte("columns: []"), 0o600); err != nil {
		t.Fatal(err)
	}

	cv := NewConfigValidator("C").
		FileExists("load_plan", file).
		DirExists("sif_dir", dir)
	if err := cv.Err(); err != nil {
		t.Errorf("Err() = %v for existing paths", err)
	}

	cv = NewConfigValidator("C").
		FileExists("load_plan", filepath.Join(dir, "missing.yaml")).
		FileExists("style", dir). // directory where a file is expected
		DirExists("sif_dir", file)
	err := cv.Err()
	if err == nil {
		t.Fatal("Err() = nil for bad paths")
	}
	for _, field := range []string{"load_plan", "style", "sif_dir"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error does not mention %s: %v", field, err)
		}
	}
}

func TestCustom(t *testing.T) {
	boom := errors.New("boom")
	err := NewConfigValidator("C").Custom("thing", func() error { return boom }).Err()
	if !errors.Is(err, boom) {
		t.Errorf("Err() = %v, want wrapped boom", err)
	}
}

func TestCollectsAllErrors(t *testing.T) {
	err := NewConfigValidator("C").
		Required("a", "").
		Required("b", "").
		Positive("c", -1).
		Err()
	if err == nil {
		t.Fatal("Err() = nil")
	}
	for _, field := range []string{"C.a", "C.b", "C.c"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error missing %s: %v", field, err)
		}
	}
}
