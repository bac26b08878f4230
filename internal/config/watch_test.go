package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchFiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "rules.yaml")
	if err := os.WriteFile(target, []byte("high_risk_share: 0.5\n"), 0644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	changed := make(chan string, 4)
	w, err := Watch([]string{target}, func(path string) {
		changed <- path
	})
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(target, []byte("high_risk_share: 0.4\n"), 0644); err != nil {
		t.Fatalf("rewrite file: %v", err)
	}

	select {
	case path := <-changed:
		want, _ := filepath.Abs(target)
		if path != want {
			t.Errorf("changed path = %q, want %q", path, want)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("change callback never fired")
	}
}

func TestWatchIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "config.yaml")
	sibling := filepath.Join(dir, "notes.txt")
	for _, f := range []string{target, sibling} {
		if err := os.WriteFile(f, []byte("x\n"), 0644); err != nil {
			t.Fatalf("seed %s: %v", f, err)
		}
	}

	changed := make(chan string, 4)
	w, err := Watch([]string{target}, func(path string) {
		changed <- path
	})
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(sibling, []byte("y\n"), 0644); err != nil {
		t.Fatalf("rewrite sibling: %v", err)
	}

	select {
	case path := <-changed:
		t.Errorf("unexpected callback for %q", path)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatchSkipsMissingFiles(t *testing.T) {
	w, err := Watch([]string{filepath.Join(t.TempDir(), "absent.yaml"), ""}, func(string) {})
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	w.Close()
}
