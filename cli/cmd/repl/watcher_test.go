package repl

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ardnew/varz/cli/cmd"
	"github.com/ardnew/varz/log"
)

const watchTimeout = 5 * time.Second

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vars.yaml")
	other := filepath.Join(dir, "other.yaml")

	for _, p := range []string{path, other} {
		if err := os.WriteFile(p, []byte("a: 1\n"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	w, err := startWatcher(ctx, []string{path, cmd.StdinSource}, log.Logger{})
	if err != nil {
		t.Fatalf("startWatcher error = %v", err)
	}

	if err := os.WriteFile(other, []byte("a: 2\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("a: 3\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-w.Changes():
		if got != path {
			t.Errorf("change = %q, want %q", got, path)
		}

	case <-time.After(watchTimeout):
		t.Fatal("no change reported")
	}

	cancel()

	deadline := time.After(watchTimeout)

	for {
		select {
		case _, ok := <-w.Changes():
			if !ok {
				return
			}

		case <-deadline:
			t.Fatal("changes not closed after cancel")
		}
	}
}

func TestWaitForChange(t *testing.T) {
	if waitForChange(nil) != nil {
		t.Error("waitForChange(nil) returned a command")
	}

	changes := make(chan string, 1)
	changes <- "vars.yaml"

	if msg, ok := waitForChange(changes)().(changedMsg); !ok || msg.path != "vars.yaml" {
		t.Errorf("waitForChange = %#v", msg)
	}

	close(changes)

	if msg := waitForChange(changes)(); msg != nil {
		t.Errorf("waitForChange(closed) = %#v, want nil", msg)
	}
}
