package profile

import "testing"

func TestMake(t *testing.T) {
	mode, path, quiet := Make(
		WithMode("cpu"),
		WithPath("/tmp/profiles"),
		nil,
		WithQuiet(true),
	)()

	if mode != "cpu" || path != "/tmp/profiles" || !quiet {
		t.Errorf("Make() = (%q, %q, %v)", mode, path, quiet)
	}

	mode, path, quiet = Make(WithMode("heap"), WithMode(""))()
	if mode != "" || path != "" || quiet {
		t.Errorf("Make() = (%q, %q, %v), want zero", mode, path, quiet)
	}
}

func TestStart_NoMode(t *testing.T) {
	p := Make(WithPath(t.TempDir())).Start()
	if _, ok := p.(ignore); !ok {
		t.Errorf("Start() = %T, want no-op", p)
	}

	p.Stop()
}

func TestStart_UnknownMode(t *testing.T) {
	p := Make(WithMode("bogus"), WithQuiet(true)).Start()
	if _, ok := p.(ignore); !ok {
		t.Errorf("Start() = %T, want no-op", p)
	}

	p.Stop()
}
