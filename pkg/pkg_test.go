package pkg

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	if Name != "varz" {
		t.Errorf("Name = %q, want %q", Name, "varz")
	}
}

func TestVersion(t *testing.T) {
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("read VERSION: %v", err)
	}

	if want := strings.TrimSpace(string(buf)); Version != want {
		t.Errorf("Version = %q, want %q", Version, want)
	}
}

func TestAuthor(t *testing.T) {
	if !slices.ContainsFunc(Author, func(a AuthorInfo) bool {
		return a.Name == "ardnew" && a.Email == "andrew@ardnew.com"
	}) {
		t.Errorf("Author = %v, missing ardnew", Author)
	}

	for i, author := range Author {
		if author.Name == "" && author.Email == "" {
			t.Errorf("Author[%d] must define at least Name or Email", i)
		}
	}
}

func TestDirs(t *testing.T) {
	prefix := Prefix()
	if prefix == "" || strings.HasPrefix(prefix, ".") {
		t.Fatalf("Prefix() = %q", prefix)
	}

	for name, dir := range map[string]string{
		"ConfigDir": ConfigDir(),
		"CacheDir":  CacheDir(),
	} {
		if filepath.Base(dir) != prefix {
			t.Errorf("%s() = %q, want base %q", name, dir, prefix)
		}
	}

	if got := EnvPrefix(); got == "" || strings.ContainsAny(got, "-.") || got != strings.ToUpper(got) {
		t.Errorf("EnvPrefix() = %q", got)
	}
}

func TestUserDir(t *testing.T) {
	fail := func() (string, error) { return "", os.ErrNotExist }
	ok := func() (string, error) { return "/base", nil }

	if got, want := userDir(ok, ".x"), filepath.Join("/base", Prefix()); got != want {
		t.Errorf("userDir(ok) = %q, want %q", got, want)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	if got, want := userDir(fail, ".x"), filepath.Join(home, ".x", Prefix()); got != want {
		t.Errorf("userDir(fail) = %q, want %q", got, want)
	}
}
