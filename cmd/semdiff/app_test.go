package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadFileAllowMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "present.py")
	if err := os.WriteFile(path, []byte("x = 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name string
		path string
		want string
	}{
		{"existing file", path, "x = 1\n"},
		{"missing file", filepath.Join(dir, "absent.py"), ""},
		{"empty path", "", ""},
		{"dash placeholder", "-", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := readFileAllowMissing(tc.path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestReadFileAllowMissingUnreadable(t *testing.T) {
	dir := t.TempDir()
	if _, err := readFileAllowMissing(dir); err == nil {
		t.Error("reading a directory should fail")
	}
}
