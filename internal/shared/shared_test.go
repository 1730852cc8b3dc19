package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestShared(t *testing.T) {
	t.Run("GenerateState", func(t *testing.T) {
		a := GenerateState()
		b := GenerateState()

		if a == "" || b == "" {
			t.Error("state nonce should not be empty")
		}
		if a == b {
			t.Error("consecutive nonces should differ")
		}
	})

	t.Run("FormatDuration", func(t *testing.T) {
		cases := []struct {
			ms   int
			want string
		}{
			{0, "0:00"},
			{1000, "0:01"},
			{59999, "0:59"},
			{60000, "1:00"},
			{224000, "3:44"},
			{3600000, "60:00"},
		}

		for _, tc := range cases {
			if got := FormatDuration(tc.ms); got != tc.want {
				t.Errorf("FormatDuration(%d) = %q, want %q", tc.ms, got, tc.want)
			}
		}
	})

	t.Run("WriteFileAtomic", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "nested", "file.json")

		if err := WriteFileAtomic(path, []byte("first"), 0600); err != nil {
			t.Fatalf("failed to write: %v", err)
		}
		if err := WriteFileAtomic(path, []byte("second"), 0600); err != nil {
			t.Fatalf("failed to overwrite: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "second" {
			t.Errorf("expected latest contents, got %q", data)
		}

		// no temp files may survive a successful write
		entries, err := os.ReadDir(filepath.Dir(path))
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 {
			t.Errorf("expected only the target file, found %d entries", len(entries))
		}
	})

	t.Run("DataDirOverride", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "strum-data")
		t.Setenv("STRUM_DATA_DIR", dir)

		got, err := DataDir()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != dir {
			t.Errorf("expected override directory %q, got %q", dir, got)
		}
		if _, err := os.Stat(dir); err != nil {
			t.Errorf("directory should be created: %v", err)
		}
	})
}
