package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestSQLite(t *testing.T, rootKey string) *SQLite {
	t.Helper()
	blob, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "vidmark.db"), rootKey)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = blob.Close() })
	return blob
}

func TestSQLiteBlob(t *testing.T) {
	exerciseBlob(t, openTestSQLite(t, ""))
}

func TestSQLiteBlobPing(t *testing.T) {
	if err := openTestSQLite(t, "").Ping(context.Background()); err != nil {
		t.Errorf("ping: %v", err)
	}
}

func TestSQLiteBlobOverwrites(t *testing.T) {
	blob := openTestSQLite(t, "other_root")
	ctx := context.Background()

	for _, doc := range []string{`{"v":1}`, `{"v":2}`} {
		doc := doc
		if err := blob.Update(ctx, func([]byte) ([]byte, error) { return []byte(doc), nil }); err != nil {
			t.Fatalf("update: %v", err)
		}
	}

	got, err := blob.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != `{"v":2}` {
		t.Errorf("expected latest document, got %q", got)
	}
}
