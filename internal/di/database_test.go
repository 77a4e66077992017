package di

import (
	"errors"
	"testing"

	"github.com/newsroomhq/zonecontent/internal/runtimeconfig"
)

func TestOpenDatabaseSQLite(t *testing.T) {
	db, err := OpenDatabase(runtimeconfig.StorageConfig{
		Driver: "sqlite",
		DSN:    "file::memory:?cache=shared",
	})
	if err != nil {
		t.Fatalf("OpenDatabase returned error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		t.Fatalf("expected usable sqlite handle, got %v", err)
	}
}

func TestOpenDatabaseRequiresDSN(t *testing.T) {
	if _, err := OpenDatabase(runtimeconfig.StorageConfig{Driver: "sqlite"}); !errors.Is(err, ErrStorageDSNRequired) {
		t.Fatalf("expected ErrStorageDSNRequired, got %v", err)
	}
}

func TestOpenDatabaseRejectsUnknownDriver(t *testing.T) {
	if _, err := OpenDatabase(runtimeconfig.StorageConfig{Driver: "mysql", DSN: "root@/zones"}); !errors.Is(err, ErrStorageDriverUnknown) {
		t.Fatalf("expected ErrStorageDriverUnknown, got %v", err)
	}
}
