package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wopr-network/wopr-plugin-sandbox/internal/registry"
)

func TestMigrateLegacyRegistry_MissingFileIsNoop(t *testing.T) {
	reg := registry.New(registry.NewMemoryRepository())
	n, err := MigrateLegacyRegistry(filepath.Join(t.TempDir(), "containers.json"), reg)
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 migrated, got %d", n)
	}
}

func TestMigrateLegacyRegistry_ImportsValidEntriesAndSkipsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "containers.json")
	doc := `{"entries":[
		{"containerName":"c1","sessionKey":"alice","createdAtMs":100,"lastUsedAtMs":200,"image":"img1"},
		{"containerName":"","sessionKey":"bob","createdAtMs":100,"lastUsedAtMs":200,"image":"img2"},
		{"containerName":"c3","sessionKey":"carol","createdAtMs":0,"lastUsedAtMs":200,"image":"img3"}
	]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	reg := registry.New(registry.NewMemoryRepository())
	n, err := MigrateLegacyRegistry(path, reg)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 migrated, got %d", n)
	}

	rec, err := reg.Find("c1")
	if err != nil {
		t.Fatalf("find c1: %v", err)
	}
	if rec.SessionKey != "alice" || rec.Image != "img1" {
		t.Errorf("unexpected record: %+v", rec)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected original file renamed away, stat err = %v", err)
	}
	if _, err := os.Stat(path + ".backup"); err != nil {
		t.Errorf("expected backup file to exist: %v", err)
	}
}

func TestMigrateLegacyRegistry_BadJSONPropagates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "containers.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	reg := registry.New(registry.NewMemoryRepository())
	if _, err := MigrateLegacyRegistry(path, reg); err == nil {
		t.Error("expected parse error to propagate")
	}
}
