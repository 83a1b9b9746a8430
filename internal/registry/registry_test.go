package registry

import "testing"

func TestRegistry_UpdatePreservesCreatedAtAndImage(t *testing.T) {
	reg := New(NewMemoryRepository())

	first, err := reg.Update(Record{ContainerName: "c1", SessionKey: "alice", CreatedAtMs: 100, LastUsedAtMs: 100, Image: "img1"})
	if err != nil {
		t.Fatalf("first update: %v", err)
	}
	if first.CreatedAtMs != 100 || first.Image != "img1" {
		t.Fatalf("unexpected first insert result: %+v", first)
	}

	second, err := reg.Update(Record{ContainerName: "c1", SessionKey: "bob", CreatedAtMs: 200, LastUsedAtMs: 150, Image: "img2"})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if second.CreatedAtMs != 100 {
		t.Errorf("expected createdAtMs to be preserved as 100, got %d", second.CreatedAtMs)
	}
	if second.Image != "img1" {
		t.Errorf("expected image to be preserved as img1, got %q", second.Image)
	}
	if second.SessionKey != "bob" || second.LastUsedAtMs != 150 {
		t.Errorf("expected sessionKey/lastUsedAtMs to take the new value, got %+v", second)
	}

	found, err := reg.Find("c1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found != second {
		t.Errorf("find result %+v does not match update result %+v", found, second)
	}
}

func TestRegistry_UpdatePreservesConfigHashWhenAbsent(t *testing.T) {
	reg := New(NewMemoryRepository())

	_, err := reg.Update(Record{ContainerName: "c1", ConfigHash: "abc123"})
	if err != nil {
		t.Fatalf("first update: %v", err)
	}

	second, err := reg.Update(Record{ContainerName: "c1", ConfigHash: ""})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if second.ConfigHash != "abc123" {
		t.Errorf("expected preserved configHash abc123, got %q", second.ConfigHash)
	}

	third, err := reg.Update(Record{ContainerName: "c1", ConfigHash: "def456"})
	if err != nil {
		t.Fatalf("third update: %v", err)
	}
	if third.ConfigHash != "def456" {
		t.Errorf("expected new configHash def456 to win, got %q", third.ConfigHash)
	}
}

func TestRegistry_UpdateRetriesInsertConflict(t *testing.T) {
	repo := NewMemoryRepository()
	if err := repo.Insert(Record{ID: "c1", ContainerName: "c1", CreatedAtMs: 50, Image: "preexisting"}); err != nil {
		t.Fatalf("seed insert: %v", err)
	}

	reg := New(&raceRepo{MemoryRepository: repo})
	got, err := reg.Update(Record{ContainerName: "c1", CreatedAtMs: 999, Image: "new"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.CreatedAtMs != 50 || got.Image != "preexisting" {
		t.Errorf("expected the preexisting record's immutable fields to win after a conflict, got %+v", got)
	}
}

// raceRepo hides the stored record from the first Find, so Update takes the
// insert path and hits ErrConflict as if a concurrent insert had won.
type raceRepo struct {
	*MemoryRepository
	seen bool
}

func (r *raceRepo) Find(containerName string) (Record, error) {
	if !r.seen {
		r.seen = true
		return Record{}, ErrNotFound
	}
	return r.MemoryRepository.Find(containerName)
}

func TestRegistry_RemoveIsIdempotent(t *testing.T) {
	reg := New(NewMemoryRepository())
	if err := reg.Remove("missing"); err != nil {
		t.Fatalf("expected removing a missing record to succeed, got %v", err)
	}
}

func TestRegistry_ListAll(t *testing.T) {
	reg := New(NewMemoryRepository())
	reg.Update(Record{ContainerName: "c1"})
	reg.Update(Record{ContainerName: "c2"})

	all, err := reg.ListAll()
	if err != nil {
		t.Fatalf("listAll: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 records, got %d", len(all))
	}
}
