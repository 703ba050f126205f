package store

import "testing"

func TestAdmitNonMVCC(t *testing.T) {
	cases := []struct {
		name    string
		kind    LockKind
		slot    objectSlot
		version int32
		want    bool
	}{
		{"shared admits with no writer", Shared, objectSlot{readers: 2, writers: 0}, 0, true},
		{"shared blocks behind a writer", Shared, objectSlot{readers: 0, writers: 1}, 0, false},
		{"exclusive admits when idle", Exclusive, objectSlot{readers: 0, writers: 0}, 0, true},
		{"exclusive blocks behind a reader", Exclusive, objectSlot{readers: 1, writers: 0}, 0, false},
		{"exclusive blocks behind a writer", Exclusive, objectSlot{readers: 0, writers: 1}, 0, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			slot := c.slot
			if got := admit(false, c.kind, &slot, c.version); got != c.want {
				t.Errorf("admit(false, %v, %+v, %d) = %v, want %v", c.kind, c.slot, c.version, got, c.want)
			}
		})
	}
}

func TestAdmitMVCC(t *testing.T) {
	cases := []struct {
		name    string
		kind    LockKind
		slot    objectSlot
		version int32
		want    bool
	}{
		{"shared admits against a committed version with no writer", Shared, objectSlot{writers: 0}, 0, true},
		{"shared blocks against a never-written object with no writer", Shared, objectSlot{writers: 0}, -1, false},
		{"shared admits a predecessor read while a writer is active", Shared, objectSlot{writers: 1}, 1, true},
		{"shared blocks when the only version is version 0 and a writer is active", Shared, objectSlot{writers: 1}, 0, false},
		{"exclusive always admits", Exclusive, objectSlot{readers: 5, writers: 3}, 0, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			slot := c.slot
			if got := admit(true, c.kind, &slot, c.version); got != c.want {
				t.Errorf("admit(true, %v, %+v, %d) = %v, want %v", c.kind, c.slot, c.version, got, c.want)
			}
		})
	}
}

func TestShardForIsStableAndBounded(t *testing.T) {
	for _, id := range []FileID{0, 1, 255, 256, 257, 1 << 20} {
		shard := shardFor(id)
		if shard < 0 || shard >= condShardCount {
			t.Errorf("shardFor(%d) = %d, out of [0,%d)", id, shard, condShardCount)
		}
		if shardFor(id) != shard {
			t.Errorf("shardFor(%d) not stable across calls", id)
		}
	}
}

func TestStore_LockUnlockSharedConcurrent(t *testing.T) {
	s := openTestStore(t)
	id, err := s.Select("shared-target")
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	if err := s.Lock(id, Shared); err != nil {
		t.Fatalf("first Lock(Shared) failed: %v", err)
	}
	if err := s.Lock(id, Shared); err != nil {
		t.Fatalf("second concurrent Lock(Shared) should not block: %v", err)
	}
	if err := s.Unlock(id, Shared); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
	if err := s.Unlock(id, Shared); err != nil {
		t.Fatalf("Unlock (2) failed: %v", err)
	}
}

func TestStore_LockUnknownID(t *testing.T) {
	s := openTestStore(t)
	if err := s.Lock(FileID(999), Shared); err != ErrNotFound {
		t.Errorf("Lock on unknown id = %v, want ErrNotFound", err)
	}
}
