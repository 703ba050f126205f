package store

import "sync"

// LockKind selects the admission mode a caller wants on an object.
type LockKind int

const (
	Shared LockKind = iota
	Exclusive
)

// condShardCount bounds the number of sync.Cond instances used to wake
// waiters. A dense array of one condvar per object wastes memory once
// MaxFiles approaches a million objects, so waiters are hashed into
// a fixed number of shards instead; a spurious wake across objects sharing
// a shard just re-checks its own predicate and, if not satisfied, waits
// again.
const condShardCount = 256

func shardFor(id FileID) int {
	return int(id) % condShardCount
}

// admit implements the per-object admission table: which combinations of
// pending readers/writers and object version let a new lock through.
func admit(mvcc bool, kind LockKind, slot *objectSlot, version int32) bool {
	if !mvcc {
		switch kind {
		case Shared:
			return slot.writers == 0
		case Exclusive:
			return slot.readers == 0 && slot.writers == 0
		}
		return false
	}

	switch kind {
	case Shared:
		if slot.writers == 0 && version > -1 {
			return true
		}
		if slot.writers > 0 && version > 0 {
			return true
		}
		return false
	case Exclusive:
		// A writer always relocates to a fresh region; existing readers
		// keep reading the old one, so exclusive admission never waits.
		return true
	}
	return false
}

// Lock acquires admission on id for the given kind, blocking until the
// admission table above is satisfied or the store starts
// shutting down.
func (s *Store) Lock(id FileID, kind LockKind) error {
	cond := s.conds[shardFor(id)]

	s.dirMu.Lock()
	defer s.dirMu.Unlock()

	for {
		if s.shuttingDown.Load() {
			return ErrClosed
		}
		slot, ok := s.dir.slots[id]
		if !ok {
			return ErrNotFound
		}
		hdr := s.dir.headers[id]
		if admit(s.mvccEnabled.Load(), kind, slot, hdr.Version) {
			if kind == Exclusive {
				slot.writers++
			} else {
				slot.readers++
			}
			return nil
		}
		cond.Wait()
	}
}

// Unlock releases admission on id previously obtained with Lock(id, kind).
// Ownership is by counter, not thread identity: any caller that locked with
// kind is expected to unlock with the same kind.
func (s *Store) Unlock(id FileID, kind LockKind) error {
	cond := s.conds[shardFor(id)]

	s.dirMu.Lock()
	slot, ok := s.dir.slots[id]
	if !ok {
		s.dirMu.Unlock()
		return ErrNotFound
	}
	if kind == Exclusive {
		if slot.writers > 0 {
			slot.writers--
		}
	} else if slot.readers > 0 {
		slot.readers--
	}
	s.dirMu.Unlock()

	cond.Broadcast()
	return nil
}

// wakeAll broadcasts every condvar shard; used on shutdown so blocked
// waiters re-check shuttingDown and leave.
func (s *Store) wakeAll() {
	for _, c := range s.conds {
		s.dirMu.Lock()
		c.Broadcast()
		s.dirMu.Unlock()
	}
}

func newCondShards(l sync.Locker) [condShardCount]*sync.Cond {
	var conds [condShardCount]*sync.Cond
	for i := range conds {
		conds[i] = sync.NewCond(l)
	}
	return conds
}
