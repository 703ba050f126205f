package store

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rapidstash/rapidstash/logger"
)

// Store is a single open RapidStash backing file: one Mmap Substrate, one
// Object Directory, and the Concurrency Core admission table layered over
// both. A Store is safe for concurrent use by multiple goroutines.
type Store struct {
	cfg *Config
	log logger.Logger

	sub *substrate

	dirMu sync.Mutex
	dir   *directory

	allocMu sync.Mutex
	conds   [condShardCount]*sync.Cond

	mvccEnabled  atomic.Bool
	shuttingDown atomic.Bool

	stats statsBlock
}

// Open opens or creates a RapidStash store at path. A nil cfg uses
// DefaultConfig(); missing fields in a non-nil cfg are filled in the same
// way.
func Open(path string, cfg *Config) (*Store, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg = cfg.withDefaults()

	reservedSize := directoryReservedSize(cfg.MaxFiles)
	initialSize := cfg.InitialMapSize
	if initialSize < reservedSize {
		initialSize = reservedSize
	}

	sub, err := openSubstrate(path, initialSize, cfg.MaxMapSize, cfg.GrowthFactor)
	if err != nil {
		return nil, err
	}

	s := &Store{cfg: cfg, log: cfg.Logger, sub: sub}
	s.conds = newCondShards(&s.dirMu)
	s.mvccEnabled.Store(cfg.MVCCEnabled)

	if sub.isNew {
		s.dir = newDirectory(reservedSize)
		if err := flushDirectory(sub, s.dir); err != nil {
			sub.shutdown()
			return nil, err
		}
		s.log.Infof("created new store at %s", path)
	} else {
		dir, err := loadDirectory(sub, cfg.MaxFiles)
		if err != nil {
			sub.shutdown()
			return nil, err
		}
		s.dir = dir
		s.log.Infof("opened existing store at %s (%d files)", path, s.dir.numFiles)
	}

	return s, nil
}

// Close stops admitting new locks, wakes every blocked waiter so they
// observe ErrClosed, flushes the directory prefix, and unmaps the
// substrate.
func (s *Store) Close() error {
	s.shuttingDown.Store(true)
	s.wakeAll()

	s.dirMu.Lock()
	err := flushDirectory(s.sub, s.dir)
	s.dirMu.Unlock()
	if err != nil {
		s.log.Errorf("flush directory on close: %v", err)
	}

	if shutErr := s.sub.shutdown(); shutErr != nil {
		if err == nil {
			err = shutErr
		}
	}
	return err
}

// Select resolves name to its File-Id, creating a new zero-size object
// under that name if it does not already exist.
func (s *Store) Select(name string) (FileID, error) {
	s.dirMu.Lock()
	defer s.dirMu.Unlock()

	if truncated, _ := truncateName(name); truncated != name {
		name = truncated
	}

	if id, ok := s.dir.byName[name]; ok {
		return id, nil
	}
	return s.createObject(name)
}

// Exists reports whether name currently resolves to a live object.
func (s *Store) Exists(name string) bool {
	s.dirMu.Lock()
	defer s.dirMu.Unlock()
	_, ok := s.dir.byName[name]
	return ok
}

// GetHeader returns the cached Object Header for id.
func (s *Store) GetHeader(id FileID) (Header, error) {
	s.dirMu.Lock()
	defer s.dirMu.Unlock()
	hdr, ok := s.dir.headers[id]
	if !ok {
		return Header{}, ErrNotFound
	}
	return hdr, nil
}

// ToggleMVCC flips MVCC mode. The new mode applies to subsequent Lock
// admissions and to every later Write or Truncate, including on Writers
// already open; an open Reader keeps the version it was pinned to.
func (s *Store) ToggleMVCC() {
	s.mvccEnabled.Store(!s.mvccEnabled.Load())
}

// IsMVCCEnabled reports the store's current MVCC mode.
func (s *Store) IsMVCCEnabled() bool {
	return s.mvccEnabled.Load()
}

// Unlink removes name's object from the directory, compacting the File-Id
// space by swapping the highest live id into the vacated slot. It returns
// whether the freed on-disk region was merged into a neighbor in place
// (true) or pushed onto the header free-list (false).
func (s *Store) Unlink(id FileID) (bool, error) {
	if err := s.Lock(id, Exclusive); err != nil {
		return false, err
	}

	s.dirMu.Lock()
	lastID := FileID(s.dir.nextFileID - 1)
	s.dirMu.Unlock()

	lockedLast := false
	if lastID != id {
		if err := s.Lock(lastID, Exclusive); err != nil {
			s.Unlock(id, Exclusive)
			return false, err
		}
		lockedLast = true
	}

	s.dirMu.Lock()
	merged, err := s.unlinkLocked(id)
	if lockedLast {
		s.conds[shardFor(lastID)].Broadcast()
	}
	s.dirMu.Unlock()

	s.Unlock(id, Exclusive)

	if err != nil {
		return false, fmt.Errorf("unlink %d: %w", id, err)
	}
	return merged, nil
}
