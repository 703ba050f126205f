package store

// bumpAllocate carves a fresh payload region of allocSize bytes at the
// current bump pointer, advancing next_raw_spot by HeaderSize+allocSize.
// Callers must hold Store.dirMu; bumpAllocate itself serializes the
// counter update through Store.allocMu so concurrent allocators cannot
// interleave next_raw_spot increments.
func (s *Store) bumpAllocate(allocSize uint64) (uint64, error) {
	s.allocMu.Lock()
	defer s.allocMu.Unlock()

	offset := s.dir.nextRawSpot
	end := offset + HeaderSize + allocSize
	if end > s.cfg.MaxMapSize {
		return 0, ErrAllocationFailed
	}
	s.dir.nextRawSpot = end
	return offset, nil
}

// popOrphan pops the head of the header free-list, if any. The free-list
// only ever threads genuinely orphaned slots: every entry pushed onto it
// came from unlink freeing a victim's on-disk offset, so the head is
// always immediately reusable without a scan.
func (s *Store) popOrphan() (uint64, bool) {
	s.allocMu.Lock()
	defer s.allocMu.Unlock()

	if s.dir.freeListHead == 0 {
		return 0, false
	}
	offset := s.dir.freeListHead
	raw, err := s.sub.rawRead(offset, HeaderSize)
	if err != nil {
		return 0, false
	}
	hdr, err := decodeHeader(raw)
	if err != nil {
		return 0, false
	}
	s.dir.freeListHead = hdr.NextOffset
	return offset, true
}

// pushOrphan prepends offset to the header free-list. The slot's on-disk
// next_offset field is rewritten to thread it ahead of the prior head;
// nothing else in the header is touched.
func (s *Store) pushOrphan(offset uint64) error {
	s.allocMu.Lock()
	defer s.allocMu.Unlock()

	var buf [8]byte
	putUint64(buf[:], s.dir.freeListHead)
	if err := s.sub.rawWrite(buf[:], offset+32); err != nil {
		return err
	}
	s.dir.freeListHead = offset
	return nil
}

// writeHeaderAt serializes hdr to its on-disk slot at offset.
func (s *Store) writeHeaderAt(offset uint64, hdr Header) error {
	enc := encodeHeader(hdr)
	return s.sub.rawWrite(enc[:], offset)
}

func (s *Store) readHeaderAt(offset uint64) (Header, error) {
	raw, err := s.sub.rawRead(offset, HeaderSize)
	if err != nil {
		return Header{}, err
	}
	return decodeHeader(raw)
}

// createObject mints a File-Id for name: a free-list slot is reused in
// place when available (keeping its alloc_size, since the payload region
// is still physically reserved), otherwise a fresh region is bump-allocated
// with a zero-byte payload, reserving only the header. The first non-empty
// write to a bump-allocated object therefore always exceeds its alloc_size
// and relocates, carrying version from -1 to 0; a first write that fits a
// reused slot's alloc_size lands in place outside MVCC and leaves version
// at -1. Callers must hold Store.dirMu.
func (s *Store) createObject(name string) (FileID, error) {
	truncated, wasTruncated := truncateName(name)
	name = truncated

	if s.dir.nextFileID >= s.cfg.MaxFiles {
		return 0, ErrTooManyFiles
	}

	var offset uint64
	var allocSize uint64

	if reused, ok := s.popOrphan(); ok {
		prior, err := s.readHeaderAt(reused)
		if err != nil {
			return 0, err
		}
		offset = reused
		allocSize = prior.AllocSize
	} else {
		var err error
		offset, err = s.bumpAllocate(0)
		if err != nil {
			return 0, err
		}
	}

	hdr := Header{
		Name:       name,
		NextOffset: 0,
		LiveSize:   0,
		AllocSize:  allocSize,
		Version:    -1,
		Timestamp:  nowMillis(),
	}
	if err := s.writeHeaderAt(offset, hdr); err != nil {
		return 0, err
	}

	id := FileID(s.dir.nextFileID)
	s.dir.nextFileID++
	s.dir.numFiles++
	s.dir.byID[id] = offset
	s.dir.headers[id] = hdr
	s.dir.byName[name] = id
	s.dir.slots[id] = &objectSlot{}

	if wasTruncated {
		s.log.Warnf("name truncated to %d bytes for file %d", MaxNameLen, id)
	}
	return id, nil
}

// relocate performs an Allocator relocation: a fresh region of
// max(requestedExtent, old.AllocSize, MinAlloc) bytes is bump-allocated,
// bytes in [0, preserve) are copied forward from the old region, and the
// new header chains back to the old offset via NextOffset so MVCC readers
// can still reach it. The new header's live_size is preserve: only the
// copied-forward bytes are live until the caller writes more. The new
// header is written to its new slot before
// returning, so it is immediately durable and reachable as a predecessor
// for any later relocation. Returns the new offset and header. Callers must
// hold dirMu.
func (s *Store) relocate(id FileID, requestedExtent, preserve uint64) (uint64, Header, error) {
	oldOffset := s.dir.byID[id]
	oldHeader := s.dir.headers[id]

	newAlloc := requestedExtent
	if oldHeader.AllocSize > newAlloc {
		newAlloc = oldHeader.AllocSize
	}
	if s.cfg.MinAlloc > newAlloc {
		newAlloc = s.cfg.MinAlloc
	}

	newOffset, err := s.bumpAllocate(newAlloc)
	if err != nil {
		return 0, Header{}, err
	}

	if preserve > 0 {
		chunk, err := s.sub.rawRead(oldOffset+HeaderSize, preserve)
		if err != nil {
			return 0, Header{}, err
		}
		if err := s.sub.rawWrite(chunk, newOffset+HeaderSize); err != nil {
			return 0, Header{}, err
		}
	}

	newHeader := Header{
		Name:       oldHeader.Name,
		NextOffset: oldOffset,
		LiveSize:   preserve,
		AllocSize:  newAlloc,
		Version:    oldHeader.Version + 1,
		Timestamp:  nowMillis(),
	}
	if err := s.writeHeaderAt(newOffset, newHeader); err != nil {
		return 0, Header{}, err
	}
	return newOffset, newHeader, nil
}

// unlinkLocked removes an object from the directory: the name is removed,
// the highest live File-Id is swapped into the vacated id, and the
// victim's now-unreferenced on-disk offset is either absorbed by its
// immediate neighbor (if the neighbor is still a validly-resolving live
// object) or pushed onto the header free-list. Returns whether a merge
// happened. Callers must hold Store.dirMu and have already taken an
// exclusive lock on id (and, if distinct, on the last live id).
func (s *Store) unlinkLocked(id FileID) (bool, error) {
	victimOffset, ok := s.dir.byID[id]
	if !ok {
		return false, ErrNotFound
	}
	victimHeader := s.dir.headers[id]

	delete(s.dir.byName, victimHeader.Name)

	lastID := FileID(s.dir.nextFileID - 1)
	if lastID != id {
		lastOffset := s.dir.byID[lastID]
		lastHeader := s.dir.headers[lastID]

		s.dir.byID[id] = lastOffset
		s.dir.headers[id] = lastHeader
		s.dir.byName[lastHeader.Name] = id

		delete(s.dir.byID, lastID)
		delete(s.dir.headers, lastID)
		delete(s.dir.slots, lastID)
	} else {
		delete(s.dir.byID, id)
		delete(s.dir.headers, id)
		delete(s.dir.slots, id)
	}

	s.dir.numFiles--
	s.dir.nextFileID--

	merged, err := s.tryMergeNeighbor(victimOffset, victimHeader.AllocSize)
	if err != nil {
		return false, err
	}
	if !merged {
		if err := s.pushOrphan(victimOffset); err != nil {
			return false, err
		}
	}
	return merged, nil
}

// tryMergeNeighbor looks for an object whose current offset is exactly
// victimOffset+HeaderSize+victimAllocSize (the region immediately after
// the freed one) and, if it resolves back to a valid live object, extends
// it backward to absorb the freed space. A neighbor region that is itself
// only reachable through the free-list (not a live object) is never
// detected as mergeable; it stays a separate orphan entry.
func (s *Store) tryMergeNeighbor(victimOffset, victimAllocSize uint64) (bool, error) {
	neighborOffset := victimOffset + HeaderSize + victimAllocSize

	var neighborID FileID
	found := false
	for id, off := range s.dir.byID {
		if off == neighborOffset {
			neighborID = id
			found = true
			break
		}
	}
	if !found {
		return false, nil
	}

	neighborHeader := s.dir.headers[neighborID]
	if s.dir.byName[neighborHeader.Name] != neighborID {
		return false, nil
	}

	if neighborHeader.LiveSize > 0 {
		live, err := s.sub.rawRead(neighborOffset+HeaderSize, neighborHeader.LiveSize)
		if err != nil {
			return false, err
		}
		if err := s.sub.rawWrite(live, victimOffset+HeaderSize); err != nil {
			return false, err
		}
	}

	mergedHeader := neighborHeader
	mergedHeader.AllocSize = neighborHeader.AllocSize + HeaderSize + victimAllocSize
	if err := s.writeHeaderAt(victimOffset, mergedHeader); err != nil {
		return false, err
	}

	s.dir.byID[neighborID] = victimOffset
	s.dir.headers[neighborID] = mergedHeader
	return true, nil
}
