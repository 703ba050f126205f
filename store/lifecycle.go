package store

import "fmt"

// loadDirectory reads the persisted directory prefix and per-object headers
// back out of the substrate and rebuilds the in-memory directory. It is the
// counterpart to flushDirectory, run once during Open against an existing
// backing file.
func loadDirectory(sub *substrate, maxFiles uint32) (*directory, error) {
	prefixBuf, err := sub.rawRead(0, directoryPrefixFixedSize)
	if err != nil {
		return nil, err
	}
	prefix, err := decodeDirectoryPrefixHeader(prefixBuf)
	if err != nil {
		return nil, err
	}

	offsetsBuf, err := sub.rawRead(directoryPrefixFixedSize, uint64(prefix.numFiles)*8)
	if err != nil {
		return nil, err
	}
	offsets, err := decodeDirectoryOffsets(offsetsBuf, prefix.numFiles)
	if err != nil {
		return nil, err
	}

	dir := newDirectory(directoryReservedSize(maxFiles))
	dir.numFiles = prefix.numFiles
	dir.nextFileID = prefix.nextFileID
	dir.freeListHead = prefix.freeListHead
	dir.nextRawSpot = prefix.nextRawSpot

	for i, offset := range offsets {
		id := FileID(i)
		raw, err := sub.rawRead(offset, HeaderSize)
		if err != nil {
			return nil, fmt.Errorf("%w: file %d: %v", ErrDirectoryCorrupt, id, err)
		}
		hdr, err := decodeHeader(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: file %d: %v", ErrDirectoryCorrupt, id, err)
		}
		dir.byID[id] = offset
		dir.headers[id] = hdr
		dir.byName[hdr.Name] = id
		dir.slots[id] = &objectSlot{}
	}

	if err := checkFreeListAcyclic(sub, dir.freeListHead, prefix.numFiles); err != nil {
		return nil, err
	}

	return dir, nil
}

// checkFreeListAcyclic walks the free list remembering every offset it has
// visited, returning ErrDirectoryCorrupt if the chain revisits one. This
// guards against a corrupted next_offset chain spinning Open into an
// infinite loop. numFiles only sizes the visited set.
func checkFreeListAcyclic(sub *substrate, head uint64, numFiles uint32) error {
	seen := make(map[uint64]bool, numFiles+1)
	offset := head
	for offset != 0 {
		if seen[offset] {
			return ErrDirectoryCorrupt
		}
		seen[offset] = true
		raw, err := sub.rawRead(offset, HeaderSize)
		if err != nil {
			return ErrDirectoryCorrupt
		}
		hdr, err := decodeHeader(raw)
		if err != nil {
			return ErrDirectoryCorrupt
		}
		offset = hdr.NextOffset
	}
	return nil
}

// flushDirectory writes the directory prefix (counters plus the offset
// table) back to the substrate. Object Headers are written by the
// Allocator on every create, relocate, and in-place write, so only the
// prefix needs to be deferred to shutdown.
func flushDirectory(sub *substrate, dir *directory) error {
	return sub.rawWrite(encodeDirectoryPrefix(dir), 0)
}
