package store

// FileID is a dense, non-negative integer identifying a named object
// within one store. Ids change only on Unlink, which compacts the id space:
// the object holding the highest id moves into the vacated id, so that id is
// reused for a different name.
type FileID uint32

// directoryPrefixFixedSize is num_files + next_file_id + free_list_head +
// next_raw_spot, before the per-file offset table.
const directoryPrefixFixedSize = 4 + 4 + 8 + 8

// objectSlot holds the concurrency-core counters for one live object.
// Guarded by Store.dirMu.
type objectSlot struct {
	readers uint32
	writers uint32
}

// directory is the Object Directory (OD): the in-memory, persisted-on-
// shutdown table mapping File-Id to its current payload offset, cached
// header, and name. All fields are guarded by Store.dirMu, except
// nextRawSpot and freeListHead which are additionally serialized through
// Store.allocMu (the Allocator's own mutex, acquired while dirMu is held
// and never while a per-object admission wait is outstanding).
type directory struct {
	numFiles     uint32
	nextFileID   uint32
	freeListHead uint64
	nextRawSpot  uint64

	byID    map[FileID]uint64 // current header offset
	headers map[FileID]Header // cached copy of the on-disk header
	byName  map[string]FileID
	slots   map[FileID]*objectSlot
}

func newDirectory(reservedEnd uint64) *directory {
	return &directory{
		nextRawSpot: reservedEnd,
		byID:        make(map[FileID]uint64),
		headers:     make(map[FileID]Header),
		byName:      make(map[string]FileID),
		slots:       make(map[FileID]*objectSlot),
	}
}

// directoryReservedSize is the on-disk footprint of the persisted directory
// prefix when sized to hold up to maxFiles entries: the fixed counters plus
// one 8-byte payload offset per reserved File-Id. Object payloads never
// begin before this boundary.
func directoryReservedSize(maxFiles uint32) uint64 {
	return directoryPrefixFixedSize + uint64(maxFiles)*8
}

// encodeDirectoryPrefix serializes num_files, next_file_id,
// free_list_head_offset, next_raw_spot, then num_files payload offsets in
// File-Id order.
func encodeDirectoryPrefix(d *directory) []byte {
	buf := make([]byte, directoryPrefixFixedSize+int(d.numFiles)*8)
	putUint32(buf[0:4], d.numFiles)
	putUint32(buf[4:8], d.nextFileID)
	putUint64(buf[8:16], d.freeListHead)
	putUint64(buf[16:24], d.nextRawSpot)
	for i := uint32(0); i < d.numFiles; i++ {
		off := directoryPrefixFixedSize + int(i)*8
		putUint64(buf[off:off+8], d.byID[FileID(i)])
	}
	return buf
}

type decodedDirectoryPrefix struct {
	numFiles     uint32
	nextFileID   uint32
	freeListHead uint64
	nextRawSpot  uint64
	offsets      []uint64
}

func decodeDirectoryPrefixHeader(buf []byte) (decodedDirectoryPrefix, error) {
	if len(buf) < directoryPrefixFixedSize {
		return decodedDirectoryPrefix{}, ErrDirectoryCorrupt
	}
	return decodedDirectoryPrefix{
		numFiles:     getUint32(buf[0:4]),
		nextFileID:   getUint32(buf[4:8]),
		freeListHead: getUint64(buf[8:16]),
		nextRawSpot:  getUint64(buf[16:24]),
	}, nil
}

func decodeDirectoryOffsets(buf []byte, numFiles uint32) ([]uint64, error) {
	if uint64(len(buf)) < uint64(numFiles)*8 {
		return nil, ErrDirectoryCorrupt
	}
	offsets := make([]uint64, numFiles)
	for i := uint32(0); i < numFiles; i++ {
		offsets[i] = getUint64(buf[i*8 : i*8+8])
	}
	return offsets, nil
}
