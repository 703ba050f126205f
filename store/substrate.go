package store

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// substrateMagic identifies a RapidStash backing file. It never changes
// across format versions; a version bump is signaled by substrateFormatVersion.
const substrateMagic = "RPDSTSH1"

const substrateFormatVersion = uint16(1)

// substrateHeaderSize is len(magic) + 2 (format version) + 8 (recorded map size).
const substrateHeaderSize = len(substrateMagic) + 2 + 8

// growAlignment rounds every grow up to this boundary.
const growAlignment = 16

// substrate presents a backing file as a contiguous, growable byte region
// hidden behind a small persistent header. It owns the mapping and the
// file handle; all other components address it through logical offsets
// that start just past substrateHeaderSize.
type substrate struct {
	path string
	file *os.File

	// mu is the single growth mutex. It is held exclusively only across a
	// grow-or-fail check and the remap; raw_read/raw_write hold it for
	// reading so that a grow in flight blocks them, matching the rule that
	// growth and ordinary I/O never interleave.
	mu sync.RWMutex

	data         []byte
	size         uint64
	isNew        bool
	maxSize      uint64
	growthFactor float64
}

// openSubstrate opens or creates the backing file at path. If the file does
// not exist, it is created at initialSize and stamped with a fresh header.
// If it exists, its header is validated against substrateMagic and
// substrateFormatVersion before the mapping is handed back.
func openSubstrate(path string, initialSize, maxSize uint64, growthFactor float64) (*substrate, error) {
	_, statErr := os.Stat(path)
	isNew := os.IsNotExist(statErr)

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}

	s := &substrate{path: path, file: file, maxSize: maxSize, growthFactor: growthFactor}

	if isNew {
		size := initialSize
		if size < uint64(substrateHeaderSize) {
			size = uint64(substrateHeaderSize)
		}
		size = alignUp(size, growAlignment)
		if err := file.Truncate(int64(size)); err != nil {
			file.Close()
			return nil, fmt.Errorf("%w: %v", ErrOpenFailed, err)
		}
		s.size = size
		s.isNew = true
		if err := s.mapAt(size); err != nil {
			file.Close()
			return nil, err
		}
		s.writeHeader()
		return s, nil
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}
	size := uint64(info.Size())
	if size < uint64(substrateHeaderSize) {
		file.Close()
		return nil, ErrSanityCheckFailed
	}
	s.size = size
	if err := s.mapAt(size); err != nil {
		file.Close()
		return nil, err
	}

	if err := s.checkSanity(); err != nil {
		s.mu.Lock()
		unix.Munmap(s.data)
		s.mu.Unlock()
		file.Close()
		return nil, err
	}

	return s, nil
}

func alignUp(n uint64, align uint64) uint64 {
	if n%align == 0 {
		return n
	}
	return (n/align + 1) * align
}

// mapAt (re)maps the backing file at the given size. Callers must hold mu
// for writing (or be the single-threaded constructor).
func (s *substrate) mapAt(size uint64) error {
	data, err := unix.Mmap(int(s.file.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}
	s.data = data
	s.size = size
	return nil
}

// writeHeader stamps the magic, format version, and recorded map size at
// the front of the mapping. Called on creation and on shutdown.
func (s *substrate) writeHeader() {
	copy(s.data[0:len(substrateMagic)], substrateMagic)
	off := len(substrateMagic)
	putUint16(s.data[off:off+2], substrateFormatVersion)
	off += 2
	putUint64(s.data[off:off+8], s.size)
}

func (s *substrate) checkSanity() error {
	if !bytes.Equal(s.data[0:len(substrateMagic)], []byte(substrateMagic)) {
		return ErrSanityCheckFailed
	}
	off := len(substrateMagic)
	version := getUint16(s.data[off : off+2])
	if version != substrateFormatVersion {
		return ErrVersionMismatch
	}
	// Recorded size mismatches are non-fatal: the file was possibly grown
	// without a clean shutdown. We trust the OS-reported size instead.
	return nil
}

// rawWrite writes buf at logicalPos + substrateHeaderSize, growing the
// mapping first if necessary.
func (s *substrate) rawWrite(buf []byte, logicalPos uint64) error {
	end := logicalPos + uint64(len(buf)) + uint64(substrateHeaderSize)

	s.mu.RLock()
	needGrow := end > s.size
	s.mu.RUnlock()

	if needGrow {
		if err := s.grow(end); err != nil {
			return err
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if end > s.size {
		return ErrBackingGrowFailed
	}
	start := logicalPos + uint64(substrateHeaderSize)
	copy(s.data[start:end], buf)
	return nil
}

// rawRead copies length bytes starting at logicalPos + substrateHeaderSize.
func (s *substrate) rawRead(logicalPos, length uint64) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := logicalPos + uint64(substrateHeaderSize)
	end := start + length
	if end > s.size {
		return nil, ErrReadOutOfBounds
	}
	out := make([]byte, length)
	copy(out, s.data[start:end])
	return out, nil
}

// grow resizes the backing file so that requiredEnd fits, scaling
// requiredEnd by the configured growth factor (1.25 by default), rounded up
// to growAlignment and capped at maxSize. Exactly
// one grow runs at a time; readers and writers block for its duration.
func (s *substrate) grow(requiredEnd uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if requiredEnd <= s.size {
		return nil
	}

	newSize := uint64(math.Ceil(float64(requiredEnd) * s.growthFactor))
	newSize = alignUp(newSize, growAlignment)
	if newSize > s.maxSize {
		newSize = s.maxSize
	}
	if newSize < requiredEnd {
		return ErrBackingGrowFailed
	}

	if err := unix.Munmap(s.data); err != nil {
		return fmt.Errorf("%w: %v", ErrBackingGrowFailed, err)
	}
	if err := s.file.Truncate(int64(newSize)); err != nil {
		return fmt.Errorf("%w: %v", ErrBackingGrowFailed, err)
	}
	if err := s.mapAt(newSize); err != nil {
		return fmt.Errorf("%w: %v", ErrBackingGrowFailed, err)
	}
	return nil
}

// shutdown rewrites the substrate header so the recorded size matches the
// current mapping, then unmaps and closes the file.
func (s *substrate) shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writeHeader()
	if err := unix.Msync(s.data, unix.MS_SYNC); err != nil {
		// Not fatal: msync is best-effort on platforms where it is costly.
		_ = err
	}
	if err := unix.Munmap(s.data); err != nil {
		return fmt.Errorf("munmap: %w", err)
	}
	return s.file.Close()
}

func (s *substrate) currentSize() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}
