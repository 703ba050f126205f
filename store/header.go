package store

import (
	"bytes"
	"encoding/binary"
	"time"
)

// HeaderSize is the fixed on-disk size of an Object Header: 32 (name) +
// 8 (next_offset) + 8 (live_size) + 8 (alloc_size) + 4 (version) +
// 8 (timestamp) = 68 bytes.
const HeaderSize = 68

// MaxNameLen is the longest name a header can hold; longer names are
// truncated (NameTooLong is advisory, never fatal).
const MaxNameLen = 32

// Header is the in-memory view of an on-disk Object Header.
type Header struct {
	Name       string
	NextOffset uint64 // MVCC predecessor, or free-list link when orphaned
	LiveSize   uint64
	AllocSize  uint64
	Version    int32 // -1 = never written
	Timestamp  int64 // monotone milliseconds since epoch
}

func truncateName(name string) (string, bool) {
	if len(name) <= MaxNameLen {
		return name, false
	}
	return name[:MaxNameLen], true
}

func encodeHeader(h Header) [HeaderSize]byte {
	var buf [HeaderSize]byte
	name, _ := truncateName(h.Name)
	copy(buf[0:32], name)
	putUint64(buf[32:40], h.NextOffset)
	putUint64(buf[40:48], h.LiveSize)
	putUint64(buf[48:56], h.AllocSize)
	putUint32(buf[56:60], uint32(h.Version))
	putUint64(buf[60:68], uint64(h.Timestamp))
	return buf
}

func decodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, ErrDirectoryCorrupt
	}
	var h Header
	nameEnd := bytes.IndexByte(buf[0:32], 0)
	if nameEnd < 0 {
		nameEnd = 32
	}
	h.Name = string(buf[0:nameEnd])
	h.NextOffset = getUint64(buf[32:40])
	h.LiveSize = getUint64(buf[40:48])
	h.AllocSize = getUint64(buf[48:56])
	h.Version = int32(getUint32(buf[56:60]))
	h.Timestamp = int64(getUint64(buf[60:68]))
	return h, nil
}

func putUint16(b []byte, v uint16) { binary.LittleEndian.PutUint16(b, v) }
func getUint16(b []byte) uint16    { return binary.LittleEndian.Uint16(b) }
func putUint32(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }
func getUint32(b []byte) uint32    { return binary.LittleEndian.Uint32(b) }
func putUint64(b []byte, v uint64) { binary.LittleEndian.PutUint64(b, v) }
func getUint64(b []byte) uint64    { return binary.LittleEndian.Uint64(b) }

func nowMillis() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}
