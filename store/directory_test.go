package store

import "testing"

func TestDirectoryReservedSize(t *testing.T) {
	got := directoryReservedSize(10)
	want := uint64(directoryPrefixFixedSize + 10*8)
	if got != want {
		t.Errorf("directoryReservedSize(10) = %d, want %d", got, want)
	}
}

func TestEncodeDecodeDirectoryPrefixRoundTrip(t *testing.T) {
	d := newDirectory(directoryReservedSize(4))
	d.numFiles = 3
	d.nextFileID = 3
	d.freeListHead = 128
	d.nextRawSpot = 4096
	d.byID[0] = 100
	d.byID[1] = 200
	d.byID[2] = 300

	buf := encodeDirectoryPrefix(d)

	prefix, err := decodeDirectoryPrefixHeader(buf)
	if err != nil {
		t.Fatalf("decodeDirectoryPrefixHeader failed: %v", err)
	}
	if prefix.numFiles != d.numFiles {
		t.Errorf("numFiles = %d, want %d", prefix.numFiles, d.numFiles)
	}
	if prefix.nextFileID != d.nextFileID {
		t.Errorf("nextFileID = %d, want %d", prefix.nextFileID, d.nextFileID)
	}
	if prefix.freeListHead != d.freeListHead {
		t.Errorf("freeListHead = %d, want %d", prefix.freeListHead, d.freeListHead)
	}
	if prefix.nextRawSpot != d.nextRawSpot {
		t.Errorf("nextRawSpot = %d, want %d", prefix.nextRawSpot, d.nextRawSpot)
	}

	offsets, err := decodeDirectoryOffsets(buf[directoryPrefixFixedSize:], d.numFiles)
	if err != nil {
		t.Fatalf("decodeDirectoryOffsets failed: %v", err)
	}
	for i, off := range offsets {
		if off != d.byID[FileID(i)] {
			t.Errorf("offset[%d] = %d, want %d", i, off, d.byID[FileID(i)])
		}
	}
}

func TestDecodeDirectoryPrefixHeaderRejectsShortBuffer(t *testing.T) {
	if _, err := decodeDirectoryPrefixHeader(make([]byte, directoryPrefixFixedSize-1)); err != ErrDirectoryCorrupt {
		t.Errorf("decodeDirectoryPrefixHeader on short buffer = %v, want ErrDirectoryCorrupt", err)
	}
}

func TestDecodeDirectoryOffsetsRejectsShortBuffer(t *testing.T) {
	if _, err := decodeDirectoryOffsets(make([]byte, 4), 1); err != ErrDirectoryCorrupt {
		t.Errorf("decodeDirectoryOffsets on short buffer = %v, want ErrDirectoryCorrupt", err)
	}
}
