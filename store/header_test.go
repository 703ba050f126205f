package store

import "testing"

func TestEncodeDecodeHeaderRoundTrip(t *testing.T) {
	cases := []Header{
		{Name: "a", NextOffset: 0, LiveSize: 0, AllocSize: 128, Version: -1, Timestamp: 1234},
		{Name: "longer-name", NextOffset: 4096, LiveSize: 64, AllocSize: 256, Version: 3, Timestamp: 0},
		{Name: "", NextOffset: 0, LiveSize: 0, AllocSize: 0, Version: -1, Timestamp: -1},
	}

	for _, want := range cases {
		enc := encodeHeader(want)
		got, err := decodeHeader(enc[:])
		if err != nil {
			t.Fatalf("decodeHeader failed: %v", err)
		}
		if got != want {
			t.Errorf("round-trip mismatch: got %+v, want %+v", got, want)
		}
	}
}

func TestEncodeHeaderTruncatesLongNames(t *testing.T) {
	long := ""
	for i := 0; i < MaxNameLen+10; i++ {
		long += "x"
	}
	h := Header{Name: long, AllocSize: 128, Version: -1}
	enc := encodeHeader(h)
	got, err := decodeHeader(enc[:])
	if err != nil {
		t.Fatalf("decodeHeader failed: %v", err)
	}
	if len(got.Name) != MaxNameLen {
		t.Errorf("decoded name length = %d, want %d", len(got.Name), MaxNameLen)
	}
}

func TestTruncateName(t *testing.T) {
	short := "fits"
	if _, truncated := truncateName(short); truncated {
		t.Errorf("truncateName(%q) reported truncation for a name within bounds", short)
	}

	long := ""
	for i := 0; i < MaxNameLen+1; i++ {
		long += "y"
	}
	out, truncated := truncateName(long)
	if !truncated {
		t.Errorf("truncateName(%q) should report truncation", long)
	}
	if len(out) != MaxNameLen {
		t.Errorf("truncated length = %d, want %d", len(out), MaxNameLen)
	}
}

func TestDecodeHeaderRejectsShortBuffer(t *testing.T) {
	if _, err := decodeHeader(make([]byte, HeaderSize-1)); err != ErrDirectoryCorrupt {
		t.Errorf("decodeHeader on short buffer = %v, want ErrDirectoryCorrupt", err)
	}
}
