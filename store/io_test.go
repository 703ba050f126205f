package store

import "testing"

func TestWriter_TypedReadWriteRoundTrip(t *testing.T) {
	s := openTestStore(t)
	id, err := s.Select("typed")
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	w, err := s.GetWriter(id)
	if err != nil {
		t.Fatalf("GetWriter failed: %v", err)
	}
	if err := w.WriteUint64(42); err != nil {
		t.Fatalf("WriteUint64 failed: %v", err)
	}
	if err := w.WriteInt64(-7); err != nil {
		t.Fatalf("WriteInt64 failed: %v", err)
	}
	if err := w.WriteString("tail"); err != nil {
		t.Fatalf("WriteString failed: %v", err)
	}
	w.Close()

	r, err := s.GetReader(id)
	if err != nil {
		t.Fatalf("GetReader failed: %v", err)
	}
	defer r.Close()

	u, err := r.ReadUint64()
	if err != nil || u != 42 {
		t.Errorf("ReadUint64 = (%d, %v), want (42, nil)", u, err)
	}
	i, err := r.ReadInt64()
	if err != nil || i != -7 {
		t.Errorf("ReadInt64 = (%d, %v), want (-7, nil)", i, err)
	}
	str, err := r.ReadString(4)
	if err != nil || str != "tail" {
		t.Errorf("ReadString = (%q, %v), want (\"tail\", nil)", str, err)
	}
}

func TestReader_SeekRejectsPastLiveSize(t *testing.T) {
	s := openTestStore(t)
	id, err := s.Select("seekable")
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	w, err := s.GetWriter(id)
	if err != nil {
		t.Fatalf("GetWriter failed: %v", err)
	}
	if _, err := w.Write([]byte("0123456789")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	w.Close()

	r, err := s.GetReader(id)
	if err != nil {
		t.Fatalf("GetReader failed: %v", err)
	}
	defer r.Close()

	if err := r.Seek(5); err != nil {
		t.Fatalf("Seek(5) failed: %v", err)
	}
	rest, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(rest) != "56789" {
		t.Errorf("read from offset 5 = %q, want %q", rest, "56789")
	}

	if err := r.Seek(11); err != ErrSeekOutOfBounds {
		t.Errorf("Seek past live_size = %v, want ErrSeekOutOfBounds", err)
	}
}

func TestGetSafeReaderWriterReleaseIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	id, err := s.Select("safe")
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	sw, err := s.GetSafeWriter(id)
	if err != nil {
		t.Fatalf("GetSafeWriter failed: %v", err)
	}
	if _, err := sw.Handle().Write([]byte("x")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	sw.Release()
	sw.Release() // idempotent

	sr, err := s.GetSafeReader(id)
	if err != nil {
		t.Fatalf("GetSafeReader failed: %v", err)
	}
	defer sr.Release()
	got, err := sr.Handle().ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(got) != "x" {
		t.Errorf("read %q, want %q", got, "x")
	}
}
