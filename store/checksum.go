package store

import "lukechampine.com/blake3"

// Checksum hashes an object's full live payload with BLAKE3. It is a
// diagnostic, not part of the core read/write path: it takes its own
// Shared admission slot and releases it before returning.
func (s *Store) Checksum(id FileID) ([32]byte, error) {
	r, err := s.GetReader(id)
	if err != nil {
		return [32]byte{}, err
	}
	defer r.Close()

	payload, err := r.ReadAll()
	if err != nil {
		return [32]byte{}, err
	}
	return blake3.Sum256(payload), nil
}
