package azecrypto

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Points travel inside JSON note payloads as hex-encoded canonical bytes.

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(p.Bytes()))
}

func (p *Point) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("point: %w", err)
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("point: invalid hex: %w", err)
	}
	decoded, err := PointFromBytesCanonical(raw)
	if err != nil {
		return err
	}
	*p = decoded
	return nil
}

func (s Scalar) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(s.Bytes()))
}

func (s *Scalar) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return fmt.Errorf("scalar: %w", err)
	}
	raw, err := hex.DecodeString(str)
	if err != nil {
		return fmt.Errorf("scalar: invalid hex: %w", err)
	}
	decoded, err := ScalarFromBytesCanonical(raw)
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}

// Words packs a point's 32 canonical bytes into the 4-element tuple shape
// used for account slots, so public keys can live in storage.
func (p Point) Words() [4]uint64 {
	b := p.Bytes()
	var out [4]uint64
	for i := range out {
		out[i] = binary.LittleEndian.Uint64(b[8*i:])
	}
	return out
}

func PointFromWords(w [4]uint64) (Point, error) {
	b := make([]byte, 32)
	for i, v := range w {
		binary.LittleEndian.PutUint64(b[8*i:], v)
	}
	return PointFromBytesCanonical(b)
}

func pointDigest(p Point) uint64 {
	h := sha256.Sum256(p.Bytes())
	return binary.LittleEndian.Uint64(h[:8])
}

// Digests commits a ciphertext to a pair of 64-bit values, small enough to
// mirror into account storage while the full points ride in the note.
func (ct CipherCard) Digests() (uint64, uint64) {
	return pointDigest(ct.C1), pointDigest(ct.C2)
}
