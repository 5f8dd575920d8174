package azecrypto

import (
	"fmt"
	"sync"
)

// CipherCard is an ElGamal ciphertext in additive notation:
//
//	PK = Y = x*G
//	Enc(Y, M; r) = (r*G, M + r*Y)
type CipherCard struct {
	C1 Point
	C2 Point
}

// KeyGen derives a player's masking key pair from a seed.
func KeyGen(seed []byte) (Scalar, Point, error) {
	sk, err := HashToScalar("keygen", seed)
	if err != nil {
		return Scalar{}, Point{}, err
	}
	if sk.IsZero() {
		return Scalar{}, Point{}, fmt.Errorf("keygen: zero secret")
	}
	return sk, MulBase(sk), nil
}

// AggregateKeys sums the players' public keys. A card masked under the
// aggregate can only be opened once every holder contributes its share.
func AggregateKeys(pks ...Point) Point {
	agg := PointZero()
	for _, pk := range pks {
		agg = PointAdd(agg, pk)
	}
	return agg
}

// Mask encrypts a card point under the aggregate key.
func Mask(agg Point, card Point, r Scalar) (CipherCard, error) {
	if r.IsZero() {
		// Zero randomness is valid mathematically but leaks the plaintext.
		return CipherCard{}, fmt.Errorf("mask: r must be non-zero")
	}
	c1 := MulBase(r)
	c2 := PointAdd(card, MulPoint(agg, r))
	return CipherCard{C1: c1, C2: c2}, nil
}

// Remask re-randomizes a ciphertext without changing the plaintext:
//
//	(c1 + r*G, c2 + r*Y)
func Remask(agg Point, ct CipherCard, r Scalar) (CipherCard, error) {
	if r.IsZero() {
		return CipherCard{}, fmt.Errorf("remask: r must be non-zero")
	}
	return CipherCard{
		C1: PointAdd(ct.C1, MulBase(r)),
		C2: PointAdd(ct.C2, MulPoint(agg, r)),
	}, nil
}

// InterUnmask strips one player's decryption share: (c1, c2 - sk*c1).
// The result is still a ciphertext under the remaining keys.
func InterUnmask(ct CipherCard, sk Scalar) CipherCard {
	return CipherCard{
		C1: ct.C1,
		C2: PointSub(ct.C2, MulPoint(ct.C1, sk)),
	}
}

// FinalUnmask applies the last share and returns the plaintext point.
func FinalUnmask(ct CipherCard, sk Scalar) Point {
	return PointSub(ct.C2, MulPoint(ct.C1, sk))
}

// ZeroCipher returns the identity ciphertext. Relay payloads shorter than
// their carrier array must be padded with it: a zero-value CipherCard holds
// uninitialized group elements and cannot be encoded or unmasked.
func ZeroCipher() CipherCard {
	return CipherCard{C1: PointZero(), C2: PointZero()}
}

const DeckSize = 52

// Card ids 1..52 are embedded as (id+1)*G so the final unmask can be
// inverted by table lookup. The offset keeps card 1 off the base point,
// which already appears on the wire as a public constant.
var cardTable struct {
	once sync.Once
	byID [DeckSize + 1]Point
	ids  map[[PointBytes]byte]uint8
}

func initCardTable() {
	cardTable.ids = make(map[[PointBytes]byte]uint8, DeckSize)
	for id := uint8(1); id <= DeckSize; id++ {
		p := MulBase(ScalarFromUint64(uint64(id) + 1))
		cardTable.byID[id] = p
		var key [PointBytes]byte
		copy(key[:], p.Bytes())
		cardTable.ids[key] = id
	}
}

func CardPoint(id uint8) (Point, error) {
	if id < 1 || id > DeckSize {
		return Point{}, fmt.Errorf("card point: id %d out of range", id)
	}
	cardTable.once.Do(initCardTable)
	return cardTable.byID[id], nil
}

func CardFromPoint(p Point) (uint8, bool) {
	cardTable.once.Do(initCardTable)
	var key [PointBytes]byte
	copy(key[:], p.Bytes())
	id, ok := cardTable.ids[key]
	return id, ok
}
