package groth16

import (
	"crypto/sha256"
	"encoding/binary"
)

// Digest is a SHA-256 output.
type Digest = [32]byte

var zeroDigest Digest

// taggedStruct hashes tag || down... || data (u32 LE) || len(down) (u16 LE),
// where tag is itself pre-hashed. Structs that differ in tag never collide.
func taggedStruct(tag string, down []Digest, data []uint32) Digest {
	tagDigest := sha256.Sum256([]byte(tag))

	h := sha256.New()
	h.Write(tagDigest[:])
	for _, d := range down {
		h.Write(d[:])
	}
	var word [4]byte
	for _, v := range data {
		binary.LittleEndian.PutUint32(word[:], v)
		h.Write(word[:])
	}
	var count [2]byte
	binary.LittleEndian.PutUint16(count[:], uint16(len(down)))
	h.Write(count[:])

	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// taggedList folds list from the right into cons cells ending at the zero digest.
func taggedList(tag string, list []Digest) Digest {
	cur := zeroDigest
	for i := len(list) - 1; i >= 0; i-- {
		cur = taggedStruct(tag, []Digest{list[i], cur}, nil)
	}
	return cur
}

func hashBytes(b []byte) Digest {
	return sha256.Sum256(b)
}
