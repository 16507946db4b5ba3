// Package seal holds the routing envelope around a Groth16 proof.
//
// A raw proof is 256 bytes: A (G1, 64) | B (G2, 128) | C (G1, 64), all
// uncompressed big-endian coordinates. The seal prefixes a 4-byte selector
// and stores A negated, which is the form the pairing check consumes.
package seal

import (
	"encoding/hex"
	"fmt"

	"github.com/boundless-xyz/risc0-solana/pkg/utilities"
	"github.com/near/borsh-go"
)

const (
	SelectorSize = 4
	G1Size       = 64
	G2Size       = 128
	RawProofSize = G1Size + G2Size + G1Size
	SealSize     = SelectorSize + RawProofSize
)

type Selector [SelectorSize]byte

func (s Selector) String() string {
	return hex.EncodeToString(s[:])
}

func (s Selector) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Selector) UnmarshalText(text []byte) error {
	parsed, err := ParseSelector(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSelector accepts 8 hex characters with an optional 0x prefix.
func ParseSelector(s string) (Selector, error) {
	var sel Selector
	raw, err := utilities.DecodeHexFixed(s, SelectorSize)
	if err != nil {
		return sel, fmt.Errorf("invalid selector %q: %w", s, err)
	}
	copy(sel[:], raw)
	return sel, nil
}

// SelectorFromDigest takes the leading bytes of a parameters digest.
func SelectorFromDigest(digest [32]byte) Selector {
	var sel Selector
	copy(sel[:], digest[:SelectorSize])
	return sel
}

type Proof struct {
	PiA [G1Size]byte
	PiB [G2Size]byte
	PiC [G1Size]byte
}

// Bytes concatenates the groups in wire order. PiA is returned as stored.
func (p Proof) Bytes() [RawProofSize]byte {
	var out [RawProofSize]byte
	copy(out[0:G1Size], p.PiA[:])
	copy(out[G1Size:G1Size+G2Size], p.PiB[:])
	copy(out[G1Size+G2Size:], p.PiC[:])
	return out
}

// ProofFromBytes slices raw at fixed offsets without transforming any group.
func ProofFromBytes(raw [RawProofSize]byte) Proof {
	var p Proof
	copy(p.PiA[:], raw[0:G1Size])
	copy(p.PiB[:], raw[G1Size:G1Size+G2Size])
	copy(p.PiC[:], raw[G1Size+G2Size:])
	return p
}

type Seal struct {
	Selector Selector
	Proof    Proof
}

// EncodeWithSelector splits raw positionally and negates PiA.
// No point validation happens here.
func EncodeWithSelector(raw [RawProofSize]byte, selector Selector) Seal {
	proof := ProofFromBytes(raw)
	proof.PiA = NegateG1(proof.PiA)

	return Seal{Selector: selector, Proof: proof}
}

// RawProof undoes the PiA negation and returns the original 256 bytes.
func (s Seal) RawProof() [RawProofSize]byte {
	proof := s.Proof
	proof.PiA = NegateG1(proof.PiA)
	return proof.Bytes()
}

func (s Seal) MarshalBorsh() ([]byte, error) {
	return borsh.Serialize(s)
}

func UnmarshalBorsh(data []byte) (Seal, error) {
	var s Seal
	if len(data) != SealSize {
		return s, fmt.Errorf("seal must be %d bytes, got %d", SealSize, len(data))
	}
	if err := borsh.Deserialize(&s, data); err != nil {
		return s, fmt.Errorf("decode seal: %w", err)
	}
	return s, nil
}

func UnmarshalProof(data []byte) (Proof, error) {
	var raw [RawProofSize]byte
	if len(data) != RawProofSize {
		return Proof{}, fmt.Errorf("proof must be %d bytes, got %d", RawProofSize, len(data))
	}
	copy(raw[:], data)
	return ProofFromBytes(raw), nil
}
