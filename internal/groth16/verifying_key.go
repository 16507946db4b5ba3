package groth16

import (
	"errors"
	"fmt"
	"os"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark/backend/groth16"
	groth16_bn254 "github.com/consensys/gnark/backend/groth16/bn254"
)

// PublicInputCount is the number of public inputs of the receipt circuit:
// control root (2 limbs), claim digest (2 limbs) and the BN254 control ID.
const PublicInputCount = 5

var ErrUnsupportedKey = errors.New("unsupported verifying key")

type VerifyingKey struct {
	Alpha bn254.G1Affine
	Beta  bn254.G2Affine
	Gamma bn254.G2Affine
	Delta bn254.G2Affine
	// IC[0] is the constant term, IC[i+1] weighs public input i.
	IC []bn254.G1Affine
}

func (vk *VerifyingKey) Digest() Digest {
	ic := make([]Digest, len(vk.IC))
	for i := range vk.IC {
		raw := vk.IC[i].RawBytes()
		ic[i] = hashBytes(raw[:])
	}

	alpha := vk.Alpha.RawBytes()
	beta := vk.Beta.RawBytes()
	gamma := vk.Gamma.RawBytes()
	delta := vk.Delta.RawBytes()

	return taggedStruct(
		"risc0_groth16.VerifyingKey",
		[]Digest{
			hashBytes(alpha[:]),
			hashBytes(beta[:]),
			hashBytes(gamma[:]),
			hashBytes(delta[:]),
			taggedList("risc0_groth16.IC", ic),
		},
		nil,
	)
}

// VerifyingKeyFromGnark converts a gnark BN254 key. Keys using Pedersen
// commitments are rejected since the seal layout has no room for them.
func VerifyingKeyFromGnark(vk groth16.VerifyingKey) (*VerifyingKey, error) {
	bvk, ok := vk.(*groth16_bn254.VerifyingKey)
	if !ok {
		return nil, fmt.Errorf("%w: curve is not BN254", ErrUnsupportedKey)
	}
	if len(bvk.PublicAndCommitmentCommitted) > 0 {
		return nil, fmt.Errorf("%w: commitments are not supported", ErrUnsupportedKey)
	}

	ic := make([]bn254.G1Affine, len(bvk.G1.K))
	copy(ic, bvk.G1.K)

	return &VerifyingKey{
		Alpha: bvk.G1.Alpha,
		Beta:  bvk.G2.Beta,
		Gamma: bvk.G2.Gamma,
		Delta: bvk.G2.Delta,
		IC:    ic,
	}, nil
}

// LoadVerifyingKey reads a key written by gnark's VerifyingKey.WriteTo.
func LoadVerifyingKey(path string) (*VerifyingKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	vk := groth16.NewVerifyingKey(ecc.BN254)
	if _, err := vk.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("read verifying key %s: %w", path, err)
	}

	return VerifyingKeyFromGnark(vk)
}

// RawProofFromGnark lays a gnark BN254 proof out as A | B | C.
func RawProofFromGnark(proof groth16.Proof) ([256]byte, error) {
	var raw [256]byte

	bp, ok := proof.(*groth16_bn254.Proof)
	if !ok {
		return raw, fmt.Errorf("%w: proof curve is not BN254", ErrUnsupportedKey)
	}
	if len(bp.Commitments) > 0 {
		return raw, fmt.Errorf("%w: commitments are not supported", ErrUnsupportedKey)
	}

	a := bp.Ar.RawBytes()
	b := bp.Bs.RawBytes()
	c := bp.Krs.RawBytes()
	copy(raw[0:64], a[:])
	copy(raw[64:192], b[:])
	copy(raw[192:256], c[:])

	return raw, nil
}
