package groth16

import (
	"context"
	"errors"
	"fmt"

	"github.com/boundless-xyz/risc0-solana/internal/seal"
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

var (
	ErrMalformedProof = errors.New("malformed proof")
	ErrVerification   = errors.New("proof verification failed")
)

// Verifier checks receipt seals against one baked-in verifying key.
type Verifier struct {
	params Parameters
	vk     *VerifyingKey
}

func NewVerifier(controlRoot, bn254ControlID Digest, vk *VerifyingKey) (*Verifier, error) {
	if vk == nil {
		return nil, fmt.Errorf("%w: nil key", ErrUnsupportedKey)
	}
	if len(vk.IC) != PublicInputCount+1 {
		return nil, fmt.Errorf("%w: expected %d IC points, got %d", ErrUnsupportedKey, PublicInputCount+1, len(vk.IC))
	}

	return &Verifier{
		params: NewParameters(controlRoot, bn254ControlID, vk),
		vk:     vk,
	}, nil
}

func (v *Verifier) Parameters() Parameters {
	return v.params
}

func (v *Verifier) Selector() seal.Selector {
	return v.params.Selector()
}

// Verify checks that proof attests to imageID producing journalDigest.
// PiA must already be negated, as produced by the seal codec.
func (v *Verifier) Verify(ctx context.Context, proof seal.Proof, imageID, journalDigest [32]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	claim := ReceiptClaimDigest(imageID, journalDigest)
	return v.VerifyWithInputs(proof, PublicInputs(v.params.ControlRoot, claim, v.params.BN254ControlID))
}

func (v *Verifier) VerifyWithInputs(proof seal.Proof, inputs []fr.Element) error {
	if len(inputs) != len(v.vk.IC)-1 {
		return fmt.Errorf("%w: expected %d public inputs, got %d", ErrVerification, len(v.vk.IC)-1, len(inputs))
	}

	negA, err := parseG1(proof.PiA[:])
	if err != nil {
		return fmt.Errorf("%w: pi_a: %v", ErrMalformedProof, err)
	}
	b, err := parseG2(proof.PiB[:])
	if err != nil {
		return fmt.Errorf("%w: pi_b: %v", ErrMalformedProof, err)
	}
	c, err := parseG1(proof.PiC[:])
	if err != nil {
		return fmt.Errorf("%w: pi_c: %v", ErrMalformedProof, err)
	}

	var acc bn254.G1Affine
	if _, err := acc.MultiExp(v.vk.IC[1:], inputs, ecc.MultiExpConfig{}); err != nil {
		return fmt.Errorf("%w: %v", ErrVerification, err)
	}
	var vkX bn254.G1Jac
	vkX.FromAffine(&acc)
	vkX.AddMixed(&v.vk.IC[0])
	acc.FromJacobian(&vkX)

	// e(-A, B) * e(alpha, beta) * e(vk_x, gamma) * e(C, delta) == 1
	ok, err := bn254.PairingCheck(
		[]bn254.G1Affine{negA, v.vk.Alpha, acc, c},
		[]bn254.G2Affine{b, v.vk.Beta, v.vk.Gamma, v.vk.Delta},
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVerification, err)
	}
	if !ok {
		return ErrVerification
	}
	return nil
}

// PublicInputs splits both digests into 128-bit limbs after reversing their
// byte order, low limb first, and appends the control ID as a field element.
func PublicInputs(controlRoot, claimDigest, bn254ControlID Digest) []fr.Element {
	a0, a1 := splitDigest(controlRoot)
	c0, c1 := splitDigest(claimDigest)

	var id fr.Element
	rev := reverse(bn254ControlID)
	id.SetBytes(rev[:])

	return []fr.Element{a0, a1, c0, c1, id}
}

func splitDigest(d Digest) (lo, hi fr.Element) {
	rev := reverse(d)
	hi.SetBytes(rev[:16])
	lo.SetBytes(rev[16:])
	return lo, hi
}

func reverse(d Digest) Digest {
	var out Digest
	for i := range d {
		out[i] = d[len(d)-1-i]
	}
	return out
}

func parseG1(buf []byte) (bn254.G1Affine, error) {
	var p bn254.G1Affine
	n, err := p.SetBytes(buf)
	if err != nil {
		return p, err
	}
	if n != bn254.SizeOfG1AffineUncompressed {
		return p, errors.New("point is not uncompressed")
	}
	if p.IsInfinity() {
		return p, errors.New("point at infinity")
	}
	return p, nil
}

func parseG2(buf []byte) (bn254.G2Affine, error) {
	var p bn254.G2Affine
	n, err := p.SetBytes(buf)
	if err != nil {
		return p, err
	}
	if n != bn254.SizeOfG2AffineUncompressed {
		return p, errors.New("point is not uncompressed")
	}
	if p.IsInfinity() {
		return p, errors.New("point at infinity")
	}
	return p, nil
}
