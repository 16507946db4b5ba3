// Package client builds seals for submission to the router.
package client

import (
	"github.com/boundless-xyz/risc0-solana/internal/groth16"
	"github.com/boundless-xyz/risc0-solana/internal/seal"
)

// Encoder prefixes proofs with the selector of one verifier parameter set.
type Encoder struct {
	selector seal.Selector
}

func NewEncoder(params groth16.Parameters) Encoder {
	return Encoder{selector: params.Selector()}
}

// DefaultEncoder targets the verifier parameters compiled into this binary.
// It fails with groth16.ErrNoDefaultVerifyingKey when none were built in.
func DefaultEncoder() (Encoder, error) {
	params, err := groth16.DefaultParameters()
	if err != nil {
		return Encoder{}, err
	}
	return NewEncoder(params), nil
}

func (e Encoder) Selector() seal.Selector {
	return e.selector
}

func (e Encoder) EncodeSeal(raw [seal.RawProofSize]byte) seal.Seal {
	return EncodeSealWithSelector(raw, e.selector)
}

// EncodeSealBytes is EncodeSeal for callers holding a slice.
func (e Encoder) EncodeSealBytes(raw []byte) (seal.Seal, error) {
	proof, err := seal.UnmarshalProof(raw)
	if err != nil {
		return seal.Seal{}, err
	}
	return e.EncodeSeal(proof.Bytes()), nil
}

// EncodeSeal targets the current verifier parameters built into this binary.
func EncodeSeal(raw [seal.RawProofSize]byte) (seal.Seal, error) {
	e, err := DefaultEncoder()
	if err != nil {
		return seal.Seal{}, err
	}
	return e.EncodeSeal(raw), nil
}

// EncodeSealWithSelector targets a specific verifier version.
func EncodeSealWithSelector(raw [seal.RawProofSize]byte, selector seal.Selector) seal.Seal {
	return seal.EncodeWithSelector(raw, selector)
}
