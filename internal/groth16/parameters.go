package groth16

import (
	"errors"

	"github.com/boundless-xyz/risc0-solana/internal/seal"
)

// Parameters identify one Groth16 verifier deployment. Its digest is the
// content address the router selector is taken from.
type Parameters struct {
	ControlRoot        Digest
	BN254ControlID     Digest
	VerifyingKeyDigest Digest
}

func NewParameters(controlRoot, bn254ControlID Digest, vk *VerifyingKey) Parameters {
	return Parameters{
		ControlRoot:        controlRoot,
		BN254ControlID:     bn254ControlID,
		VerifyingKeyDigest: vk.Digest(),
	}
}

// ErrNoDefaultVerifyingKey is returned when the binary was built without a
// verifying key digest, so there is no current parameter set to select.
var ErrNoDefaultVerifyingKey = errors.New("no verifying key digest built into this binary")

// DefaultParameters are the parameters compiled into this binary.
func DefaultParameters() (Parameters, error) {
	vkDigest := mustDigest("verifyingKeyDigest", verifyingKeyDigest)
	if vkDigest == zeroDigest {
		return Parameters{}, ErrNoDefaultVerifyingKey
	}
	return Parameters{
		ControlRoot:        AllowedControlRoot(),
		BN254ControlID:     BN254IdentityControlID(),
		VerifyingKeyDigest: vkDigest,
	}, nil
}

// DefaultParametersFor pairs the built-in control IDs with vk.
func DefaultParametersFor(vk *VerifyingKey) Parameters {
	return NewParameters(AllowedControlRoot(), BN254IdentityControlID(), vk)
}

func (p Parameters) Digest() Digest {
	return taggedStruct(
		"risc0.Groth16ReceiptVerifierParameters",
		[]Digest{p.ControlRoot, p.BN254ControlID, p.VerifyingKeyDigest},
		nil,
	)
}

func (p Parameters) Selector() seal.Selector {
	return seal.SelectorFromDigest(p.Digest())
}
