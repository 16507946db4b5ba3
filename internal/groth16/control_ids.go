package groth16

import (
	"fmt"

	"github.com/boundless-xyz/risc0-solana/pkg/utilities"
)

// Circuit commitment constants. Release builds override them with
//
//	-ldflags "-X github.com/boundless-xyz/risc0-solana/internal/groth16.allowedControlRoot=<hex>"
//
// and likewise for bn254IdentityControlID and verifyingKeyDigest. A zero
// verifyingKeyDigest means the binary carries no current parameter set.
var (
	allowedControlRoot     = "8cdad9242664be3112aba377c5425a4df735eb1c6966472b561d2855932c0469"
	bn254IdentityControlID = "04446e66d300eb7fb45c9726bb53c793dda407a62e9601618bb43c5c14657ac0"
	verifyingKeyDigest     = "0000000000000000000000000000000000000000000000000000000000000000"
)

func mustDigest(name, value string) Digest {
	raw, err := utilities.DecodeHexFixed(value, 32)
	if err != nil {
		panic(fmt.Sprintf("groth16: invalid build constant %s: %v", name, err))
	}
	return Digest(raw)
}

func AllowedControlRoot() Digest {
	return mustDigest("allowedControlRoot", allowedControlRoot)
}

func BN254IdentityControlID() Digest {
	return mustDigest("bn254IdentityControlID", bn254IdentityControlID)
}
