package seal

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
)

var (
	baseFieldModulus = fp.Modulus()
	wordModulus      = new(big.Int).Lsh(big.NewInt(1), 256)
)

// NegateG1 maps (x, y) to (x, q - y) on big-endian coordinates, where q is the
// BN254 base field modulus. The subtraction wraps modulo 2^256 so the map is
// an involution on every 64-byte input, including non-canonical ones.
func NegateG1(point [G1Size]byte) [G1Size]byte {
	var out [G1Size]byte
	copy(out[:32], point[:32])

	y := new(big.Int).SetBytes(point[32:])
	y.Sub(baseFieldModulus, y)
	y.Mod(y, wordModulus)
	y.FillBytes(out[32:])

	return out
}
