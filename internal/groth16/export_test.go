package groth16

// SetBuiltinVerifyingKeyDigest swaps the build-time digest for a test.
func SetBuiltinVerifyingKeyDigest(value string) (restore func()) {
	previous := verifyingKeyDigest
	verifyingKeyDigest = value
	return func() { verifyingKeyDigest = previous }
}
