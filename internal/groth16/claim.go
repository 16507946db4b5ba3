package groth16

// ReceiptClaimDigest is the digest of a claim that imageID ran to a clean halt
// producing a journal with digest journalDigest, with no input and no assumptions.
func ReceiptClaimDigest(imageID, journalDigest Digest) Digest {
	output := taggedStruct("risc0.Output", []Digest{journalDigest, zeroDigest}, nil)
	post := taggedStruct("risc0.SystemState", []Digest{zeroDigest}, []uint32{0})

	return taggedStruct(
		"risc0.ReceiptClaim",
		[]Digest{zeroDigest, imageID, post, output},
		[]uint32{0, 0},
	)
}
