package api

import (
	"github.com/boundless-xyz/risc0-solana/internal/client"
	"github.com/boundless-xyz/risc0-solana/internal/router"
	"github.com/boundless-xyz/risc0-solana/internal/seal"
	"github.com/gagliardetto/solana-go"
)

type RouterResponse struct {
	Address      string  `json:"address"`
	ProgramID    string  `json:"program_id"`
	Owner        string  `json:"owner"`
	PendingOwner *string `json:"pending_owner"`
}

type ProgramResponse struct {
	ProgramID        string  `json:"program_id"`
	Selector         *string `json:"selector"`
	UpgradeAuthority *string `json:"upgrade_authority"`
	Default          bool    `json:"default"`
}

type EntryResponse struct {
	Address  string `json:"address"`
	Selector string `json:"selector"`
	Verifier string `json:"verifier"`
	Estopped bool   `json:"estopped"`
}

type TransferOwnershipRequest struct {
	NewOwner string `json:"new_owner" binding:"required"`
}

type AddVerifierRequest struct {
	Selector string `json:"selector" binding:"required"`
	Verifier string `json:"verifier" binding:"required"`
}

type VerifyRequest struct {
	// Seal is the hex encoded selector || proof.
	Seal          string `json:"seal" binding:"required"`
	ImageID       string `json:"image_id" binding:"required"`
	JournalDigest string `json:"journal_digest" binding:"required"`
}

type OwnerEstopRequest struct {
	Selector string `json:"selector" binding:"required"`
	Verifier string `json:"verifier,omitempty"`
}

type ProofEstopRequest struct {
	Selector string `json:"selector" binding:"required"`
	// Proof is the hex encoded 256 byte proof, pi_a already negated.
	Proof    string `json:"proof" binding:"required"`
	Verifier string `json:"verifier,omitempty"`
}

type EncodeSealRequest struct {
	// Proof is the hex encoded 256 byte raw proof as produced by the prover.
	Proof    string `json:"proof" binding:"required"`
	Selector string `json:"selector,omitempty"`
}

type EncodeSealResponse struct {
	Selector string `json:"selector"`
	Seal     string `json:"seal"`
}

type EstopEventResponse struct {
	Router      string `json:"router"`
	Selector    string `json:"selector"`
	Verifier    string `json:"verifier"`
	TriggeredBy string `json:"triggered_by"`
	Reason      string `json:"reason"`
}

func routerResponse(programID string, state router.VerifierRouter) RouterResponse {
	resp := RouterResponse{
		Address:   state.Address.String(),
		ProgramID: programID,
		Owner:     state.Ownership.Owner.String(),
	}
	if state.Ownership.PendingOwner != nil {
		pending := state.Ownership.PendingOwner.String()
		resp.PendingOwner = &pending
	}
	return resp
}

func entryResponse(e router.VerifierEntry) EntryResponse {
	return EntryResponse{
		Address:  e.Address.String(),
		Selector: e.Selector.String(),
		Verifier: e.Verifier.String(),
		Estopped: e.Estopped,
	}
}

func eventResponse(e router.EmergencyStopEvent) EstopEventResponse {
	return EstopEventResponse{
		Router:      e.Router.String(),
		Selector:    e.Selector.String(),
		Verifier:    e.Verifier.String(),
		TriggeredBy: e.TriggeredBy.String(),
		Reason:      e.Reason,
	}
}

func programResponse(id solana.PublicKey, module router.VerifierModule, authority *solana.PublicKey, encoder *client.Encoder) ProgramResponse {
	resp := ProgramResponse{ProgramID: id.String()}
	if selected, ok := module.(interface{ Selector() seal.Selector }); ok {
		selector := selected.Selector()
		str := selector.String()
		resp.Selector = &str
		resp.Default = encoder != nil && encoder.Selector() == selector
	}
	if authority != nil {
		str := authority.String()
		resp.UpgradeAuthority = &str
	}
	return resp
}
