// Package api exposes the verifier router over REST.
package api

import (
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/boundless-xyz/risc0-solana/internal/client"
	"github.com/boundless-xyz/risc0-solana/internal/groth16"
	"github.com/boundless-xyz/risc0-solana/internal/router"
	"github.com/boundless-xyz/risc0-solana/internal/seal"
	reasoncodes "github.com/boundless-xyz/risc0-solana/pkg/reason_codes"
	"github.com/boundless-xyz/risc0-solana/pkg/rest"
	"github.com/boundless-xyz/risc0-solana/pkg/utilities"
	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	Router *router.Router
	// Encoder selects the verifier for seals encoded without an explicit
	// selector. Nil when the service has no current verifier.
	Encoder *client.Encoder
}

func NewHandler(r *router.Router, encoder *client.Encoder) *Handler {
	return &Handler{Router: r, Encoder: encoder}
}

// requireAuthority aborts with 401 unless the request was signed.
func requireAuthority(c *gin.Context) (solana.PublicKey, bool) {
	authority, ok := rest.Authority(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":  fmt.Sprintf("request must be signed, set %s, %s, %s and %s", rest.AuthorityHeader, rest.TimestampHeader, rest.NonceHeader, rest.SignatureHeader),
			"reason": reasoncodes.ErrMissingAuthority,
		})
	}
	return authority, ok
}

func parseKey(field, value string) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return key, fmt.Errorf("%s: %w", field, err)
	}
	return key, nil
}

func parseDigest(field, value string) ([32]byte, error) {
	var d [32]byte
	raw, err := utilities.DecodeHexFixed(value, 32)
	if err != nil {
		return d, fmt.Errorf("%s: %w", field, err)
	}
	copy(d[:], raw)
	return d, nil
}

func estopOptions(verifier string) ([]router.EstopOption, error) {
	if verifier == "" {
		return nil, nil
	}
	key, err := parseKey("verifier", verifier)
	if err != nil {
		return nil, err
	}
	return []router.EstopOption{router.ExpectVerifier(key)}, nil
}

func (h *Handler) Initialize(c *gin.Context) {
	caller, ok := requireAuthority(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.Router.Initialize(ctx, caller); err != nil {
		respondError(c, err)
		return
	}

	state, err := h.Router.State(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, routerResponse(h.Router.ProgramID().String(), state))
}

func (h *Handler) GetRouter(c *gin.Context) {
	state, err := h.Router.State(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, routerResponse(h.Router.ProgramID().String(), state))
}

func (h *Handler) TransferOwnership(c *gin.Context) {
	caller, ok := requireAuthority(c)
	if !ok {
		return
	}

	var req TransferOwnershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	newOwner, err := parseKey("new_owner", req.NewOwner)
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.Router.TransferOwnership(c.Request.Context(), caller, newOwner); err != nil {
		respondError(c, err)
		return
	}
	h.GetRouter(c)
}

func (h *Handler) AcceptOwnership(c *gin.Context) {
	caller, ok := requireAuthority(c)
	if !ok {
		return
	}
	if err := h.Router.AcceptOwnership(c.Request.Context(), caller); err != nil {
		respondError(c, err)
		return
	}
	h.GetRouter(c)
}

func (h *Handler) CancelTransfer(c *gin.Context) {
	caller, ok := requireAuthority(c)
	if !ok {
		return
	}
	if err := h.Router.CancelTransfer(c.Request.Context(), caller); err != nil {
		respondError(c, err)
		return
	}
	h.GetRouter(c)
}

func (h *Handler) AddVerifier(c *gin.Context) {
	caller, ok := requireAuthority(c)
	if !ok {
		return
	}

	var req AddVerifierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	selector, err := seal.ParseSelector(req.Selector)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	verifier, err := parseKey("verifier", req.Verifier)
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	entry, err := h.Router.AddVerifier(c.Request.Context(), caller, selector, verifier)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entryResponse(entry))
}

func (h *Handler) ListVerifiers(c *gin.Context) {
	entries, err := h.Router.Entries(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, utilities.Map(entries, entryResponse))
}

func (h *Handler) GetVerifier(c *gin.Context) {
	selector, err := seal.ParseSelector(c.Param("selector"))
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	entry, err := h.Router.Entry(c.Request.Context(), selector)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entryResponse(entry))
}

func (h *Handler) RemoveVerifier(c *gin.Context) {
	caller, ok := requireAuthority(c)
	if !ok {
		return
	}
	selector, err := seal.ParseSelector(c.Param("selector"))
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.Router.RemoveVerifier(c.Request.Context(), caller, selector); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	raw, err := utilities.DecodeHexFixed(req.Seal, seal.SealSize)
	if err != nil {
		respondBadRequest(c, fmt.Errorf("seal: %w", err))
		return
	}
	s, err := seal.UnmarshalBorsh(raw)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	imageID, err := parseDigest("image_id", req.ImageID)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	journalDigest, err := parseDigest("journal_digest", req.JournalDigest)
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.Router.Verify(c.Request.Context(), s, imageID, journalDigest); err != nil {
		respondVerifyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"verified": true, "selector": s.Selector.String()})
}

func (h *Handler) EstopByOwner(c *gin.Context) {
	caller, ok := requireAuthority(c)
	if !ok {
		return
	}

	var req OwnerEstopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	selector, err := seal.ParseSelector(req.Selector)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	opts, err := estopOptions(req.Verifier)
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	event, err := h.Router.EmergencyStopByOwner(c.Request.Context(), caller, selector, opts...)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, eventResponse(event))
}

func (h *Handler) EstopWithProof(c *gin.Context) {
	caller, ok := requireAuthority(c)
	if !ok {
		return
	}

	var req ProofEstopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	selector, err := seal.ParseSelector(req.Selector)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	raw, err := utilities.DecodeHexFixed(req.Proof, seal.RawProofSize)
	if err != nil {
		respondBadRequest(c, fmt.Errorf("proof: %w", err))
		return
	}
	proof, err := seal.UnmarshalProof(raw)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	opts, err := estopOptions(req.Verifier)
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	event, err := h.Router.EmergencyStopWithProof(c.Request.Context(), caller, selector, proof, opts...)
	if err != nil {
		respondVerifyError(c, err)
		return
	}
	c.JSON(http.StatusOK, eventResponse(event))
}

func (h *Handler) ListEvents(c *gin.Context) {
	events, err := h.Router.Events(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, utilities.Map(events, eventResponse))
}

func (h *Handler) EncodeSeal(c *gin.Context) {
	var req EncodeSealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	raw, err := utilities.DecodeHexFixed(req.Proof, seal.RawProofSize)
	if err != nil {
		respondBadRequest(c, fmt.Errorf("proof: %w", err))
		return
	}

	var s seal.Seal
	if req.Selector == "" {
		if h.Encoder == nil {
			respondError(c, groth16.ErrNoDefaultVerifyingKey)
			return
		}
		s, err = h.Encoder.EncodeSealBytes(raw)
	} else {
		var selector seal.Selector
		selector, err = seal.ParseSelector(req.Selector)
		if err == nil {
			s = client.EncodeSealWithSelector([seal.RawProofSize]byte(raw), selector)
		}
	}
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	encoded, err := s.MarshalBorsh()
	if err != nil {
		respondError(c, fmt.Errorf("encode seal: %w", err))
		return
	}
	c.JSON(http.StatusOK, EncodeSealResponse{
		Selector: s.Selector.String(),
		Seal:     hex.EncodeToString(encoded),
	})
}

// ListPrograms reports the verifier programs this service can dispatch to.
func (h *Handler) ListPrograms(c *gin.Context) {
	programs := h.Router.Programs()

	resp := make([]ProgramResponse, 0)
	for _, id := range programs.Programs() {
		module, ok := programs.Module(id)
		if !ok {
			continue
		}
		authority, err := programs.UpgradeAuthority(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		resp = append(resp, programResponse(id, module, authority, h.Encoder))
	}
	c.JSON(http.StatusOK, resp)
}
