package api

import (
	"errors"
	"net/http"

	"github.com/boundless-xyz/risc0-solana/internal/groth16"
	"github.com/boundless-xyz/risc0-solana/internal/ownable"
	"github.com/boundless-xyz/risc0-solana/internal/router"
	reasoncodes "github.com/boundless-xyz/risc0-solana/pkg/reason_codes"
	"github.com/gin-gonic/gin"
)

type errorMapping struct {
	err    error
	status int
	reason reasoncodes.ReasonCode
}

var errorMappings = []errorMapping{
	{ownable.ErrNotOwner, http.StatusForbidden, reasoncodes.ErrNotOwner},
	{ownable.ErrNotPendingOwner, http.StatusForbidden, reasoncodes.ErrNotPendingOwner},
	{ownable.ErrNoPendingTransfer, http.StatusConflict, reasoncodes.ErrNoPendingTransfer},
	{router.ErrInvalidInitializationAuthority, http.StatusForbidden, reasoncodes.ErrInvalidInitializationAuthority},
	{router.ErrAlreadyInitialized, http.StatusConflict, reasoncodes.ErrAlreadyInitialized},
	{router.ErrNotInitialized, http.StatusConflict, reasoncodes.ErrNotInitialized},
	{router.ErrVerifierInvalidAuthority, http.StatusUnprocessableEntity, reasoncodes.ErrVerifierInvalidAuthority},
	{router.ErrInvalidVerifier, http.StatusUnprocessableEntity, reasoncodes.ErrInvalidVerifier},
	{router.ErrSelectorDeactivated, http.StatusGone, reasoncodes.ErrSelectorDeactivated},
	{router.ErrSelectorActive, http.StatusConflict, reasoncodes.ErrSelectorActive},
	{router.ErrDuplicateActiveSelector, http.StatusConflict, reasoncodes.ErrDuplicateActiveSelector},
	{router.ErrEntryNotFound, http.StatusNotFound, reasoncodes.ErrEntryNotFound},
	{groth16.ErrMalformedProof, http.StatusBadRequest, reasoncodes.ErrMalformedProof},
	{groth16.ErrVerification, http.StatusUnprocessableEntity, reasoncodes.ErrVerification},
	{groth16.ErrNoDefaultVerifyingKey, http.StatusConflict, reasoncodes.ErrNoDefaultVerifier},
}

func classify(err error) (int, reasoncodes.ReasonCode) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m.status, m.reason
		}
	}
	return http.StatusInternalServerError, reasoncodes.ErrInternal
}

func respondError(c *gin.Context, err error) {
	status, reason := classify(err)
	c.JSON(status, gin.H{"error": err.Error(), "reason": reason})
}

// respondVerifyError treats unknown errors as rejections, since Dispatch
// passes verifier module errors through untouched.
func respondVerifyError(c *gin.Context, err error) {
	status, reason := classify(err)
	if reason == reasoncodes.ErrInternal {
		status, reason = http.StatusUnprocessableEntity, reasoncodes.ErrVerification
	}
	c.JSON(status, gin.H{"error": err.Error(), "reason": reason})
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "reason": reasoncodes.ErrUnmarshal})
}
