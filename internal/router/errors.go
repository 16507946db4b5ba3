package router

import "errors"

var (
	ErrVerifierInvalidAuthority       = errors.New("router is not the upgrade authority of the verifier program")
	ErrSelectorDeactivated            = errors.New("selector has been deactivated")
	ErrInvalidVerifier                = errors.New("invalid verifier program")
	ErrInvalidInitializationAuthority = errors.New("authority used for initialization does not match the expected initial owner")
	ErrDuplicateActiveSelector        = errors.New("an active verifier is already registered under this selector")
	ErrSelectorActive                 = errors.New("verifier must be estopped before it can be removed")
	ErrEntryNotFound                  = errors.New("no verifier registered under this selector")
	ErrAlreadyInitialized             = errors.New("router already initialized")
	ErrNotInitialized                 = errors.New("router not initialized")

	// ErrNotFound is returned by stores for missing records.
	ErrNotFound = errors.New("record not found")
)
