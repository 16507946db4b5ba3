package reasoncodes

type ReasonCode string

const (
	ErrUnmarshal                      ReasonCode = "UnmarshalError"
	ErrMissingAuthority               ReasonCode = "MissingAuthority"
	ErrNotOwner                       ReasonCode = "NotOwner"
	ErrNotPendingOwner                ReasonCode = "NotPendingOwner"
	ErrNoPendingTransfer              ReasonCode = "NoPendingTransfer"
	ErrVerifierInvalidAuthority       ReasonCode = "VerifierInvalidAuthority"
	ErrSelectorDeactivated            ReasonCode = "SelectorDeactivated"
	ErrSelectorActive                 ReasonCode = "SelectorActive"
	ErrEntryNotFound                  ReasonCode = "EntryNotFound"
	ErrDuplicateActiveSelector        ReasonCode = "DuplicateActiveSelector"
	ErrInvalidVerifier                ReasonCode = "InvalidVerifier"
	ErrInvalidInitializationAuthority ReasonCode = "InvalidInitializationAuthority"
	ErrAlreadyInitialized             ReasonCode = "AlreadyInitialized"
	ErrNotInitialized                 ReasonCode = "NotInitialized"
	ErrVerification                   ReasonCode = "VerificationError"
	ErrMalformedProof                 ReasonCode = "MalformedProof"
	ErrNoDefaultVerifier              ReasonCode = "NoDefaultVerifier"
	ErrInternal                       ReasonCode = "InternalError"
)
