package ledger

import apperrors "github.com/louisbranch/crowdfund/internal/platform/errors"

var (
	// ErrAlreadyProcessed indicates a transaction signature already in the journal.
	ErrAlreadyProcessed = apperrors.New(apperrors.CodeAlreadyProcessed, "transaction already processed")
	// ErrProgramNotFound indicates an instruction for an unregistered program.
	ErrProgramNotFound = apperrors.New(apperrors.CodeProgramNotFound, "program not found")
	// ErrMissingSignature indicates a signer account without a signature.
	ErrMissingSignature = apperrors.New(apperrors.CodeMissingSignature, "missing signature for signer account")
	// ErrInvalidSignature indicates a signature that does not verify.
	ErrInvalidSignature = apperrors.New(apperrors.CodeInvalidSignature, "invalid transaction signature")
	// ErrAccountLocked indicates the account locks could not be taken before the context ended.
	ErrAccountLocked = apperrors.New(apperrors.CodeAccountLocked, "account locks unavailable")
	// ErrEmptyTransaction indicates a transaction without instructions.
	ErrEmptyTransaction = apperrors.New(apperrors.CodeInvalidInstruction, "transaction has no instructions")
	// ErrAccountNotFound indicates a read of an account that does not exist.
	ErrAccountNotFound = apperrors.New(apperrors.CodeNotFound, "account not found")
	// ErrTransactionNotFound indicates a read of an unknown signature.
	ErrTransactionNotFound = apperrors.New(apperrors.CodeNotFound, "transaction not found")
)
