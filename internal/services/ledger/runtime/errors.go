package runtime

import apperrors "github.com/louisbranch/crowdfund/internal/platform/errors"

var (
	// ErrUnbalanced indicates lamports were created or destroyed.
	ErrUnbalanced = apperrors.New(apperrors.CodeUnbalancedTransaction, "sum of account balances changed")
	// ErrExternalAccountChange indicates a program changed an account it does not own.
	ErrExternalAccountChange = apperrors.New(apperrors.CodeExternalAccountChange, "program modified an account it does not own")
	// ErrReadonlyAccountChange indicates a change to an account not marked writable.
	ErrReadonlyAccountChange = apperrors.New(apperrors.CodeReadonlyAccountChange, "program modified a read-only account")
	// ErrAccountInUse indicates account creation over an existing account.
	ErrAccountInUse = apperrors.New(apperrors.CodeAccountInUse, "account already in use")
	// ErrMissingSigner indicates a system operation without the required signature.
	ErrMissingSigner = apperrors.New(apperrors.CodeMissingSignature, "system operation requires a signature")
	// ErrRentNotExempt indicates an account left below its rent-exempt minimum.
	ErrRentNotExempt = apperrors.New(apperrors.CodeRentNotExempt, "account is not rent exempt")
)
