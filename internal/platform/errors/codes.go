// Package errors provides structured error handling for the program and host.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Program errors, returned by the crowdfund program as custom errors.
	CodeInvalidParameters     Code = "INVALID_PARAMETERS"
	CodeInvalidAmount         Code = "INVALID_AMOUNT"
	CodeOverflow              Code = "OVERFLOW"
	CodeDeadlinePassed        Code = "DEADLINE_PASSED"
	CodeCampaignClosed        Code = "CAMPAIGN_CLOSED"
	CodeCampaignNotSuccessful Code = "CAMPAIGN_NOT_SUCCESSFUL"
	CodeCampaignNotFailed     Code = "CAMPAIGN_NOT_FAILED"
	CodeCampaignStillOpen     Code = "CAMPAIGN_STILL_OPEN"
	CodeAlreadyClosed         Code = "ALREADY_CLOSED"
	CodeAlreadyRefunded       Code = "ALREADY_REFUNDED"
	CodeNotAuthorized         Code = "NOT_AUTHORIZED"
	CodeAddressMismatch       Code = "ADDRESS_MISMATCH"
	CodeInvalidAccount        Code = "INVALID_ACCOUNT"
	CodeInsufficientFunds     Code = "INSUFFICIENT_FUNDS"
	CodeInvalidInstruction    Code = "INVALID_INSTRUCTION"

	// Host errors, raised by the ledger runtime around program execution.
	CodeAccountInUse          Code = "ACCOUNT_IN_USE"
	CodeAccountLocked         Code = "ACCOUNT_LOCKED"
	CodeMissingSignature      Code = "MISSING_SIGNATURE"
	CodeInvalidSignature      Code = "INVALID_SIGNATURE"
	CodeProgramNotFound       Code = "PROGRAM_NOT_FOUND"
	CodeUnbalancedTransaction Code = "UNBALANCED_TRANSACTION"
	CodeExternalAccountChange Code = "EXTERNAL_ACCOUNT_CHANGE"
	CodeReadonlyAccountChange Code = "READONLY_ACCOUNT_CHANGE"
	CodeRentNotExempt         Code = "RENT_NOT_EXEMPT"
	CodeAlreadyProcessed      Code = "ALREADY_PROCESSED"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// programCodes lists the custom program errors in their stable wire order.
// The numeric form of each is customErrorBase plus its index.
var programCodes = []Code{
	CodeInvalidParameters,
	CodeInvalidAmount,
	CodeOverflow,
	CodeDeadlinePassed,
	CodeCampaignClosed,
	CodeCampaignNotSuccessful,
	CodeCampaignNotFailed,
	CodeCampaignStillOpen,
	CodeAlreadyClosed,
	CodeAlreadyRefunded,
	CodeNotAuthorized,
	CodeAddressMismatch,
	CodeInvalidAccount,
	CodeInsufficientFunds,
	CodeInvalidInstruction,
}

const customErrorBase = 6000

// CustomErrorNumber returns the numeric custom program error for a code.
// The second result is false for codes that are not program errors.
func (c Code) CustomErrorNumber() (uint32, bool) {
	for i, code := range programCodes {
		if code == c {
			return uint32(customErrorBase + i), true
		}
	}
	return 0, false
}

// CodeFromCustomErrorNumber reverses CustomErrorNumber.
func CodeFromCustomErrorNumber(n uint32) (Code, bool) {
	if n < customErrorBase {
		return "", false
	}
	idx := int(n - customErrorBase)
	if idx >= len(programCodes) {
		return "", false
	}
	return programCodes[idx], true
}

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - malformed input
	case CodeInvalidParameters,
		CodeInvalidAmount,
		CodeInvalidInstruction,
		CodeInvalidAccount,
		CodeAddressMismatch:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeDeadlinePassed,
		CodeCampaignClosed,
		CodeCampaignNotSuccessful,
		CodeCampaignNotFailed,
		CodeCampaignStillOpen,
		CodeInsufficientFunds,
		CodeRentNotExempt:
		return codes.FailedPrecondition

	// AlreadyExists - terminal transition already applied
	case CodeAlreadyClosed,
		CodeAlreadyRefunded,
		CodeAccountInUse,
		CodeAlreadyProcessed:
		return codes.AlreadyExists

	case CodeNotAuthorized,
		CodeMissingSignature,
		CodeInvalidSignature:
		return codes.PermissionDenied

	case CodeOverflow:
		return codes.OutOfRange

	case CodeAccountLocked:
		return codes.Aborted

	case CodeNotFound,
		CodeProgramNotFound:
		return codes.NotFound

	default:
		return codes.Internal
	}
}
