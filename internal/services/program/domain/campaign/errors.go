package campaign

import apperrors "github.com/louisbranch/crowdfund/internal/platform/errors"

var (
	// ErrInvalidParameters indicates bad creation arguments.
	ErrInvalidParameters = apperrors.New(apperrors.CodeInvalidParameters, "invalid campaign parameters")
	// ErrInvalidAmount indicates a zero contribution.
	ErrInvalidAmount = apperrors.New(apperrors.CodeInvalidAmount, "amount must be greater than zero")
	// ErrDeadlinePassed indicates a contribution at or after the deadline.
	ErrDeadlinePassed = apperrors.New(apperrors.CodeDeadlinePassed, "campaign deadline has passed")
	// ErrCampaignClosed indicates a contribution to a campaign that is no longer open.
	ErrCampaignClosed = apperrors.New(apperrors.CodeCampaignClosed, "campaign is not accepting contributions")
	// ErrCampaignNotSuccessful indicates a withdrawal from a campaign that did not succeed.
	ErrCampaignNotSuccessful = apperrors.New(apperrors.CodeCampaignNotSuccessful, "campaign did not reach its goal")
	// ErrCampaignNotFailed indicates a refund from a campaign that has not failed.
	ErrCampaignNotFailed = apperrors.New(apperrors.CodeCampaignNotFailed, "campaign has not failed")
	// ErrCampaignStillOpen indicates resolution requested before the deadline.
	ErrCampaignStillOpen = apperrors.New(apperrors.CodeCampaignStillOpen, "campaign deadline has not been reached")
	// ErrAlreadyClosed indicates a second withdrawal.
	ErrAlreadyClosed = apperrors.New(apperrors.CodeAlreadyClosed, "campaign already closed")
	// ErrNotClosed indicates reclaiming a campaign that has not reached Closed.
	ErrNotClosed = apperrors.New(apperrors.CodeInvalidAccount, "campaign is not closed")
	// ErrInvalidRecord indicates bytes that do not decode as a campaign.
	ErrInvalidRecord = apperrors.New(apperrors.CodeInvalidAccount, "invalid campaign record")
	// ErrInvalidTransition indicates a non-monotone status change.
	ErrInvalidTransition = apperrors.New(apperrors.CodeInvalidAccount, "campaign status transition is not allowed")
)
