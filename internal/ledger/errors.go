package ledger

import (
	"errors"
)

var (
	ErrZeroAmount        = errors.New("amount must be positive")
	ErrDeadlinePassed    = errors.New("campaign deadline has passed")
	ErrNotOwner          = errors.New("caller is not the campaign owner")
	ErrFundingStillOpen  = errors.New("campaign is still funding")
	ErrTargetNotReached  = errors.New("campaign target not reached")
	ErrAlreadyClaimed    = errors.New("campaign funds already claimed")
	ErrCampaignSucceeded = errors.New("campaign succeeded, refunds unavailable")
	ErrNoContribution    = errors.New("no contribution found")
	ErrTransferFailed    = errors.New("value transfer failed")

	ErrCampaignNotFound = errors.New("campaign not found")
	ErrInvalidTarget    = errors.New("target must be positive")
	ErrInvalidDeadline  = errors.New("deadline must be in the future")
	ErrInvalidOwner     = errors.New("owner must not be the zero address")
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrZeroAmount, "ZERO_AMOUNT"},
	{ErrDeadlinePassed, "DEADLINE_PASSED"},
	{ErrNotOwner, "NOT_OWNER"},
	{ErrFundingStillOpen, "FUNDING_STILL_OPEN"},
	{ErrTargetNotReached, "TARGET_NOT_REACHED"},
	{ErrAlreadyClaimed, "ALREADY_CLAIMED"},
	{ErrCampaignSucceeded, "CAMPAIGN_SUCCEEDED"},
	{ErrNoContribution, "NO_CONTRIBUTION"},
	{ErrTransferFailed, "TRANSFER_FAILED"},
	{ErrCampaignNotFound, "CAMPAIGN_NOT_FOUND"},
	{ErrInvalidTarget, "INVALID_TARGET"},
	{ErrInvalidDeadline, "INVALID_DEADLINE"},
	{ErrInvalidOwner, "INVALID_OWNER"},
}

// ErrorCode 返回账本错误的稳定编码，非账本错误返回空串
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return ""
}
