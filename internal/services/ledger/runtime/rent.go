package runtime

import (
	apperrors "github.com/louisbranch/crowdfund/internal/platform/errors"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/account"
)

// CheckRent rejects accounts a transaction pushed into a rent-paying state.
//
// An account is fine when it is empty, exempt, or was already rent paying
// and neither shrank its balance nor changed its size.
func CheckRent(rent account.Rent, initial, final account.Info) error {
	if final.Lamports == 0 || rent.IsExempt(final.Lamports, len(final.Data)) {
		return nil
	}
	wasPaying := initial.Lamports > 0 && !rent.IsExempt(initial.Lamports, len(initial.Data))
	if wasPaying && final.Lamports >= initial.Lamports && len(final.Data) == len(initial.Data) {
		return nil
	}
	return apperrors.WithMetadata(apperrors.CodeRentNotExempt, ErrRentNotExempt.Message, map[string]string{
		"account": final.Key.String(),
	})
}
