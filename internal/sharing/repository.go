package sharing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/famledger/internal/common"
	"github.com/dmitrijs2005/famledger/internal/logging"
)

type Repository interface {
	// ResolveDataOwner returns the owner uid that shared its books with
	// email, or common.ErrorNotFound.
	ResolveDataOwner(ctx context.Context, email string) (string, error)

	GetSharedEmails(ctx context.Context, ownerUID string) ([]string, error)

	// AddSharedEmail grants email access to ownerUID's data. An email can be
	// shared by one owner at a time; the latest grant wins.
	AddSharedEmail(ctx context.Context, ownerUID, email string) error

	// RemoveSharedEmail revokes a grant; common.ErrorNotFound if ownerUID
	// never shared with email.
	RemoveSharedEmail(ctx context.Context, ownerUID, email string) error
}

// NormalizeEmail trims and lower-cases email and rejects obviously invalid
// values with common.ErrorInvalidInput.
func NormalizeEmail(email string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(email))
	at := strings.IndexByte(e, '@')
	if at <= 0 || at == len(e)-1 || strings.ContainsAny(e, " \t\r\n") {
		return "", fmt.Errorf("%w: bad e-mail %q", common.ErrorInvalidInput, email)
	}
	return e, nil
}

// EffectiveOwner picks whose books a principal works on: the owner that
// shared with email if there is one, otherwise the principal itself.
// Lookup failures fall back to the principal and are logged.
func EffectiveOwner(ctx context.Context, repo Repository, logger logging.Logger, principalUID, email string) (ownerUID string, delegated bool) {
	if email == "" || repo == nil {
		return principalUID, false
	}
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return principalUID, false
	}

	owner, err := repo.ResolveDataOwner(ctx, normalized)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return principalUID, false
	case err != nil:
		if logger != nil {
			logger.Warn(ctx, "data owner lookup failed, using own books", "principal", principalUID, "error", err)
		}
		return principalUID, false
	case owner == "" || owner == principalUID:
		return principalUID, false
	default:
		return owner, true
	}
}
