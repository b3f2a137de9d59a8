package wikiparse

import "github.com/goliatone/go-wikiparse/internal/apierrors"

// Error exports the typed parse error.
type Error = apierrors.Error

// Warning exports the advisory result warning.
type Warning = apierrors.Warning

var (
	ErrInvalidParameterCombination = apierrors.ErrInvalidParameterCombination
	ErrInvalidSection              = apierrors.ErrInvalidSection
	ErrInvalidTitle                = apierrors.ErrInvalidTitle
	ErrBadValue                    = apierrors.ErrBadValue
	ErrRevisionNotFound            = apierrors.ErrRevisionNotFound
	ErrPageNotFound                = apierrors.ErrPageNotFound
	ErrMissingContent              = apierrors.ErrMissingContent
	ErrPermissionDenied            = apierrors.ErrPermissionDenied
	ErrContentSerialization        = apierrors.ErrContentSerialization
	ErrSectionNotFound             = apierrors.ErrSectionNotFound
	ErrSectionNotSupported         = apierrors.ErrSectionNotSupported
	ErrUnsupportedContentModel     = apierrors.ErrUnsupportedContentModel
	ErrConcurrencyLimitExceeded    = apierrors.ErrConcurrencyLimitExceeded
	ErrUnknownSkin                 = apierrors.ErrUnknownSkin
	ErrParseFailed                 = apierrors.ErrParseFailed
)

// Code returns the stable error code of err, or "" when err is nil.
func Code(err error) string {
	return apierrors.Code(err)
}

// IsRetryable reports whether the caller may retry after a pause.
func IsRetryable(err error) bool {
	return apierrors.IsRetryable(err)
}

// ToGoError wraps err as a categorised go-errors value.
func ToGoError(err error) error {
	return apierrors.ToGoError(err)
}
