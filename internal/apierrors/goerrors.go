package apierrors

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// ToGoError wraps err into a categorised go-errors value carrying the stable
// text code, for hosts that render errors through go-errors.
func ToGoError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return goerrors.Wrap(err, goerrors.CategoryCommand, "parse cancelled").
				WithTextCode("canceled")
		default:
			return goerrors.Wrap(err, goerrors.CategoryInternal, "parse failed").
				WithTextCode(CodeInternal)
		}
	}

	return goerrors.Wrap(err, categoryFor(apiErr.Kind), apiErr.Error()).
		WithTextCode(apiErr.Code)
}

func categoryFor(kind error) goerrors.Category {
	switch kind {
	case ErrInvalidParameterCombination, ErrInvalidSection, ErrInvalidTitle, ErrBadValue, ErrUnknownSkin:
		return goerrors.CategoryBadInput
	case ErrRevisionNotFound, ErrPageNotFound, ErrMissingContent, ErrSectionNotFound:
		return goerrors.CategoryNotFound
	case ErrPermissionDenied:
		return goerrors.CategoryAuthz
	case ErrContentSerialization, ErrSectionNotSupported, ErrUnsupportedContentModel:
		return goerrors.CategoryValidation
	case ErrConcurrencyLimitExceeded:
		return goerrors.CategoryRateLimit
	default:
		return goerrors.CategoryInternal
	}
}
