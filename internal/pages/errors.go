package pages

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrProjectRequired    = errors.New("pages: project is required")
	ErrSlugRequired       = errors.New("pages: slug is required")
	ErrSlugInvalid        = errors.New("pages: slug is invalid")
	ErrLocaleInvalid      = errors.New("pages: locale is invalid")
	ErrPageExists         = errors.New("pages: a page with this slug already exists for the locale")
	ErrPageIDRequired     = errors.New("pages: page id is required")
	ErrSectionIDRequired  = errors.New("pages: section id is required")
	ErrFieldIDRequired    = errors.New("pages: field id is required")
	ErrIdentifierRequired = errors.New("pages: section identifier is required")
	ErrPositionInvalid    = errors.New("pages: position must be zero or positive")
	ErrFieldKeyRequired   = errors.New("pages: field key is required")
	ErrDuplicateFieldKey  = errors.New("pages: field key already exists in section")
	ErrUnknownFieldKey    = errors.New("pages: field key does not exist in section")
	ErrNoFieldValues      = errors.New("pages: at least one field value is required")
	ErrReorderMismatch    = errors.New("pages: reorder ids must list every sibling exactly once")
	ErrCloneSameLocale    = errors.New("pages: clone target locale matches the source")
)

// UnknownFieldKeysError lists the keys of a batch update that the section does not have.
type UnknownFieldKeysError struct {
	Keys []string
}

func (e *UnknownFieldKeysError) Error() string {
	keys := slices.Clone(e.Keys)
	slices.Sort(keys)
	return fmt.Sprintf("%s: %s", ErrUnknownFieldKey.Error(), strings.Join(keys, ", "))
}

func (e *UnknownFieldKeysError) Unwrap() error {
	return ErrUnknownFieldKey
}

// IsNotFound reports whether err is a page, section, or field lookup miss.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}
