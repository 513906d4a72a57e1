package apperr

import (
	"errors"
	"fmt"
)

// Kind 错误分类，controller按分类映射HTTP状态码
type Kind int

const (
	KindConfiguration Kind = iota + 1
	KindUpstream
	KindValidation
	KindAuthorization
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindUpstream:
		return "upstream"
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	}
	return "unknown"
}

type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

func Configuration(format string, args ...any) error {
	return New(KindConfiguration, format, args...)
}

func Upstream(format string, args ...any) error {
	return New(KindUpstream, format, args...)
}

func Validation(format string, args ...any) error {
	return New(KindValidation, format, args...)
}

func Authorization(format string, args ...any) error {
	return New(KindAuthorization, format, args...)
}

func NotFound(format string, args ...any) error {
	return New(KindNotFound, format, args...)
}

// KindOf 返回错误的分类，未分类的错误返回0
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
