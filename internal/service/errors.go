package service

import (
	"errors"

	"gorm.io/gorm"
)

// Error kinds. Handlers map them to status codes with errors.Is.
var (
	ErrValidation           = errors.New("validation failed")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrStorageNotConfigured = errors.New("storage not configured")
)

// Error carries a Korean message for the client alongside its kind.
type Error struct {
	Kind    error
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Kind.Error() + ": " + e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	errUserNotFound    = newError(ErrNotFound, "user_not_found", "사용자를 찾을 수 없습니다.")
	errGroupNotFound   = newError(ErrNotFound, "group_not_found", "그룹을 찾을 수 없습니다.")
	errNotGroupMember  = newError(ErrForbidden, "not_group_member", "그룹 멤버만 접근할 수 있습니다.")
	errNotGroupOwner   = newError(ErrForbidden, "not_group_owner", "그룹장만 할 수 있는 작업입니다.")
	errSelfOnly        = newError(ErrForbidden, "forbidden", "본인 계정에 대해서만 요청할 수 있습니다.")
	errBadCredentials  = newError(ErrInvalidCredentials, "invalid_credentials", "사용자 이름 또는 비밀번호가 올바르지 않습니다.")
	errStaleSession    = newError(ErrUnauthorized, "session_expired", "세션이 만료되었습니다. 다시 로그인해주세요.")
	errStorageDisabled = newError(ErrStorageNotConfigured, "storage_not_configured", "녹음 저장소가 설정되지 않았습니다.")
)

// notFound translates a missing row into the given error and passes anything
// else through.
func notFound(err error, missing *Error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return missing
	}
	return err
}
