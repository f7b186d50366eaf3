package util

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrUserNotFound       = errors.New("user not found")
	ErrExamNotFound       = errors.New("exam not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrAnswerNotFound     = errors.New("answer not found")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrNotParticipant     = errors.New("you are not a participant of this exam")
	ErrExamClosed         = errors.New("exam has finished")
	ErrExamNotStarted     = errors.New("exam has not started yet")
	ErrUserBlocked        = errors.New("you have been blocked from this exam")
	ErrAlreadyJoined      = errors.New("you are already a participant")
	ErrAlreadyBlocked     = errors.New("user is already blocked")
	ErrNotBlocked         = errors.New("user is not blocked in this exam")
	ErrCapacityExceeded   = errors.New("participant limit of the package reached")
	ErrQuestionLimit      = errors.New("question limit of the package reached")
	ErrQuotaExceeded      = errors.New("exam creation quota exhausted")
	ErrOwnerImmutable     = errors.New("the exam creator cannot be modified")
	ErrInvalidInput       = errors.New("invalid input")
	ErrPackageNotFound    = errors.New("package not found")
)

// StatusOf 把业务错误映射为 HTTP 状态码，未知错误按 500 处理
func StatusOf(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrAlreadyJoined),
		errors.Is(err, ErrAlreadyBlocked),
		errors.Is(err, ErrNotBlocked),
		errors.Is(err, ErrExamClosed),
		errors.Is(err, ErrExamNotStarted),
		errors.Is(err, ErrUserBlocked),
		errors.Is(err, ErrCapacityExceeded),
		errors.Is(err, ErrQuestionLimit),
		errors.Is(err, ErrQuotaExceeded),
		errors.Is(err, ErrEmailRegistered):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrPermissionDenied),
		errors.Is(err, ErrOwnerImmutable):
		return http.StatusForbidden
	case errors.Is(err, ErrExamNotFound),
		errors.Is(err, ErrQuestionNotFound),
		errors.Is(err, ErrAnswerNotFound),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrNotParticipant),
		errors.Is(err, ErrPackageNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
