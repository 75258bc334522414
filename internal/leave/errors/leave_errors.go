package leaveerrors

import (
	"net/http"

	"leavetracker/internal/shared/apperror"
)

var (
	ErrInvalidApplicantID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid applicant id",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidApplicationID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid application id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"unknown leave type",
		http.StatusBadRequest,
	)
	ErrInvalidDays = apperror.New(
		apperror.CodeInvalidInput,
		"days must be a positive half-day multiple within the requested period",
		http.StatusBadRequest,
	)
	ErrInvalidDecision = apperror.New(
		apperror.CodeInvalidInput,
		"decision must be approve or reject",
		http.StatusBadRequest,
	)
	ErrInsufficientNotice = apperror.New(
		apperror.CodeInvalidInput,
		"start_date is inside the minimum advance-notice window",
		http.StatusBadRequest,
	)
	ErrExceedsMaxConsecutive = apperror.New(
		apperror.CodeInvalidInput,
		"requested period exceeds the maximum consecutive days for this leave type",
		http.StatusBadRequest,
	)
	ErrOverlappingApplication = apperror.New(
		apperror.CodeConflict,
		"an application already exists in an overlapping period",
		http.StatusConflict,
	)
	ErrChainUnresolved = apperror.New(
		apperror.CodeConfigDefect,
		"approval chain could not be resolved: a required approver is unassigned",
		http.StatusUnprocessableEntity,
	)
	ErrApplicationNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave application not found",
		http.StatusNotFound,
	)
	ErrAlreadyFinalized = apperror.New(
		apperror.CodeInvalidState,
		"this application was already processed",
		http.StatusConflict,
	)
	ErrStepAlreadyResolved = apperror.New(
		apperror.CodeInvalidState,
		"this approval step was already resolved by someone else",
		http.StatusConflict,
	)
	ErrNotAuthorized = apperror.New(
		apperror.CodeForbidden,
		"you have no actionable approval step on this application",
		http.StatusForbidden,
	)
	ErrNotRevocable = apperror.New(
		apperror.CodeInvalidState,
		"only approved applications can be revoked",
		http.StatusConflict,
	)
	ErrCommentsRequired = apperror.New(
		apperror.CodeInvalidInput,
		"comments are required when rejecting",
		http.StatusBadRequest,
	)
)
