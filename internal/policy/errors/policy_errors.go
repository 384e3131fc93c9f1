package policyerrors

import (
	"net/http"

	"go-leavedesk/internal/shared/apperror"
)

var (
	ErrInvalidPolicyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid policy id",
		http.StatusBadRequest,
	)
	ErrPolicyNotFound = apperror.New(
		apperror.CodeNotFound,
		"policy not found",
		http.StatusNotFound,
	)
	ErrPolicyNameExists = apperror.New(
		apperror.CodeConflict,
		"a policy with this name already exists",
		http.StatusConflict,
	)
)
