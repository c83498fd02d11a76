package cakecartserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	cartapp "github.com/sugarloaf/cakecart/internal/domains/cart/application"
	cartports "github.com/sugarloaf/cakecart/internal/domains/cart/ports"
	apierrors "github.com/sugarloaf/cakecart/internal/shared/errors"
)

var cartResponder = apierrors.NewResponder("",
	func(err error) (apierrors.ProblemDetail, bool) {
		if errors.Is(err, cartports.ErrNotFound) {
			return apierrors.ErrNotFound.WithDetail(err.Error()), true
		}
		return apierrors.ProblemDetail{}, false
	},
	func(err error) (apierrors.ProblemDetail, bool) {
		if errors.Is(err, cartports.ErrNoPendingSwitch) {
			return apierrors.ErrBakeryConflict.WithDetail(err.Error()), true
		}
		return apierrors.ProblemDetail{}, false
	},
	func(err error) (apierrors.ProblemDetail, bool) {
		if errors.Is(err, cartapp.ErrInvalidInput) {
			return apierrors.ErrValidation.WithDetail(err.Error()), true
		}
		return apierrors.ProblemDetail{}, false
	},
	func(err error) (apierrors.ProblemDetail, bool) {
		if errors.Is(err, cartapp.ErrSyncFailed) || errors.Is(err, cartports.ErrRemoteUnavailable) {
			return apierrors.ErrSyncFailed.WithDetail(err.Error()), true
		}
		return apierrors.ProblemDetail{}, false
	},
	func(err error) (apierrors.ProblemDetail, bool) {
		if errors.Is(err, cartports.ErrNotAuthenticated) {
			return apierrors.ErrUnauthorized.WithDetail(err.Error()), true
		}
		return apierrors.ProblemDetail{}, false
	},
)

// respondError preserves plain call sites while returning RFC 7807 responses.
func respondError(c *gin.Context, status int, err error) {
	if err == nil {
		return
	}
	var problem apierrors.ProblemDetail
	switch status {
	case http.StatusBadRequest:
		problem = apierrors.ErrBadRequest.WithDetail(err.Error())
	case http.StatusNotFound:
		problem = apierrors.ErrNotFound.WithDetail(err.Error())
	case http.StatusUnauthorized:
		problem = apierrors.ErrUnauthorized.WithDetail(err.Error())
	default:
		problem = apierrors.ErrInternal.WithDetail(err.Error())
	}
	cartResponder.Respond(c, problem)
}

// respondCartServiceError maps cart service errors through the responder.
func respondCartServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	cartResponder.RespondError(c, err)
}
