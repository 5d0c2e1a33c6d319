package transport

import (
	"errors"
	"net/http"

	"pricewatch/internal/middleware"
	"pricewatch/internal/service"

	"go.uber.org/zap"
)

// respondServiceError maps service-level errors to HTTP responses. Unknown
// errors are logged and answered with a generic 500 so internals never leak.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var notFound *service.NotFoundError
	if errors.As(err, &notFound) {
		middleware.RespondWithError(w, http.StatusNotFound, notFound.Message)
		return
	}

	var conflict *service.ConflictError
	if errors.As(err, &conflict) {
		middleware.RespondWithError(w, http.StatusBadRequest, conflict.Message)
		return
	}

	var dependency *service.DependencyConflictError
	if errors.As(err, &dependency) {
		middleware.RespondWithError(w, http.StatusBadRequest, dependency.Message)
		return
	}

	var collaborator *service.CollaboratorError
	if errors.As(err, &collaborator) {
		logger.Error("Scraper call failed",
			zap.String("op", collaborator.Op),
			zap.Error(collaborator.Err),
		)
		middleware.RespondWithError(w, http.StatusBadGateway, collaborator.Error())
		return
	}

	logger.Error("Request failed", zap.Error(err))
	middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
}
