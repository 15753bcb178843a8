package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskhub/internal/repository"
	"taskhub/internal/service/task"
	"taskhub/internal/skill"
	"taskhub/pkg/logger"
)

// respondError maps domain errors onto HTTP responses. Unknown errors become 500 and
// their text is not exposed.
func respondError(c *gin.Context, log *zap.Logger, op string, err error) {
	log = logger.WithTrace(c.Request.Context(), log)

	var validation *skill.ValidationError
	var notFound *skill.NotFoundError
	switch {
	case errors.As(err, &validation):
		log.Warn(op+": skill input rejected", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "fields": validation.Fields})
	case errors.As(err, &notFound):
		log.Warn(op+": skill lookup failed", zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "available": notFound.Available})
	case errors.Is(err, task.ErrInvalidTask):
		log.Warn(op+": invalid task", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrTaskNotFound):
		log.Info(op+": task not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case errors.Is(err, task.ErrTaskBusy):
		log.Info(op+": task busy")
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, task.ErrQueueUnavailable):
		log.Warn(op+": queue unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		log.Error(op+": failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
