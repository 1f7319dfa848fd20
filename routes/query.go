package routes

import (
	"errors"
	"net/http"

	"policy-chatbot/internal/logger"
	"policy-chatbot/models"
	"policy-chatbot/services"
	"policy-chatbot/utils"

	"github.com/gin-gonic/gin"
)

// SetupQueryRoutes registers the readiness route and the single query
// route over the answer pipeline.
func SetupQueryRoutes(router *gin.Engine, pipeline *services.AnswerPipeline) {
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Return policy chatbot is running")
	})

	router.POST("/query", func(c *gin.Context) {
		var req models.QueryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "invalid request body")
			return
		}

		answer, err := pipeline.Answer(c.Request.Context(), req.SessionID, req.Question)
		if err != nil {
			if errors.Is(err, services.ErrMissingQuestion) {
				utils.RespondWithBadRequest(c, "question is required")
				return
			}
			logger.Error("query failed", "error", err.Error())
			utils.RespondWithInternalError(c, "failed to generate answer")
			return
		}

		c.JSON(http.StatusOK, models.QueryResponse{Answer: answer})
	})
}
