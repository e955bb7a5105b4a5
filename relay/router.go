package relay

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/onchaincommerce/onchaincommerce/logger"
	"github.com/onchaincommerce/onchaincommerce/utils"
)

func buildRouter(log logger.Logger, sender Sender) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	router.GET("/healthz", healthHandler)
	router.POST("/api/send-sms", sendSMSHandler(log, sender))

	return router
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type sendSMSRequest struct {
	To   string `json:"to" binding:"required"`
	Body string `json:"body"`
	Link string `json:"link"`
}

// sendSMSHandler accepts either a prebuilt body or a bare link, which
// is wrapped in the standard payment-link template.
func sendSMSHandler(log logger.Logger, sender Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sendSMSRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "destination number is required"})
			return
		}
		if err := utils.ValidatePhoneNumber(req.To); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		body := req.Body
		if body == "" && req.Link != "" {
			body = fmt.Sprintf("Here's your payment link: %s", req.Link)
		}
		if body == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message body or link is required"})
			return
		}

		if err := sender.Send(c.Request.Context(), req.To, body); err != nil {
			log.Error("sms delivery failed", map[string]any{"error": err.Error()})
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send SMS"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "SMS sent successfully"})
	}
}
