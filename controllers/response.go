package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OmPrakash-X/Konnekt-sub001/apperr"
)

// respond renders the success envelope, with data attached when present.
func respond(c *gin.Context, status int, message string, data any) {
	body := gin.H{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

// fail renders any error through the taxonomy. Unknown errors become a
// generic 500; nothing internal leaks to the client.
func fail(c *gin.Context, err error) {
	e := apperr.From(err)
	if e.Status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"path", c.FullPath(),
			"request_id", c.GetString("requestID"),
			"err", err,
		)
	}
	c.JSON(e.Status, gin.H{"success": false, "message": e.Message})
}
