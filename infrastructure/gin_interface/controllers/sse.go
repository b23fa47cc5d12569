package controllers

import (
	"doc-narrator-api/domain"
	"github.com/gin-gonic/gin"
)

// streamEvents writes a progress stream as server-sent events. The stream is
// always drained to completion so the producing stage never blocks, even
// when the client disconnects mid-stream.
func streamEvents(c *gin.Context, events <-chan domain.ProgressEvent) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("Access-Control-Allow-Origin", "*")

	clientGone := c.Request.Context().Done()

	for event := range events {
		select {
		case <-clientGone:
			continue
		default:
		}
		c.SSEvent("progress", event)
		c.Writer.Flush()
	}
}
