package adminapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"netpress/internal/domain"
)

func (s *Server) listTools(c *gin.Context) {
	snapshot := s.deps.Registry.Snapshot()
	c.Header("ETag", snapshot.ETag)
	c.JSON(http.StatusOK, gin.H{
		"etag":  snapshot.ETag,
		"total": len(snapshot.Tools),
		"tools": snapshot.Tools,
	})
}

// invokeTool runs a tool with the request body as its parameter map. The
// response is always the structured tool result with HTTP 200; tool-level
// failures are data, not transport errors.
func (s *Server) invokeTool(c *gin.Context) {
	name := c.Param("name")
	params := domain.Params{}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&params); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	result := s.deps.Invoker.Invoke(c.Request.Context(), name, params)
	c.JSON(http.StatusOK, result)
}

func (s *Server) getContext(c *gin.Context) {
	doc, _, err := s.deps.Cache.Get(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("ETag", doc.Fingerprint())
	c.JSON(http.StatusOK, doc)
}

func (s *Server) invalidateContext(c *gin.Context) {
	s.deps.Metrics.IncContextInvalidation(domain.TriggerManual)
	if err := s.deps.Cache.Invalidate("manual request"); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) ask(c *gin.Context) {
	if s.deps.Assistant == nil {
		c.JSON(http.StatusServiceUnavailable, errorBody{Error: "assistant is not configured", Code: string(domain.CodeUnavailable)})
		return
	}
	var payload struct {
		Prompt string `json:"prompt"`
		DryRun bool   `json:"dry_run"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, err.Error())
		return
	}

	answer, err := s.deps.Assistant.Ask(c.Request.Context(), payload.Prompt, payload.DryRun)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}
