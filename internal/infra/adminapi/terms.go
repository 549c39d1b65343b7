package adminapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"netpress/internal/domain"
)

func (s *Server) listTerms(c *gin.Context) {
	siteID, ok := pathID(c, "id")
	if !ok {
		return
	}
	taxonomy := strings.TrimSpace(c.Query("taxonomy"))
	terms, err := s.deps.Store.Terms(c.Request.Context(), siteID, taxonomy)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(terms), "terms": terms})
}

func (s *Server) createTerm(c *gin.Context) {
	siteID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var payload struct {
		Taxonomy string `json:"taxonomy"`
		Name     string `json:"name"`
		Slug     string `json:"slug"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, err.Error())
		return
	}
	if strings.TrimSpace(payload.Taxonomy) == "" || strings.TrimSpace(payload.Name) == "" {
		badRequest(c, "taxonomy and name are required")
		return
	}

	created, err := s.deps.Store.CreateTerm(c.Request.Context(), domain.Term{
		SiteID:   siteID,
		Taxonomy: payload.Taxonomy,
		Name:     payload.Name,
		Slug:     payload.Slug,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	s.emit(domain.ContentEvent{Kind: domain.EventTermCreated, SiteID: siteID, ObjectID: created.ID})
	c.JSON(http.StatusCreated, created)
}

func (s *Server) updateTerm(c *gin.Context) {
	siteID, ok := pathID(c, "id")
	if !ok {
		return
	}
	termID, ok := pathID(c, "termID")
	if !ok {
		return
	}
	var payload struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, err.Error())
		return
	}
	if strings.TrimSpace(payload.Name) == "" {
		badRequest(c, "name is required")
		return
	}

	updated, err := s.deps.Store.UpdateTerm(c.Request.Context(), domain.Term{
		ID:     termID,
		SiteID: siteID,
		Name:   payload.Name,
		Slug:   payload.Slug,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	s.emit(domain.ContentEvent{Kind: domain.EventTermUpdated, SiteID: siteID, ObjectID: termID})
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteTerm(c *gin.Context) {
	siteID, ok := pathID(c, "id")
	if !ok {
		return
	}
	termID, ok := pathID(c, "termID")
	if !ok {
		return
	}
	if err := s.deps.Store.DeleteTerm(c.Request.Context(), siteID, termID); err != nil {
		writeError(c, err)
		return
	}
	s.emit(domain.ContentEvent{Kind: domain.EventTermDeleted, SiteID: siteID, ObjectID: termID})
	c.Status(http.StatusNoContent)
}
