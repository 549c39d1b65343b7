package adminapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"netpress/internal/domain"
)

type sitePayload struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Public   *bool  `json:"public"`
	Archived *bool  `json:"archived"`
	Spam     *bool  `json:"spam"`
	Deleted  *bool  `json:"deleted"`
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

func (s *Server) listSites(c *gin.Context) {
	sites, err := s.deps.Store.Sites(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(sites), "sites": sites})
}

func (s *Server) createSite(c *gin.Context) {
	var payload sitePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, err.Error())
		return
	}
	if strings.TrimSpace(payload.Name) == "" || strings.TrimSpace(payload.URL) == "" {
		badRequest(c, "name and url are required")
		return
	}

	site := domain.Site{Name: payload.Name, URL: payload.URL, Public: true}
	applySiteFlags(&site, payload)

	created, err := s.deps.Store.CreateSite(c.Request.Context(), site)
	if err != nil {
		writeError(c, err)
		return
	}
	s.emit(domain.ContentEvent{Kind: domain.EventSiteCreated, SiteID: created.ID, ObjectID: created.ID})
	c.JSON(http.StatusCreated, created)
}

func (s *Server) updateSite(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var payload sitePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, err.Error())
		return
	}

	site, err := s.deps.Store.SiteByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if strings.TrimSpace(payload.Name) != "" {
		site.Name = payload.Name
	}
	if strings.TrimSpace(payload.URL) != "" {
		site.URL = payload.URL
	}
	applySiteFlags(&site, payload)

	updated, err := s.deps.Store.UpdateSite(c.Request.Context(), site)
	if err != nil {
		writeError(c, err)
		return
	}
	s.emit(domain.ContentEvent{Kind: domain.EventSiteUpdated, SiteID: id, ObjectID: id})
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteSite(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.deps.Store.DeleteSite(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	s.emit(domain.ContentEvent{Kind: domain.EventSiteDeleted, SiteID: id, ObjectID: id})
	c.Status(http.StatusNoContent)
}

func (s *Server) setSiteOption(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		badRequest(c, "option key is required")
		return
	}
	var payload struct {
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := s.deps.Store.SetSiteOption(c.Request.Context(), id, key, payload.Value); err != nil {
		writeError(c, err)
		return
	}
	s.emit(domain.ContentEvent{Kind: domain.EventSiteOptionSet, SiteID: id, Detail: key})
	c.JSON(http.StatusOK, gin.H{"site_id": id, "key": key, "value": payload.Value})
}

func applySiteFlags(site *domain.Site, payload sitePayload) {
	if payload.Public != nil {
		site.Public = *payload.Public
	}
	if payload.Archived != nil {
		site.Archived = *payload.Archived
	}
	if payload.Spam != nil {
		site.Spam = *payload.Spam
	}
	if payload.Deleted != nil {
		site.Deleted = *payload.Deleted
	}
}
