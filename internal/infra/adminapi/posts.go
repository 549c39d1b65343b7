package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"netpress/internal/domain"
)

type postPayload struct {
	Title       string  `json:"title"`
	Content     *string `json:"content"`
	Excerpt     *string `json:"excerpt"`
	Type        string  `json:"type"`
	Status      string  `json:"status"`
	URL         string  `json:"url"`
	Author      string  `json:"author"`
	FeaturedURL *string `json:"featured_url"`
	PublishedAt string  `json:"published_at"`
}

func (s *Server) listPosts(c *gin.Context) {
	siteID, ok := pathID(c, "id")
	if !ok {
		return
	}
	posts, err := s.deps.Store.Posts(c.Request.Context(), siteID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(posts), "posts": posts})
}

func (s *Server) createPost(c *gin.Context) {
	siteID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var payload postPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, err.Error())
		return
	}
	if strings.TrimSpace(payload.Title) == "" || strings.TrimSpace(payload.URL) == "" {
		badRequest(c, "title and url are required")
		return
	}

	post := domain.Post{
		SiteID: siteID,
		Title:  payload.Title,
		Type:   payload.Type,
		Status: domain.PostStatus(payload.Status),
		URL:    payload.URL,
		Author: payload.Author,
	}
	if payload.Content != nil {
		post.Content = *payload.Content
	}
	if payload.Excerpt != nil {
		post.Excerpt = *payload.Excerpt
	}
	if payload.FeaturedURL != nil {
		post.FeaturedURL = *payload.FeaturedURL
	}
	if payload.PublishedAt != "" {
		published, err := time.Parse(time.RFC3339, payload.PublishedAt)
		if err != nil {
			badRequest(c, "published_at must be RFC 3339")
			return
		}
		post.PublishedAt = published
	}

	created, err := s.deps.Store.CreatePost(c.Request.Context(), post)
	if err != nil {
		writeError(c, err)
		return
	}
	s.emit(domain.ContentEvent{Kind: domain.EventPostCreated, SiteID: siteID, ObjectID: created.ID})
	c.JSON(http.StatusCreated, created)
}

func (s *Server) updatePost(c *gin.Context) {
	siteID, ok := pathID(c, "id")
	if !ok {
		return
	}
	postID, ok := pathID(c, "postID")
	if !ok {
		return
	}
	var payload postPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, err.Error())
		return
	}

	post, err := s.deps.Store.PostByID(c.Request.Context(), siteID, postID)
	if err != nil {
		writeError(c, err)
		return
	}
	prevStatus := post.Status

	if strings.TrimSpace(payload.Title) != "" {
		post.Title = payload.Title
	}
	if payload.Content != nil {
		post.Content = *payload.Content
	}
	if payload.Excerpt != nil {
		post.Excerpt = *payload.Excerpt
	}
	if payload.FeaturedURL != nil {
		post.FeaturedURL = *payload.FeaturedURL
	}
	if strings.TrimSpace(payload.Type) != "" {
		post.Type = payload.Type
	}
	if strings.TrimSpace(payload.URL) != "" {
		post.URL = payload.URL
	}
	if strings.TrimSpace(payload.Author) != "" {
		post.Author = payload.Author
	}
	if strings.TrimSpace(payload.Status) != "" {
		post.Status = domain.PostStatus(payload.Status)
	}
	if payload.PublishedAt != "" {
		published, err := time.Parse(time.RFC3339, payload.PublishedAt)
		if err != nil {
			badRequest(c, "published_at must be RFC 3339")
			return
		}
		post.PublishedAt = published
	}

	updated, err := s.deps.Store.UpdatePost(c.Request.Context(), post)
	if err != nil {
		writeError(c, err)
		return
	}

	// A status transition (publish→trash and back included) is its own hook.
	event := domain.ContentEvent{Kind: domain.EventPostUpdated, SiteID: siteID, ObjectID: postID}
	if updated.Status != prevStatus {
		event.Kind = domain.EventPostStatusChanged
		event.Detail = string(updated.Status)
	}
	s.emit(event)
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deletePost(c *gin.Context) {
	siteID, ok := pathID(c, "id")
	if !ok {
		return
	}
	postID, ok := pathID(c, "postID")
	if !ok {
		return
	}
	if err := s.deps.Store.DeletePost(c.Request.Context(), siteID, postID); err != nil {
		writeError(c, err)
		return
	}
	s.emit(domain.ContentEvent{Kind: domain.EventPostDeleted, SiteID: siteID, ObjectID: postID})
	c.Status(http.StatusNoContent)
}

func (s *Server) setPostTerms(c *gin.Context) {
	siteID, ok := pathID(c, "id")
	if !ok {
		return
	}
	postID, ok := pathID(c, "postID")
	if !ok {
		return
	}
	var payload struct {
		TermIDs []int64 `json:"term_ids"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := s.deps.Store.SetPostTerms(c.Request.Context(), siteID, postID, payload.TermIDs); err != nil {
		writeError(c, err)
		return
	}
	s.emit(domain.ContentEvent{Kind: domain.EventPostTermsSet, SiteID: siteID, ObjectID: postID})
	c.JSON(http.StatusOK, gin.H{"post_id": postID, "term_ids": payload.TermIDs})
}

func (s *Server) setPostMeta(c *gin.Context) {
	siteID, ok := pathID(c, "id")
	if !ok {
		return
	}
	postID, ok := pathID(c, "postID")
	if !ok {
		return
	}
	var payload struct {
		Meta map[string][]string `json:"meta"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := s.deps.Store.SetPostMeta(c.Request.Context(), siteID, postID, payload.Meta); err != nil {
		writeError(c, err)
		return
	}
	s.emit(domain.ContentEvent{Kind: domain.EventPostMetaSet, SiteID: siteID, ObjectID: postID})
	c.JSON(http.StatusOK, gin.H{"post_id": postID, "keys": len(payload.Meta)})
}
