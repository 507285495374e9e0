package api

import (
	"context"
	"errors"
	"net/http"

	"workua-resume-bot/internal/logger"
	"workua-resume-bot/internal/models"
	"workua-resume-bot/internal/pipeline"
	"workua-resume-bot/internal/scraper"

	"github.com/gin-gonic/gin"
)

// Searcher runs resume searches.
type Searcher interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
	Categories(ctx context.Context) ([]models.Category, error)
}

type Handler struct {
	searcher Searcher
}

func NewHandler(searcher Searcher) *Handler {
	return &Handler{searcher: searcher}
}

// SearchRequest is the body of POST /api/search.
type SearchRequest struct {
	Category   int               `json:"category"`
	Profession string            `json:"profession"`
	Location   string            `json:"location"`
	Filters    models.FilterSpec `json:"filters"`
}

type SearchResponse struct {
	ID      string                `json:"id"`
	Count   int                   `json:"count"`
	Resumes []models.ResumeRecord `json:"resumes"`
	New     []string              `json:"new"`
	File    string                `json:"file,omitempty"`
}

// Router wires the routes onto a new gin engine.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/", h.Health)
	api := r.Group("/api")
	api.GET("/categories", h.Categories)
	api.POST("/search", h.Search)
	return r
}

// GET /
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "work.ua resume bot API is running!",
		"status":  "healthy",
	})
}

// GET /api/categories
func (h *Handler) Categories(c *gin.Context) {
	categories, err := h.searcher.Categories(c.Request.Context())
	if err != nil {
		logger.Error().Err(err).Msg("❌ Failed to load categories")
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load categories"})
		return
	}
	c.JSON(http.StatusOK, categories)
}

// POST /api/search
func (h *Handler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	if req.Category < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category must be a positive number"})
		return
	}

	result, err := h.searcher.Run(c.Request.Context(), pipeline.Request{
		Category:   req.Category,
		Profession: req.Profession,
		Location:   req.Location,
		Filters:    req.Filters,
	})
	if err != nil {
		if errors.Is(err, scraper.ErrOutOfRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error().Err(err).Msg("❌ Search failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "search failed"})
		return
	}

	resp := SearchResponse{
		ID:      result.Search.ID,
		Count:   len(result.Records),
		Resumes: result.Records,
		New:     []string{},
		File:    result.File,
	}
	if resp.Resumes == nil {
		resp.Resumes = []models.ResumeRecord{}
	}
	for _, rec := range result.Records {
		if result.New[rec.URL] {
			resp.New = append(resp.New, rec.URL)
		}
	}
	c.JSON(http.StatusOK, resp)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Msg("HTTP request")
	}
}
