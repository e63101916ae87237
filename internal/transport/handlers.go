package transport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shortly/internal/entity"
	"shortly/internal/service"
)

type Handler interface {
	RegisterRoutes(router *gin.RouterGroup)
}

type LinkHandler struct {
	linkService service.LinkService
}

func NewLinkHandler(linkService service.LinkService) *LinkHandler {
	return &LinkHandler{
		linkService: linkService,
	}
}

// respondError maps the service error taxonomy onto HTTP statuses. Every
// error body carries a machine-readable category next to the message.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, entity.ErrInvalidURL),
		errors.Is(err, entity.ErrInvalidCode),
		errors.Is(err, entity.ErrFieldTooLong):
		status = http.StatusBadRequest
	case errors.Is(err, entity.ErrCodeTaken):
		status = http.StatusConflict
	case errors.Is(err, entity.ErrLinkNotFound):
		status = http.StatusNotFound
	case errors.Is(err, entity.ErrLinkGone), errors.Is(err, entity.ErrLinkExpired):
		status = http.StatusGone
	case errors.Is(err, entity.ErrStorage):
		status = http.StatusServiceUnavailable
	case errors.Is(err, entity.ErrGenerationExhausted):
		status = http.StatusInternalServerError
	}

	c.JSON(status, gin.H{
		"error":    err.Error(),
		"category": entity.ErrorCategory(err),
	})
}

func (h *LinkHandler) Shorten(c *gin.Context) {
	var req entity.ShortenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "category": "validation_error"})
		return
	}

	response, err := h.linkService.Shorten(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

func (h *LinkHandler) ShortenBatch(c *gin.Context) {
	var req entity.BatchShortenRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.URLs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "category": "validation_error"})
		return
	}

	results := h.linkService.ShortenBatch(c.Request.Context(), req.URLs)
	c.JSON(http.StatusCreated, gin.H{"results": results})
}

func (h *LinkHandler) Redirect(c *gin.Context) {
	code := c.Param("code")

	meta := entity.ClickMeta{
		SourceIP:  c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
		Referrer:  c.GetHeader("Referer"),
	}

	originalURL, err := h.linkService.Redirect(c.Request.Context(), code, meta)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Redirect(http.StatusMovedPermanently, originalURL)
}

func (h *LinkHandler) GetLink(c *gin.Context) {
	link, err := h.linkService.GetLink(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

func (h *LinkHandler) UpdateLink(c *gin.Context) {
	var patch entity.LinkPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "category": "validation_error"})
		return
	}

	link, err := h.linkService.UpdateLink(c.Request.Context(), c.Param("id"), &patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

func (h *LinkHandler) DeleteLink(c *gin.Context) {
	if err := h.linkService.DeleteLink(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LinkHandler) Popular(c *gin.Context) {
	codes, err := h.linkService.PopularCodes(c.Request.Context(), 10)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"popular": codes})
}
