package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"golinks/internal/apperrors"
	"golinks/internal/dto"
	"golinks/internal/i18n"
	"golinks/internal/service"
	"golinks/internal/shortcode"
	"golinks/internal/store"
	"golinks/pkg/utils"
	"golinks/response"
)

// LinkHandler wires the HTTP surface to the link service. The HTML pages
// mirror the landing/stats/top pages; the /api group answers JSON with the
// standard envelope.
type LinkHandler struct {
	svc   *service.LinkService
	stats *service.StatsService // optional, nil disables daily roll-ups in stats
}

func NewLinkHandler(svc *service.LinkService, stats *service.StatsService) *LinkHandler {
	return &LinkHandler{
		svc:   svc,
		stats: stats,
	}
}

// RegisterRoutes attaches all routes. The bare GET /:code redirect is
// registered last so static segments (/top, /stats) win.
func (h *LinkHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.Home)
	r.POST("/shorten", h.ShortenForm)
	r.GET("/top", h.TopPage)
	r.GET("/stats/:code", h.StatsPage)

	api := r.Group("/api")
	{
		api.POST("/shorten", h.CreateLink)
		api.GET("/stats/:code", h.GetStats)
		api.GET("/top", h.GetTop)
	}

	r.GET("/:code", h.Redirect)
}

// Home renders the landing form.
func (h *LinkHandler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{})
}

// ShortenForm handles the landing form POST and renders the result page.
func (h *LinkHandler) ShortenForm(c *gin.Context) {
	var req dto.CreateLinkRequest
	if err := c.ShouldBind(&req); err != nil {
		c.HTML(http.StatusBadRequest, "index.html", gin.H{
			"Error": "Please enter a valid URL.",
		})
		return
	}

	link, err := h.svc.Allocate(c.Request.Context(), req.LongURL)
	if err != nil {
		if isRejection(err) {
			c.HTML(http.StatusBadRequest, "index.html", gin.H{
				"Error": "Please enter a valid URL.",
			})
			return
		}
		zap.L().Error("Link allocation failed", zap.Error(err))
		c.HTML(http.StatusInternalServerError, "index.html", gin.H{
			"Error": "Could not generate a unique short code. Try again.",
		})
		return
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"ShortURL": requestBaseURL(c) + "/" + link.Code,
		"LongURL":  link.LongURL,
		"Code":     link.Code,
	})
}

// Redirect resolves the code and sends the visitor to the destination.
func (h *LinkHandler) Redirect(c *gin.Context) {
	code := c.Param("code")
	if !shortcode.IsValid(code) {
		c.String(http.StatusNotFound, "URL not found")
		return
	}

	longURL, err := h.svc.Resolve(c.Request.Context(), code, c.ClientIP())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.String(http.StatusNotFound, "URL not found")
			return
		}
		zap.L().Error("Resolution failed",
			zap.String("code", code),
			zap.Error(err),
		)
		c.String(http.StatusInternalServerError, "System error")
		return
	}

	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Redirect(http.StatusFound, longURL)
}

// StatsPage renders the per-link stats page.
func (h *LinkHandler) StatsPage(c *gin.Context) {
	code := c.Param("code")

	link, err := h.svc.Stats(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.HTML(http.StatusNotFound, "stats.html", gin.H{
				"Error": "Short link not found.",
				"Code":  code,
			})
			return
		}
		zap.L().Error("Stats lookup failed", zap.String("code", code), zap.Error(err))
		c.String(http.StatusInternalServerError, "System error")
		return
	}

	c.HTML(http.StatusOK, "stats.html", gin.H{
		"Code":      link.Code,
		"LongURL":   link.LongURL,
		"Clicks":    link.Clicks,
		"CreatedAt": link.CreatedAt,
	})
}

// TopPage renders the leaderboard page.
func (h *LinkHandler) TopPage(c *gin.Context) {
	links, err := h.svc.Top(c.Request.Context(), store.DefaultTopN)
	if err != nil {
		zap.L().Error("Leaderboard query failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "System error")
		return
	}

	c.HTML(http.StatusOK, "top.html", gin.H{"Links": links})
}

// CreateLink is the JSON variant of ShortenForm.
func (h *LinkHandler) CreateLink(c *gin.Context) {
	var req dto.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zap.L().Warn("Request body binding failed",
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		_ = c.Error(apperrors.InvalidRequestErrorDefault())
		return
	}

	link, err := h.svc.Allocate(c.Request.Context(), req.LongURL)
	if err != nil {
		if isRejection(err) {
			_ = c.Error(apperrors.InvalidRequestError(i18n.T(c.Request.Context(), err.Error(), nil)))
			return
		}
		zap.L().Error("Link allocation failed", zap.Error(err))
		_ = c.Error(apperrors.SystemError(i18n.T(c.Request.Context(), "error.allocation_exhausted", nil)))
		return
	}

	c.JSON(http.StatusCreated, response.OK(dto.NewLinkResponse(link, requestBaseURL(c)), "created"))
}

// GetStats answers the JSON stats lookup, including recent daily roll-ups
// when the stats service is wired.
func (h *LinkHandler) GetStats(c *gin.Context) {
	code := c.Param("code")

	link, err := h.svc.Stats(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = c.Error(apperrors.NotFoundError(i18n.T(c.Request.Context(), "error.link_not_found", nil)))
			return
		}
		zap.L().Error("Stats lookup failed", zap.String("code", code), zap.Error(err))
		_ = c.Error(apperrors.SystemErrorDefault())
		return
	}

	resp := dto.StatsResponse{
		LinkResponse: dto.NewLinkResponse(link, requestBaseURL(c)),
	}
	if h.stats != nil {
		daily, err := h.stats.RecentDaily(code, 7)
		if err != nil {
			zap.L().Warn("Daily stats lookup failed", zap.String("code", code), zap.Error(err))
		} else {
			resp.Daily = dto.NewDailyStatResponses(daily)
		}
	}

	c.JSON(http.StatusOK, response.OK(resp, "success"))
}

// GetTop answers the JSON leaderboard.
func (h *LinkHandler) GetTop(c *gin.Context) {
	n := store.DefaultTopN
	if raw := c.Query("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			_ = c.Error(apperrors.InvalidRequestError("n must be an integer between 1 and 100"))
			return
		}
		n = parsed
	}

	links, err := h.svc.Top(c.Request.Context(), n)
	if err != nil {
		zap.L().Error("Leaderboard query failed", zap.Error(err))
		_ = c.Error(apperrors.SystemErrorDefault())
		return
	}

	base := requestBaseURL(c)
	out := make([]dto.LinkResponse, 0, len(links))
	for i := range links {
		out = append(out, dto.NewLinkResponse(&links[i], base))
	}

	c.JSON(http.StatusOK, response.OK(out, "success"))
}

// isRejection reports whether err is a normalizer rejection (a 400) rather
// than a server-side failure.
func isRejection(err error) bool {
	return errors.Is(err, utils.ErrEmptyURL) ||
		errors.Is(err, utils.ErrUnsafeURL) ||
		errors.Is(err, utils.ErrURLTooLong)
}

// requestBaseURL reconstructs the externally visible base URL the way the
// visitor reached us, honoring the proxy protocol header.
func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
