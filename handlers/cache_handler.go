package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"teisinisai-backend/parser"
	"teisinisai-backend/service"
)

// CacheHandler handles HTTP requests for cache and index maintenance
type CacheHandler struct {
	fetcher *service.FetcherService
	index   *service.IndexService
	parser  *parser.Parser
}

// NewCacheHandler creates a new cache handler
func NewCacheHandler(fetcher *service.FetcherService, index *service.IndexService) *CacheHandler {
	return &CacheHandler{
		fetcher: fetcher,
		index:   index,
		parser:  parser.New(),
	}
}

// CacheStats handles GET /api/cache/stats
func (h *CacheHandler) CacheStats(c *gin.Context) {
	stats, err := h.fetcher.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STATS_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}

// Invalidate handles POST /api/cache/invalidate/:id
func (h *CacheHandler) Invalidate(c *gin.Context) {
	if err := h.fetcher.Invalidate(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALIDATE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// Purge handles POST /api/cache/purge
func (h *CacheHandler) Purge(c *gin.Context) {
	purged, err := h.fetcher.PurgeExpired(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PURGE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"purged": purged,
		},
	})
}

// IndexStats handles GET /api/index/stats
func (h *CacheHandler) IndexStats(c *gin.Context) {
	stats, err := h.index.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STATS_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}

// Reindex handles POST /api/index/reindex/:id
func (h *CacheHandler) Reindex(c *gin.Context) {
	ctx := c.Request.Context()
	identifier := c.Param("id")
	category := c.Query("category")

	law, err := h.fetcher.GetLaw(ctx, identifier, c.Query("refresh") == "true")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FETCH_FAILED",
				"message": err.Error(),
			},
		})
		return
	}
	if law == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "LAW_NOT_FOUND",
				"message": "Law not found or unavailable",
			},
		})
		return
	}

	articles := h.parser.Parse(law.FullText)
	for i := range articles {
		articles[i].LawID = law.ID
	}

	indexed, err := h.index.IndexLaw(ctx, law, articles, category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INDEX_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"law_id":  law.ID,
			"indexed": indexed,
		},
	})
}

// Reconcile handles POST /api/index/reconcile
func (h *CacheHandler) Reconcile(c *gin.Context) {
	divergent, err := h.index.Reconcile(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "RECONCILE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"divergent": divergent,
			"count":     len(divergent),
		},
	})
}
