package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"teisinisai-backend/service"
)

// LegalHandler handles HTTP requests for legal questions, law lookup
// and document work
type LegalHandler struct {
	fetcher   *service.FetcherService
	index     *service.IndexService
	advisor   *service.AdvisorService
	analyzer  *service.AnalyzerService
	generator *service.GeneratorService
}

// NewLegalHandler creates a new legal handler
func NewLegalHandler(
	fetcher *service.FetcherService,
	index *service.IndexService,
	advisor *service.AdvisorService,
	analyzer *service.AnalyzerService,
	generator *service.GeneratorService,
) *LegalHandler {
	return &LegalHandler{
		fetcher:   fetcher,
		index:     index,
		advisor:   advisor,
		analyzer:  analyzer,
		generator: generator,
	}
}

// QuestionRequest represents the request body for a legal question
type QuestionRequest struct {
	Question string `json:"question" binding:"required"`
	Category string `json:"category"`
}

// AskQuestion handles POST /api/legal/question
func (h *LegalHandler) AskQuestion(c *gin.Context) {
	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	answer, err := h.advisor.AnswerQuestion(c.Request.Context(), req.Question, req.Category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ANSWER_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    answer,
	})
}

// SearchRequest represents the request body for semantic search
type SearchRequest struct {
	Query    string `json:"query" binding:"required"`
	Category string `json:"category"`
	TopK     int    `json:"top_k"`
}

// SearchIndex handles POST /api/legal/search
func (h *LegalHandler) SearchIndex(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	results, err := h.index.SearchRelevant(c.Request.Context(), req.Query, req.TopK, req.Category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SEARCH_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"results": results,
			"count":   len(results),
		},
	})
}

// GetLaw handles GET /api/legal/laws/:id
func (h *LegalHandler) GetLaw(c *gin.Context) {
	forceRefresh := c.Query("refresh") == "true"

	law, err := h.fetcher.GetLaw(c.Request.Context(), c.Param("id"), forceRefresh)
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

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    law,
	})
}

// GetArticle handles GET /api/legal/laws/:id/articles/:number
func (h *LegalHandler) GetArticle(c *gin.Context) {
	article, err := h.fetcher.GetArticle(c.Request.Context(), c.Param("id"), c.Param("number"))
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
	if article == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ARTICLE_NOT_FOUND",
				"message": "Article not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    article,
	})
}

// SearchLaw handles GET /api/legal/laws/:id/search
func (h *LegalHandler) SearchLaw(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Query parameter q is required",
			},
		})
		return
	}

	results, err := h.fetcher.SearchArticles(c.Request.Context(), query, c.Param("id"), 10)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SEARCH_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"results": results,
			"count":   len(results),
		},
	})
}

// AnalyzeRequest represents the request body for contract analysis
type AnalyzeRequest struct {
	Text         string `json:"text" binding:"required"`
	ContractType string `json:"contract_type"`
}

// AnalyzeContract handles POST /api/documents/analyze
func (h *LegalHandler) AnalyzeContract(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	if req.ContractType == "" {
		req.ContractType = "general"
	}

	analysis, err := h.analyzer.AnalyzeContract(c.Request.Context(), req.Text, req.ContractType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ANALYSIS_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    analysis,
	})
}

// ComplaintRequest represents the request body for complaint generation
type ComplaintRequest struct {
	EmployeeName         string `json:"employee_name" binding:"required"`
	EmployerName         string `json:"employer_name" binding:"required"`
	Workplace            string `json:"workplace"`
	ViolationDescription string `json:"violation_description" binding:"required"`
	ViolationDate        string `json:"violation_date"`
}

// GenerateComplaint handles POST /api/documents/complaint
func (h *LegalHandler) GenerateComplaint(c *gin.Context) {
	var req ComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	doc, err := h.generator.GenerateLaborComplaint(c.Request.Context(), service.ComplaintData{
		EmployeeName:         req.EmployeeName,
		EmployerName:         req.EmployerName,
		Workplace:            req.Workplace,
		ViolationDescription: req.ViolationDescription,
		ViolationDate:        req.ViolationDate,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "GENERATION_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    doc,
	})
}
