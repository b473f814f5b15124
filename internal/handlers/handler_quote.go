package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/SscSPs/freight_quoting_app/internal/core/domain"
	portssvc "github.com/SscSPs/freight_quoting_app/internal/core/ports/services"
	"github.com/SscSPs/freight_quoting_app/internal/dto"
	"github.com/SscSPs/freight_quoting_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// quoteHandler handles HTTP requests for quote pricing and workflow.
type quoteHandler struct {
	quoteService portssvc.QuoteSvcFacade
}

// RegisterQuoteRoutes registers routes related to quotes.
func RegisterQuoteRoutes(rg *gin.RouterGroup, quoteService portssvc.QuoteSvcFacade) {
	registerValidators()
	h := &quoteHandler{quoteService: quoteService}

	quotes := rg.Group("/quotes")
	{
		quotes.POST("", h.createQuote)
		quotes.GET("", h.listQuotes)

		quote := quotes.Group("/:quoteID")
		{
			quote.GET("", h.getQuote)
			quote.GET("/activity", h.listActivity)

			quote.POST("/lines", h.addLine)
			quote.PATCH("/lines/:lineID", h.updateLine)
			quote.DELETE("/lines/:lineID", h.removeLine)
			quote.PUT("/rates/:code", h.setRate)
			quote.PUT("/target-currency", h.setTargetCurrency)

			quote.POST("/submit", h.submitQuote)
			quote.POST("/request-approval", h.requestApproval)
			quote.POST("/approve", h.approveQuote)
			quote.POST("/reject", h.rejectQuote)
			quote.POST("/accept", h.markAccepted)
			quote.POST("/decline", h.markDeclined)
			quote.POST("/reopen", h.reopenQuote)
			quote.POST("/status", h.overrideStatus)
		}
	}
}

// respondQuote runs a quote mutation on behalf of the authenticated operator
// and writes the resulting quote.
func (h *quoteHandler) respondQuote(c *gin.Context, status int, failure string, op func(ctx context.Context, userID string) (*domain.QuoteRecord, error)) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	q, err := op(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, failure)
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Quote updated",
		slog.String("quote_id", q.QuoteID),
		slog.String("status", string(q.Status)),
		slog.Int("version", q.Version))
	c.JSON(status, dto.ToQuoteResponse(q))
}

// createQuote godoc
// @Summary Create a draft quote
// @Description Opens a DRAFT quote that snapshots the current exchange rate table
// @Tags quotes
// @Accept  json
// @Produce  json
// @Param   quote body dto.CreateQuoteRequest true "Quote details"
// @Success 201 {object} dto.QuoteResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create quote"
// @Security BearerAuth
// @Router /quotes [post]
func (h *quoteHandler) createQuote(c *gin.Context) {
	var req dto.CreateQuoteRequest
	if !bindJSON(c, &req) {
		return
	}
	h.respondQuote(c, http.StatusCreated, "Failed to create quote", func(ctx context.Context, userID string) (*domain.QuoteRecord, error) {
		return h.quoteService.CreateQuote(ctx, req, userID)
	})
}

// getQuote godoc
// @Summary Get a quote
// @Tags quotes
// @Produce  json
// @Param   quoteID path string true "Quote ID"
// @Success 200 {object} dto.QuoteResponse
// @Failure 404 {object} map[string]string "Quote not found"
// @Security BearerAuth
// @Router /quotes/{quoteID} [get]
func (h *quoteHandler) getQuote(c *gin.Context) {
	q, err := h.quoteService.GetQuote(c.Request.Context(), c.Param("quoteID"))
	if err != nil {
		respondError(c, err, "Failed to retrieve quote")
		return
	}
	c.JSON(http.StatusOK, dto.ToQuoteResponse(q))
}

// listQuotes godoc
// @Summary List quotes
// @Description Lists quotes, most recently updated first
// @Tags quotes
// @Produce  json
// @Param   limit query int false "Page size (1-100, default 20)"
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListQuotesResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Security BearerAuth
// @Router /quotes [get]
func (h *quoteHandler) listQuotes(c *gin.Context) {
	var params dto.ListQuotesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	quotes, nextToken, err := h.quoteService.ListQuotes(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "Failed to list quotes")
		return
	}
	c.JSON(http.StatusOK, dto.ToListQuotesResponse(quotes, nextToken))
}

// listActivity godoc
// @Summary List the activity of a quote
// @Tags quotes
// @Produce  json
// @Param   quoteID path string true "Quote ID"
// @Success 200 {array} dto.ActivityEntryResponse
// @Failure 404 {object} map[string]string "Quote not found"
// @Security BearerAuth
// @Router /quotes/{quoteID}/activity [get]
func (h *quoteHandler) listActivity(c *gin.Context) {
	entries, err := h.quoteService.ListActivity(c.Request.Context(), c.Param("quoteID"))
	if err != nil {
		respondError(c, err, "Failed to list quote activity")
		return
	}
	c.JSON(http.StatusOK, dto.ToActivityResponse(entries))
}

// addLine godoc
// @Summary Add a charge line
// @Tags quote pricing
// @Accept  json
// @Produce  json
// @Param   quoteID path string true "Quote ID"
// @Param   line body dto.AddLineRequest true "Line details"
// @Success 200 {object} dto.QuoteResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Quote not found"
// @Failure 409 {object} map[string]string "Quote is locked"
// @Security BearerAuth
// @Router /quotes/{quoteID}/lines [post]
func (h *quoteHandler) addLine(c *gin.Context) {
	var req dto.AddLineRequest
	if !bindJSON(c, &req) {
		return
	}
	quoteID := c.Param("quoteID")
	h.respondQuote(c, http.StatusOK, "Failed to add line", func(ctx context.Context, userID string) (*domain.QuoteRecord, error) {
		return h.quoteService.AddLine(ctx, quoteID, req, userID)
	})
}

// updateLine godoc
// @Summary Update one field of a charge line
// @Description Value is parsed leniently: unparseable amounts become zero
// @Tags quote pricing
// @Accept  json
// @Produce  json
// @Param   quoteID path string true "Quote ID"
// @Param   lineID path string true "Line ID"
// @Param   update body dto.UpdateLineRequest true "Field and raw value"
// @Success 200 {object} dto.QuoteResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Quote or line not found"
// @Failure 409 {object} map[string]string "Quote is locked"
// @Security BearerAuth
// @Router /quotes/{quoteID}/lines/{lineID} [patch]
func (h *quoteHandler) updateLine(c *gin.Context) {
	var req dto.UpdateLineRequest
	if !bindJSON(c, &req) {
		return
	}
	quoteID, lineID := c.Param("quoteID"), c.Param("lineID")
	h.respondQuote(c, http.StatusOK, "Failed to update line", func(ctx context.Context, userID string) (*domain.QuoteRecord, error) {
		return h.quoteService.UpdateLine(ctx, quoteID, lineID, req, userID)
	})
}

// removeLine godoc
// @Summary Remove a charge line
// @Tags quote pricing
// @Produce  json
// @Param   quoteID path string true "Quote ID"
// @Param   lineID path string true "Line ID"
// @Success 200 {object} dto.QuoteResponse
// @Failure 404 {object} map[string]string "Quote or line not found"
// @Failure 409 {object} map[string]string "Quote is locked"
// @Security BearerAuth
// @Router /quotes/{quoteID}/lines/{lineID} [delete]
func (h *quoteHandler) removeLine(c *gin.Context) {
	quoteID, lineID := c.Param("quoteID"), c.Param("lineID")
	h.respondQuote(c, http.StatusOK, "Failed to remove line", func(ctx context.Context, userID string) (*domain.QuoteRecord, error) {
		return h.quoteService.RemoveLine(ctx, quoteID, lineID, userID)
	})
}

// setRate godoc
// @Summary Set a quote exchange rate
// @Description Overrides the quote's rate for one non-base currency
// @Tags quote pricing
// @Accept  json
// @Produce  json
// @Param   quoteID path string true "Quote ID"
// @Param   code path string true "Currency Code (3 letters)"
// @Param   rate body dto.SetRateRequest true "Rate in base currency units"
// @Success 200 {object} dto.QuoteResponse
// @Failure 400 {object} map[string]string "Invalid rate"
// @Failure 404 {object} map[string]string "Quote not found"
// @Failure 409 {object} map[string]string "Quote is locked"
// @Security BearerAuth
// @Router /quotes/{quoteID}/rates/{code} [put]
func (h *quoteHandler) setRate(c *gin.Context) {
	code := c.Param("code")
	if !currencyCodePattern.MatchString(code) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Currency code must be 3 letters"})
		return
	}
	var req dto.SetRateRequest
	if !bindJSON(c, &req) {
		return
	}
	quoteID := c.Param("quoteID")
	h.respondQuote(c, http.StatusOK, "Failed to set rate", func(ctx context.Context, userID string) (*domain.QuoteRecord, error) {
		return h.quoteService.SetRate(ctx, quoteID, code, req, userID)
	})
}

// setTargetCurrency godoc
// @Summary Change the display currency of a quote
// @Tags quote pricing
// @Accept  json
// @Produce  json
// @Param   quoteID path string true "Quote ID"
// @Param   target body dto.SetTargetCurrencyRequest true "Target currency"
// @Success 200 {object} dto.QuoteResponse
// @Failure 400 {object} map[string]string "Invalid currency"
// @Failure 404 {object} map[string]string "Quote not found"
// @Failure 409 {object} map[string]string "Quote is locked"
// @Security BearerAuth
// @Router /quotes/{quoteID}/target-currency [put]
func (h *quoteHandler) setTargetCurrency(c *gin.Context) {
	var req dto.SetTargetCurrencyRequest
	if !bindJSON(c, &req) {
		return
	}
	quoteID := c.Param("quoteID")
	h.respondQuote(c, http.StatusOK, "Failed to set target currency", func(ctx context.Context, userID string) (*domain.QuoteRecord, error) {
		return h.quoteService.SetTargetCurrency(ctx, quoteID, req, userID)
	})
}

// submitQuote godoc
// @Summary Send a quote to the client
// @Description Only allowed when no manager approval is required
// @Tags quote workflow
// @Produce  json
// @Param   quoteID path string true "Quote ID"
// @Success 200 {object} dto.QuoteResponse
// @Failure 400 {object} map[string]string "Quote is incomplete"
// @Failure 404 {object} map[string]string "Quote not found"
// @Failure 409 {object} map[string]string "Approval required or invalid transition"
// @Security BearerAuth
// @Router /quotes/{quoteID}/submit [post]
func (h *quoteHandler) submitQuote(c *gin.Context) {
	quoteID := c.Param("quoteID")
	h.respondQuote(c, http.StatusOK, "Failed to submit quote", func(ctx context.Context, userID string) (*domain.QuoteRecord, error) {
		return h.quoteService.SubmitQuote(ctx, quoteID, userID)
	})
}

// requestApproval godoc
// @Summary Request manager approval
// @Tags quote workflow
// @Produce  json
// @Param   quoteID path string true "Quote ID"
// @Success 200 {object} dto.QuoteResponse
// @Failure 400 {object} map[string]string "Quote is incomplete"
// @Failure 404 {object} map[string]string "Quote not found"
// @Failure 409 {object} map[string]string "Approval not required or invalid transition"
// @Security BearerAuth
// @Router /quotes/{quoteID}/request-approval [post]
func (h *quoteHandler) requestApproval(c *gin.Context) {
	quoteID := c.Param("quoteID")
	h.respondQuote(c, http.StatusOK, "Failed to request approval", func(ctx context.Context, userID string) (*domain.QuoteRecord, error) {
		return h.quoteService.RequestApproval(ctx, quoteID, userID)
	})
}

// approveQuote godoc
// @Summary Approve a quote awaiting validation
// @Tags quote workflow
// @Produce  json
// @Param   quoteID path string true "Quote ID"
// @Success 200 {object} dto.QuoteResponse
// @Failure 404 {object} map[string]string "Quote not found"
// @Failure 409 {object} map[string]string "Invalid transition"
// @Security BearerAuth
// @Router /quotes/{quoteID}/approve [post]
func (h *quoteHandler) approveQuote(c *gin.Context) {
	quoteID := c.Param("quoteID")
	h.respondQuote(c, http.StatusOK, "Failed to approve quote", func(ctx context.Context, userID string) (*domain.QuoteRecord, error) {
		return h.quoteService.ApproveQuote(ctx, quoteID, userID)
	})
}

// rejectQuote godoc
// @Summary Reject a quote awaiting validation
// @Description Sends the quote back to DRAFT with the manager's reason
// @Tags quote workflow
// @Accept  json
// @Produce  json
// @Param   quoteID path string true "Quote ID"
// @Param   rejection body dto.RejectQuoteRequest true "Rejection reason"
// @Success 200 {object} dto.QuoteResponse
// @Failure 400 {object} map[string]string "Missing reason"
// @Failure 404 {object} map[string]string "Quote not found"
// @Failure 409 {object} map[string]string "Invalid transition"
// @Security BearerAuth
// @Router /quotes/{quoteID}/reject [post]
func (h *quoteHandler) rejectQuote(c *gin.Context) {
	var req dto.RejectQuoteRequest
	if !bindJSON(c, &req) {
		return
	}
	quoteID := c.Param("quoteID")
	h.respondQuote(c, http.StatusOK, "Failed to reject quote", func(ctx context.Context, userID string) (*domain.QuoteRecord, error) {
		return h.quoteService.RejectQuote(ctx, quoteID, req, userID)
	})
}

// markAccepted godoc
// @Summary Record client acceptance
// @Tags quote workflow
// @Produce  json
// @Param   quoteID path string true "Quote ID"
// @Success 200 {object} dto.QuoteResponse
// @Failure 404 {object} map[string]string "Quote not found"
// @Failure 409 {object} map[string]string "Invalid transition"
// @Security BearerAuth
// @Router /quotes/{quoteID}/accept [post]
func (h *quoteHandler) markAccepted(c *gin.Context) {
	quoteID := c.Param("quoteID")
	h.respondQuote(c, http.StatusOK, "Failed to mark quote accepted", func(ctx context.Context, userID string) (*domain.QuoteRecord, error) {
		return h.quoteService.MarkAccepted(ctx, quoteID, userID)
	})
}

// markDeclined godoc
// @Summary Record client decline
// @Tags quote workflow
// @Accept  json
// @Produce  json
// @Param   quoteID path string true "Quote ID"
// @Param   decline body dto.DeclineQuoteRequest false "Optional reason"
// @Success 200 {object} dto.QuoteResponse
// @Failure 404 {object} map[string]string "Quote not found"
// @Failure 409 {object} map[string]string "Invalid transition"
// @Security BearerAuth
// @Router /quotes/{quoteID}/decline [post]
func (h *quoteHandler) markDeclined(c *gin.Context) {
	var req dto.DeclineQuoteRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	quoteID := c.Param("quoteID")
	h.respondQuote(c, http.StatusOK, "Failed to mark quote declined", func(ctx context.Context, userID string) (*domain.QuoteRecord, error) {
		return h.quoteService.MarkDeclined(ctx, quoteID, req, userID)
	})
}

// reopenQuote godoc
// @Summary Reopen a quote as a draft
// @Tags quote workflow
// @Produce  json
// @Param   quoteID path string true "Quote ID"
// @Success 200 {object} dto.QuoteResponse
// @Failure 404 {object} map[string]string "Quote not found"
// @Failure 409 {object} map[string]string "Invalid transition"
// @Security BearerAuth
// @Router /quotes/{quoteID}/reopen [post]
func (h *quoteHandler) reopenQuote(c *gin.Context) {
	quoteID := c.Param("quoteID")
	h.respondQuote(c, http.StatusOK, "Failed to reopen quote", func(ctx context.Context, userID string) (*domain.QuoteRecord, error) {
		return h.quoteService.ReopenQuote(ctx, quoteID, userID)
	})
}

// overrideStatus godoc
// @Summary Force the status of a quote
// @Description Administrative override that bypasses the transition table
// @Tags quote workflow
// @Accept  json
// @Produce  json
// @Param   quoteID path string true "Quote ID"
// @Param   status body dto.OverrideStatusRequest true "New status"
// @Success 200 {object} dto.QuoteResponse
// @Failure 400 {object} map[string]string "Invalid status"
// @Failure 404 {object} map[string]string "Quote not found"
// @Security BearerAuth
// @Router /quotes/{quoteID}/status [post]
func (h *quoteHandler) overrideStatus(c *gin.Context) {
	var req dto.OverrideStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	quoteID := c.Param("quoteID")
	h.respondQuote(c, http.StatusOK, "Failed to override status", func(ctx context.Context, userID string) (*domain.QuoteRecord, error) {
		return h.quoteService.OverrideStatus(ctx, quoteID, req, userID)
	})
}
