package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/wnt/claimgate/internal/allocation"
	"github.com/wnt/claimgate/internal/claims"
	"github.com/wnt/claimgate/internal/metrics"
)

// Handler wires the claim core to the HTTP routes.
type Handler struct {
	validator  *claims.Validator
	ledger     *claims.Ledger
	aggregator *claims.Aggregator
	registry   *allocation.Registry
	logger     zerolog.Logger
}

// NewHandler creates the route handler set.
func NewHandler(
	validator *claims.Validator,
	ledger *claims.Ledger,
	aggregator *claims.Aggregator,
	registry *allocation.Registry,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		validator:  validator,
		ledger:     ledger,
		aggregator: aggregator,
		registry:   registry,
		logger:     logger.With().Str("component", "http").Logger(),
	}
}

// SubmitClaim handles POST /api/v1/claims.
func (h *Handler) SubmitClaim(c echo.Context) error {
	var req claimRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Error:   claims.CodeMissingFields,
			Message: "request body could not be parsed",
		})
	}

	normalized, err := h.validator.Validate(req.raw())
	if err != nil {
		if code := rejectionCode(err); code != "" {
			metrics.RecordRejection(code)
		}
		return h.writeError(c, err)
	}

	receipt, err := h.ledger.Submit(c.Request().Context(), normalized)
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusCreated, newClaimResponse(receipt))
}

// WalletSummary handles GET /api/v1/wallets/:address/summary.
func (h *Handler) WalletSummary(c echo.Context) error {
	summary, err := h.aggregator.Summary(c.Request().Context(), c.Param("address"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, newSummaryResponse(summary))
}

// WalletAllocation handles GET /api/v1/wallets/:address/allocation.
func (h *Handler) WalletAllocation(c echo.Context) error {
	status, err := h.aggregator.AllocationStatus(c.Request().Context(), c.Param("address"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, newAllocationStatusResponse(status))
}

// Stats handles GET /api/v1/stats.
func (h *Handler) Stats(c echo.Context) error {
	stats, err := h.aggregator.GlobalStats(c.Request().Context())
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, newStatsResponse(stats))
}

// ReloadAllocations handles POST /api/v1/allocations/reload. Reload is
// idempotent: the table is re-read from the same source and swapped in
// wholesale.
func (h *Handler) ReloadAllocations(c echo.Context) error {
	count, err := h.registry.Reload()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{
			Error:   claims.CodeInternal,
			Message: "failed to reload allocation table",
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"wallets":  count,
		"loadedAt": h.registry.LoadedAt(),
	})
}

// Health handles GET /health.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":            "ok",
		"allocationWallets": h.registry.Size(),
	})
}

// rejectionCode extracts the discriminator of a pre-storage rejection.
func rejectionCode(err error) string {
	var validation *claims.ValidationError
	if errors.As(err, &validation) {
		return validation.Code
	}
	var authorization *claims.AuthorizationError
	if errors.As(err, &authorization) {
		return authorization.Code
	}
	return ""
}

// writeError maps the claim error taxonomy onto HTTP status codes with a
// stable discriminator and structured details in the body.
func (h *Handler) writeError(c echo.Context, err error) error {
	var validation *claims.ValidationError
	if errors.As(err, &validation) {
		details := map[string]interface{}{}
		if len(validation.Fields) > 0 {
			details["fields"] = validation.Fields
		}
		return c.JSON(http.StatusBadRequest, errorResponse{
			Error:   validation.Code,
			Message: validation.Message,
			Details: details,
		})
	}

	var authorization *claims.AuthorizationError
	if errors.As(err, &authorization) {
		details := map[string]interface{}{
			"walletAddress": authorization.WalletAddress,
			"tokenKind":     authorization.TokenKind,
		}
		if authorization.Code == claims.CodeAllocationMismatch {
			details["expected"] = authorization.Expected.String()
			details["provided"] = authorization.Provided.String()
		}
		return c.JSON(http.StatusForbidden, errorResponse{
			Error:   authorization.Code,
			Message: authorization.Message,
			Details: details,
		})
	}

	var conflict *claims.ConflictError
	if errors.As(err, &conflict) {
		return c.JSON(http.StatusConflict, errorResponse{
			Error:   conflict.Code,
			Message: conflict.Message,
			Details: map[string]interface{}{
				"existingClaimId":   conflict.ExistingClaimID,
				"existingCreatedAt": conflict.ExistingCreatedAt,
			},
		})
	}

	var notFound *claims.NotFoundError
	if errors.As(err, &notFound) {
		return c.JSON(http.StatusNotFound, errorResponse{
			Error:   claims.CodeNotFound,
			Message: "no records for wallet",
			Details: map[string]interface{}{
				"walletAddress": notFound.WalletAddress,
			},
		})
	}

	h.logger.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
	return c.JSON(http.StatusInternalServerError, errorResponse{
		Error:   claims.CodeInternal,
		Message: "internal error",
	})
}
