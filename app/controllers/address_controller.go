package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/address-resolver/app/config"
	"github.com/address-resolver/app/models"
	"github.com/address-resolver/app/requests"
	"github.com/address-resolver/app/responses"
	"github.com/address-resolver/app/services"
	"github.com/address-resolver/internal/normalizer"
	"github.com/address-resolver/internal/resolver"
)

// outerCacheKey mirrors the engine cache keying: normalized lines plus the
// dataset generation, so reloads invalidate the outer tier as well.
func outerCacheKey(line1, line2 string, generation uint64) string {
	return normalizer.NormalizeName(line1) + "|" + normalizer.NormalizeName(line2) + "|" + strconv.FormatUint(generation, 10)
}

// AddressController handles the public address endpoints.
type AddressController struct {
	addressService *services.AddressService
	cacheService   services.ICacheService
	logger         *zap.Logger
}

// NewAddressController wires the controller.
func NewAddressController(addressService *services.AddressService, cacheService services.ICacheService, logger *zap.Logger) *AddressController {
	return &AddressController{
		addressService: addressService,
		cacheService:   cacheService,
		logger:         logger,
	}
}

// ResolveAddress resolves one two-line address.
func (ac *AddressController) ResolveAddress(c *gin.Context) {
	var req requests.ResolveAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: err.Error(),
		})
		return
	}

	startTime := time.Now()
	generation := ac.addressService.Generation()
	cacheKey := ""

	if req.Options.UseCache {
		cacheKey = outerCacheKey(req.Line1, req.Line2, generation)
		if cached, found, err := ac.cacheService.Get(c.Request.Context(), cacheKey); err == nil && found {
			c.JSON(http.StatusOK, responses.ResolveAddressResponse{
				Generation:       generation,
				Results:          cached,
				ProcessingTimeMs: time.Since(startTime).Milliseconds(),
				CacheHit:         true,
			})
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), config.RequestTimeout())
	defer cancel()

	results, err := ac.addressService.Resolve(ctx, req.Line1, req.Line2, req.Options)
	if err != nil {
		ac.writeResolveError(c, err)
		return
	}

	if req.Options.UseCache {
		if err := ac.cacheService.Set(c.Request.Context(), cacheKey, results); err != nil {
			ac.logger.Warn("caching results failed", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, responses.ResolveAddressResponse{
		Generation:       generation,
		Results:          results,
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
		CacheHit:         false,
	})
}

// CorrectName suggests canonical spellings for a street or city name.
func (ac *AddressController) CorrectName(c *gin.Context) {
	req := requests.CorrectNameRequest{
		Text:       c.Query("text"),
		Field:      c.DefaultQuery("field", "street"),
		PostalCode: c.Query("postal_code"),
		CityHint:   c.Query("city"),
	}
	if limit := c.Query("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			req.Limit = n
		}
	}
	if req.Text == "" {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: "text query parameter is required",
		})
		return
	}

	suggestions, err := ac.addressService.CorrectName(c.Request.Context(), req.Text, req.Field, req.PostalCode, req.CityHint, req.Limit)
	if err != nil {
		ac.writeResolveError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses.CorrectNameResponse{
		Field:       req.Field,
		Suggestions: suggestions,
	})
}

// ValidateAddress checks an address without fuzzy recovery.
func (ac *AddressController) ValidateAddress(c *gin.Context) {
	var req requests.ValidateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: err.Error(),
		})
		return
	}

	v, err := ac.addressService.Validate(c.Request.Context(), req.Line1, req.Line2)
	if err != nil {
		ac.writeResolveError(c, err)
		return
	}

	resp := responses.ValidateAddressResponse{Valid: v.Valid, Reason: v.Reason}
	if v.Record != nil {
		m := models.FromRecord(v.Record)
		resp.Address = &m
	}
	c.JSON(http.StatusOK, resp)
}

// Search answers partial queries: postcode, district or name fragment.
func (ac *AddressController) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: "q query parameter is required",
		})
		return
	}
	limit := 0
	if l := c.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil {
			limit = n
		}
	}

	records, suggestions, err := ac.addressService.Search(c.Request.Context(), query, limit)
	if err != nil {
		ac.writeResolveError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses.SearchResponse{
		Records:     records,
		Suggestions: suggestions,
	})
}

// BatchResolve accepts a list of addresses and processes them as a job.
func (ac *AddressController) BatchResolve(c *gin.Context) {
	var req requests.BatchResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: err.Error(),
		})
		return
	}

	jobID := ac.addressService.StartBatchJob(req.Addresses, req.Options)
	c.JSON(http.StatusAccepted, responses.BatchResolveResponse{
		JobID:          jobID,
		TotalAddresses: len(req.Addresses),
		Message:        "job accepted",
	})
}

// GetJobStatus reports batch job progress.
func (ac *AddressController) GetJobStatus(c *gin.Context) {
	jobID := c.Param("jobID")
	status, err := ac.addressService.GetJobStatus(jobID)
	if err != nil {
		c.JSON(http.StatusNotFound, responses.ErrorResponse{
			Error:   "JOB_NOT_FOUND",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, responses.JobStatusResponse{
		JobID:     status.JobID,
		Status:    status.Status,
		Progress:  status.Progress,
		Processed: status.Processed,
		Total:     status.Total,
		Message:   status.Message,
	})
}

// GetJobResults returns the outcomes of a finished batch job.
func (ac *AddressController) GetJobResults(c *gin.Context) {
	jobID := c.Param("jobID")
	results, err := ac.addressService.GetJobResults(jobID)
	if err != nil {
		if errors.Is(err, services.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, responses.ErrorResponse{
				Error:   "JOB_NOT_FOUND",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusConflict, responses.ErrorResponse{
			Error:   "JOB_NOT_DONE",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, responses.JobResultsResponse{JobID: jobID, Results: results})
}

// HealthCheck reports liveness.
func (ac *AddressController) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"generation": ac.addressService.Generation(),
		"records":    ac.addressService.DatasetSize(),
	})
}

// writeResolveError maps engine errors to HTTP statuses. Insufficient
// input is the caller's fault; no match is a clean negative answer.
func (ac *AddressController) writeResolveError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, resolver.ErrInsufficientInput):
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INSUFFICIENT_INPUT",
			Message: "not enough address text to search on",
		})
	case errors.Is(err, resolver.ErrNoMatch):
		c.JSON(http.StatusNotFound, responses.ErrorResponse{
			Error:   "NO_MATCH",
			Message: "no record matches the given address",
		})
	default:
		ac.logger.Error("resolution failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "RESOLVE_ERROR",
			Message: err.Error(),
		})
	}
}
