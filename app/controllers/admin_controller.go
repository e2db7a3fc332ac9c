package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/address-resolver/app/responses"
	"github.com/address-resolver/app/services"
	"github.com/address-resolver/internal/dataset"
)

// AdminController handles the operational endpoints.
type AdminController struct {
	addressService *services.AddressService
	cacheService   services.ICacheService
	logger         *zap.Logger
}

// NewAdminController wires the controller.
func NewAdminController(addressService *services.AddressService, cacheService services.ICacheService, logger *zap.Logger) *AdminController {
	return &AdminController{
		addressService: addressService,
		cacheService:   cacheService,
		logger:         logger,
	}
}

// ReloadDataset re-reads the reference files and swaps the dataset. A
// rejected dataset leaves the running one in place and reports the
// offending record keys.
func (ac *AdminController) ReloadDataset(c *gin.Context) {
	generation, records, err := ac.addressService.ReloadDataset(c.Request.Context())
	if err != nil {
		var derr *dataset.DatasetError
		if errors.As(err, &derr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "DATASET_REJECTED",
				"message": derr.Reason,
				"keys":    derr.Keys,
			})
			return
		}
		ac.logger.Error("dataset reload failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "RELOAD_ERROR",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, responses.ReloadResponse{
		Generation: generation,
		Records:    records,
		Message:    "dataset reloaded",
	})
}

// InvalidateCache clears the outer cache tier. Engine-level entries expire
// on their own through generation-tagged keys.
func (ac *AdminController) InvalidateCache(c *gin.Context) {
	if err := ac.cacheService.Clear(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "CACHE_ERROR",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cache cleared"})
}

// GetStats reports dataset and cache counters.
func (ac *AdminController) GetStats(c *gin.Context) {
	stats, err := ac.cacheService.GetStats(c.Request.Context())
	if err != nil {
		ac.logger.Warn("cache stats unavailable", zap.Error(err))
	}

	c.JSON(http.StatusOK, responses.AdminStatsResponse{
		Generation:    ac.addressService.Generation(),
		DatasetSize:   ac.addressService.DatasetSize(),
		ResolverCache: ac.addressService.ResolverCacheLen(),
		OuterCache:    stats,
		UptimeSeconds: ac.addressService.UptimeSeconds(),
	})
}
