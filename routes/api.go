package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/address-resolver/app/controllers"
)

// SetupAPIRoutes registers the versioned API surface.
func SetupAPIRoutes(router *gin.Engine, addressController *controllers.AddressController, adminController *controllers.AdminController) {
	v1 := router.Group("/v1")
	{
		addresses := v1.Group("/addresses")
		{
			addresses.POST("/resolve", addressController.ResolveAddress)
			addresses.POST("/validate", addressController.ValidateAddress)
			addresses.GET("/correct", addressController.CorrectName)
			addresses.GET("/search", addressController.Search)
			addresses.POST("/jobs", addressController.BatchResolve)
			addresses.GET("/jobs/:jobID/status", addressController.GetJobStatus)
			addresses.GET("/jobs/:jobID/results", addressController.GetJobResults)
		}

		admin := v1.Group("/admin")
		{
			admin.POST("/dataset/reload", adminController.ReloadDataset)
			admin.POST("/cache/invalidate", adminController.InvalidateCache)
			admin.GET("/stats", adminController.GetStats)
		}

		v1.GET("/health", addressController.HealthCheck)
	}
}

// SetupHealthRoutes registers the unversioned probes.
func SetupHealthRoutes(router *gin.Engine, addressController *controllers.AddressController) {
	router.GET("/health", addressController.HealthCheck)
	router.GET("/ready", addressController.HealthCheck)
	router.GET("/live", addressController.HealthCheck)
}
