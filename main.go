package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/address-resolver/app/config"
	"github.com/address-resolver/app/controllers"
	"github.com/address-resolver/app/services"
	"github.com/address-resolver/internal/dataset"
	"github.com/address-resolver/internal/resolver"
	"github.com/address-resolver/routes"
)

func main() {
	loadConfig()

	logger := initLogger()
	defer logger.Sync()

	logger.Info("starting address resolver service")

	if path := viper.GetString("engine.config_file"); path != "" {
		if err := config.Load(path); err != nil {
			logger.Warn("cannot read engine config file, using defaults",
				zap.String("path", path), zap.Error(err))
		}
	}

	// Load the reference dataset. A rejected dataset is fatal at startup:
	// serving from a partial or inconsistent index is worse than not
	// serving at all.
	loader := dataset.NewLoader(viper.GetString("dataset.dir"), logger)
	rows, err := loader.LoadRows()
	if err != nil {
		logger.Fatal("cannot read reference files", zap.Error(err))
	}
	store, err := dataset.Load(rows)
	if err != nil {
		logger.Fatal("dataset rejected", zap.Error(err))
	}

	res, err := resolver.New(store, resolver.Config{
		Threshold:        config.C.Threshold,
		StreetWeight:     config.C.Weights.Street,
		CityWeight:       config.C.Weights.City,
		StructuredWeight: config.C.Weights.Structured,
		MaxResults:       config.C.MaxResults,
		MaxCandidates:    config.C.MaxCandidates,
		BlockLen:         config.C.BlockLen,
		CacheSize:        config.C.CacheSize,
	}, logger)
	if err != nil {
		logger.Fatal("cannot initialize resolver", zap.Error(err))
	}

	cacheService := initCache(logger)
	defer cacheService.Close()

	addressService := services.NewAddressService(res, loader, logger)
	addressController := controllers.NewAddressController(addressService, cacheService, logger)
	adminController := controllers.NewAdminController(addressService, cacheService, logger)

	if viper.GetString("app.env") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	routes.SetupAllRoutes(router, addressController, adminController)

	port := viper.GetString("app.port")
	logger.Info("address resolver service listening", zap.String("port", port))
	if err := router.Run(":" + port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// loadConfig reads app.yaml plus environment overrides.
func loadConfig() {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetDefault("app.port", "8080")
	viper.SetDefault("app.env", "development")
	viper.SetDefault("dataset.dir", "./data")
	viper.SetDefault("engine.config_file", "")
	viper.SetDefault("cache.backend", "memory")
	viper.SetDefault("cache.ttl_hours", 24)
	viper.SetDefault("redis.url", "redis://localhost:6379")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: cannot read config file: %v", err)
	}
}

// initLogger picks the zap profile from the environment.
func initLogger() *zap.Logger {
	var cfg zap.Config
	if viper.GetString("app.env") == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		log.Fatal("cannot initialize logger:", err)
	}
	return logger
}

// initCache builds the outer cache tier from configuration. Backends:
// memory (default), redis, hybrid (memory L1 + redis L2).
func initCache(logger *zap.Logger) services.ICacheService {
	ttl := time.Duration(viper.GetInt("cache.ttl_hours")) * time.Hour
	backend := viper.GetString("cache.backend")
	redisURL := getEnv("REDIS_URL", viper.GetString("redis.url"))

	switch backend {
	case "redis":
		redisCache, err := services.NewRedisCacheService(redisURL, ttl, logger)
		if err != nil {
			logger.Fatal("cannot connect outer cache", zap.Error(err))
		}
		return redisCache
	case "hybrid":
		redisCache, err := services.NewRedisCacheService(redisURL, ttl, logger)
		if err != nil {
			logger.Fatal("cannot connect outer cache", zap.Error(err))
		}
		memory := services.NewMemoryCacheService(ttl)
		memory.StartCleanupWorker(10 * time.Minute)
		return services.NewHybridCacheService(memory, redisCache, logger)
	default:
		memory := services.NewMemoryCacheService(ttl)
		memory.StartCleanupWorker(10 * time.Minute)
		return memory
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
