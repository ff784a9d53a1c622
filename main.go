package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"eduadmin-client/authapi"
	"eduadmin-client/cache"
	"eduadmin-client/events"
	"eduadmin-client/middelware"
	"eduadmin-client/models"
	"eduadmin-client/session"
	"eduadmin-client/storage"
	"eduadmin-client/utils"
	"eduadmin-client/utils/logger"

	"github.com/gin-gonic/gin"
)

var config *models.Config

func Init() {
	var err error
	config, err = utils.GetConfig()
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	Init()
	fmt.Println("Config Loaded ::", utils.PrintPrettyJSON(config))

	ctx := context.Background()
	appLogger := logger.NewLogger(config.LogLevel, config.LogFormat)

	store, tokens, redisStore, err := buildStorage(ctx, appLogger)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	queries := cache.NewQueryCache()
	expired := events.NewSessionExpiredBus()

	// With a shared redis backend, expiry broadcasts reach every client
	var bridge *events.RedisBridge
	if redisStore != nil {
		bridge = events.NewRedisBridge(redisStore.Client(), expired, appLogger)
		defer bridge.Close()
	}

	api := buildAuthClient(appLogger)

	sessions := session.NewSessionService(config, appLogger, api, tokens, store, queries, expired)
	defer sessions.Close()

	if bridge != nil {
		sessions.SetExpiryAnnouncer(bridge.Announce)
	}

	if err := sessions.Restore(ctx); err != nil {
		appLogger.Warnf("Session restore failed: %v", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middelware.NewLoggingMiddleware(appLogger).RequestLogger())
	r.Use(middelware.NewCORSMiddleware(config).CORS())

	registerRoutes(r, sessions, appLogger)

	addr := config.AppHost + ":" + config.AppPort
	appLogger.Infof("Starting %s on %s", config.AppName, addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// buildStorage selects the persistence backend. The redis client is returned
// when available so the expiry broadcast can ride the same connection.
func buildStorage(ctx context.Context, log logger.Logger) (storage.KeyValueStore, storage.TokenStore, *storage.RedisStore, error) {
	switch config.StorageBackend {
	case "memory":
		kv := storage.NewMemoryStore()
		return kv, storage.NewKVTokenStore(kv), nil, nil
	case "file":
		kv, err := storage.NewFileStore(config.StorageFilePath, log)
		if err != nil {
			return nil, nil, nil, err
		}
		return kv, storage.NewKVTokenStore(kv), nil, nil
	case "redis":
		kv, err := storage.NewRedisStore(ctx, config, log)
		if err != nil {
			return nil, nil, nil, err
		}
		return kv, storage.NewKVTokenStore(kv), kv, nil
	case "dynamo":
		kv, err := storage.NewDynamoStore(config, log)
		if err != nil {
			return nil, nil, nil, err
		}
		return kv, storage.NewKVTokenStore(kv), nil, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown storage backend %q", config.StorageBackend)
	}
}

func buildAuthClient(log logger.Logger) authapi.Client {
	if config.AuthProvider == "local" {
		return authapi.NewLocalProvider(config, log)
	}
	return authapi.NewHTTPClient(config, log)
}

func registerRoutes(r *gin.Engine, sessions *session.SessionService, log logger.Logger) {
	guard := middelware.NewSessionGuard(sessions, log)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, models.APIResponse{Status: "success", Code: http.StatusOK, Message: "ok"})
	})

	r.POST("/session/login", func(c *gin.Context) {
		var creds models.Credentials
		if err := c.ShouldBindJSON(&creds); err != nil {
			c.JSON(http.StatusBadRequest, models.APIResponse{
				Status:  "error",
				Code:    http.StatusBadRequest,
				Message: "Invalid request body",
				Error:   &models.APIError{Type: "ValidationError", Details: err.Error()},
			})
			return
		}

		result := sessions.Login(c.Request.Context(), creds.Username, creds.Password)
		if !result.Success {
			c.JSON(http.StatusUnauthorized, models.APIResponse{
				Status:  "error",
				Code:    http.StatusUnauthorized,
				Message: result.Message,
			})
			return
		}

		c.JSON(http.StatusOK, models.APIResponse{Status: "success", Code: http.StatusOK, Data: result})
	})

	r.POST("/session/logout", func(c *gin.Context) {
		sessions.Logout()
		c.JSON(http.StatusOK, models.APIResponse{Status: "success", Code: http.StatusOK, Message: "Logged out"})
	})

	r.GET("/session", guard.RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, models.APIResponse{
			Status: "success",
			Code:   http.StatusOK,
			Data: gin.H{
				"user":    sessions.User(),
				"context": sessions.ManagedContext(),
			},
		})
	})

	r.PUT("/session/context", guard.RequireAuth(), func(c *gin.Context) {
		var patch models.ContextPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			c.JSON(http.StatusBadRequest, models.APIResponse{
				Status:  "error",
				Code:    http.StatusBadRequest,
				Message: "Invalid request body",
				Error:   &models.APIError{Type: "ValidationError", Details: err.Error()},
			})
			return
		}

		merged, err := sessions.SetManagedContext(c.Request.Context(), patch, false)
		if err != nil {
			// The local change is kept; report the failed server sync
			c.JSON(http.StatusBadGateway, models.APIResponse{
				Status:  "error",
				Code:    http.StatusBadGateway,
				Message: "Context applied locally, server sync failed",
				Data:    merged,
				Error:   &models.APIError{Type: "SyncError", Details: err.Error()},
			})
			return
		}

		c.JSON(http.StatusOK, models.APIResponse{Status: "success", Code: http.StatusOK, Data: merged})
	})

	r.POST("/session/refresh", guard.RequireAuth(), func(c *gin.Context) {
		if err := sessions.RefreshAccessToken(c.Request.Context()); err != nil {
			c.JSON(http.StatusUnauthorized, models.APIResponse{
				Status:  "error",
				Code:    http.StatusUnauthorized,
				Message: "Token renewal failed",
				Error:   &models.APIError{Type: "AuthenticationError", Details: err.Error()},
			})
			return
		}
		c.JSON(http.StatusOK, models.APIResponse{Status: "success", Code: http.StatusOK, Message: "Token renewed"})
	})
}
