// Package infrastructure provides concrete implementations of the interfaces
// defined in the core package.
//
// The infrastructure package is organized by technical concern:
//
// - cache/memory: In-memory cache on patrickmn/go-cache
// - cache/redis: Redis cache on go-redis
// - cache/sqlite: File-backed cache on go-sqlite3
// - logger/structured: logrus logger with optional lumberjack rotation
// - transport/memory: In-process topic bus implementing core DataChannel
// - transport/websocket: gorilla/websocket client feeding backend frames into a bus
//
// # Cache Example
//
//	cache := memory.NewMemoryCache(cfg.Cache.Memory)
//	err := cache.Set(ctx, "key", []byte("value"), time.Hour)
//	value, err := cache.Get(ctx, "key")
//
// # Logger
//
//	logger, err := structured.New(structured.Options{Level: "debug", Format: "json"})
//	logger.Info("Asset resolved", map[string]interface{}{
//	    "reference": "engine.png",
//	})
package infrastructure
