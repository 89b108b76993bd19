package session

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/redis"

	"github.com/mlavin/allaccess/internal/pkg/cache"
	"github.com/mlavin/allaccess/internal/pkg/env"
)

var sessionStore *session.Store

// NewSessionStore builds the session store. OAuth flows depend on session
// state surviving the redirect round trip to the provider, so the
// expiration must comfortably cover a user stuck on a consent screen.
func NewSessionStore() *session.Store {
	config := session.Config{
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookieSecure:   !env.IsDev(),
		Expiration:     time.Hour * 1,
		KeyLookup:      "cookie:session_id",
	}

	// SESSION_STORAGE=memory keeps everything in process for tests and
	// single-node development; the default is Redis next to the cache.
	if env.GetEnv("SESSION_STORAGE", "redis") == "redis" {
		config.Storage = redisStorage()
	}

	sessionStore = session.New(config)
	return sessionStore
}

// redisStorage derives connection parameters from the cache client so both
// point at the same server, with sessions on database 1.
func redisStorage() *redis.Storage {
	host := "localhost"
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")
	if cacheClient := cache.GetClient(); cacheClient != nil {
		addr := cacheClient.Options().Addr
		if h, p, err := net.SplitHostPort(addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		if p := cacheClient.Options().Password; p != "" {
			password = p
		}
	}

	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: 1,
		Reset:    false,
	})
}

func GetSessionStore() *session.Store {
	if sessionStore == nil {
		NewSessionStore()
	}
	return sessionStore
}

// SetSessionValue stores a key-value pair in the user's individual session
func SetSessionValue(c *fiber.Ctx, key string, value string) error {
	sess, err := GetSessionStore().Get(c)
	if err != nil {
		return fmt.Errorf("failed to get session: %v", err)
	}

	sess.Set(key, value)
	return sess.Save()
}

// GetSessionValue retrieves a value by key from the user's individual session
func GetSessionValue(c *fiber.Ctx, key string) string {
	sess, err := GetSessionStore().Get(c)
	if err != nil {
		return ""
	}

	if value, ok := sess.Get(key).(string); ok {
		return value
	}
	return ""
}
