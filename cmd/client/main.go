// cmd/client/main.go
package main

import (
	"context"
	"net/http"
	"os"

	"github.com/tahcohcat/goalquest-web/config"
	"github.com/tahcohcat/goalquest-web/internal/achievements"
	"github.com/tahcohcat/goalquest-web/internal/cache"
	"github.com/tahcohcat/goalquest-web/internal/client"
	"github.com/tahcohcat/goalquest-web/internal/events"
	"github.com/tahcohcat/goalquest-web/internal/logger"
	"github.com/tahcohcat/goalquest-web/internal/notify"
	"github.com/tahcohcat/goalquest-web/internal/session"
	"github.com/tahcohcat/goalquest-web/internal/web"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Error("failed to load config")
		os.Exit(1)
	}

	tokens := session.NewTokenStore(cfg.Auth.TokenPath)
	api := client.New(cfg.Server.BaseURL, cfg.Server.Timeout(), tokens)
	gate := session.NewGate(tokens, api, log)

	var achievementCache *cache.Cache
	achievementCache, err = cache.Open(cfg.Cache.Path)
	if err != nil {
		log.WithError(err).Warn("achievement cache disabled")
		achievementCache = nil
	} else {
		defer achievementCache.Close()
	}

	store := achievements.NewStore(api, gate, tokens, achievementCache, log)
	store.LoadCached()

	hub := web.NewHub(log)
	go hub.Run()

	queue := notify.New(cfg.Notifications.Dwell(), hub.BroadcastCelebration, hub.BroadcastNotifications, log)
	detector := achievements.NewDetector(gate, api, store, queue, log)

	bus := events.NewBus()
	bridge := events.NewBridge(bus, detector, cfg.Server.PollInterval(), log)
	defer bridge.Close()

	// Best-effort initial load; the UI has a Try Again control for failures.
	if store.Fetch(context.Background()) {
		log.Info("achievements loaded")
	} else if msg := store.LastError(); msg != "" {
		log.Warnf("initial fetch: %s", msg)
	}

	server := web.New(store, queue, detector, tokens, bus, hub,
		cfg.Web.SessionSecret, cfg.Web.AllowedOrigins, log)

	log.Infof("🏆 GoalQuest companion listening on %s", cfg.Web.Addr)
	log.Infof("📡 Tracking achievements from %s", cfg.Server.BaseURL)

	if err := http.ListenAndServe(cfg.Web.Addr, server.Handler()); err != nil {
		log.WithError(err).Error("server stopped")
		os.Exit(1)
	}
}
