package service

import (
	"context"
	"log"
	"sync"
	"time"

	"catalog-proxy-api/internal/repository"
)

// CleanupConfig holds configuration for the call-log retention scheduler.
type CleanupConfig struct {
	// Retention is how long call-log entries are kept.
	Retention time.Duration

	// CleanupInterval is how often the cleanup runs.
	CleanupInterval time.Duration
}

// DefaultCleanupConfig returns default retention configuration.
func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		Retention:       7 * 24 * time.Hour,
		CleanupInterval: 1 * time.Hour,
	}
}

// CleanupScheduler runs periodic pruning of old call-log entries.
type CleanupScheduler struct {
	repo      repository.CallLogRepository
	config    CleanupConfig
	ticker    *time.Ticker
	stopCh    chan struct{}
	stopOnce  sync.Once
	isRunning bool
	mu        sync.Mutex
}

// NewCleanupScheduler creates a new cleanup scheduler.
func NewCleanupScheduler(repo repository.CallLogRepository, config CleanupConfig) *CleanupScheduler {
	if config.Retention == 0 {
		config.Retention = 7 * 24 * time.Hour
	}
	if config.CleanupInterval == 0 {
		config.CleanupInterval = 1 * time.Hour
	}

	return &CleanupScheduler{
		repo:   repo,
		config: config,
		stopCh: make(chan struct{}),
	}
}

// Start begins the cleanup scheduler.
func (s *CleanupScheduler) Start() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.ticker = time.NewTicker(s.config.CleanupInterval)
	s.mu.Unlock()

	log.Printf("[CleanupScheduler] Started - Interval: %v, Retention: %v",
		s.config.CleanupInterval, s.config.Retention)

	go s.run()
}

// run is the main cleanup loop.
func (s *CleanupScheduler) run() {
	for {
		select {
		case <-s.ticker.C:
			s.runCleanup()
		case <-s.stopCh:
			log.Printf("[CleanupScheduler] Stopped")
			return
		}
	}
}

// runCleanup performs the actual pruning.
func (s *CleanupScheduler) runCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	deleted, err := s.repo.DeleteOlderThan(ctx, s.config.Retention)
	if err != nil {
		log.Printf("[CleanupScheduler] Error during cleanup: %v", err)
		return
	}

	if deleted > 0 {
		log.Printf("[CleanupScheduler] Pruned %d call-log records", deleted)
	}
}

// Stop stops the cleanup scheduler.
func (s *CleanupScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.stopCh)
		s.isRunning = false
	})
}
