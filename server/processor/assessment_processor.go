// Package processor coordinates scoring requests: single assessments go
// through the cache, coordinate and batch requests are resolved to
// locations, defaulted, and fanned out over a worker pool.
package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/roadrisk/server/cache"
	"github.com/san-kum/roadrisk/server/conditions"
	"github.com/san-kum/roadrisk/server/geo"
	"github.com/san-kum/roadrisk/server/models"
	"github.com/san-kum/roadrisk/server/risk"
	"go.uber.org/zap"
)

type AssessmentProcessor struct {
	scorer    *risk.Scorer
	resolver  geo.Resolver
	defaulter *conditions.Defaulter
	cache     cache.Cache
	logger    *zap.Logger
	queue     *AssessmentQueue
	stats     *ProcessorStats
	config    *ProcessorConfig
	ctx       context.Context
	cancel    context.CancelFunc
}

type ProcessorStats struct {
	StartTime             time.Time `json:"start_time"`
	TotalProcessed        int64     `json:"total_processed"`
	SuccessfullyProcessed int64     `json:"successfully_processed"`
	FailedProcessed       int64     `json:"failed_processed"`
	CacheHits             int64     `json:"cache_hits"`
	AverageLatency        float64   `json:"average_latency_ms"`
	QueueSize             int       `json:"queue_size"`
	ActiveWorkers         int       `json:"active_workers"`
}

type ProcessorConfig struct {
	MaxQueueSize      int `json:"max_queue_size"`
	MaxWorkers        int `json:"max_workers"`
	ProcessingTimeout int `json:"processing_timeout_seconds"`
}

func NewAssessmentProcessor(scorer *risk.Scorer, resolver geo.Resolver, defaulter *conditions.Defaulter, cache cache.Cache, logger *zap.Logger) *AssessmentProcessor {
	config := &ProcessorConfig{
		MaxQueueSize:      100,
		MaxWorkers:        4,
		ProcessingTimeout: 10,
	}

	stats := &ProcessorStats{
		StartTime:     time.Now(),
		ActiveWorkers: config.MaxWorkers,
	}

	ctx, cancel := context.WithCancel(context.Background())

	p := &AssessmentProcessor{
		scorer:    scorer,
		resolver:  resolver,
		defaulter: defaulter,
		cache:     cache,
		logger:    logger,
		stats:     stats,
		config:    config,
		ctx:       ctx,
		cancel:    cancel,
	}

	p.queue = NewAssessmentQueue(config.MaxQueueSize, config.MaxWorkers, p.processItem)

	return p
}

// Assess scores one scenario, consulting the cache first. Repeated
// identical scenarios always return the same assessment.
func (p *AssessmentProcessor) Assess(location string, c models.Conditions) (*models.RiskAssessment, error) {
	startTime := time.Now()
	p.stats.TotalProcessed++

	cacheKey := cache.AssessmentKey(location, c)
	if p.cache != nil {
		if cached, err := p.cache.Get(p.ctx, cacheKey); err == nil {
			p.logger.Debug("assessment cache hit", zap.String("key", cacheKey))
			p.stats.CacheHits++
			p.stats.SuccessfullyProcessed++
			return cached, nil
		}
	}

	assessment, err := p.scorer.Score(location, c)
	if err != nil {
		p.stats.FailedProcessed++
		return nil, err
	}

	p.updateLatencyStats(time.Since(startTime))
	p.stats.SuccessfullyProcessed++

	if p.cache != nil {
		if err := p.cache.Set(p.ctx, cacheKey, assessment); err != nil {
			p.logger.Warn("failed to cache assessment", zap.Error(err))
		}
	}

	return assessment, nil
}

// AssessCoordinates resolves coordinates to the nearest known city, builds
// time-based default conditions, and scores.
func (p *AssessmentProcessor) AssessCoordinates(lat, lon float64) (*models.RiskAssessment, error) {
	location := p.resolver.Locate(lat, lon)
	c := p.defaulter.Defaults()
	c.AreaType = string(p.resolver.AreaType(lat, lon))
	return p.Assess(location, c)
}

// AssessBatch scores multiple coordinate pairs concurrently. Results come
// back in input order; individual failures surface as nil entries rather
// than failing the batch.
func (p *AssessmentProcessor) AssessBatch(locations []models.BatchLocation) (*models.BatchResult, error) {
	channels := make([]chan *AssessmentResult, len(locations))

	for i, loc := range locations {
		resultChan := make(chan *AssessmentResult, 1)
		channels[i] = resultChan

		item := &QueueItem{
			Lat:        loc.Lat,
			Lon:        loc.Lon,
			ResultChan: resultChan,
			StartTime:  time.Now(),
		}

		if !p.queue.Enqueue(item) {
			return nil, fmt.Errorf("processing queue full, try again later")
		}
	}

	timeout := time.Duration(p.config.ProcessingTimeout) * time.Second
	assessments := make([]*models.RiskAssessment, len(locations))

	for i, resultChan := range channels {
		select {
		case result := <-resultChan:
			if result.Error != nil {
				p.logger.Warn("batch item failed",
					zap.Float64("lat", locations[i].Lat),
					zap.Float64("lon", locations[i].Lon),
					zap.Error(result.Error))
				continue
			}
			assessments[i] = result.Assessment
		case <-time.After(timeout):
			return nil, fmt.Errorf("batch processing timeout")
		}
	}

	return &models.BatchResult{
		BatchID:     uuid.NewString(),
		Count:       len(assessments),
		Assessments: assessments,
	}, nil
}

func (p *AssessmentProcessor) processItem(item *QueueItem) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("assessment panic", zap.Any("panic", r))
			item.ResultChan <- &AssessmentResult{
				Error: fmt.Errorf("assessment failed: %v", r),
			}
		}
	}()

	assessment, err := p.AssessCoordinates(item.Lat, item.Lon)
	if err != nil {
		item.ResultChan <- &AssessmentResult{Error: err}
		return
	}

	item.ResultChan <- &AssessmentResult{Assessment: assessment}
}

func (p *AssessmentProcessor) GetStats() *ProcessorStats {
	stats := *p.stats
	stats.QueueSize = p.queue.Size()
	return &stats
}

func (p *AssessmentProcessor) updateLatencyStats(latency time.Duration) {
	current := float64(latency.Microseconds()) / 1000.0
	if p.stats.AverageLatency == 0 {
		p.stats.AverageLatency = current
	} else {
		alpha := 0.1
		p.stats.AverageLatency = alpha*current + (1-alpha)*p.stats.AverageLatency
	}
}

func (p *AssessmentProcessor) Shutdown() error {
	p.cancel()
	return p.queue.Shutdown(5 * time.Second)
}
