package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/vhallberg/clubfeed/app/cfg"
	"github.com/vhallberg/clubfeed/app/content"
	"github.com/vhallberg/clubfeed/app/database"
	"github.com/vhallberg/clubfeed/app/sources"
	"github.com/vhallberg/clubfeed/app/upstream"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	postRepo    database.PostRepository
	fixtureRepo database.FixtureRepository
	configCache *sources.ConfigCache
	client      *upstream.Client
	normalizer  *content.Normalizer
	extractor   *content.Extractor
	httpClient  *http.Client
	userAgent   string
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface

	// Touched only from the ticker goroutine.
	lastRefresh map[string]time.Time
}

func NewScheduler(configCache *sources.ConfigCache, postRepo database.PostRepository,
	fixtureRepo database.FixtureRepository, client *upstream.Client,
	normalizer *content.Normalizer, extractor *content.Extractor, httpClient *http.Client) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		postRepo:    postRepo,
		fixtureRepo: fixtureRepo,
		configCache: configCache,
		client:      client,
		normalizer:  normalizer,
		extractor:   extractor,
		httpClient:  httpClient,
		userAgent:   cfg.UserAgent,
		interval:    time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount: cfg.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 300),
		lastRefresh: make(map[string]time.Time),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueTasks() {
	sourceConfigs := s.configCache.GetEnabledConfigs()
	if len(sourceConfigs) == 0 {
		slog.Debug("No enabled source configurations found")
		return
	}

	now := time.Now().UTC()

	for _, sourceConfig := range sourceConfigs {
		if last, ok := s.lastRefresh[sourceConfig.Name]; ok && now.Before(last.Add(sourceConfig.Settings.GetRefreshInterval())) {
			slog.Debug("Source not due for refresh yet", "source", sourceConfig.Name)
			continue
		}
		s.lastRefresh[sourceConfig.Name] = now

		for _, task := range s.tasksForSource(sourceConfig) {
			if err := s.EnqueueTask(task); err != nil {
				slog.Warn("Failed to enqueue task", "type", string(task.GetType()), "source", sourceConfig.Name, "error", err)
			}
		}
	}
}

func (s *Scheduler) tasksForSource(sourceConfig *sources.Config) []TaskInterface {
	var queued []TaskInterface

	switch sourceConfig.Type {
	case sources.TypeNews:
		queued = append(queued, NewRefreshPostsTask(sourceConfig.Name, sourceConfig, s.client, s.normalizer, s.postRepo))
		if sourceConfig.News.RSSURL != "" {
			queued = append(queued, NewIngestFeedTask(sourceConfig.Name, sourceConfig, s.httpClient, s.normalizer, s.postRepo, s.userAgent))
		}
		if sourceConfig.News.ExtractContent {
			queued = append(queued, NewExtractContentTask(sourceConfig.Name, sourceConfig, s.httpClient, s.extractor, s.postRepo, s.userAgent))
		}
	case sources.TypeFixtures:
		queued = append(queued, NewRefreshFixturesTask(sourceConfig.Name, sourceConfig, s.client, s.normalizer, s.fixtureRepo))
	}

	return queued
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "source", task.GetSourceName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
