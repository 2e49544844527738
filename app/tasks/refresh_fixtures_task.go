package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vhallberg/clubfeed/app/content"
	"github.com/vhallberg/clubfeed/app/database"
	"github.com/vhallberg/clubfeed/app/sources"
	"github.com/vhallberg/clubfeed/app/upstream"
)

type RefreshFixturesTask struct {
	Task
	SourceConfig *sources.Config
	client       *upstream.Client
	normalizer   *content.Normalizer
	fixtureRepo  database.FixtureRepository
}

func NewRefreshFixturesTask(sourceName string, sourceConfig *sources.Config, client *upstream.Client, normalizer *content.Normalizer, fixtureRepo database.FixtureRepository) *RefreshFixturesTask {
	return &RefreshFixturesTask{
		Task:         NewTask(TaskTypeRefreshFixtures, sourceName),
		SourceConfig: sourceConfig,
		client:       client,
		normalizer:   normalizer,
		fixtureRepo:  fixtureRepo,
	}
}

func (t *RefreshFixturesTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fetchCtx, cancel := context.WithTimeout(ctx, t.SourceConfig.Settings.GetTimeout())
	defer cancel()

	seasonID, err := t.resolveSeasonID(fetchCtx)
	if err != nil {
		return fmt.Errorf("failed to resolve season: %w", err)
	}

	list, err := t.client.GetFixtures(fetchCtx, seasonID)
	if err != nil {
		return fmt.Errorf("failed to fetch fixtures: %w", err)
	}

	storedCount := 0
	invalidCount := 0

	for _, raw := range list {
		fixture, err := t.normalizer.Fixture(raw)
		if err != nil {
			var invalid *content.InvalidInputError
			if errors.As(err, &invalid) {
				slog.Warn("Skipping malformed fixture entry", "source", t.SourceName, "error", err)
				invalidCount++
				continue
			}
			return fmt.Errorf("failed to normalize fixture: %w", err)
		}

		if err := t.fixtureRepo.UpsertFixture(seasonID, fixture); err != nil {
			return fmt.Errorf("failed to store fixture: %w", err)
		}
		storedCount++
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"season", seasonID,
		"total", len(list),
		"stored", storedCount,
		"invalid", invalidCount)

	return nil
}

// resolveSeasonID honors a configured season override; otherwise it asks
// upstream for the season list and takes the one flagged current, or the
// highest id when no flag is set.
func (t *RefreshFixturesTask) resolveSeasonID(ctx context.Context) (int, error) {
	if t.SourceConfig.Fixtures.SeasonID != 0 {
		return t.SourceConfig.Fixtures.SeasonID, nil
	}

	list, err := t.client.GetSeasonList(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch season list: %w", err)
	}
	if len(list) == 0 {
		return 0, fmt.Errorf("season list is empty")
	}

	latest := 0
	for _, raw := range list {
		season, err := t.normalizer.Season(raw)
		if err != nil {
			continue
		}
		if season.IsCurrent {
			return season.ID, nil
		}
		if season.ID > latest {
			latest = season.ID
		}
	}

	if latest == 0 {
		return 0, fmt.Errorf("no usable season in list")
	}

	return latest, nil
}
