package database

import (
	"database/sql"
	"fmt"

	"github.com/vhallberg/clubfeed/app/content"
)

type fixtureRepository struct {
	db *DB
}

func NewFixtureRepository(db *DB) FixtureRepository {
	return &fixtureRepository{db: db}
}

func (r *fixtureRepository) UpsertFixture(seasonID int, fixture *content.Fixture) error {
	_, err := r.db.Exec(`
		INSERT INTO fixtures (
			id, season_id, starts_at, starts_at_time, is_away_game,
			opponent, game_type, opponent_logo_url,
			result, result_half_time, play_off_type
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			season_id = excluded.season_id,
			starts_at = excluded.starts_at,
			starts_at_time = excluded.starts_at_time,
			is_away_game = excluded.is_away_game,
			opponent = excluded.opponent,
			game_type = excluded.game_type,
			opponent_logo_url = excluded.opponent_logo_url,
			result = excluded.result,
			result_half_time = excluded.result_half_time,
			play_off_type = excluded.play_off_type,
			updated_at = CURRENT_TIMESTAMP
	`, fixture.ID, seasonID, fixture.StartsAt, fixture.StartsAtTime, fixture.IsAwayGame,
		fixture.Opponent, fixture.Type, fixture.OpponentLogoURL,
		fixture.Result, fixture.ResultHalfTime, fixture.PlayOffType)

	if err != nil {
		return fmt.Errorf("failed to upsert fixture: %w", err)
	}

	return nil
}

func (r *fixtureRepository) GetFixtures() ([]Fixture, error) {
	rows, err := r.db.Query(`
		SELECT id, season_id, starts_at, starts_at_time, is_away_game,
		       opponent, game_type, opponent_logo_url,
		       result, result_half_time, play_off_type,
		       created_at, updated_at
		FROM fixtures
		ORDER BY starts_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get fixtures: %w", err)
	}
	defer rows.Close()

	var fixtures []Fixture
	for rows.Next() {
		var f Fixture
		err := rows.Scan(
			&f.ID, &f.SeasonID, &f.StartsAt, &f.StartsAtTime, &f.IsAwayGame,
			&f.Opponent, &f.Type, &f.OpponentLogoURL,
			&f.Result, &f.ResultHalfTime, &f.PlayOffType,
			&f.CreatedAt, &f.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fixture row: %w", err)
		}
		fixtures = append(fixtures, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fixture rows: %w", err)
	}

	return fixtures, nil
}

func (r *fixtureRepository) GetFixture(fixtureID string) (*Fixture, error) {
	var f Fixture
	err := r.db.QueryRow(`
		SELECT id, season_id, starts_at, starts_at_time, is_away_game,
		       opponent, game_type, opponent_logo_url,
		       result, result_half_time, play_off_type,
		       created_at, updated_at
		FROM fixtures
		WHERE id = ?
	`, fixtureID).Scan(
		&f.ID, &f.SeasonID, &f.StartsAt, &f.StartsAtTime, &f.IsAwayGame,
		&f.Opponent, &f.Type, &f.OpponentLogoURL,
		&f.Result, &f.ResultHalfTime, &f.PlayOffType,
		&f.CreatedAt, &f.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fixture: %w", err)
	}

	return &f, nil
}

func (r *fixtureRepository) GetFixtureCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM fixtures").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get fixture count: %w", err)
	}
	return count, nil
}
