package database

import (
	"testing"
	"time"

	"github.com/vhallberg/clubfeed/app/content"
)

func testFixture(id string, startsAt time.Time) *content.Fixture {
	return &content.Fixture{
		ID:              id,
		StartsAt:        startsAt,
		StartsAtTime:    startsAt.Format("15:04"),
		IsAwayGame:      false,
		Opponent:        "Ipswich",
		Type:            "League",
		OpponentLogoURL: "https://cdn.example.com/image/upload/w_220/crests/ipswich.png",
	}
}

func TestUpsertAndGetFixture(t *testing.T) {
	repo := NewFixtureRepository(setupTestDB(t))

	kickoff := time.Date(2025, 8, 17, 18, 30, 0, 0, time.UTC)
	if err := repo.UpsertFixture(36, testFixture("881", kickoff)); err != nil {
		t.Fatalf("UpsertFixture failed: %v", err)
	}

	fixture, err := repo.GetFixture("881")
	if err != nil {
		t.Fatalf("GetFixture failed: %v", err)
	}
	if fixture == nil {
		t.Fatal("Expected fixture, got nil")
	}

	if fixture.Opponent != "Ipswich" {
		t.Errorf("Unexpected opponent: %s", fixture.Opponent)
	}
	if fixture.SeasonID != 36 {
		t.Errorf("Unexpected season: %d", fixture.SeasonID)
	}
	if fixture.Result != nil {
		t.Errorf("Expected nil result for unplayed fixture, got: %v", *fixture.Result)
	}
}

func TestGetFixtureNotFound(t *testing.T) {
	repo := NewFixtureRepository(setupTestDB(t))

	fixture, err := repo.GetFixture("missing")
	if err != nil {
		t.Fatalf("GetFixture failed: %v", err)
	}
	if fixture != nil {
		t.Errorf("Expected nil for missing fixture, got: %+v", fixture)
	}
}

func TestUpsertFixtureUpdatesResult(t *testing.T) {
	repo := NewFixtureRepository(setupTestDB(t))

	kickoff := time.Date(2025, 8, 17, 18, 30, 0, 0, time.UTC)
	if err := repo.UpsertFixture(36, testFixture("881", kickoff)); err != nil {
		t.Fatalf("UpsertFixture failed: %v", err)
	}

	played := testFixture("881", kickoff)
	result := "2-0"
	halfTime := "1-0"
	played.Result = &result
	played.ResultHalfTime = &halfTime
	if err := repo.UpsertFixture(36, played); err != nil {
		t.Fatalf("UpsertFixture update failed: %v", err)
	}

	count, err := repo.GetFixtureCount()
	if err != nil {
		t.Fatalf("GetFixtureCount failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 fixture after upsert, got %d", count)
	}

	fixture, err := repo.GetFixture("881")
	if err != nil {
		t.Fatalf("GetFixture failed: %v", err)
	}
	if fixture.Result == nil || *fixture.Result != "2-0" {
		t.Errorf("Expected result '2-0', got: %v", fixture.Result)
	}
	if fixture.ResultHalfTime == nil || *fixture.ResultHalfTime != "1-0" {
		t.Errorf("Expected half time '1-0', got: %v", fixture.ResultHalfTime)
	}
}

func TestGetFixturesOrderedByKickoff(t *testing.T) {
	repo := NewFixtureRepository(setupTestDB(t))

	later := testFixture("2", time.Date(2025, 9, 1, 15, 0, 0, 0, time.UTC))
	earlier := testFixture("1", time.Date(2025, 8, 1, 15, 0, 0, 0, time.UTC))

	for _, f := range []*content.Fixture{later, earlier} {
		if err := repo.UpsertFixture(36, f); err != nil {
			t.Fatalf("UpsertFixture failed: %v", err)
		}
	}

	fixtures, err := repo.GetFixtures()
	if err != nil {
		t.Fatalf("GetFixtures failed: %v", err)
	}
	if len(fixtures) != 2 {
		t.Fatalf("Expected 2 fixtures, got %d", len(fixtures))
	}
	if fixtures[0].ID != "1" || fixtures[1].ID != "2" {
		t.Errorf("Expected chronological order, got: %s, %s", fixtures[0].ID, fixtures[1].ID)
	}
}
