package content

import (
	"time"
)

// Stable record types produced by the normalizer. Upstream delivers
// loosely shaped PascalCase JSON; nothing outside this package reads
// the raw payloads.

type Tag struct {
	ID    int    `json:"id"`
	Value string `json:"value"`
}

type User struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatarUrl"`
	URL       string  `json:"url"`
}

type Post struct {
	ID            string    `json:"id"`
	Slug          string    `json:"slug"`
	URL           string    `json:"url"`
	Title         string    `json:"title"`
	Excerpt       string    `json:"excerpt"`
	ImageURL      string    `json:"imageUrl"`
	PublishedAt   time.Time `json:"publishedAt"`
	Content       string    `json:"content"`
	Tags          []Tag     `json:"tags"`
	Author        User      `json:"author"`
	CommentsCount int       `json:"commentsCount"`
}

type Comment struct {
	ID        string     `json:"id"`
	ParentID  *string    `json:"parentId"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt"`
	Author    User       `json:"author"`
	Text      string     `json:"text"`
	Likes     int        `json:"likes"`
	Replies   []Comment  `json:"replies"`
}

type Fixture struct {
	ID              string    `json:"id"`
	StartsAt        time.Time `json:"startsAt"`
	StartsAtTime    string    `json:"startsAtTime"`
	IsAwayGame      bool      `json:"isAwayGame"`
	Opponent        string    `json:"opponent"`
	Type            string    `json:"type"`
	OpponentLogoURL string    `json:"opponentLogoUrl"`
	Result          *string   `json:"result"`
	ResultHalfTime  *string   `json:"resultHalfTime"`
	PlayOffType     *string   `json:"playOffType"`
}

type Referee struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type FixtureDetail struct {
	Fixture
	Arena        string   `json:"arena"`
	Attendance   int      `json:"attendance"`
	HomeTeam     string   `json:"homeTeam"`
	AwayTeam     string   `json:"awayTeam"`
	HomeCrestURL string   `json:"homeCrestUrl"`
	AwayCrestURL string   `json:"awayCrestUrl"`
	Referee      *Referee `json:"referee"`
}

type SideStats struct {
	Shots       int     `json:"shots"`
	ShotsOnGoal int     `json:"shotsOnGoal"`
	Possession  float64 `json:"possession"` // 0-1 fraction, upstream sends integer percent
	Passes      int     `json:"passes"`
	YellowCards int     `json:"yellowCards"`
	RedCards    int     `json:"redCards"`
	Offsides    int     `json:"offsides"`
	Corners     int     `json:"corners"`
}

type FixtureStats struct {
	FixtureID int       `json:"fixtureId"`
	Home      SideStats `json:"home"`
	Away      SideStats `json:"away"`
}

type EventType string

const (
	EventGoal          EventType = "goal"
	EventPenaltyGoal   EventType = "penalty_goal"
	EventMissedPenalty EventType = "missed_penalty"
	EventOwnGoal       EventType = "own_goal"
	EventYellowCard    EventType = "yellow_card"
	EventSecondYellow  EventType = "second_yellow"
	EventRedCard       EventType = "red_card"
	EventSubstitution  EventType = "substitution"
	EventUnknown       EventType = "unknown"
)

type FixtureEvent struct {
	ID         string    `json:"id"`
	Minute     int       `json:"minute"`
	Type       EventType `json:"type"`
	Player     string    `json:"player"`
	Assist     string    `json:"assist"`
	InPlayer   string    `json:"inPlayer"`
	OutPlayer  string    `json:"outPlayer"`
	IsHomeTeam bool      `json:"isHomeTeam"`
}

type Season struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	IsCurrent bool   `json:"isCurrent"`
}
