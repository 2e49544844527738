package content

import (
	"regexp"
	"strings"
	"unicode"
)

// Numeric event-type codes used by the fixture events endpoint. Codes
// outside the table come through as EventUnknown rather than failing.
var eventTypeByCode = map[int]EventType{
	1:  EventGoal,
	2:  EventYellowCard,
	3:  EventSecondYellow,
	4:  EventRedCard,
	5:  EventSubstitution,
	7:  EventMissedPenalty,
	10: EventOwnGoal,
}

var (
	substitutionRe = regexp.MustCompile(`In:\s*([\p{L} -]+?)\s*,\s*Ut:\s*([\p{L} -]+?)\s*$`)
	scorerRe       = regexp.MustCompile(`^\s*([\p{L} -]+?)\s*(?:\(\s*([\p{L} -]+?)\s*\))?\s*$`)
)

func (n *Normalizer) Fixture(input any) (*Fixture, error) {
	obj, ok := asObject(input)
	if !ok {
		return nil, &InvalidInputError{Entity: "fixture"}
	}

	gameTime := strings.TrimSpace(stringField(obj, "GameTime"))

	return &Fixture{
		ID:              idField(obj, "FixtureId"),
		StartsAt:        combineKickoff(stringField(obj, "GameDate"), gameTime),
		StartsAtTime:    gameTime,
		IsAwayGame:      boolField(obj, "IsAwayGame"),
		Opponent:        stringField(obj, "Opponent"),
		Type:            stringField(obj, "GameType"),
		OpponentLogoURL: rewriteImageWidth(stringField(obj, "ImageName"), crestImageWidth),
		Result:          stringFieldPtr(obj, "ResultFinal"),
		ResultHalfTime:  stringFieldPtr(obj, "ResultHalfTime"),
		PlayOffType:     stringFieldPtr(obj, "PlayOffType"),
	}, nil
}

func (n *Normalizer) FixtureDetail(input any) (*FixtureDetail, error) {
	fixture, err := n.Fixture(input)
	if err != nil {
		return nil, err
	}
	obj, _ := asObject(input)

	home, away := splitTeamNames(stringField(obj, "Name"))

	detail := &FixtureDetail{
		Fixture:      *fixture,
		Arena:        stringField(obj, "Arena"),
		Attendance:   intField(obj, "Attendance"),
		HomeTeam:     home,
		AwayTeam:     away,
		HomeCrestURL: rewriteImageWidth(stringField(obj, "HomeImageName"), crestImageWidth),
		AwayCrestURL: rewriteImageWidth(stringField(obj, "AwayImageName"), crestImageWidth),
	}

	if referee := objectField(obj, "Referee"); referee != nil {
		detail.Referee = &Referee{
			ID:   idField(referee, "RefereeId"),
			Name: stringField(referee, "RefereeName"),
		}
	}

	return detail, nil
}

func (n *Normalizer) FixtureStats(input any) (*FixtureStats, error) {
	obj, ok := asObject(input)
	if !ok {
		return nil, &InvalidInputError{Entity: "fixture stats"}
	}

	return &FixtureStats{
		FixtureID: intField(obj, "FixtureId"),
		Home:      normalizeSideStats(obj, "Home"),
		Away:      normalizeSideStats(obj, "Away"),
	}, nil
}

func normalizeSideStats(obj map[string]any, side string) SideStats {
	return SideStats{
		Shots:       intField(obj, side+"Shots"),
		ShotsOnGoal: intField(obj, side+"ShotsOnGoal"),
		Possession:  float64(intField(obj, side+"Possession")) / 100,
		Passes:      intField(obj, side+"Passes"),
		YellowCards: intField(obj, side+"YellowCards"),
		RedCards:    intField(obj, side+"RedCards"),
		Offsides:    intField(obj, side+"Offsides"),
		Corners:     intField(obj, side+"Corners"),
	}
}

func (n *Normalizer) FixtureEvent(input any) (*FixtureEvent, error) {
	obj, ok := asObject(input)
	if !ok {
		return nil, &InvalidInputError{Entity: "fixture event"}
	}

	event := &FixtureEvent{
		ID:         idField(obj, "EventId"),
		Minute:     intField(obj, "Minute"),
		Type:       classifyEvent(intField(obj, "EventTypeId"), boolField(obj, "IsPenalty")),
		IsHomeTeam: boolField(obj, "IsHomeTeam"),
	}

	parseEventNames(event, stringField(obj, "Name"))

	return event, nil
}

func (n *Normalizer) Season(input any) (*Season, error) {
	obj, ok := asObject(input)
	if !ok {
		return nil, &InvalidInputError{Entity: "season"}
	}

	return &Season{
		ID:        intField(obj, "SeasonId"),
		Name:      stringField(obj, "Name"),
		IsCurrent: boolField(obj, "IsCurrent"),
	}, nil
}

// classifyEvent maps the upstream code to an event type. A set penalty
// flag wins over whatever the code says.
func classifyEvent(code int, isPenalty bool) EventType {
	if isPenalty {
		return EventPenaltyGoal
	}
	if t, ok := eventTypeByCode[code]; ok {
		return t
	}
	return EventUnknown
}

// parseEventNames extracts player names from the free-text event
// description. Upstream delivers names in all-caps, so everything is
// title-cased on the way out. A description that doesn't match leaves
// all four name fields empty.
func parseEventNames(event *FixtureEvent, name string) {
	if event.Type == EventSubstitution {
		m := substitutionRe.FindStringSubmatch(name)
		if m == nil {
			return
		}
		event.InPlayer = titleCase(strings.TrimSpace(m[1]))
		event.OutPlayer = titleCase(strings.TrimSpace(m[2]))
		return
	}

	m := scorerRe.FindStringSubmatch(name)
	if m == nil {
		return
	}
	event.Player = titleCase(strings.TrimSpace(m[1]))
	if m[2] != "" {
		event.Assist = titleCase(strings.TrimSpace(m[2]))
	}
}

// splitTeamNames derives home/away display names from the combined
// "Home - Away" field. Upstream never puts " - " inside a team name;
// if that ever changes, both sides fall back to the unsplit string.
func splitTeamNames(name string) (home, away string) {
	parts := strings.Split(name, " - ")
	if len(parts) != 2 {
		return name, name
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
}

// titleCase capitalizes the head of each space- or hyphen-delimited
// segment and lowercases the rest, preserving delimiters.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	startOfSegment := true
	for _, r := range strings.ToLower(s) {
		if r == '-' || unicode.IsSpace(r) {
			b.WriteRune(r)
			startOfSegment = true
			continue
		}
		if startOfSegment {
			b.WriteRune(unicode.ToUpper(r))
			startOfSegment = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
