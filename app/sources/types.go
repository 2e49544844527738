package sources

import (
	"time"
)

const (
	TypeNews     = "news"
	TypeFixtures = "fixtures"
)

type Config struct {
	Name     string          // Derived from filename (without .yml extension)
	Type     string          `yaml:"type"`
	Settings ConfigSettings  `yaml:"settings"`
	News     NewsSettings    `yaml:"news"`
	Fixtures FixtureSettings `yaml:"fixtures"`
}

type ConfigSettings struct {
	Enabled         bool `yaml:"enabled"`
	RefreshInterval int  `yaml:"refresh_interval"` // seconds
	Timeout         int  `yaml:"timeout"`          // seconds
	MaxItems        int  `yaml:"max_items"`
}

type NewsSettings struct {
	ExtractContent bool   `yaml:"extract_content"` // fetch full article body when upstream omits it
	RSSURL         string `yaml:"rss_url"`         // optional supplementary RSS source
}

type FixtureSettings struct {
	SeasonID int `yaml:"season_id"` // 0 resolves the current season from upstream
}

func (s *ConfigSettings) GetRefreshInterval() time.Duration {
	return time.Duration(s.RefreshInterval) * time.Second
}

func (s *ConfigSettings) GetTimeout() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}
