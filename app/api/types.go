package api

import (
	"github.com/vhallberg/clubfeed/app/content"
	"github.com/vhallberg/clubfeed/app/database"
	"github.com/vhallberg/clubfeed/app/l10n"
	"github.com/vhallberg/clubfeed/app/sources"
	"github.com/vhallberg/clubfeed/app/tasks"
	"github.com/vhallberg/clubfeed/app/upstream"
)

type GeneratorInterface interface {
	Run(posts []database.Post) (string, error)
}

var _ GeneratorInterface = (*Generator)(nil)

// commentResponse decorates a comment with a display-ready age phrased
// in the configured locale.
type commentResponse struct {
	content.Comment
	CreatedAtRelative string `json:"createdAtRelative"`
}

type Handler struct {
	postRepo    database.PostRepository
	fixtureRepo database.FixtureRepository
	configCache *sources.ConfigCache
	client      *upstream.Client
	normalizer  *content.Normalizer
	generator   GeneratorInterface
	formatters  *l10n.Cache
	locale      string
	scheduler   tasks.TaskSchedulerInterface
}
