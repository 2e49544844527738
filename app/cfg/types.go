package cfg

type Cfg struct {
	// Application configuration
	Port              string
	DBPath            string
	SourcesDir        string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Upstream configuration
	UpstreamURL string
	SiteURL     string
	BaseURL     string

	// Application metadata
	UserAgent string
	Locale    string
	Timezone  string
	Debug     bool
	Version   string
}
