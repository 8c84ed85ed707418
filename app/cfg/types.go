package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	FeedsDir          string
	Port              string
	BaseUrl           string
	WorkerCount       int
	SchedulerInterval int
	SessionTTL        int
	RedisAddr         string
	CacheTTL          int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
