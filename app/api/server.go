package api

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ehime-live/live-schedule/app/auth"
	"github.com/ehime-live/live-schedule/app/event"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"formatDate":      event.FormatDate,
	"formatLongDate":  event.FormatLongDate,
	"formatTimestamp": event.FormatTimestamp,
	"truncateLink":    event.TruncateLink,
	"displayTitle":    event.DisplayTitle,
	"inc":             func(i int) int { return i + 1 },
}

func loadTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
}

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler) (*gin.Engine, error) {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
		SkipPaths: []string{"/health", "/metrics"},
	}))

	r.Use(gin.Recovery())

	// CORS middleware for API endpoints
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	if handler.metrics != nil {
		r.Use(handler.metrics.Middleware())
	}
	r.Use(auth.Middleware(handler.auth))

	tmpl, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	setupRoutes(r, handler)

	return r, nil
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler) {
	requirePage := auth.RequirePage()
	requireAPI := auth.RequireAPI()

	// Console pages
	r.GET("/", handler.IndexPage)
	r.GET("/events/new", requirePage, handler.NewEventPage)
	r.GET("/events/:id", handler.EventPage)
	r.GET("/events/:id/edit", requirePage, handler.EditEventPage)
	r.POST("/events", requirePage, handler.CreateEventSubmit)
	r.POST("/events/:id", requirePage, handler.UpdateEventSubmit)
	r.POST("/events/:id/delete", requirePage, handler.DeleteEventSubmit)
	r.GET("/history", handler.HistoryPage)
	r.GET("/info", handler.InfoPage)
	r.GET("/login", handler.LoginPage)
	r.POST("/login", handler.LoginSubmit)
	r.POST("/logout", handler.LogoutSubmit)

	// Exports
	r.GET("/events.ics", handler.ExportCalendar)
	r.GET("/events.rss", handler.ExportRSS)

	// Health and status endpoints
	r.GET("/health", handler.GetHealth)
	if handler.metrics != nil {
		r.GET("/metrics", gin.WrapH(handler.metrics.Handler()))
	}

	api := r.Group("/api")
	{
		api.GET("/events", handler.APIListEvents)
		api.GET("/events/options", handler.APIEventOptions)
		api.GET("/events/:id", handler.APIGetEvent)
		api.GET("/history", handler.APIHistory)
		api.GET("/data-sources", handler.APIDataSources)
		api.POST("/login", handler.APILogin)
		api.POST("/logout", handler.APILogout)
	}

	protected := api.Group("", requireAPI)
	{
		protected.POST("/events", handler.APICreateEvent)
		protected.PUT("/events/:id", handler.APIUpdateEvent)
		protected.DELETE("/events/:id", handler.APIDeleteEvent)
		protected.GET("/me", handler.APIMe)
		protected.GET("/feeds", handler.APIListFeeds)
		protected.POST("/feeds/:name/reload", handler.APIReloadFeed)
	}

	slog.Debug("Routes registered", "count", len(r.Routes()))

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})

	r.NoRoute(handler.NotFoundPage)
}
