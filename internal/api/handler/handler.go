package handler

import (
	"log/slog"
	"time"

	"github.com/rappahq/docex-be/internal/api/storage"
	"github.com/rappahq/docex-be/internal/config"
	"github.com/rappahq/docex-be/shared/postgresql"
	"github.com/rappahq/docex-be/shared/rabbitmq"
	"github.com/rappahq/docex-be/shared/rediscache"
)

// Dependencies holds everything the handlers need.
type Dependencies struct {
	Logger       *slog.Logger
	DBClient     *postgresql.Client
	RabbitClient *rabbitmq.Client
	Cache        *rediscache.Client
	ListView     config.ListViewConfig
	StatsTTL     time.Duration
}

// JobHandler serves the job list view, job detail/results, create, delete,
// and export endpoints.
type JobHandler struct {
	logger          *slog.Logger
	storage         *storage.Storage
	rabbitClient    *rabbitmq.Client
	searchFields    []string
	defaultPageSize int
}

func NewJobHandler(deps *Dependencies) *JobHandler {
	return &JobHandler{
		logger:          deps.Logger,
		storage:         storage.NewStorage(deps.DBClient.DB()),
		rabbitClient:    deps.RabbitClient,
		searchFields:    deps.ListView.SearchFields,
		defaultPageSize: deps.ListView.DefaultPageSize,
	}
}

// DashboardHandler serves the per-user overview, backed by a short-TTL
// Redis cache.
type DashboardHandler struct {
	logger   *slog.Logger
	storage  *storage.Storage
	cache    *rediscache.Client
	statsTTL time.Duration
}

func NewDashboardHandler(deps *Dependencies) *DashboardHandler {
	ttl := deps.StatsTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &DashboardHandler{
		logger:   deps.Logger,
		storage:  storage.NewStorage(deps.DBClient.DB()),
		cache:    deps.Cache,
		statsTTL: ttl,
	}
}
