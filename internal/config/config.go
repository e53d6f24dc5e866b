package config

import (
	"time"

	"github.com/spf13/viper"
)

type DatabaseDriver string

const (
	DriverSQLite DatabaseDriver = "sqlite"
	DriverMySQL  DatabaseDriver = "mysql"
)

type (
	Config struct {
		HTTP
		Global
		Database
		SearchIndex
		IndexSync
		Cache
		Tasks
		Reconcile
	}

	HTTP struct {
		Port           int32
		Host           string
		RequestTimeout time.Duration // bound for every API request, zero disables
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Driver   DatabaseDriver
		Path     string // sqlite file
		Host     string // mysql
		Port     int
		Name     string
		User     string
		Password string
		LogLevel string // silent, error, warn, info
	}
	SearchIndex struct {
		Path string
	}
	IndexSync struct {
		Shards     int           // parallel per-id queues
		QueueSize  int           // buffered operations per shard
		OpTimeout  time.Duration // timeout for a single index write
		RetryTasks bool          // hand failed ids to the task queue
	}
	Cache struct {
		Enabled  bool
		Addr     string
		Password string
		DB       int
		TTL      time.Duration
		Prefix   string
	}
	Tasks struct {
		Enabled         bool
		Path            string // dedicated SQLite file for the queue
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Reconcile struct {
		Enabled         bool
		Schedule        string // Cron format: "*/30 * * * *" = every 30 minutes
		CleanupSchedule string // orphan category cleanup
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8080)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("request_timeout", "30s")
	v.SetDefault("shutdown_timeout_in_seconds", 5)

	// Relational store defaults
	v.SetDefault("database_driver", string(DriverSQLite))
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_host", "127.0.0.1")
	v.SetDefault("database_port", 3306)
	v.SetDefault("database_name", "rentals")
	v.SetDefault("database_user", "rentals")
	v.SetDefault("database_password", "")
	v.SetDefault("database_log_level", "warn")

	// Search index defaults
	v.SetDefault("search_index_path", DefaultSearchIndexPath)
	v.SetDefault("index_sync_shards", 8)
	v.SetDefault("index_sync_queue_size", 256)
	v.SetDefault("index_sync_op_timeout", "10s")
	v.SetDefault("index_sync_retry_tasks", true)

	// Search cache defaults
	v.SetDefault("search_cache_enabled", false)
	v.SetDefault("search_cache_addr", "127.0.0.1:6379")
	v.SetDefault("search_cache_password", "")
	v.SetDefault("search_cache_db", 0)
	v.SetDefault("search_cache_ttl", "5m")
	v.SetDefault("search_cache_prefix", "rentals:search")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("tasks_database_path", DefaultTasksDatabasePath)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	// Index reconciliation defaults
	v.SetDefault("index_reconcile_enabled", true)
	v.SetDefault("index_reconcile_schedule", "*/30 * * * *")
	v.SetDefault("category_cleanup_schedule", "0 3 * * *")

	return &Config{
		HTTP: HTTP{
			Port:           v.GetInt32("PORT"),
			Host:           v.GetString("HOST"),
			RequestTimeout: v.GetDuration("REQUEST_TIMEOUT"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Driver:   DatabaseDriver(v.GetString("DATABASE_DRIVER")),
			Path:     v.GetString("DATABASE_PATH"),
			Host:     v.GetString("DATABASE_HOST"),
			Port:     v.GetInt("DATABASE_PORT"),
			Name:     v.GetString("DATABASE_NAME"),
			User:     v.GetString("DATABASE_USER"),
			Password: v.GetString("DATABASE_PASSWORD"),
			LogLevel: v.GetString("DATABASE_LOG_LEVEL"),
		},
		SearchIndex: SearchIndex{
			Path: v.GetString("SEARCH_INDEX_PATH"),
		},
		IndexSync: IndexSync{
			Shards:     v.GetInt("INDEX_SYNC_SHARDS"),
			QueueSize:  v.GetInt("INDEX_SYNC_QUEUE_SIZE"),
			OpTimeout:  v.GetDuration("INDEX_SYNC_OP_TIMEOUT"),
			RetryTasks: v.GetBool("INDEX_SYNC_RETRY_TASKS"),
		},
		Cache: Cache{
			Enabled:  v.GetBool("SEARCH_CACHE_ENABLED"),
			Addr:     v.GetString("SEARCH_CACHE_ADDR"),
			Password: v.GetString("SEARCH_CACHE_PASSWORD"),
			DB:       v.GetInt("SEARCH_CACHE_DB"),
			TTL:      v.GetDuration("SEARCH_CACHE_TTL"),
			Prefix:   v.GetString("SEARCH_CACHE_PREFIX"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Path:            v.GetString("TASKS_DATABASE_PATH"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Reconcile: Reconcile{
			Enabled:         v.GetBool("INDEX_RECONCILE_ENABLED"),
			Schedule:        v.GetString("INDEX_RECONCILE_SCHEDULE"),
			CleanupSchedule: v.GetString("CATEGORY_CLEANUP_SCHEDULE"),
		},
	}
}
