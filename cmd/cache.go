package cmd

import (
	"fmt"

	"github.com/huangsam/mlforensics/internal/contract"
	"github.com/huangsam/mlforensics/internal/iocache"
	"github.com/spf13/cobra"
)

// cacheSetup opens only the history cache; cache commands never touch the run store.
func cacheSetup(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}
	backend, connStr, err := backendFromViper("cache")
	if err != nil {
		return err
	}
	if err := iocache.InitStores(backend, connStr, "", ""); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	cfg.CacheBackend, cfg.CacheDBConnect = backend, connStr
	return nil
}

// cacheCmd focused on cache management.
//
// Note: Cache subcommands use minimal initialization (cacheSetup) instead of
// the full sharedSetup used by mine and inspect.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the commit history cache",
	Long: `Manage the cache of per-repository commit history metrics.

mlforensics caches contributor counts, commit counts and repository age keyed by
clone path, branch and HEAD commit, so re-inspecting an unchanged clone skips the
per-commit author queries.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached data

Examples:
  # Check cache status
  mlforensics cache status

  # Clear cache after rewriting clone history
  mlforensics cache clear`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached commit history data",
	Long: `Delete all cached commit history data from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table

Examples:
  # Clear SQLite cache (default)
  mlforensics cache clear

  # Clear MySQL cache (set connection string via env variable)
  MLFORENSICS_CACHE_BACKEND=mysql MLFORENSICS_CACHE_DB_CONNECT="..." mlforensics cache clear`,
	PreRunE: cacheSetup,
	Run: func(_ *cobra.Command, _ []string) {
		iocache.CloseStores()
		if err := iocache.ClearCache(cfg.CacheBackend, dbFilePath(cfg.CacheDBConnect, contract.GetCacheDBFilePath()), cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show detailed information about the commit history cache.

Displays:
- Backend type and connection status
- Total number of cached entries
- Last and oldest cache entry timestamps
- Cache database size

Examples:
  # Check cache status
  mlforensics cache status`,
	PreRunE: cacheSetup,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetHistoryStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(status)
	},
}
