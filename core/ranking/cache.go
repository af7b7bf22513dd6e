package ranking

import (
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache keeps recently loaded ranking databases in memory, keyed by path.
// Ranking tables are large and shared read-only across workers, so one load
// serves every stage of a run and survives across runs of a long-lived
// process.
type Cache struct {
	lru    *lru.Cache[string, *Database]
	logger *slog.Logger
}

// NewCache creates a cache holding up to size databases.
func NewCache(size int, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	l, err := lru.New[string, *Database](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l, logger: logger}, nil
}

// Load returns the database for ref, loading and caching it on first use.
func (c *Cache) Load(ref RankingRef) (*Database, error) {
	if db, ok := c.lru.Get(ref.Path); ok {
		return db, nil
	}
	c.logger.Info("loading ranking database",
		slog.String("name", ref.Name),
		slog.String("path", ref.Path))
	db, err := LoadDatabase(ref.Name, ref.Path)
	if err != nil {
		return nil, err
	}
	c.lru.Add(ref.Path, db)
	return db, nil
}
