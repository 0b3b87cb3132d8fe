package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/antonio-alexander/go-employees/internal"
	"github.com/antonio-alexander/go-employees/internal/data"
	"github.com/antonio-alexander/go-employees/internal/utilities"

	"github.com/pkg/errors"
)

type memoryEntry struct {
	employee *data.Employee
	expires  time.Time
}

type memoryCache struct {
	sync.Mutex
	entries map[int64]memoryEntry
	logger  utilities.Logger
	ttl     time.Duration
}

// NewMemory returns a process local cache; entries never expire unless
// CACHE_TTL (seconds) is configured
func NewMemory(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	internal.Clearer
	Cache
} {
	c := &memoryCache{entries: make(map[int64]memoryEntry)}
	for _, parameter := range parameters {
		if logger, ok := parameter.(utilities.Logger); ok {
			c.logger = logger
		}
	}
	if c.logger == nil {
		c.logger = utilities.NewLogger()
	}
	return c
}

func (c *memoryCache) Configure(envs map[string]string) error {
	c.Lock()
	defer c.Unlock()

	if s := envs["CACHE_TTL"]; s != "" {
		ttl, err := strconv.Atoi(s)
		if err != nil {
			return errors.Wrapf(err, "CACHE_TTL: %q", s)
		}
		c.ttl = time.Duration(ttl) * time.Second
	}
	return nil
}

func (c *memoryCache) Open(ctx context.Context) error {
	return nil
}

func (c *memoryCache) Close(ctx context.Context) error {
	return c.Clear(ctx)
}

func (c *memoryCache) Clear(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	clear(c.entries)
	return nil
}

func (c *memoryCache) EmployeeRead(ctx context.Context, id int64) (*data.Employee, error) {
	c.Lock()
	defer c.Unlock()

	entry, ok := c.entries[id]
	switch {
	case !ok:
		c.logger.Trace(ctx, "cache miss for employee: %d", id)
		return nil, ErrEmployeeNotCached
	case !entry.expires.IsZero() && time.Now().After(entry.expires):
		delete(c.entries, id)
		c.logger.Trace(ctx, "cached employee expired: %d", id)
		return nil, ErrEmployeeNotCached
	}
	c.logger.Trace(ctx, "cache hit for employee: %d", id)
	return copyEmployee(entry.employee), nil
}

func (c *memoryCache) EmployeesWrite(ctx context.Context, employees ...*data.Employee) error {
	c.Lock()
	defer c.Unlock()

	var expires time.Time
	if c.ttl > 0 {
		expires = time.Now().Add(c.ttl)
	}
	for _, employee := range employees {
		if employee == nil {
			continue
		}
		c.entries[employee.Id] = memoryEntry{
			employee: copyEmployee(employee),
			expires:  expires,
		}
		c.logger.Trace(ctx, "cached employee: %d", employee.Id)
	}
	return nil
}

func (c *memoryCache) EmployeesDelete(ctx context.Context, ids ...int64) error {
	c.Lock()
	defer c.Unlock()

	for _, id := range ids {
		delete(c.entries, id)
		c.logger.Trace(ctx, "evicted cached employee: %d", id)
	}
	return nil
}
