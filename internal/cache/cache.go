package cache

import (
	"context"

	"github.com/antonio-alexander/go-employees/internal"
	"github.com/antonio-alexander/go-employees/internal/data"

	stashmemory "github.com/antonio-alexander/go-stash/memory"
	stashredis "github.com/antonio-alexander/go-stash/redis"
	"github.com/pkg/errors"
)

const (
	TypeMemory      string = "memory"
	TypeRedis       string = "redis"
	TypeStashMemory string = "stash-memory"
	TypeStashRedis  string = "stash-redis"
)

var ErrEmployeeNotCached = errors.New("employee not cached")

// Cache holds employees keyed by id; a read of an employee that isn't
// cached returns ErrEmployeeNotCached.
type Cache interface {
	EmployeeRead(ctx context.Context, id int64) (*data.Employee, error)
	EmployeesWrite(ctx context.Context, employees ...*data.Employee) error
	EmployeesDelete(ctx context.Context, ids ...int64) error
}

// NewCache returns the cache for cacheType (e.g. CACHE_TYPE) or nil if
// cacheType is empty or unknown
func NewCache(cacheType string, parameters ...any) interface {
	internal.Configurer
	internal.Opener
	internal.Clearer
	Cache
} {
	switch cacheType {
	default:
		return nil
	case TypeMemory:
		return NewMemory(parameters...)
	case TypeRedis:
		return NewRedis(parameters...)
	case TypeStashMemory:
		return NewStash(append(parameters, stashmemory.New())...)
	case TypeStashRedis:
		return NewStash(append(parameters, stashredis.New())...)
	}
}

func copyEmployee(e *data.Employee) *data.Employee {
	employee := &data.Employee{}
	*employee = *e
	return employee
}
