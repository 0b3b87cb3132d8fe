package logic

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/antonio-alexander/go-employees/internal"
	"github.com/antonio-alexander/go-employees/internal/cache"
	"github.com/antonio-alexander/go-employees/internal/data"
	"github.com/antonio-alexander/go-employees/internal/merge"
	"github.com/antonio-alexander/go-employees/internal/sql"
	"github.com/antonio-alexander/go-employees/internal/utilities"

	"github.com/pkg/errors"
)

const counterEmployeeRead string = "employee_read"

// Logic implements the employee operations on top of a store (sql.Sql) and a
// merge (merge.Merge); it holds no employee state of its own.
type Logic interface {
	EmployeesRead(ctx context.Context) ([]*data.Employee, error)
	EmployeeRead(ctx context.Context, id int64) (*data.Employee, error)
	EmployeeCreate(ctx context.Context, employee data.Employee) (*data.Employee, error)
	EmployeeUpdate(ctx context.Context, employee data.Employee) (*data.Employee, error)
	EmployeePatch(ctx context.Context, id int64, patch data.EmployeePatch) (*data.Employee, error)
	EmployeeDelete(ctx context.Context, id int64) (string, error)
}

type logic struct {
	sync.RWMutex
	store   sql.Sql
	merge   merge.Merge
	cache   cache.Cache
	counter utilities.Counter
	logger  utilities.Logger
	config  struct {
		cacheEnabled   bool
		mutateDisabled bool
	}
}

func NewLogic(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	Logic
} {
	l := &logic{}
	for _, parameter := range parameters {
		switch v := parameter.(type) {
		case sql.Sql:
			l.store = v
		case merge.Merge:
			l.merge = v
		case cache.Cache:
			l.cache = v
		case utilities.Counter:
			l.counter = v
		case utilities.Logger:
			l.logger = v
		}
	}
	if l.merge == nil {
		l.merge = merge.NewMerge()
	}
	if l.logger == nil {
		l.logger = utilities.NewLogger()
	}
	if l.counter == nil {
		l.counter = utilities.NewCounter()
	}
	return l
}

func (l *logic) Configure(envs map[string]string) error {
	l.Lock()
	defer l.Unlock()

	if cacheEnabled, ok := envs["LOGIC_CACHE_ENABLED"]; ok {
		l.config.cacheEnabled, _ = strconv.ParseBool(cacheEnabled)
	}
	if mutateDisabled, ok := envs["MUTATE_DISABLED"]; ok {
		l.config.mutateDisabled, _ = strconv.ParseBool(mutateDisabled)
	}
	return nil
}

func (l *logic) Open(ctx context.Context) error {
	l.Lock()
	defer l.Unlock()

	if l.store == nil {
		return errors.New("logic: no store provided")
	}
	if l.config.cacheEnabled && l.cache == nil {
		l.logger.Info(ctx, "cache enabled, but no cache provided; disabling cache")
		l.config.cacheEnabled = false
	}
	if l.config.cacheEnabled {
		l.logger.Info(ctx, "cache enabled")
	}
	if l.config.mutateDisabled {
		l.logger.Info(ctx, "mutation disabled")
	}
	return nil
}

func (l *logic) Close(ctx context.Context) error {
	return nil
}

func (l *logic) cacheEnabled() bool {
	l.RLock()
	defer l.RUnlock()

	return l.config.cacheEnabled
}

func (l *logic) mutateDisabled() bool {
	l.RLock()
	defer l.RUnlock()

	return l.config.mutateDisabled
}

func (l *logic) evict(ctx context.Context, id int64) {
	if !l.cacheEnabled() {
		return
	}
	if err := l.cache.EmployeesDelete(ctx, id); err != nil {
		l.logger.Error(ctx, "error while deleting employee (%d) from cache: %s", id, err)
	}
}

func (l *logic) EmployeesRead(ctx context.Context) ([]*data.Employee, error) {
	return l.store.EmployeesRead(ctx)
}

func (l *logic) EmployeeRead(ctx context.Context, id int64) (*data.Employee, error) {
	cacheEnabled := l.cacheEnabled()
	if cacheEnabled {
		employee, err := l.cache.EmployeeRead(ctx, id)
		if err == nil {
			l.counter.IncrementHit(counterEmployeeRead)
			return employee, nil
		}
		l.counter.IncrementMiss(counterEmployeeRead)
		if !errors.Is(err, cache.ErrEmployeeNotCached) {
			l.logger.Error(ctx, "error while reading employee (%d) from cache: %s", id, err)
		}
	}
	employee, err := l.store.EmployeeRead(ctx, id)
	if err != nil {
		return nil, err
	}
	//KIM: a mutation that saves and evicts between the store read above and
	// this write leaves the older record cached until it's evicted or expires
	if cacheEnabled {
		if err := l.cache.EmployeesWrite(ctx, employee); err != nil {
			l.logger.Error(ctx, "error while writing employee (%d) to cache: %s", id, err)
		}
	}
	return employee, nil
}

func (l *logic) EmployeeCreate(ctx context.Context, employee data.Employee) (*data.Employee, error) {
	if l.mutateDisabled() {
		return nil, data.ErrMutationDisabled
	}
	// any id provided is discarded so the store always inserts
	employee.Id = 0
	return l.store.EmployeeSave(ctx, employee)
}

func (l *logic) EmployeeUpdate(ctx context.Context, employee data.Employee) (*data.Employee, error) {
	if l.mutateDisabled() {
		return nil, data.ErrMutationDisabled
	}
	//KIM: there's no existence check here, the store upserts
	employeeSaved, err := l.store.EmployeeSave(ctx, employee)
	if err != nil {
		return nil, err
	}
	l.evict(ctx, employeeSaved.Id)
	return employeeSaved, nil
}

func (l *logic) EmployeePatch(ctx context.Context, id int64, patch data.EmployeePatch) (*data.Employee, error) {
	if l.mutateDisabled() {
		return nil, data.ErrMutationDisabled
	}
	if patch.HasId() {
		return nil, errors.Wrapf(data.ErrInvalidRequest,
			"employee id is not allowed in the request body, %d", id)
	}
	// the existing employee is read from the store rather than the cache
	// so the merge starts from the latest persisted version
	employee, err := l.store.EmployeeRead(ctx, id)
	if err != nil {
		return nil, err
	}
	employeeMerged, err := l.merge.EmployeeMerge(*employee, patch)
	if err != nil {
		return nil, err
	}
	employeeMerged.Id = id
	employeeSaved, err := l.store.EmployeeSave(ctx, *employeeMerged)
	if err != nil {
		return nil, err
	}
	l.evict(ctx, id)
	return employeeSaved, nil
}

func (l *logic) EmployeeDelete(ctx context.Context, id int64) (string, error) {
	if l.mutateDisabled() {
		return "", data.ErrMutationDisabled
	}
	if _, err := l.store.EmployeeRead(ctx, id); err != nil {
		return "", err
	}
	if err := l.store.EmployeeDelete(ctx, id); err != nil {
		return "", err
	}
	l.evict(ctx, id)
	return fmt.Sprintf(data.MessageEmployeeDeletedf, id), nil
}
