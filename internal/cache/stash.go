package cache

import (
	"context"
	"fmt"

	"github.com/antonio-alexander/go-employees/internal"
	"github.com/antonio-alexander/go-employees/internal/data"
	"github.com/antonio-alexander/go-employees/internal/utilities"

	"github.com/antonio-alexander/go-stash"
)

type stashCache struct {
	logger utilities.Logger
	stash  interface {
		stash.Configurer
		stash.Parameterizer
		stash.Initializer
		stash.Shutdowner
		stash.Stasher
	}
}

// NewStash adapts a go-stash implementation (memory or redis) provided as a
// parameter into a Cache.
func NewStash(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	internal.Clearer
	Cache
} {
	c := &stashCache{}
	for _, p := range parameters {
		switch p := p.(type) {
		case utilities.Logger:
			c.logger = p
		case interface {
			stash.Configurer
			stash.Parameterizer
			stash.Initializer
			stash.Shutdowner
			stash.Stasher
		}:
			c.stash = p
		}
	}
	if c.logger == nil {
		c.logger = utilities.NewLogger()
	}
	if c.stash != nil {
		c.stash.SetParameters(parameters...)
	}
	return c
}

func (c *stashCache) Configure(envs map[string]string) error {
	if c.stash == nil {
		return nil
	}
	return c.stash.Configure(envs)
}

func (c *stashCache) Open(ctx context.Context) error {
	if c.stash == nil {
		return nil
	}
	return c.stash.Initialize()
}

func (c *stashCache) Close(ctx context.Context) error {
	if c.stash == nil {
		return nil
	}
	return c.stash.Shutdown()
}

func (c *stashCache) Clear(ctx context.Context) error {
	if c.stash == nil {
		return nil
	}
	return c.stash.Clear()
}

func (c *stashCache) EmployeeRead(ctx context.Context, id int64) (*data.Employee, error) {
	if c.stash == nil {
		return nil, ErrEmployeeNotCached
	}
	employee := &data.Employee{}
	if err := c.stash.Read(fmt.Sprint(id), employee); err != nil {
		c.logger.Trace(ctx, "cache miss for employee (%d): %s", id, err)
		return nil, ErrEmployeeNotCached
	}
	c.logger.Trace(ctx, "cache hit for employee: %d", id)
	return employee, nil
}

func (c *stashCache) EmployeesWrite(ctx context.Context, employees ...*data.Employee) error {
	if c.stash == nil {
		return nil
	}
	for _, employee := range employees {
		if _, err := c.stash.Write(fmt.Sprint(employee.Id), employee); err != nil {
			c.logger.Error(ctx, "error while writing employee (%d): %s", employee.Id, err)
			return err
		}
		c.logger.Trace(ctx, "cached employee: %d", employee.Id)
	}
	return nil
}

func (c *stashCache) EmployeesDelete(ctx context.Context, ids ...int64) error {
	if c.stash == nil {
		return nil
	}
	for _, id := range ids {
		if err := c.stash.Delete(fmt.Sprint(id)); err != nil {
			//KIM: deleting an employee that was never cached isn't an error
			c.logger.Trace(ctx, "unable to evict employee (%d): %s", id, err)
			continue
		}
		c.logger.Trace(ctx, "evicted cached employee: %d", id)
	}
	return nil
}
