package cache

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/antonio-alexander/go-employees/internal"
	"github.com/antonio-alexander/go-employees/internal/data"
	"github.com/antonio-alexander/go-employees/internal/utilities"

	"github.com/cenkalti/backoff/v5"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const hashKeyEmployees string = "employees"

type redisCache struct {
	redisClient *redis.Client
	config      struct {
		address         string
		port            string
		password        string
		database        int
		timeout         time.Duration
		connectMaxTries uint
	}
	logger utilities.Logger
}

func NewRedis(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	internal.Clearer
	Cache
} {
	c := &redisCache{}
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case utilities.Logger:
			c.logger = p
		}
	}
	if c.logger == nil {
		c.logger = utilities.NewLogger()
	}
	c.config.address = "localhost"
	c.config.port = "6379"
	c.config.timeout = 10 * time.Second
	c.config.connectMaxTries = 5
	return c
}

func (c *redisCache) Configure(envs map[string]string) error {
	if redisAddress, ok := envs["REDIS_ADDRESS"]; ok && redisAddress != "" {
		c.config.address = redisAddress
	}
	if redisPort, ok := envs["REDIS_PORT"]; ok && redisPort != "" {
		c.config.port = redisPort
	}
	if redisPassword, ok := envs["REDIS_PASSWORD"]; ok {
		c.config.password = redisPassword
	}
	if redisDatabase, ok := envs["REDIS_DATABASE"]; ok {
		i, _ := strconv.ParseInt(redisDatabase, 10, 64)
		c.config.database = int(i)
	}
	if redisTimeout, ok := envs["REDIS_TIMEOUT"]; ok {
		if i, err := strconv.ParseInt(redisTimeout, 10, 64); err == nil && i > 0 {
			c.config.timeout = time.Duration(i) * time.Second
		}
	}
	if connectMaxTries, ok := envs["REDIS_CONNECT_MAX_TRIES"]; ok {
		if i, err := strconv.ParseUint(connectMaxTries, 10, 64); err == nil && i > 0 {
			c.config.connectMaxTries = uint(i)
		}
	}
	return nil
}

func (c *redisCache) Open(ctx context.Context) error {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(c.config.address, c.config.port),
		Password: c.config.password,
		DB:       c.config.database,
	})
	if _, err := backoff.Retry(ctx, func() (string, error) {
		return redisClient.Ping(ctx).Result()
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(c.config.connectMaxTries)); err != nil {
		_ = redisClient.Close()
		return errors.Wrap(err, "unable to connect to redis")
	}
	c.redisClient = redisClient
	return nil
}

func (c *redisCache) Close(ctx context.Context) error {
	if c.redisClient == nil {
		return nil
	}
	if err := c.redisClient.Close(); err != nil {
		c.logger.Error(ctx, "error while shutting down redis client: %s", err)
	}
	return nil
}

func (c *redisCache) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.timeout)
	defer cancel()

	if _, err := c.redisClient.Del(ctx, hashKeyEmployees).Result(); err != nil {
		return err
	}
	return nil
}

func (c *redisCache) EmployeeRead(ctx context.Context, id int64) (*data.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.timeout)
	defer cancel()

	value, err := c.redisClient.HGet(ctx, hashKeyEmployees, fmt.Sprint(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.logger.Trace(ctx, "cache miss for employee: %d", id)
			return nil, ErrEmployeeNotCached
		}
		return nil, err
	}
	employee := &data.Employee{}
	if err := employee.UnmarshalBinary([]byte(value)); err != nil {
		return nil, err
	}
	c.logger.Trace(ctx, "cache hit for employee: %d", id)
	return employee, nil
}

func (c *redisCache) EmployeesWrite(ctx context.Context, employees ...*data.Employee) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.timeout)
	defer cancel()

	if len(employees) == 0 {
		return nil
	}
	values := make([]any, 0, 2*len(employees))
	for _, employee := range employees {
		bytes, err := employee.MarshalBinary()
		if err != nil {
			return err
		}
		values = append(values, fmt.Sprint(employee.Id), string(bytes))
	}
	if _, err := c.redisClient.HSet(ctx, hashKeyEmployees, values...).Result(); err != nil {
		return err
	}
	return nil
}

func (c *redisCache) EmployeesDelete(ctx context.Context, ids ...int64) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.timeout)
	defer cancel()

	if len(ids) == 0 {
		return nil
	}
	fields := make([]string, 0, len(ids))
	for _, id := range ids {
		fields = append(fields, fmt.Sprint(id))
	}
	if _, err := c.redisClient.HDel(ctx, hashKeyEmployees, fields...).Result(); err != nil {
		return err
	}
	return nil
}
