package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/antonio-alexander/go-employees/internal"
	"github.com/antonio-alexander/go-employees/internal/cache"
	"github.com/antonio-alexander/go-employees/internal/data"
	"github.com/antonio-alexander/go-employees/internal/utilities"

	"github.com/pkg/errors"
)

// Client mirrors the endpoints of the employee service; errors returned
// by the service are mapped back to the kinds in data (e.g. ErrNotFound)
type Client interface {
	EmployeesRead(ctx context.Context) ([]*data.Employee, error)
	EmployeeRead(ctx context.Context, id int64) (*data.Employee, error)
	EmployeeCreate(ctx context.Context, employee data.Employee) (*data.Employee, error)
	EmployeeUpdate(ctx context.Context, employee data.Employee) (*data.Employee, error)
	EmployeePatch(ctx context.Context, id int64, patch data.EmployeePatch) (*data.Employee, error)
	EmployeeDelete(ctx context.Context, id int64) (string, error)
	CacheClear(ctx context.Context) error
	CacheCountersRead(ctx context.Context) (*data.CacheCounters, error)
	CacheCountersClear(ctx context.Context) error
	TimersRead(ctx context.Context) (*data.Timers, error)
	TimersClear(ctx context.Context) error
}

type client struct {
	sync.RWMutex
	config struct {
		protocol      string
		address       string
		port          string
		timeout       time.Duration
		sslCaFile     string
		sslCrtFile    string
		sslKeyFile    string
		cacheDisabled bool
	}
	address string
	cache   cache.Cache
	logger  utilities.Logger
	client  *http.Client
}

func NewClient(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	Client
} {
	c := &client{client: &http.Client{}}
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case cache.Cache:
			c.cache = p
		case utilities.Logger:
			c.logger = p
		}
	}
	if c.logger == nil {
		c.logger = utilities.NewLogger()
	}
	c.config.protocol = "http"
	c.config.address = "localhost"
	c.config.port = "8080"
	c.config.timeout = 10 * time.Second
	return c
}

func (c *client) cacheEnabled() bool {
	c.RLock()
	defer c.RUnlock()

	return c.cache != nil && !c.config.cacheDisabled
}

func (c *client) evict(ctx context.Context, id int64) {
	if !c.cacheEnabled() {
		return
	}
	if err := c.cache.EmployeesDelete(ctx, id); err != nil {
		c.logger.Error(ctx, "error while deleting employee (%d) from cache: %s", id, err)
	}
}

func (c *client) doRequest(ctx context.Context, route, method string, item any) ([]byte, error) {
	var body io.Reader

	if item != nil {
		encoded, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(encoded)
	}
	request, err := http.NewRequestWithContext(ctx, method, c.address+route, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if correlationId := internal.CorrelationIdFromCtx(ctx); correlationId != "" {
		request.Header.Set(internal.HeaderCorrelationId, correlationId)
	}
	response, err := c.client.Do(request)
	if err != nil {
		return nil, errors.Wrap(data.ErrStorageUnavailable, err.Error())
	}
	defer response.Body.Close()
	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}
	switch response.StatusCode {
	default:
		return nil, statusError(response.StatusCode, responseBody)
	case http.StatusOK, http.StatusNoContent:
		return responseBody, nil
	}
}

func (c *client) Configure(envs map[string]string) error {
	c.Lock()
	defer c.Unlock()

	if address, ok := envs["CLIENT_ADDRESS"]; ok && address != "" {
		c.config.address = address
	}
	if port, ok := envs["CLIENT_PORT"]; ok && port != "" {
		c.config.port = port
	}
	if protocol, ok := envs["CLIENT_PROTOCOL"]; ok && protocol != "" {
		c.config.protocol = protocol
	}
	if timeout, ok := envs["CLIENT_TIMEOUT"]; ok && timeout != "" {
		i, err := strconv.ParseInt(timeout, 10, 64)
		if err != nil {
			return errors.Wrapf(err, "CLIENT_TIMEOUT: %q", timeout)
		}
		c.config.timeout = time.Duration(i) * time.Second
	}
	if sslCaFile, ok := envs["SSL_CA_FILE"]; ok {
		c.config.sslCaFile = sslCaFile
	}
	if sslKeyFile, ok := envs["SSL_KEY_FILE"]; ok {
		c.config.sslKeyFile = sslKeyFile
	}
	if sslCrtFile, ok := envs["SSL_CRT_FILE"]; ok {
		c.config.sslCrtFile = sslCrtFile
	}
	if cacheDisabled, ok := envs["CACHE_DISABLED"]; ok {
		c.config.cacheDisabled, _ = strconv.ParseBool(cacheDisabled)
	}
	return nil
}

func (c *client) Open(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	switch c.config.protocol {
	default:
		return errors.Errorf("unsupported protocol: %s", c.config.protocol)
	case "http", "https":
		c.address = fmt.Sprintf("%s://%s", c.config.protocol,
			net.JoinHostPort(c.config.address, c.config.port))
	}
	if c.cache == nil || c.config.cacheDisabled {
		c.logger.Info(ctx, "client: cache disabled")
	}
	c.client.Timeout = c.config.timeout
	transport, err := getTransport(c.config.sslCaFile, c.config.sslCrtFile,
		c.config.sslKeyFile)
	if err != nil {
		return err
	}
	c.client.Transport = transport
	return nil
}

func (c *client) Close(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	c.client.CloseIdleConnections()
	return nil
}

func (c *client) EmployeesRead(ctx context.Context) ([]*data.Employee, error) {
	var employees []*data.Employee

	bytes, err := c.doRequest(ctx, data.RouteEmployees, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(bytes, &employees); err != nil {
		return nil, err
	}
	return employees, nil
}

func (c *client) EmployeeRead(ctx context.Context, id int64) (*data.Employee, error) {
	cacheEnabled := c.cacheEnabled()
	if cacheEnabled {
		employee, err := c.cache.EmployeeRead(ctx, id)
		if err == nil {
			return employee, nil
		}
		if !errors.Is(err, cache.ErrEmployeeNotCached) {
			c.logger.Error(ctx, "error while reading employee (%d) from cache: %s", id, err)
		}
	}
	bytes, err := c.doRequest(ctx, fmt.Sprintf(data.RouteEmployeesIdf, id),
		http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	employee := &data.Employee{}
	if err := employee.UnmarshalBinary(bytes); err != nil {
		return nil, err
	}
	if cacheEnabled {
		if err := c.cache.EmployeesWrite(ctx, employee); err != nil {
			c.logger.Error(ctx, "error while writing employee (%d) to cache: %s", id, err)
		}
	}
	return employee, nil
}

func (c *client) EmployeeCreate(ctx context.Context, employee data.Employee) (*data.Employee, error) {
	bytes, err := c.doRequest(ctx, data.RouteEmployees, http.MethodPost, &employee)
	if err != nil {
		return nil, err
	}
	employeeCreated := &data.Employee{}
	if err := employeeCreated.UnmarshalBinary(bytes); err != nil {
		return nil, err
	}
	return employeeCreated, nil
}

func (c *client) EmployeeUpdate(ctx context.Context, employee data.Employee) (*data.Employee, error) {
	bytes, err := c.doRequest(ctx, data.RouteEmployees, http.MethodPut, &employee)
	if err != nil {
		return nil, err
	}
	employeeUpdated := &data.Employee{}
	if err := employeeUpdated.UnmarshalBinary(bytes); err != nil {
		return nil, err
	}
	c.evict(ctx, employeeUpdated.Id)
	return employeeUpdated, nil
}

func (c *client) EmployeePatch(ctx context.Context, id int64, patch data.EmployeePatch) (*data.Employee, error) {
	if patch == nil {
		patch = data.EmployeePatch{}
	}
	bytes, err := c.doRequest(ctx, fmt.Sprintf(data.RouteEmployeesIdf, id),
		http.MethodPatch, patch)
	if err != nil {
		return nil, err
	}
	employeePatched := &data.Employee{}
	if err := employeePatched.UnmarshalBinary(bytes); err != nil {
		return nil, err
	}
	c.evict(ctx, id)
	return employeePatched, nil
}

func (c *client) EmployeeDelete(ctx context.Context, id int64) (string, error) {
	bytes, err := c.doRequest(ctx, fmt.Sprintf(data.RouteEmployeesIdf, id),
		http.MethodDelete, nil)
	if err != nil {
		return "", err
	}
	c.evict(ctx, id)
	return string(bytes), nil
}

func (c *client) CacheClear(ctx context.Context) error {
	if _, err := c.doRequest(ctx, data.RouteCache, http.MethodDelete, nil); err != nil {
		return err
	}
	return nil
}

func (c *client) CacheCountersRead(ctx context.Context) (*data.CacheCounters, error) {
	bytes, err := c.doRequest(ctx, data.RouteCacheCounters, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	cacheCounters := &data.CacheCounters{}
	if err := json.Unmarshal(bytes, cacheCounters); err != nil {
		return nil, err
	}
	return cacheCounters, nil
}

func (c *client) CacheCountersClear(ctx context.Context) error {
	if _, err := c.doRequest(ctx, data.RouteCacheCounters, http.MethodDelete, nil); err != nil {
		return err
	}
	return nil
}

func (c *client) TimersRead(ctx context.Context) (*data.Timers, error) {
	bytes, err := c.doRequest(ctx, data.RouteTimers, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	timers := &data.Timers{}
	if err := json.Unmarshal(bytes, timers); err != nil {
		return nil, err
	}
	return timers, nil
}

func (c *client) TimersClear(ctx context.Context) error {
	if _, err := c.doRequest(ctx, data.RouteTimers, http.MethodDelete, nil); err != nil {
		return err
	}
	return nil
}
