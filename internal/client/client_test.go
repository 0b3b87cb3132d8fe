package client_test

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/antonio-alexander/go-employees/internal"
	"github.com/antonio-alexander/go-employees/internal/cache"
	"github.com/antonio-alexander/go-employees/internal/client"
	"github.com/antonio-alexander/go-employees/internal/data"
	"github.com/antonio-alexander/go-employees/internal/logic"
	"github.com/antonio-alexander/go-employees/internal/service"
	"github.com/antonio-alexander/go-employees/internal/sql"
	"github.com/antonio-alexander/go-employees/internal/utilities"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

var (
	envs = map[string]string{
		//sql
		"DATABASE_DRIVER": "sqlite3",
		"DATABASE_FILE":   ":memory:",

		//logic
		"LOGIC_CACHE_ENABLED": "true",

		//service
		"SERVICE_ADDRESS":        "localhost",
		"SERVICE_PORT":           "18082",
		"SERVICE_TIMERS_ENABLED": "true",

		//client
		"CLIENT_ADDRESS":  "localhost",
		"CLIENT_PORT":     "18082",
		"CLIENT_PROTOCOL": "http",
		"CLIENT_TIMEOUT":  "10",
		"SSL_CA_FILE":     "",
		"SSL_KEY_FILE":    "",
		"SSL_CRT_FILE":    "",
		"CACHE_DISABLED":  "false",
	}
)

func init() {
	for _, env := range os.Environ() {
		if s := strings.Split(env, "="); len(s) > 1 {
			if strings.HasPrefix(s[0], "CLIENT_") {
				envs[s[0]] = strings.Join(s[1:], "=")
			}
		}
	}
}

// newService starts an employee service backed by an in-memory
// sqlite database for the client to talk to
func newService(ctx context.Context, envs map[string]string) (internal.Closer, error) {
	store := sql.NewSql()
	memory := cache.NewMemory()
	l := logic.NewLogic(store, memory)
	s := service.NewService(l, memory)
	for _, c := range []internal.Configurer{store, memory, l, s} {
		if err := c.Configure(envs); err != nil {
			return nil, err
		}
	}
	for _, o := range []internal.Opener{store, memory, l, s} {
		if err := o.Open(ctx); err != nil {
			return nil, err
		}
	}
	return s, nil
}

type clientTest struct {
	cache interface {
		internal.Opener
		internal.Configurer
		internal.Clearer
		cache.Cache
	}
	client interface {
		internal.Opener
		internal.Configurer
	}
	client.Client
}

func newClientTest() *clientTest {
	c := cache.NewMemory()
	client := client.NewClient(c, utilities.NewLogger())
	return &clientTest{
		cache:  c,
		client: client,
		Client: client,
	}
}

func (c *clientTest) Configure(envs map[string]string) error {
	if err := c.cache.Configure(envs); err != nil {
		return err
	}
	if err := c.client.Configure(envs); err != nil {
		return err
	}
	return nil
}

func (c *clientTest) Open(ctx context.Context) error {
	if err := c.cache.Open(ctx); err != nil {
		return err
	}
	if err := c.client.Open(ctx); err != nil {
		return err
	}
	return nil
}

func (c *clientTest) Close(ctx context.Context) error {
	if err := c.client.Close(ctx); err != nil {
		return err
	}
	if err := c.cache.Close(ctx); err != nil {
		return err
	}
	return nil
}

func (c *clientTest) TestClient(t *testing.T) {
	ctx := internal.CtxWithCorrelationId(context.TODO(), internal.GenerateId())

	// create employee
	employeeCreated, err := c.EmployeeCreate(ctx, data.Employee{
		FirstName: "Alice",
		LastName:  "Smith",
		Email:     "alice@example.com",
	})
	assert.Nil(t, err)
	if !assert.NotNil(t, employeeCreated) {
		return
	}
	assert.NotZero(t, employeeCreated.Id)
	id := employeeCreated.Id

	// read employee
	employeeRead, err := c.EmployeeRead(ctx, id)
	assert.Nil(t, err)
	assert.Equal(t, employeeCreated, employeeRead)

	// read employee (again)
	employeeRead, err = c.EmployeeRead(ctx, id)
	assert.Nil(t, err)
	assert.Equal(t, employeeCreated, employeeRead)

	// read employees
	employeesRead, err := c.EmployeesRead(ctx)
	assert.Nil(t, err)
	assert.Contains(t, employeesRead, employeeCreated)

	// patch employee
	employeePatched, err := c.EmployeePatch(ctx, id, data.EmployeePatch{
		data.FieldFirstName: "Bob",
	})
	assert.Nil(t, err)
	if assert.NotNil(t, employeePatched) {
		assert.Equal(t, "Bob", employeePatched.FirstName)
		assert.Equal(t, "Smith", employeePatched.LastName)
	}

	// read employee (patched)
	employeeRead, err = c.EmployeeRead(ctx, id)
	assert.Nil(t, err)
	assert.Equal(t, employeePatched, employeeRead)

	// update employee
	employeeUpdated, err := c.EmployeeUpdate(ctx, data.Employee{
		Id:        id,
		FirstName: "Carol",
		LastName:  "Jones",
	})
	assert.Nil(t, err)
	assert.Equal(t, &data.Employee{Id: id, FirstName: "Carol", LastName: "Jones"}, employeeUpdated)

	// patch employee (id in body)
	_, err = c.EmployeePatch(ctx, id, data.EmployeePatch{data.FieldId: 5})
	assert.True(t, errors.Is(err, data.ErrInvalidRequest))

	// delete employee
	message, err := c.EmployeeDelete(ctx, id)
	assert.Nil(t, err)
	assert.Equal(t, fmt.Sprintf("deleted employee %d", id), message)

	// read employee (deleted)
	employeeRead, err = c.EmployeeRead(ctx, id)
	assert.True(t, errors.Is(err, data.ErrNotFound))
	assert.Nil(t, employeeRead)

	// delete employee (deleted)
	_, err = c.EmployeeDelete(ctx, id)
	assert.True(t, errors.Is(err, data.ErrNotFound))

	// patch employee (deleted)
	_, err = c.EmployeePatch(ctx, id, data.EmployeePatch{data.FieldFirstName: "Bob"})
	assert.True(t, errors.Is(err, data.ErrNotFound))
}

func (c *clientTest) TestClientUtilities(t *testing.T) {
	ctx := context.TODO()

	// cache counters
	cacheCounters, err := c.CacheCountersRead(ctx)
	assert.Nil(t, err)
	assert.NotNil(t, cacheCounters)
	err = c.CacheCountersClear(ctx)
	assert.Nil(t, err)

	// timers
	timers, err := c.TimersRead(ctx)
	assert.Nil(t, err)
	if assert.NotNil(t, timers) {
		assert.NotEmpty(t, timers.Totals)
	}
	err = c.TimersClear(ctx)
	assert.Nil(t, err)

	// cache
	err = c.CacheClear(ctx)
	assert.Nil(t, err)
}

func testClient(t *testing.T, cacheDisabled bool) {
	ctx := context.TODO()
	envs := copyEnvs(envs)
	envs["CACHE_DISABLED"] = strconv.FormatBool(cacheDisabled)
	s, err := newService(ctx, envs)
	if !assert.Nil(t, err) {
		assert.FailNow(t, "unable to start service")
	}
	defer func() {
		_ = s.Close(ctx)
	}()

	c := newClientTest()
	err = c.Configure(envs)
	if !assert.Nil(t, err) {
		assert.FailNow(t, "unable to configure clientTest")
	}
	err = c.Open(ctx)
	if !assert.Nil(t, err) {
		assert.FailNow(t, "unable to open clientTest")
	}
	defer func() {
		if err := c.Close(ctx); err != nil {
			t.Logf("error while closing clientTest: %s", err)
		}
	}()
	t.Run("Client", c.TestClient)
	t.Run("Client Utilities", c.TestClientUtilities)
}

func copyEnvs(envs map[string]string) map[string]string {
	copied := make(map[string]string, len(envs))
	for key, value := range envs {
		copied[key] = value
	}
	return copied
}

func TestClientCache(t *testing.T) {
	testClient(t, false)
}

func TestClientNoCache(t *testing.T) {
	testClient(t, true)
}

func TestClientUnavailable(t *testing.T) {
	ctx := context.TODO()
	c := client.NewClient()
	err := c.Configure(map[string]string{
		"CLIENT_ADDRESS": "localhost",
		"CLIENT_PORT":    "18089",
		"CLIENT_TIMEOUT": "1",
	})
	assert.Nil(t, err)
	err = c.Open(ctx)
	assert.Nil(t, err)
	_, err = c.EmployeesRead(ctx)
	assert.True(t, errors.Is(err, data.ErrStorageUnavailable))
}
