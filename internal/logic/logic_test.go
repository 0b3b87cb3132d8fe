package logic_test

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/antonio-alexander/go-employees/internal"
	"github.com/antonio-alexander/go-employees/internal/cache"
	"github.com/antonio-alexander/go-employees/internal/data"
	"github.com/antonio-alexander/go-employees/internal/logic"
	"github.com/antonio-alexander/go-employees/internal/merge"
	"github.com/antonio-alexander/go-employees/internal/sql"
	"github.com/antonio-alexander/go-employees/internal/utilities"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

var envs = map[string]string{
	//sql
	"DATABASE_DRIVER": "sqlite3",
	"DATABASE_FILE":   ":memory:",
	//merge
	"MERGE_STRICT": "false",
	//logic
	"LOGIC_CACHE_ENABLED": "true",
	"MUTATE_DISABLED":     "false",
}

func init() {
	for _, env := range os.Environ() {
		if s := strings.Split(env, "="); len(s) > 1 {
			envs[s[0]] = strings.Join(s[1:], "=")
		}
	}
}

type logicTest struct {
	sql interface {
		internal.Configurer
		internal.Opener
		sql.Sql
	}
	cache interface {
		internal.Configurer
		internal.Opener
		internal.Clearer
		cache.Cache
	}
	merge interface {
		internal.Configurer
		merge.Merge
	}
	logic interface {
		internal.Configurer
		internal.Opener
	}
	counter utilities.Counter
	logic.Logic
}

func newLogicTest() *logicTest {
	sql := sql.NewSql()
	cache := cache.NewMemory()
	counter := utilities.NewCounter()
	merge := merge.NewMerge()
	logic := logic.NewLogic(sql, cache, merge, counter)
	return &logicTest{
		sql:     sql,
		cache:   cache,
		merge:   merge,
		logic:   logic,
		counter: counter,
		Logic:   logic,
	}
}

func (l *logicTest) Configure(envs map[string]string) error {
	if err := l.sql.Configure(envs); err != nil {
		return err
	}
	if err := l.cache.Configure(envs); err != nil {
		return err
	}
	if err := l.merge.Configure(envs); err != nil {
		return err
	}
	if err := l.logic.Configure(envs); err != nil {
		return err
	}
	return nil
}

func (l *logicTest) Open(ctx context.Context) error {
	if err := l.sql.Open(ctx); err != nil {
		return err
	}
	if err := l.cache.Open(ctx); err != nil {
		return err
	}
	if err := l.logic.Open(ctx); err != nil {
		return err
	}
	return nil
}

func (l *logicTest) Close(ctx context.Context) error {
	if err := l.logic.Close(ctx); err != nil {
		return err
	}
	if err := l.cache.Close(ctx); err != nil {
		return err
	}
	if err := l.sql.Close(ctx); err != nil {
		return err
	}
	return nil
}

func (l *logicTest) TestLogic(cacheEnabled bool) func(t *testing.T) {
	return func(t *testing.T) {
		ctx := context.TODO()

		// create employee, providing an id that should be ignored
		firstName, lastName := internal.GenerateId()[:14], internal.GenerateId()[:16]
		employeeCreated, err := l.EmployeeCreate(ctx, data.Employee{
			Id:        99,
			FirstName: firstName,
			LastName:  lastName,
			Email:     firstName + "@example.com",
		})
		assert.Nil(t, err)
		if !assert.NotNil(t, employeeCreated) {
			return
		}
		assert.NotZero(t, employeeCreated.Id)
		assert.NotEqual(t, int64(99), employeeCreated.Id)
		id := employeeCreated.Id
		defer func(id int64) {
			_, _ = l.EmployeeDelete(ctx, id)
		}(id)

		if cacheEnabled {
			// validate that employee not in cache
			employeeCached, err := l.cache.EmployeeRead(ctx, id)
			assert.NotNil(t, err)
			assert.Nil(t, employeeCached)
		}

		// read employee
		employeeRead, err := l.EmployeeRead(ctx, id)
		assert.Nil(t, err)
		assert.Equal(t, employeeCreated, employeeRead)

		if cacheEnabled {
			// validate that employee in cache
			employeeCached, err := l.cache.EmployeeRead(ctx, id)
			assert.Nil(t, err)
			assert.Equal(t, employeeCreated, employeeCached)

			// read employee again (hit)
			_, err = l.EmployeeRead(ctx, id)
			assert.Nil(t, err)
			hits, misses := l.counter.Read("employee_read")
			assert.GreaterOrEqual(t, hits, 1)
			assert.GreaterOrEqual(t, misses, 1)
		}

		// read employees
		employeesRead, err := l.EmployeesRead(ctx)
		assert.Nil(t, err)
		assert.Contains(t, employeesRead, employeeCreated)

		// patch employee
		updatedFirstName := internal.GenerateId()[:14]
		employeePatched, err := l.EmployeePatch(ctx, id, data.EmployeePatch{
			data.FieldFirstName: updatedFirstName,
		})
		assert.Nil(t, err)
		assert.Equal(t, &data.Employee{
			Id:        id,
			FirstName: updatedFirstName,
			LastName:  lastName,
			Email:     employeeCreated.Email,
		}, employeePatched)

		if cacheEnabled {
			// validate that employee not in cache
			employeeCached, err := l.cache.EmployeeRead(ctx, id)
			assert.NotNil(t, err)
			assert.Nil(t, employeeCached)
		}

		// read employee
		employeeRead, err = l.EmployeeRead(ctx, id)
		assert.Nil(t, err)
		assert.Equal(t, employeePatched, employeeRead)

		// update (replace) employee
		employeeUpdated, err := l.EmployeeUpdate(ctx, data.Employee{
			Id:        id,
			FirstName: firstName,
		})
		assert.Nil(t, err)
		assert.Equal(t, &data.Employee{Id: id, FirstName: firstName}, employeeUpdated)

		// read employee
		employeeRead, err = l.EmployeeRead(ctx, id)
		assert.Nil(t, err)
		assert.Equal(t, employeeUpdated, employeeRead)

		// delete employee
		message, err := l.EmployeeDelete(ctx, id)
		assert.Nil(t, err)
		assert.Equal(t, fmt.Sprintf("deleted employee %d", id), message)

		// read employee
		employeeRead, err = l.EmployeeRead(ctx, id)
		assert.True(t, errors.Is(err, data.ErrNotFound))
		assert.Nil(t, employeeRead)

		// delete employee again, nothing else is touched
		employeesBefore, err := l.EmployeesRead(ctx)
		assert.Nil(t, err)
		message, err = l.EmployeeDelete(ctx, id)
		assert.True(t, errors.Is(err, data.ErrNotFound))
		assert.Empty(t, message)
		employeesAfter, err := l.EmployeesRead(ctx)
		assert.Nil(t, err)
		assert.Equal(t, employeesBefore, employeesAfter)
	}
}

func (l *logicTest) TestLogicPatch(t *testing.T) {
	ctx := context.TODO()

	employeeCreated, err := l.EmployeeCreate(ctx, data.Employee{
		FirstName: internal.GenerateId()[:14],
	})
	if !assert.Nil(t, err) {
		return
	}
	id := employeeCreated.Id
	defer func(id int64) {
		_, _ = l.EmployeeDelete(ctx, id)
	}(id)

	// patch containing an id
	employeePatched, err := l.EmployeePatch(ctx, id, data.EmployeePatch{
		data.FieldId: 5.0,
	})
	assert.True(t, errors.Is(err, data.ErrInvalidRequest))
	assert.Nil(t, employeePatched)

	// patch containing an id, for an employee that doesn't exist
	employeePatched, err = l.EmployeePatch(ctx, id+1000, data.EmployeePatch{
		data.FieldId: 5.0,
	})
	assert.True(t, errors.Is(err, data.ErrInvalidRequest))
	assert.Nil(t, employeePatched)

	// patch an employee that doesn't exist
	employeePatched, err = l.EmployeePatch(ctx, id+1000, data.EmployeePatch{
		data.FieldFirstName: "Bob",
	})
	assert.True(t, errors.Is(err, data.ErrNotFound))
	assert.Nil(t, employeePatched)

	// patch with a value of the wrong type
	employeePatched, err = l.EmployeePatch(ctx, id, data.EmployeePatch{
		data.FieldEmail: true,
	})
	assert.True(t, errors.Is(err, data.ErrInvalidRequest))
	assert.Nil(t, employeePatched)

	// the employee is untouched
	employeeRead, err := l.EmployeeRead(ctx, id)
	assert.Nil(t, err)
	assert.Equal(t, employeeCreated, employeeRead)
}

func (l *logicTest) TestLogicScenario(t *testing.T) {
	ctx := context.TODO()

	employeeCreated, err := l.EmployeeCreate(ctx, data.Employee{FirstName: "Alice"})
	assert.Nil(t, err)
	if !assert.NotNil(t, employeeCreated) {
		return
	}
	id := employeeCreated.Id
	assert.Equal(t, "Alice", employeeCreated.FirstName)
	employeePatched, err := l.EmployeePatch(ctx, id, data.EmployeePatch{
		data.FieldFirstName: "Bob",
	})
	assert.Nil(t, err)
	assert.Equal(t, &data.Employee{Id: id, FirstName: "Bob"}, employeePatched)
	message, err := l.EmployeeDelete(ctx, id)
	assert.Nil(t, err)
	assert.Equal(t, fmt.Sprintf("deleted employee %d", id), message)
	_, err = l.EmployeeRead(ctx, id)
	assert.True(t, errors.Is(err, data.ErrNotFound))
}

func (l *logicTest) TestLogicUnknownKeys(strict bool) func(t *testing.T) {
	return func(t *testing.T) {
		ctx := context.TODO()

		employeeCreated, err := l.EmployeeCreate(ctx, data.Employee{FirstName: "Alice"})
		if !assert.Nil(t, err) {
			return
		}
		id := employeeCreated.Id
		defer func(id int64) {
			_, _ = l.EmployeeDelete(ctx, id)
		}(id)

		employeePatched, err := l.EmployeePatch(ctx, id, data.EmployeePatch{
			data.FieldFirstName: "Bob",
			"department":        "engineering",
		})
		if strict {
			assert.True(t, errors.Is(err, data.ErrInvalidRequest))
			assert.Nil(t, employeePatched)
			employeeRead, err := l.EmployeeRead(ctx, id)
			assert.Nil(t, err)
			assert.Equal(t, employeeCreated, employeeRead)
			return
		}
		assert.Nil(t, err)
		assert.Equal(t, &data.Employee{Id: id, FirstName: "Bob"}, employeePatched)
	}
}

func testLogic(t *testing.T, envs map[string]string) {
	l := newLogicTest()

	ctx := context.TODO()
	cacheEnabled, _ := strconv.ParseBool(envs["LOGIC_CACHE_ENABLED"])
	err := l.Configure(envs)
	if !assert.Nil(t, err) {
		assert.FailNow(t, "unable to configure logicTest")
	}
	err = l.Open(ctx)
	if !assert.Nil(t, err) {
		assert.FailNow(t, "unable to open logicTest")
	}
	defer func() {
		if err := l.Close(ctx); err != nil {
			t.Logf("error while closing logicTest: %s", err)
		}
	}()
	t.Run("Logic", l.TestLogic(cacheEnabled))
	t.Run("Patch", l.TestLogicPatch)
	t.Run("Scenario", l.TestLogicScenario)
	strict, _ := strconv.ParseBool(envs["MERGE_STRICT"])
	t.Run("Unknown Keys", l.TestLogicUnknownKeys(strict))
}

func TestLogicCache(t *testing.T) {
	testLogic(t, envs)
}

func TestLogicNoCache(t *testing.T) {
	envs := map[string]string{
		"DATABASE_DRIVER":     "sqlite3",
		"DATABASE_FILE":       ":memory:",
		"LOGIC_CACHE_ENABLED": "false",
	}
	testLogic(t, envs)
}

func TestLogicMergeStrict(t *testing.T) {
	envs := map[string]string{
		"DATABASE_DRIVER":     "sqlite3",
		"DATABASE_FILE":       ":memory:",
		"LOGIC_CACHE_ENABLED": "true",
		"MERGE_STRICT":        "true",
	}
	testLogic(t, envs)
}

func TestLogicMutateDisabled(t *testing.T) {
	ctx := context.TODO()
	sql := sql.NewSql()
	logic := logic.NewLogic(sql)
	envs := map[string]string{
		"DATABASE_DRIVER": "sqlite3",
		"MUTATE_DISABLED": "true",
	}
	assert.Nil(t, sql.Configure(envs))
	assert.Nil(t, logic.Configure(envs))
	if !assert.Nil(t, sql.Open(ctx)) {
		return
	}
	defer sql.Close(ctx)
	assert.Nil(t, logic.Open(ctx))

	_, err := logic.EmployeeCreate(ctx, data.Employee{FirstName: "Alice"})
	assert.True(t, errors.Is(err, data.ErrMutationDisabled))
	_, err = logic.EmployeeUpdate(ctx, data.Employee{Id: 1})
	assert.True(t, errors.Is(err, data.ErrMutationDisabled))
	_, err = logic.EmployeePatch(ctx, 1, data.EmployeePatch{})
	assert.True(t, errors.Is(err, data.ErrMutationDisabled))
	_, err = logic.EmployeeDelete(ctx, 1)
	assert.True(t, errors.Is(err, data.ErrMutationDisabled))
	employees, err := logic.EmployeesRead(ctx)
	assert.Nil(t, err)
	assert.Empty(t, employees)
}

type storeUnavailable struct{}

func (storeUnavailable) EmployeesRead(context.Context) ([]*data.Employee, error) {
	return nil, errors.Wrap(data.ErrStorageUnavailable, "connection refused")
}

func (storeUnavailable) EmployeeRead(context.Context, int64) (*data.Employee, error) {
	return nil, errors.Wrap(data.ErrStorageUnavailable, "connection refused")
}

func (storeUnavailable) EmployeeSave(context.Context, data.Employee) (*data.Employee, error) {
	return nil, errors.Wrap(data.ErrStorageUnavailable, "connection refused")
}

func (storeUnavailable) EmployeeDelete(context.Context, int64) error {
	return errors.Wrap(data.ErrStorageUnavailable, "connection refused")
}

func TestLogicStorageUnavailable(t *testing.T) {
	ctx := context.TODO()
	logic := logic.NewLogic(storeUnavailable{})
	assert.Nil(t, logic.Configure(map[string]string{}))
	assert.Nil(t, logic.Open(ctx))

	_, err := logic.EmployeesRead(ctx)
	assert.True(t, errors.Is(err, data.ErrStorageUnavailable))
	_, err = logic.EmployeeRead(ctx, 1)
	assert.True(t, errors.Is(err, data.ErrStorageUnavailable))
	_, err = logic.EmployeeCreate(ctx, data.Employee{})
	assert.True(t, errors.Is(err, data.ErrStorageUnavailable))
	_, err = logic.EmployeePatch(ctx, 1, data.EmployeePatch{data.FieldEmail: "a"})
	assert.True(t, errors.Is(err, data.ErrStorageUnavailable))
	_, err = logic.EmployeeDelete(ctx, 1)
	assert.True(t, errors.Is(err, data.ErrStorageUnavailable))
}
