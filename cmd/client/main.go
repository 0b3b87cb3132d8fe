package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/antonio-alexander/go-employees/internal"
	"github.com/antonio-alexander/go-employees/internal/cache"
	"github.com/antonio-alexander/go-employees/internal/client"
	"github.com/antonio-alexander/go-employees/internal/data"
	"github.com/antonio-alexander/go-employees/internal/utilities"

	"github.com/pkg/errors"
)

var (
	Version   string
	GitCommit string
	GitBranch string
)

func init() {
	if Version = data.Version; Version == "" {
		Version = "<no_version_provided>"
	}
	if GitCommit = data.GitCommit; GitCommit == "" {
		GitCommit = "<no_git_commit>"
	}
	if GitBranch = data.GitBranch; GitBranch == "" {
		GitBranch = "<no_git_branch>"
	}
}

func main() {
	args := os.Args[1:]
	envs := internal.Envs()
	osSignal := make(chan os.Signal, 1)
	signal.Notify(osSignal, syscall.SIGINT, syscall.SIGTERM)
	if err := Main(args, envs, osSignal); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func printJson(item any) error {
	bytes, err := json.MarshalIndent(item, "", " ")
	if err != nil {
		return err
	}
	fmt.Println(string(bytes))
	return nil
}

func employeeFromEnvs(envs map[string]string) (data.Employee, error) {
	var employee data.Employee

	if s := envs["ID"]; s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return data.Employee{}, errors.Wrapf(err, "ID: %q", s)
		}
		employee.Id = id
	}
	employee.FirstName = envs["FIRST_NAME"]
	employee.LastName = envs["LAST_NAME"]
	employee.Email = envs["EMAIL"]
	return employee, nil
}

func Main(args []string, envs map[string]string, osSignal chan os.Signal) error {
	var wg sync.WaitGroup

	ctx, cancel := internal.LaunchContext(&wg, osSignal)
	defer func() {
		cancel()
		wg.Wait()
	}()
	ctx = internal.CtxWithCorrelationId(ctx, internal.GenerateId())

	logger := utilities.NewLogger(os.Stderr)
	if err := logger.Configure(envs); err != nil {
		return err
	}
	logger.Info(ctx, "client: go-employees v%s (%s) built from: %s",
		Version, GitCommit, GitBranch)

	//create cache
	parameters := []any{logger}
	cache := cache.NewCache(envs["CACHE_TYPE"], logger)
	if cache != nil {
		if err := cache.Configure(envs); err != nil {
			return err
		}
		if err := cache.Open(ctx); err != nil {
			return err
		}
		defer func() {
			if err := cache.Close(context.Background()); err != nil {
				logger.Error(ctx, "error while closing cache: %s", err)
			}
		}()
		parameters = append(parameters, cache)
	}

	//create client
	client := client.NewClient(parameters...)
	if err := client.Configure(envs); err != nil {
		return err
	}
	if err := client.Open(ctx); err != nil {
		return err
	}
	defer func() {
		if err := client.Close(context.Background()); err != nil {
			logger.Error(ctx, "error while closing client: %s", err)
		}
	}()

	// execute command
	employee, err := employeeFromEnvs(envs)
	if err != nil {
		return err
	}
	switch command := envs["COMMAND"]; command {
	default:
		return errors.Errorf("unsupported command: %s", command)
	case "employees_read":
		employees, err := client.EmployeesRead(ctx)
		if err != nil {
			return err
		}
		return printJson(employees)
	case "employee_read":
		employee, err := client.EmployeeRead(ctx, employee.Id)
		if err != nil {
			return err
		}
		return printJson(employee)
	case "employee_create":
		employee, err := client.EmployeeCreate(ctx, employee)
		if err != nil {
			return err
		}
		return printJson(employee)
	case "employee_update":
		employee, err := client.EmployeeUpdate(ctx, employee)
		if err != nil {
			return err
		}
		return printJson(employee)
	case "employee_patch":
		var patch data.EmployeePatch

		if err := patch.UnmarshalBinary([]byte(envs["PATCH"])); err != nil {
			return errors.Wrapf(err, "PATCH: %q", envs["PATCH"])
		}
		employee, err := client.EmployeePatch(ctx, employee.Id, patch)
		if err != nil {
			return err
		}
		return printJson(employee)
	case "employee_delete":
		message, err := client.EmployeeDelete(ctx, employee.Id)
		if err != nil {
			return err
		}
		fmt.Println(message)
	}
	return nil
}
