package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/antonio-alexander/go-employees/internal"
	"github.com/antonio-alexander/go-employees/internal/cache"
	"github.com/antonio-alexander/go-employees/internal/client"
	"github.com/antonio-alexander/go-employees/internal/data"
	"github.com/antonio-alexander/go-employees/internal/utilities"

	"github.com/pkg/errors"
)

const counterEmployeeRead string = "employee_read"

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

// scenarioCrud creates Alice, renames her to Bob with a patch, deletes
// the employee and confirms that it can no longer be read
func scenarioCrud(ctx context.Context, logger utilities.Logger, client client.Client) error {
	ctx = internal.CtxWithCorrelationId(ctx, "scenario_crud")

	employeeCreated, err := client.EmployeeCreate(ctx, data.Employee{
		FirstName: "Alice",
		LastName:  "Smith",
		Email:     "alice@example.com",
	})
	if err != nil {
		return err
	}
	id := employeeCreated.Id
	logger.Info(ctx, "created employee: %d", id)

	employeePatched, err := client.EmployeePatch(ctx, id, data.EmployeePatch{
		data.FieldFirstName: "Bob",
	})
	if err != nil {
		return err
	}
	if employeePatched.FirstName != "Bob" || employeePatched.LastName != employeeCreated.LastName {
		return errors.Errorf("unexpected patched employee: %#v", employeePatched)
	}
	logger.Info(ctx, "patched employee: %d (%s)", id, employeePatched.FirstName)

	message, err := client.EmployeeDelete(ctx, id)
	if err != nil {
		return err
	}
	logger.Info(ctx, "%s", message)

	if _, err := client.EmployeeRead(ctx, id); !errors.Is(err, data.ErrNotFound) {
		return errors.Errorf("expected employee %d to be not found, got: %v", id, err)
	}
	logger.Info(ctx, "employee %d not found after delete", id)
	return nil
}

// every calls fx each interval between start and stop being closed
func every(interval time.Duration, start, stop <-chan struct{}, fx func()) {
	<-start
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			fx()
		}
	}
}

func envSeconds(envs map[string]string, key string, defaultValue time.Duration) time.Duration {
	if seconds, err := strconv.Atoi(envs[key]); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}

// scenarioStampedingHerd has the first client patch an employee while
// the remaining clients read it, then reports the service's hit ratio
func scenarioStampedingHerd(ctx context.Context, envs map[string]string, logger utilities.Logger,
	clients ...client.Client) error {
	const correlationId string = "scenario_stampeding_herd"

	var wg sync.WaitGroup

	if len(clients) < 2 {
		return errors.New("stampeding_herd requires N_CLIENTS >= 2")
	}
	readInterval := envSeconds(envs, "SCENARIO_READ_INTERVAL", time.Second)
	patchInterval := envSeconds(envs, "SCENARIO_UPDATE_INTERVAL", 2*time.Second)
	duration := envSeconds(envs, "SCENARIO_DURATION", 10*time.Second)
	ctx = internal.CtxWithCorrelationId(ctx, correlationId)
	writer, readers := clients[0], clients[1:]

	employeeCreated, err := writer.EmployeeCreate(ctx, data.Employee{
		FirstName: internal.GenerateId()[:14],
		LastName:  internal.GenerateId()[:16],
	})
	if err != nil {
		return err
	}
	id := employeeCreated.Id
	logger.Info(ctx, "created employee: %d", id)
	defer func() {
		if _, err := writer.EmployeeDelete(ctx, id); err != nil {
			logger.Error(ctx, "error while deleting employee: %s", err)
			return
		}
		logger.Info(ctx, "deleted employee: %d", id)
	}()

	//reset the service side cache so every reader starts with a miss
	if err := writer.CacheClear(ctx); err != nil {
		return err
	}
	if err := writer.CacheCountersClear(ctx); err != nil {
		return err
	}
	start, stop := make(chan struct{}), make(chan struct{})
	wg.Add(1 + len(readers))
	go func() {
		defer wg.Done()
		every(patchInterval, start, stop, func() {
			patch := data.EmployeePatch{data.FieldFirstName: internal.GenerateId()[:14]}
			if _, err := writer.EmployeePatch(ctx, id, patch); err != nil {
				logger.Error(ctx, "error while patching employee: %s", err)
			}
		})
	}()
	for i, reader := range readers {
		ctx := internal.CtxWithCorrelationId(ctx, fmt.Sprintf("%s_%d", correlationId, i+1))
		go func() {
			defer wg.Done()
			every(readInterval, start, stop, func() {
				if _, err := reader.EmployeeRead(ctx, id); err != nil {
					logger.Error(ctx, "error while reading employee: %s", err)
				}
			})
		}()
	}

	close(start)
	select {
	case <-ctx.Done():
	case <-time.After(duration):
	}
	close(stop)
	wg.Wait()

	cacheCounters, err := writer.CacheCountersRead(ctx)
	if err != nil {
		return err
	}
	hit := cacheCounters.Hits[counterEmployeeRead]
	miss := cacheCounters.Misses[counterEmployeeRead]
	if total := hit + miss; total > 0 {
		logger.Info(ctx, "cache hit miss ratio (%d/%d): %0.2f%%",
			hit, total, float64(hit)/float64(total)*100)
	}
	return nil
}

func Main(args []string, envs map[string]string, osSignal chan os.Signal) error {
	var clients []client.Client
	var wg sync.WaitGroup

	//create context
	ctx, cancel := internal.LaunchContext(&wg, osSignal)
	defer cancel()

	// create logger
	logger := utilities.NewLogger(os.Stdout)
	if err := logger.Configure(envs); err != nil {
		return err
	}

	//print version info
	logger.Info(ctx, "scenarios: go-employees v%s (%s) built from: %s",
		Version, GitCommit, GitBranch)

	nClients, _ := strconv.Atoi(envs["N_CLIENTS"])
	if nClients < 1 {
		nClients = 1
	}
	for range nClients {
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
		clients = append(clients, client)
	}

	// execute scenario
	var err error
	switch scenario := envs["SCENARIO"]; scenario {
	default:
		return errors.Errorf("unsupported scenario: %s", scenario)
	case "", "crud":
		logger.Info(ctx, "executing crud scenario")
		err = scenarioCrud(ctx, logger, clients[0])
	case "stampeding_herd":
		logger.Info(ctx, "executing %s scenario", scenario)
		err = scenarioStampedingHerd(ctx, envs, logger, clients...)
	}
	cancel()
	wg.Wait()
	return err
}
