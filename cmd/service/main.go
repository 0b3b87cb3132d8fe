package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/antonio-alexander/go-employees/internal"
	"github.com/antonio-alexander/go-employees/internal/cache"
	"github.com/antonio-alexander/go-employees/internal/data"
	"github.com/antonio-alexander/go-employees/internal/logic"
	"github.com/antonio-alexander/go-employees/internal/merge"
	"github.com/antonio-alexander/go-employees/internal/postgres"
	"github.com/antonio-alexander/go-employees/internal/service"
	"github.com/antonio-alexander/go-employees/internal/sql"
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
	pwd, _ := os.Getwd()
	args := os.Args[1:]
	envs := internal.Envs()
	osSignal := make(chan os.Signal, 1)
	signal.Notify(osSignal, syscall.SIGINT, syscall.SIGTERM)
	if err := Main(pwd, args, envs, osSignal); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func createStore(envs map[string]string, parameters ...any) (interface {
	internal.Configurer
	internal.Opener
	sql.Sql
}, error) {
	switch storeType := envs["STORE_TYPE"]; storeType {
	default:
		return nil, errors.Errorf("unsupported store type: %s", storeType)
	case "", "sql":
		return sql.NewSql(parameters...), nil
	case "postgres":
		return postgres.NewPostgres(parameters...), nil
	}
}

func Main(pwd string, args []string, envs map[string]string, osSignal chan os.Signal) error {
	var wg sync.WaitGroup

	//create context
	ctx, cancel := internal.LaunchContext(&wg, osSignal)
	defer cancel()

	// create utilities
	logger := utilities.NewLogger(os.Stdout)
	if err := logger.Configure(envs); err != nil {
		return err
	}
	timers := utilities.NewTimers()
	counter := utilities.NewCounter()

	//print version info
	logger.Info(ctx, "server: go-employees v%s (%s) built from: %s",
		Version, GitCommit, GitBranch)

	//create store, configure and open
	store, err := createStore(envs, logger)
	if err != nil {
		return err
	}
	if err := store.Configure(envs); err != nil {
		return err
	}
	if err := store.Open(ctx); err != nil {
		return err
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logger.Error(context.Background(), "error while closing store: %s", err)
		}
	}()

	// create cache
	parameters := []any{store, logger, counter}
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
				logger.Error(context.Background(), "error while closing cache: %s", err)
			}
		}()
		parameters = append(parameters, cache)
	}

	//create merge
	merge := merge.NewMerge()
	if err := merge.Configure(envs); err != nil {
		return err
	}
	parameters = append(parameters, merge)

	//create logic, configure and open
	logic := logic.NewLogic(parameters...)
	if err := logic.Configure(envs); err != nil {
		return err
	}
	if err := logic.Open(ctx); err != nil {
		return err
	}
	defer func() {
		if err := logic.Close(context.Background()); err != nil {
			logger.Error(context.Background(), "error while closing logic: %s", err)
		}
	}()

	//create service, configure and open
	parameters = []any{logic, logger, counter, timers}
	if cache != nil {
		parameters = append(parameters, cache)
	}
	service := service.NewService(parameters...)
	if err := service.Configure(envs); err != nil {
		return err
	}
	if err := service.Open(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	wg.Wait()
	if err := service.Close(context.Background()); err != nil {
		logger.Error(context.Background(), "error while closing service: %s", err)
	}
	return nil
}
