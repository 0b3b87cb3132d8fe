package service

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/antonio-alexander/go-employees/internal"
	"github.com/antonio-alexander/go-employees/internal/data"
	"github.com/antonio-alexander/go-employees/internal/logic"
	"github.com/antonio-alexander/go-employees/internal/swagger"
	"github.com/antonio-alexander/go-employees/internal/utilities"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/cors"
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

type service struct {
	sync.RWMutex
	sync.WaitGroup
	config struct {
		address          string
		port             string
		shutdownTimeout  time.Duration
		allowedOrigins   []string
		allowedMethods   []string
		allowedHeaders   []string
		allowCredentials bool
		corsDisabled     bool
		corsDebug        bool
		timersEnabled    bool
		swaggerEnabled   bool
	}
	router  *mux.Router
	server  *http.Server
	cache   internal.Clearer
	logger  utilities.Logger
	counter utilities.Counter
	timers  utilities.Timers
	logic   logic.Logic
	opened  bool
}

func NewService(parameters ...any) interface {
	internal.Configurer
	internal.Opener
} {
	router := mux.NewRouter()
	s := &service{
		router: router,
		server: &http.Server{Handler: router},
	}
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case logic.Logic:
			s.logic = p
		case utilities.Counter:
			s.counter = p
		case utilities.Timers:
			s.timers = p
		case utilities.Logger:
			s.logger = p
		case internal.Clearer:
			s.cache = p
		}
	}
	if s.logger == nil {
		s.logger = utilities.NewLogger()
	}
	if s.counter == nil {
		s.counter = utilities.NewCounter()
	}
	if s.timers == nil {
		s.timers = utilities.NewTimers()
	}
	s.config.port = "8080"
	s.config.shutdownTimeout = 10 * time.Second
	return s
}

func (s *service) launchServer() error {
	if !s.config.corsDisabled {
		s.server.Handler = cors.New(cors.Options{
			AllowedOrigins:   s.config.allowedOrigins,
			AllowCredentials: s.config.allowCredentials,
			AllowedMethods:   s.config.allowedMethods,
			AllowedHeaders:   s.config.allowedHeaders,
			Debug:            s.config.corsDebug,
		}).Handler(s.router)
	}
	//KIM: listening before serving surfaces errors such as the port
	// already being in use from Open rather than from the go routine
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return errors.Wrapf(err, "unable to listen on %s", s.server.Addr)
	}
	s.Add(1)
	go func() {
		defer s.Done()

		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(context.Background(), "server stopped unexpectedly: %s", err)
		}
	}()
	s.logger.Info(context.Background(), "started server: %s", listener.Addr())
	return nil
}

// startTimer starts the timer for group (if enabled) and returns the function
// that stops it.
func (s *service) startTimer(ctx context.Context, group string) func() {
	if !s.config.timersEnabled {
		return func() {}
	}
	index := s.timers.Start(group)
	return func() {
		s.logger.Trace(ctx, "%s took %v", group, s.timers.Stop(group, index))
	}
}

func (s *service) handleError(ctx context.Context, writer http.ResponseWriter, operation string, err error) {
	switch {
	default:
		s.logger.Error(ctx, "error while executing %s: %s", operation, err)
	case errors.Is(err, data.ErrNotFound), errors.Is(err, data.ErrInvalidRequest):
		s.logger.Debug(ctx, "error while executing %s: %s", operation, err)
	}
	handleResponse(writer, err)
}

func (s *service) endpointDefault(writer http.ResponseWriter, _ *http.Request) {
	fmt.Fprintf(writer,
		"go-employees\n"+
			"Version: \"%s\"\n"+
			"Git Commit: \"%s\"\n"+
			"Git Branch: \"%s\"\n",
		Version, GitCommit, GitBranch)
}

func (s *service) endpointEmployeesRead(writer http.ResponseWriter, request *http.Request) {
	ctx := internal.CtxWithCorrelationId(request.Context(),
		getCorrelationId(request))
	defer s.startTimer(ctx, "employees_read")()
	employees, err := s.logic.EmployeesRead(ctx)
	if err != nil {
		s.handleError(ctx, writer, "employees_read", err)
		return
	}
	handleResponse(writer, nil, employees)
	s.logger.Trace(ctx, "executed employees_read: %d", len(employees))
}

func (s *service) endpointEmployeeRead(writer http.ResponseWriter, request *http.Request) {
	ctx := internal.CtxWithCorrelationId(request.Context(),
		getCorrelationId(request))
	defer s.startTimer(ctx, "employee_read")()
	id, err := idFromPath(mux.Vars(request))
	if err != nil {
		s.handleError(ctx, writer, "employee_read", err)
		return
	}
	employee, err := s.logic.EmployeeRead(ctx, id)
	if err != nil {
		s.handleError(ctx, writer, "employee_read", err)
		return
	}
	handleResponse(writer, nil, employee)
	s.logger.Trace(ctx, "executed employee_read: %d", employee.Id)
}

func (s *service) endpointEmployeeCreate(writer http.ResponseWriter, request *http.Request) {
	var employee data.Employee

	ctx := internal.CtxWithCorrelationId(request.Context(),
		getCorrelationId(request))
	defer s.startTimer(ctx, "employee_create")()
	if err := decodeBody(request, &employee); err != nil {
		s.handleError(ctx, writer, "employee_create", err)
		return
	}
	employeeCreated, err := s.logic.EmployeeCreate(ctx, employee)
	if err != nil {
		s.handleError(ctx, writer, "employee_create", err)
		return
	}
	handleResponse(writer, nil, employeeCreated)
	s.logger.Trace(ctx, "executed employee_create: %d", employeeCreated.Id)
}

func (s *service) endpointEmployeeUpdate(writer http.ResponseWriter, request *http.Request) {
	var employee data.Employee

	ctx := internal.CtxWithCorrelationId(request.Context(),
		getCorrelationId(request))
	defer s.startTimer(ctx, "employee_update")()
	if err := decodeBody(request, &employee); err != nil {
		s.handleError(ctx, writer, "employee_update", err)
		return
	}
	employeeUpdated, err := s.logic.EmployeeUpdate(ctx, employee)
	if err != nil {
		s.handleError(ctx, writer, "employee_update", err)
		return
	}
	handleResponse(writer, nil, employeeUpdated)
	s.logger.Trace(ctx, "executed employee_update: %d", employeeUpdated.Id)
}

func (s *service) endpointEmployeePatch(writer http.ResponseWriter, request *http.Request) {
	var patch data.EmployeePatch

	ctx := internal.CtxWithCorrelationId(request.Context(),
		getCorrelationId(request))
	defer s.startTimer(ctx, "employee_patch")()
	id, err := idFromPath(mux.Vars(request))
	if err != nil {
		s.handleError(ctx, writer, "employee_patch", err)
		return
	}
	if err := decodeBody(request, &patch); err != nil {
		s.handleError(ctx, writer, "employee_patch", err)
		return
	}
	employeePatched, err := s.logic.EmployeePatch(ctx, id, patch)
	if err != nil {
		s.handleError(ctx, writer, "employee_patch", err)
		return
	}
	handleResponse(writer, nil, employeePatched)
	s.logger.Trace(ctx, "executed employee_patch: %d", id)
}

func (s *service) endpointEmployeeDelete(writer http.ResponseWriter, request *http.Request) {
	ctx := internal.CtxWithCorrelationId(request.Context(),
		getCorrelationId(request))
	defer s.startTimer(ctx, "employee_delete")()
	id, err := idFromPath(mux.Vars(request))
	if err != nil {
		s.handleError(ctx, writer, "employee_delete", err)
		return
	}
	message, err := s.logic.EmployeeDelete(ctx, id)
	if err != nil {
		s.handleError(ctx, writer, "employee_delete", err)
		return
	}
	handleResponse(writer, nil, message)
	s.logger.Trace(ctx, "executed employee_delete: %d", id)
}

func (s *service) endpointCacheClear(writer http.ResponseWriter, request *http.Request) {
	ctx := internal.CtxWithCorrelationId(request.Context(),
		getCorrelationId(request))
	if s.cache != nil {
		if err := s.cache.Clear(ctx); err != nil {
			s.handleError(ctx, writer, "cache_clear", err)
			return
		}
		s.logger.Trace(ctx, "executed cache_clear")
	}
	handleResponse(writer, nil)
}

func (s *service) endpointCacheCountersRead(writer http.ResponseWriter, _ *http.Request) {
	handleResponse(writer, nil, s.counter.ReadAll())
}

func (s *service) endpointCacheCountersClear(writer http.ResponseWriter, request *http.Request) {
	ctx := internal.CtxWithCorrelationId(request.Context(),
		getCorrelationId(request))
	s.counter.Reset()
	handleResponse(writer, nil)
	s.logger.Trace(ctx, "executed cache_counters_clear")
}

func (s *service) endpointTimersRead(writer http.ResponseWriter, _ *http.Request) {
	handleResponse(writer, nil, s.timers.ReadAll())
}

func (s *service) endpointTimersClear(writer http.ResponseWriter, request *http.Request) {
	ctx := internal.CtxWithCorrelationId(request.Context(),
		getCorrelationId(request))
	s.timers.Clear()
	handleResponse(writer, nil)
	s.logger.Trace(ctx, "executed timers_clear")
}

func (s *service) buildRoutes() {
	s.router.HandleFunc("/", s.endpointDefault)
	s.router.HandleFunc(data.RouteEmployees, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		case http.MethodGet:
			s.endpointEmployeesRead(w, r)
		case http.MethodPost:
			s.endpointEmployeeCreate(w, r)
		case http.MethodPut:
			s.endpointEmployeeUpdate(w, r)
		}
	})
	s.router.HandleFunc(data.RouteEmployeesId, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		case http.MethodGet:
			s.endpointEmployeeRead(w, r)
		case http.MethodPatch:
			s.endpointEmployeePatch(w, r)
		case http.MethodDelete:
			s.endpointEmployeeDelete(w, r)
		}
	})
	s.router.HandleFunc(data.RouteCacheCounters, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		case http.MethodGet:
			s.endpointCacheCountersRead(w, r)
		case http.MethodDelete:
			s.endpointCacheCountersClear(w, r)
		}
	})
	s.router.HandleFunc(data.RouteCache, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		case http.MethodDelete:
			s.endpointCacheClear(w, r)
		}
	})
	s.router.HandleFunc(data.RouteTimers, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		case http.MethodGet:
			s.endpointTimersRead(w, r)
		case http.MethodDelete:
			s.endpointTimersClear(w, r)
		}
	})
	if s.config.swaggerEnabled {
		s.router.PathPrefix(data.RouteSwagger).Handler(swagger.Handler())
	}
}

func (s *service) Configure(envs map[string]string) error {
	s.Lock()
	defer s.Unlock()

	if address, ok := envs["SERVICE_ADDRESS"]; ok {
		s.config.address = address
	}
	if port := envs["SERVICE_PORT"]; port != "" {
		s.config.port = port
	}
	if shutdownTimeout := envs["SERVICE_SHUTDOWN_TIMEOUT"]; shutdownTimeout != "" {
		seconds, err := strconv.Atoi(shutdownTimeout)
		if err != nil || seconds <= 0 {
			return errors.Errorf("SERVICE_SHUTDOWN_TIMEOUT: invalid value %q", shutdownTimeout)
		}
		s.config.shutdownTimeout = time.Duration(seconds) * time.Second
	}
	envList(envs, "SERVICE_CORS_ALLOWED_ORIGINS", &s.config.allowedOrigins)
	envList(envs, "SERVICE_CORS_ALLOWED_METHODS", &s.config.allowedMethods)
	envList(envs, "SERVICE_CORS_ALLOWED_HEADERS", &s.config.allowedHeaders)
	for key, value := range map[string]*bool{
		"SERVICE_CORS_ALLOW_CREDENTIALS": &s.config.allowCredentials,
		"SERVICE_CORS_DISABLED":          &s.config.corsDisabled,
		"SERVICE_CORS_DEBUG":             &s.config.corsDebug,
		"SERVICE_TIMERS_ENABLED":         &s.config.timersEnabled,
		"SERVICE_SWAGGER_ENABLED":        &s.config.swaggerEnabled,
	} {
		if err := envBool(envs, key, value); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) Open(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	if s.opened {
		return nil
	}
	if s.logic == nil {
		return errors.New("service: no logic provided")
	}
	s.server.Addr = net.JoinHostPort(s.config.address, s.config.port)
	s.buildRoutes()
	if err := s.launchServer(); err != nil {
		return err
	}
	s.opened = true
	return nil
}

func (s *service) Close(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	if !s.opened {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.config.shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Error(ctx, "error while shutting down the server: %s", err)
	}
	s.Wait()
	s.opened = false
	return nil
}
