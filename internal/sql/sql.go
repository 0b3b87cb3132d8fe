package sql

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/antonio-alexander/go-employees/internal"
	"github.com/antonio-alexander/go-employees/internal/data"
	"github.com/antonio-alexander/go-employees/internal/utilities"

	"github.com/cenkalti/backoff/v5"
	"github.com/pkg/errors"

	_ "github.com/go-sql-driver/mysql" //import for driver support
	_ "github.com/mattn/go-sqlite3"    //import for driver support
)

const (
	DriverMySql  string = "mysql"
	DriverSqlite string = "sqlite3"
)

const (
	defaultDriver          = DriverMySql
	defaultQueryTimeout    = 10 * time.Second
	defaultConnectTimeout  = 30 * time.Second
	defaultConnectMaxTries = 5
)

// Sql is the persistence contract for employees: EmployeeRead and
// EmployeeDelete return data.ErrNotFound when nothing matches the id and any
// other failure is reported as data.ErrStorageUnavailable.
type Sql interface {
	EmployeesRead(ctx context.Context) ([]*data.Employee, error)
	EmployeeRead(ctx context.Context, id int64) (*data.Employee, error)
	EmployeeSave(ctx context.Context, employee data.Employee) (*data.Employee, error)
	EmployeeDelete(ctx context.Context, id int64) error
}

type sqlStore struct {
	sync.RWMutex
	config struct {
		Driver          string        `json:"driver"`
		Hostname        string        `json:"hostname"`
		Port            string        `json:"port"`
		Username        string        `json:"username"`
		Password        string        `json:"password"`
		Database        string        `json:"database"`
		File            string        `json:"file"`
		QueryTimeout    time.Duration `json:"query_timeout"`
		ConnectTimeout  time.Duration `json:"connect_timeout"`
		ConnectMaxTries uint          `json:"connect_max_tries"`
		ParseTime       bool          `json:"parse_time"`
	}
	db     *sql.DB
	logger utilities.Logger
	opened bool
}

func NewSql(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	Sql
} {
	s := &sqlStore{}
	for _, parameter := range parameters {
		switch v := parameter.(type) {
		case utilities.Logger:
			s.logger = v
		}
	}
	if s.logger == nil {
		s.logger = utilities.NewLogger()
	}
	s.config.Driver = defaultDriver
	s.config.QueryTimeout = defaultQueryTimeout
	s.config.ConnectTimeout = defaultConnectTimeout
	s.config.ConnectMaxTries = defaultConnectMaxTries
	return s
}

func (s *sqlStore) dataSourceName() string {
	switch s.config.Driver {
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=%t",
			s.config.Username, s.config.Password, s.config.Hostname,
			s.config.Port, s.config.Database, s.config.ParseTime)
	case DriverSqlite:
		return s.config.File
	}
}

func (s *sqlStore) Configure(envs map[string]string) error {
	s.Lock()
	defer s.Unlock()

	if driver := envs["DATABASE_DRIVER"]; driver != "" {
		switch driver {
		default:
			return errors.Errorf("unsupported database driver: %s", driver)
		case DriverMySql, DriverSqlite:
			s.config.Driver = driver
		}
	}
	if databaseHost := envs["DATABASE_HOST"]; databaseHost != "" {
		s.config.Hostname = databaseHost
	}
	if databasePort := envs["DATABASE_PORT"]; databasePort != "" {
		s.config.Port = databasePort
	}
	if database := envs["DATABASE_NAME"]; database != "" {
		s.config.Database = database
	}
	if username := envs["DATABASE_USER"]; username != "" {
		s.config.Username = username
	}
	if password := envs["DATABASE_PASSWORD"]; password != "" {
		s.config.Password = password
	}
	if file := envs["DATABASE_FILE"]; file != "" {
		s.config.File = file
	}
	if v, ok := envs["DATABASE_QUERY_TIMEOUT"]; ok {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil && i > 0 {
			s.config.QueryTimeout = time.Duration(i) * time.Second
		}
	}
	if v, ok := envs["DATABASE_CONNECT_TIMEOUT"]; ok {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil && i > 0 {
			s.config.ConnectTimeout = time.Duration(i) * time.Second
		}
	}
	if v, ok := envs["DATABASE_CONNECT_MAX_TRIES"]; ok {
		if i, err := strconv.ParseUint(v, 10, 64); err == nil && i > 0 {
			s.config.ConnectMaxTries = uint(i)
		}
	}
	if _, ok := envs["DATABASE_PARSE_TIME"]; ok {
		s.config.ParseTime, _ = strconv.ParseBool(envs["DATABASE_PARSE_TIME"])
	}
	if s.config.Driver == DriverSqlite && s.config.File == "" {
		s.config.File = ":memory:"
	}
	return nil
}

func (s *sqlStore) Open(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	if s.opened {
		return nil
	}
	db, err := sql.Open(s.config.Driver, s.dataSourceName())
	if err != nil {
		return err
	}
	if s.config.Driver == DriverSqlite {
		//KIM: every connection to an in-memory sqlite database gets its
		// own database, so the pool is pinned to a single connection
		db.SetMaxOpenConns(1)
	}
	if _, err := backoff.Retry(ctx, func() (struct{}, error) {
		if err := db.PingContext(ctx); err != nil {
			s.logger.Debug(ctx, "error while pinging %s: %s", s.config.Driver, err)
			return struct{}{}, err
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(s.config.ConnectMaxTries),
		backoff.WithMaxElapsedTime(s.config.ConnectTimeout)); err != nil {
		_ = db.Close()
		return errors.Wrapf(err, "unable to connect to %s", s.config.Driver)
	}
	if s.config.Driver == DriverSqlite {
		if _, err := db.ExecContext(ctx, sqliteCreateTable); err != nil {
			_ = db.Close()
			return err
		}
	}
	s.db = db
	s.opened = true
	s.logger.Info(ctx, "connected to %s", s.config.Driver)
	return nil
}

func (s *sqlStore) Close(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	if !s.opened {
		return nil
	}
	if err := s.db.Close(); err != nil {
		s.logger.Error(ctx, "error while closing sql: %s", err)
	}
	s.opened = false
	return nil
}

func (s *sqlStore) EmployeesRead(ctx context.Context) ([]*data.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	query := fmt.Sprintf(`SELECT id, first_name, last_name, email
		FROM %s ORDER BY id;`, data.TableEmployee)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storageError(err)
	}
	defer rows.Close()
	employees := []*data.Employee{}
	for rows.Next() {
		employee, err := employeeScan(rows.Scan)
		if err != nil {
			return nil, storageError(err)
		}
		employees = append(employees, employee)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError(err)
	}
	return employees, nil
}

func (s *sqlStore) EmployeeRead(ctx context.Context, id int64) (*data.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	query := fmt.Sprintf(`SELECT id, first_name, last_name, email
		FROM %s WHERE id = ?;`, data.TableEmployee)
	employee, err := employeeScan(s.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(data.ErrNotFound, "employee id %d", id)
		}
		return nil, storageError(err)
	}
	return employee, nil
}

func (s *sqlStore) EmployeeSave(ctx context.Context, employee data.Employee) (*data.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	id := employee.Id
	switch id {
	case 0:
		query := fmt.Sprintf(`INSERT INTO %s (first_name, last_name, email)
			VALUES (?, ?, ?);`, data.TableEmployee)
		result, err := s.db.ExecContext(ctx, query, employee.FirstName,
			employee.LastName, employee.Email)
		if err != nil {
			return nil, storageError(err)
		}
		if id, err = result.LastInsertId(); err != nil {
			return nil, storageError(err)
		}
	default:
		query := upsertQuery(s.config.Driver)
		if _, err := s.db.ExecContext(ctx, query, employee.Id, employee.FirstName,
			employee.LastName, employee.Email); err != nil {
			return nil, storageError(err)
		}
	}
	return s.EmployeeRead(ctx, id)
}

func (s *sqlStore) EmployeeDelete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?;`, data.TableEmployee)
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return storageError(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return storageError(err)
	}
	if n == 0 {
		return errors.Wrapf(data.ErrNotFound, "employee id %d", id)
	}
	return nil
}
