package postgres

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/antonio-alexander/go-employees/internal"
	"github.com/antonio-alexander/go-employees/internal/data"
	"github.com/antonio-alexander/go-employees/internal/sql"
	"github.com/antonio-alexander/go-employees/internal/utilities"

	"github.com/cenkalti/backoff/v5"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

type postgresStore struct {
	sync.RWMutex
	config struct {
		Hostname        string        `json:"hostname"`
		Port            string        `json:"port"`
		Username        string        `json:"username"`
		Password        string        `json:"password"`
		Database        string        `json:"database"`
		SslMode         string        `json:"ssl_mode"`
		QueryTimeout    time.Duration `json:"query_timeout"`
		ConnectMaxTries uint          `json:"connect_max_tries"`
	}
	db     *gorm.DB
	logger utilities.Logger
}

// NewPostgres creates an employee store backed by gorm; it satisfies the
// same contract as the database/sql store.
func NewPostgres(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	sql.Sql
} {
	p := &postgresStore{}
	for _, parameter := range parameters {
		switch v := parameter.(type) {
		case utilities.Logger:
			p.logger = v
		}
	}
	if p.logger == nil {
		p.logger = utilities.NewLogger()
	}
	p.config.Hostname = "localhost"
	p.config.Port = "5432"
	p.config.SslMode = "disable"
	p.config.QueryTimeout = 10 * time.Second
	p.config.ConnectMaxTries = 5
	return p
}

func (p *postgresStore) Configure(envs map[string]string) error {
	p.Lock()
	defer p.Unlock()

	if hostname := envs["POSTGRES_HOST"]; hostname != "" {
		p.config.Hostname = hostname
	}
	if port := envs["POSTGRES_PORT"]; port != "" {
		p.config.Port = port
	}
	if database := envs["POSTGRES_DATABASE"]; database != "" {
		p.config.Database = database
	}
	if username := envs["POSTGRES_USER"]; username != "" {
		p.config.Username = username
	}
	if password := envs["POSTGRES_PASSWORD"]; password != "" {
		p.config.Password = password
	}
	if sslMode := envs["POSTGRES_SSL_MODE"]; sslMode != "" {
		p.config.SslMode = sslMode
	}
	if v := envs["POSTGRES_QUERY_TIMEOUT"]; v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil && i > 0 {
			p.config.QueryTimeout = time.Duration(i) * time.Second
		}
	}
	if v := envs["POSTGRES_CONNECT_MAX_TRIES"]; v != "" {
		if i, err := strconv.ParseUint(v, 10, 64); err == nil && i > 0 {
			p.config.ConnectMaxTries = uint(i)
		}
	}
	return nil
}

func (p *postgresStore) Open(ctx context.Context) error {
	p.Lock()
	defer p.Unlock()

	if p.db != nil {
		return nil
	}
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.config.Hostname, p.config.Port, p.config.Username, p.config.Password,
		p.config.Database, p.config.SslMode)
	db, err := backoff.Retry(ctx, func() (*gorm.DB, error) {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			p.logger.Debug(ctx, "error while connecting to postgres: %s", err)
			return nil, err
		}
		return db, nil
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(p.config.ConnectMaxTries))
	if err != nil {
		return errors.Wrap(err, "unable to connect to postgres")
	}
	p.db = db
	p.logger.Info(ctx, "connected to postgres")
	return nil
}

func (p *postgresStore) Close(ctx context.Context) error {
	p.Lock()
	defer p.Unlock()

	if p.db == nil {
		return nil
	}
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil {
		p.logger.Error(ctx, "error while closing postgres: %s", err)
	}
	p.db = nil
	return nil
}

func (p *postgresStore) EmployeesRead(ctx context.Context) ([]*data.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.QueryTimeout)
	defer cancel()

	employees := []*data.Employee{}
	if err := p.db.WithContext(ctx).Order("id").Find(&employees).Error; err != nil {
		return nil, storageError(err)
	}
	return employees, nil
}

func (p *postgresStore) EmployeeRead(ctx context.Context, id int64) (*data.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.QueryTimeout)
	defer cancel()

	employee := &data.Employee{}
	if err := p.db.WithContext(ctx).Where("id = ?", id).
		First(employee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(data.ErrNotFound, "employee id %d", id)
		}
		return nil, storageError(err)
	}
	return employee, nil
}

func (p *postgresStore) EmployeeSave(ctx context.Context, employee data.Employee) (*data.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.QueryTimeout)
	defer cancel()

	if employee.Id == 0 {
		if err := p.db.WithContext(ctx).Create(&employee).Error; err != nil {
			return nil, storageError(err)
		}
		return p.EmployeeRead(ctx, employee.Id)
	}
	//KIM: an explicit id doesn't advance the serial sequence, so it's
	// moved past the largest id or the next insert would collide
	if err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&employee).Error; err != nil {
			return err
		}
		return tx.Exec(`SELECT setval(pg_get_serial_sequence('employee', 'id'),
			GREATEST((SELECT MAX(id) FROM employee), 1))`).Error
	}); err != nil {
		return nil, storageError(err)
	}
	return p.EmployeeRead(ctx, employee.Id)
}

func (p *postgresStore) EmployeeDelete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, p.config.QueryTimeout)
	defer cancel()

	result := p.db.WithContext(ctx).Delete(&data.Employee{}, id)
	if err := result.Error; err != nil {
		return storageError(err)
	}
	if result.RowsAffected == 0 {
		return errors.Wrapf(data.ErrNotFound, "employee id %d", id)
	}
	return nil
}

func storageError(err error) error {
	return errors.Wrap(data.ErrStorageUnavailable, err.Error())
}
