package sql

import (
	"fmt"

	"github.com/antonio-alexander/go-employees/internal/data"

	"github.com/pkg/errors"
)

var sqliteCreateTable = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT ''
);`, data.TableEmployee)

func upsertQuery(driver string) string {
	switch driver {
	default:
		return fmt.Sprintf(`INSERT INTO %s (id, first_name, last_name, email)
			VALUES (?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE first_name = VALUES(first_name),
			last_name = VALUES(last_name), email = VALUES(email);`,
			data.TableEmployee)
	case DriverSqlite:
		return fmt.Sprintf(`INSERT INTO %s (id, first_name, last_name, email)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET first_name = excluded.first_name,
			last_name = excluded.last_name, email = excluded.email;`,
			data.TableEmployee)
	}
}

func employeeScan(scanFx func(...any) error) (*data.Employee, error) {
	employee := new(data.Employee)
	if err := scanFx(
		&employee.Id,
		&employee.FirstName,
		&employee.LastName,
		&employee.Email,
	); err != nil {
		return nil, err
	}
	return employee, nil
}

// storageError hides driver failures behind data.ErrStorageUnavailable while
// keeping the original message for logging.
func storageError(err error) error {
	return errors.Wrap(data.ErrStorageUnavailable, err.Error())
}
