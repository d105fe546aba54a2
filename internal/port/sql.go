package port

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// sqlScheme opens a database/sql connection under one of the four driver
// names, grounded on the teacher's database.DBManager.Connect (spec names
// of "sqlite"/"postgres"/"mysql"/"mssql" map 1:1 to database/sql driver
// names registered by each blank import above).
type sqlScheme struct {
	driver string
}

func init() {
	RegisterScheme("sqlite", sqlScheme{driver: "sqlite"})
	RegisterScheme("mysql", sqlScheme{driver: "mysql"})
	RegisterScheme("postgres", sqlScheme{driver: "postgres"})
	RegisterScheme("mssql", sqlScheme{driver: "sqlserver"})
}

func (s sqlScheme) Open(dsn string) (Conn, error) {
	db, err := sql.Open(s.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql port (%s): %w", s.driver, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sql port (%s): ping: %w", s.driver, err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	return &sqlConn{db: db}, nil
}

type sqlConn struct {
	db *sql.DB
}

// Read runs query as a row-returning statement, scanning every column of
// every row into a Row (grounded on DBManager.Query's []map[string]any
// shape, including its []byte-to-string coercion for text columns).
func (c *sqlConn) Read(query string, args ...interface{}) ([]Row, error) {
	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("sql port: query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	values := make([]interface{}, len(columns))
	ptrs := make([]interface{}, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	var out []Row
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Write runs query as a non-row-returning statement, returning rows
// affected (grounded on DBManager.Execute).
func (c *sqlConn) Write(query string, args ...interface{}) (int64, error) {
	res, err := c.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("sql port: exec: %w", err)
	}
	return res.RowsAffected()
}

func (c *sqlConn) Close() error { return c.db.Close() }
