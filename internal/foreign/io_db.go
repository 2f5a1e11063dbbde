package foreign

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"tails/internal/ast"
	"tails/internal/evaluator"
	"tails/internal/object"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// connection is an open database plus its transaction, if one is running.
type connection struct {
	driver string
	db     *sql.DB
	tx     *sql.Tx
}

type databases struct {
	next  int
	conns map[int]*connection
}

func newDatabases() *databases {
	return &databases{next: 1, conns: map[int]*connection{}}
}

func (d *databases) len() int { return len(d.conns) }

func (d *databases) add(c *connection) int {
	id := d.next
	d.next++
	d.conns[id] = c
	return id
}

// close rolls back a pending transaction before closing the handle.
func (d *databases) close(id int) error {
	c, ok := d.conns[id]
	if !ok {
		return fmt.Errorf("invalid connection handle %d", id)
	}
	delete(d.conns, id)
	var errs []error
	if c.tx != nil {
		if err := c.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			errs = append(errs, err)
		}
	}
	if err := c.db.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (d *databases) closeAll() error {
	var errs []error
	for id := range d.conns {
		if err := d.close(id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// queryer is what *sql.DB and *sql.Tx have in common.
type queryer interface {
	Query(query string, args ...any) (*sql.Rows, error)
	Exec(query string, args ...any) (sql.Result, error)
}

func (c *connection) target() queryer {
	if c.tx != nil {
		return c.tx
	}
	return c.db
}

func (r *Registry) handleArg(name string, values []object.Object) (int, *connection, error) {
	id, err := intArg(name, "connection handle", values, 0)
	if err != nil {
		return 0, nil, err
	}
	c, ok := r.databases.conns[id]
	if !ok {
		return 0, nil, fmt.Errorf("%s: invalid connection handle %d", name, id)
	}
	return id, c, nil
}

// fnDbConnect opens `db-connect "sqlite3" "file.db"` and returns a numeric
// handle.
func (r *Registry) fnDbConnect() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "db-connect", args, 2, 2, "driver, dsn")
		if err != nil {
			return nil, err
		}
		driver, err := stringArg("db-connect", values, 0)
		if err != nil {
			return nil, err
		}
		dsn, err := stringArg("db-connect", values, 1)
		if err != nil {
			return nil, err
		}
		db, err := sql.Open(driver, dsn)
		if err != nil {
			return nil, fmt.Errorf("db-connect: failed to open connection: %w", err)
		}
		if driver == "sqlite3" {
			// every pooled connection to :memory: would be a separate database
			db.SetMaxOpenConns(1)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("db-connect: failed to ping database: %w", err)
		}
		id := r.databases.add(&connection{driver: driver, db: db})
		slog.Debug("database connected", slog.String("driver", driver), slog.Int("handle", id))
		return number(float64(id)), nil
	}
}

// queryParams reads the optional parameter list that follows the SQL text.
func queryParams(name string, values []object.Object) ([]any, error) {
	if len(values) < 3 {
		return nil, nil
	}
	items, err := listArg(name, values, 2)
	if err != nil {
		return nil, err
	}
	params := make([]any, len(items))
	for i, item := range items {
		params[i] = object.ToNative(item)
	}
	return params, nil
}

func (r *Registry) fnDbQuery() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "db-query", args, 2, 3, "handle, sql, optional params")
		if err != nil {
			return nil, err
		}
		id, c, err := r.handleArg("db-query", values)
		if err != nil {
			return nil, err
		}
		query, err := stringArg("db-query", values, 1)
		if err != nil {
			return nil, err
		}
		params, err := queryParams("db-query", values)
		if err != nil {
			return nil, err
		}
		slog.Debug("db query", slog.String("driver", c.driver), slog.Int("handle", id), slog.Bool("tx", c.tx != nil))
		rows, err := c.target().Query(query, params...)
		if err != nil {
			return nil, fmt.Errorf("db-query: query failed: %w", err)
		}
		defer rows.Close()
		return renderRows(rows)
	}
}

func (r *Registry) fnDbExec() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "db-exec", args, 2, 3, "handle, sql, optional params")
		if err != nil {
			return nil, err
		}
		id, c, err := r.handleArg("db-exec", values)
		if err != nil {
			return nil, err
		}
		query, err := stringArg("db-exec", values, 1)
		if err != nil {
			return nil, err
		}
		params, err := queryParams("db-exec", values)
		if err != nil {
			return nil, err
		}
		slog.Debug("db exec", slog.String("driver", c.driver), slog.Int("handle", id), slog.Bool("tx", c.tx != nil))
		result, err := c.target().Exec(query, params...)
		if err != nil {
			return nil, fmt.Errorf("db-exec: exec failed: %w", err)
		}
		// postgres does not support LastInsertId; report what the driver offers
		affected, _ := result.RowsAffected()
		lastID, _ := result.LastInsertId()
		return object.NewMap().
			Put("ok", object.TRUE).
			Put("rows_affected", number(float64(affected))).
			Put("last_insert_id", number(float64(lastID))), nil
	}
}

func (r *Registry) fnDbBegin() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "db-begin", args, 1, 1, "handle")
		if err != nil {
			return nil, err
		}
		id, c, err := r.handleArg("db-begin", values)
		if err != nil {
			return nil, err
		}
		if c.tx != nil {
			return nil, fmt.Errorf("db-begin: transaction already in progress")
		}
		tx, err := c.db.Begin()
		if err != nil {
			return nil, fmt.Errorf("db-begin: failed to begin transaction: %w", err)
		}
		c.tx = tx
		slog.Debug("db begin", slog.String("driver", c.driver), slog.Int("handle", id))
		return values[0], nil
	}
}

func (r *Registry) txEnd(name string, end func(*sql.Tx) error) evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, name, args, 1, 1, "handle")
		if err != nil {
			return nil, err
		}
		id, c, err := r.handleArg(name, values)
		if err != nil {
			return nil, err
		}
		if c.tx == nil {
			return nil, fmt.Errorf("%s: no transaction in progress", name)
		}
		tx := c.tx
		c.tx = nil
		if err := end(tx); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		slog.Debug(name, slog.String("driver", c.driver), slog.Int("handle", id))
		return values[0], nil
	}
}

func (r *Registry) fnDbCommit() evaluator.Builtin {
	return r.txEnd("db-commit", (*sql.Tx).Commit)
}

func (r *Registry) fnDbRollback() evaluator.Builtin {
	return r.txEnd("db-rollback", (*sql.Tx).Rollback)
}

func (r *Registry) fnDbClose() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "db-close", args, 1, 1, "handle")
		if err != nil {
			return nil, err
		}
		id, c, err := r.handleArg("db-close", values)
		if err != nil {
			return nil, err
		}
		slog.Debug("database closed", slog.String("driver", c.driver), slog.Int("handle", id))
		if err := r.databases.close(id); err != nil {
			return nil, fmt.Errorf("db-close: %w", err)
		}
		return object.NULL, nil
	}
}

// renderRows turns each row into an object keyed by column name, in column
// order.
func renderRows(rows *sql.Rows) (object.Object, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []object.Object
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}
		row := object.NewMap()
		for i, col := range columns {
			row.Put(col, columnValue(values[i]))
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return object.NewList(out...), nil
}

func columnValue(v any) object.Object {
	switch x := v.(type) {
	case []byte:
		return str(string(x))
	case time.Time:
		return date(x)
	}
	return object.FromNative(v)
}
