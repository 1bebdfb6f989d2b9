// Package storage keeps transactions in SQLite or PostgreSQL.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"findash/internal/core"
	"findash/internal/log"
	"findash/internal/sources"
)

// Dialect selects SQL flavour, driver and migration set.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

func (d Dialect) driverName() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "sqlite"
}

const sqliteDateLayout = "2006-01-02"

type Repository struct {
	db      *sql.DB
	dialect Dialect
	dsn     string
	logger  *log.Logger
}

var _ sources.Store = (*Repository)(nil)

// OpenSQLite opens (creating if needed) a SQLite file and migrates it.
func OpenSQLite(ctx context.Context, dbPath string, logger *log.Logger) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	return open(ctx, DialectSQLite, dsn, logger)
}

// OpenPostgres connects with a postgres:// DSN and migrates the schema.
func OpenPostgres(ctx context.Context, dsn string, logger *log.Logger) (*Repository, error) {
	return open(ctx, DialectPostgres, dsn, logger)
}

func open(ctx context.Context, d Dialect, dsn string, logger *log.Logger) (*Repository, error) {
	if logger == nil {
		logger = log.Discard()
	}
	db, err := sql.Open(d.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", d, err)
	}
	if d == DialectSQLite {
		// one writer at a time avoids SQLITE_BUSY on imports
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(d, dsn); err != nil {
		db.Close()
		return nil, err
	}

	return &Repository{
		db:      db,
		dialect: d,
		dsn:     dsn,
		logger:  logger.WithComponent(log.ComponentStorage),
	}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Name is the database kind reported by the health endpoint.
func (r *Repository) Name() string {
	if r.dialect == DialectPostgres {
		return "postgresql"
	}
	return "sqlite"
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) selectQuery() string {
	if r.dialect == DialectPostgres {
		return `SELECT id, to_char(date, 'YYYY-MM-DD'), account, category, tags,
			expense_amount::text, income_amount::text, currency, main_currency,
			in_main_currency::text, description
		FROM transactions ORDER BY date NULLS LAST, id`
	}
	return `SELECT id, date, account, category, tags,
			expense_amount, income_amount, currency, main_currency,
			in_main_currency, description
		FROM transactions ORDER BY date IS NULL, date, id`
}

// Transactions loads every stored row.
func (r *Repository) Transactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, r.selectQuery())
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			tx   core.Transaction
			date sql.NullString
		)
		if err := rows.Scan(&tx.ID, &date, &tx.Account, &tx.Category, &tx.Tags,
			&tx.ExpenseAmount, &tx.IncomeAmount, &tx.Currency, &tx.MainCurrency,
			&tx.InMainCurrency, &tx.Description); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if date.Valid {
			if d, err := time.Parse(sqliteDateLayout, date.String); err == nil {
				tx.Date = d
			}
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

const insertQuery = `INSERT INTO transactions
	(date, account, category, tags, expense_amount, income_amount,
	 currency, main_currency, in_main_currency, description)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Import writes txs in batches, one database transaction per batch.
// Rows of batches committed before a failure stay stored.
func (r *Repository) Import(ctx context.Context, txs []core.Transaction, batchSize int) (int, error) {
	if batchSize < 1 {
		batchSize = sources.DefaultBatchSize
	}
	stored := 0
	for start := 0; start < len(txs); start += batchSize {
		end := start + batchSize
		if end > len(txs) {
			end = len(txs)
		}
		if err := r.insertBatch(ctx, txs[start:end]); err != nil {
			return stored, fmt.Errorf("batch at row %d: %w", start, err)
		}
		stored = end
		r.logger.DebugContext(ctx, "batch imported", log.FieldRows, stored, log.FieldOperation, log.OpImport)
	}
	r.logger.InfoContext(ctx, "import finished", log.FieldRows, stored, log.FieldBackend, r.Name())
	return stored, nil
}

func (r *Repository) insertBatch(ctx context.Context, batch []core.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, r.rebind(insertQuery))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range batch {
		var date any
		if t.HasDate() {
			date = t.Date.Format(sqliteDateLayout)
		}
		if _, err := stmt.ExecContext(ctx, date, t.Account, t.Category, t.Tags,
			amountArg(t.ExpenseAmount), amountArg(t.IncomeAmount),
			t.Currency, t.MainCurrency, amountArg(t.InMainCurrency), t.Description); err != nil {
			return fmt.Errorf("insert: %w", err)
		}
	}
	return tx.Commit()
}

// Reset drops the schema and migrates it again.
func (r *Repository) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := resetSchema(r.dialect, r.dsn); err != nil {
		return err
	}
	r.logger.WarnContext(ctx, "database reset", log.FieldOperation, log.OpReset, log.FieldBackend, r.Name())
	return nil
}

// rebind turns ? placeholders into $n for PostgreSQL.
func (r *Repository) rebind(q string) string {
	if r.dialect != DialectPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, c := range q {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func amountArg(d decimal.Decimal) string {
	return d.StringFixed(2)
}
