package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"FundSentinel/internal/model"
)

// SQLiteStore persists holdings, trade records and the watchlist to a
// SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so report reads don't block trade writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS holdings (
			code            TEXT PRIMARY KEY,
			share           REAL,
			cost_amount     REAL,
			cost_unit       REAL,
			realized_profit REAL,
			start_date      TEXT,
			updated_at      INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS trade_records (
			id         TEXT PRIMARY KEY,
			code       TEXT NOT NULL,
			fund_name  TEXT,
			kind       TEXT NOT NULL,
			trade_date TEXT,
			created_at INTEGER NOT NULL,
			share      REAL NOT NULL,
			amount     REAL,
			price      REAL,
			fee_rate   REAL,
			mode       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_code ON trade_records(code, created_at)`,

		`CREATE TABLE IF NOT EXISTS watchlist (
			code     TEXT PRIMARY KEY,
			name     TEXT,
			added_at INTEGER NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func fromNull(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return model.Num(v.Float64)
}

func (s *SQLiteStore) Holding(code string) (*model.HoldingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scanHolding(s.db.QueryRow(
		`SELECT share, cost_amount, cost_unit, realized_profit, start_date FROM holdings WHERE code = ?`, code))
}

func (s *SQLiteStore) scanHolding(row *sql.Row) (*model.HoldingRecord, error) {
	var share, costAmount, costUnit, realized sql.NullFloat64
	var startDate sql.NullString
	err := row.Scan(&share, &costAmount, &costUnit, &realized, &startDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &model.HoldingRecord{
		Share:          fromNull(share),
		CostAmount:     fromNull(costAmount),
		CostUnit:       fromNull(costUnit),
		RealizedProfit: fromNull(realized),
		StartDate:      startDate.String,
	}, nil
}

func (s *SQLiteStore) Holdings() (map[string]*model.HoldingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT code, share, cost_amount, cost_unit, realized_profit, start_date FROM holdings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]*model.HoldingRecord)
	for rows.Next() {
		var code string
		var share, costAmount, costUnit, realized sql.NullFloat64
		var startDate sql.NullString
		if err := rows.Scan(&code, &share, &costAmount, &costUnit, &realized, &startDate); err != nil {
			return nil, err
		}
		out[code] = &model.HoldingRecord{
			Share:          fromNull(share),
			CostAmount:     fromNull(costAmount),
			CostUnit:       fromNull(costUnit),
			RealizedProfit: fromNull(realized),
			StartDate:      startDate.String,
		}
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SaveHolding(code string, h *model.HoldingRecord) error {
	n := NormalizeHolding(h)
	if n == nil {
		return s.DeleteHolding(code)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var startDate any
	if n.StartDate != "" {
		startDate = n.StartDate
	}
	_, err := s.db.Exec(`INSERT INTO holdings
		(code, share, cost_amount, cost_unit, realized_profit, start_date, updated_at)
		VALUES (?,?,?,?,?,?,?)
		ON CONFLICT(code) DO UPDATE SET
			share = excluded.share,
			cost_amount = excluded.cost_amount,
			cost_unit = excluded.cost_unit,
			realized_profit = excluded.realized_profit,
			start_date = excluded.start_date,
			updated_at = excluded.updated_at`,
		code, nullable(n.Share), nullable(n.CostAmount), nullable(n.CostUnit),
		nullable(n.RealizedProfit), startDate, time.Now().Unix(),
	)
	return err
}

func (s *SQLiteStore) DeleteHolding(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`DELETE FROM holdings WHERE code = ?`, code)
	return err
}

func (s *SQLiteStore) Trades(code string) ([]model.TradeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT id, code, fund_name, kind, trade_date, created_at,
		share, amount, price, fee_rate, mode
		FROM trade_records WHERE code = ? ORDER BY created_at, rowid`, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TradeRecord
	for rows.Next() {
		var r model.TradeRecord
		var fundName, tradeDate, mode sql.NullString
		var amount sql.NullFloat64
		var price, feeRate sql.NullFloat64
		if err := rows.Scan(&r.ID, &r.Code, &fundName, &r.Kind, &tradeDate, &r.CreatedAt,
			&r.Share, &amount, &price, &feeRate, &mode); err != nil {
			return nil, err
		}
		r.FundName = fundName.String
		r.Date = tradeDate.String
		r.Amount = fromNull(amount)
		r.Price = price.Float64
		r.FeeRatePct = feeRate.Float64
		r.Mode = model.TradeMode(mode.String)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AppendTrade(rec *model.TradeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO trade_records
		(id, code, fund_name, kind, trade_date, created_at, share, amount, price, fee_rate, mode)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		rec.ID, rec.Code, rec.FundName, string(rec.Kind), rec.Date, rec.CreatedAt,
		rec.Share, nullable(rec.Amount), rec.Price, rec.FeeRatePct, string(rec.Mode),
	)
	return err
}

func (s *SQLiteStore) DeleteTrade(code, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`DELETE FROM trade_records WHERE code = ? AND id = ?`, code, id)
	return err
}

func (s *SQLiteStore) Watchlist() ([]WatchEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT code, name FROM watchlist ORDER BY added_at, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []WatchEntry
	for rows.Next() {
		var e WatchEntry
		var name sql.NullString
		if err := rows.Scan(&e.Code, &name); err != nil {
			return nil, err
		}
		e.Name = name.String
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AddWatch(code, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`INSERT INTO watchlist (code, name, added_at) VALUES (?,?,?)
		ON CONFLICT(code) DO UPDATE SET name = excluded.name`,
		code, name, time.Now().Unix())
	return err
}

func (s *SQLiteStore) RemoveWatch(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`DELETE FROM watchlist WHERE code = ?`, code)
	return err
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}
