package recorder

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so CSV exports can read while the cycle writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("SQLite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signals (
			id                       INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp                TEXT NOT NULL,
			city                     TEXT,
			market_type              TEXT,
			bucket_label             TEXT,
			kalshi_price             INTEGER,
			nws_implied              INTEGER,
			gap                      INTEGER,
			direction                TEXT,
			confidence               TEXT,
			was_settled              INTEGER,
			nws_grid_forecast        INTEGER,
			observed_running         INTEGER,
			forecast_temp_used       INTEGER,
			ecmwf_high               INTEGER,
			gfs_high                 INTEGER,
			gem_high                 INTEGER,
			icon_high                INTEGER,
			weatherapi_high          INTEGER,
			consensus_high           INTEGER,
			model_spread             INTEGER,
			std_dev_used             REAL,
			time_decay_multiplier    REAL,
			hourly_remaining_extreme INTEGER,
			hourly_adjusted          INTEGER,
			ticker                   TEXT,
			market_date              TEXT,
			resolution_date          TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_resolution ON signals(resolution_date)`,

		`CREATE TABLE IF NOT EXISTS paper_trades (
			id                       TEXT PRIMARY KEY,
			entry_time               TEXT NOT NULL,
			exit_time                TEXT,
			city                     TEXT,
			market_type              TEXT,
			bucket_label             TEXT,
			ticker                   TEXT,
			direction                TEXT,
			entry_price              INTEGER,
			exit_result              TEXT,
			pnl_cents                INTEGER,
			gap_at_entry             INTEGER,
			spread_at_entry          INTEGER,
			std_dev_at_entry         REAL,
			time_decay_at_entry      REAL,
			nws_prob_at_entry        INTEGER,
			forecast_temp_at_entry   INTEGER,
			consensus_at_entry       INTEGER,
			hourly_adjusted_at_entry INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_paper_ticker ON paper_trades(ticker)`,

		`CREATE TABLE IF NOT EXISTS resolutions (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			date               TEXT,
			city               TEXT,
			market_type        TEXT,
			bucket_label       TEXT,
			ticker             TEXT,
			direction          TEXT,
			kalshi_price       INTEGER,
			nws_implied        INTEGER,
			gap                INTEGER,
			result             TEXT,
			resolved_correct   INTEGER,
			pnl_cents          INTEGER,
			forecast_temp_used INTEGER,
			actual_temp        INTEGER,
			forecast_error     INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_resolutions_date ON resolutions(date)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

const signalColumns = `timestamp, city, market_type, bucket_label, kalshi_price,
	nws_implied, gap, direction, confidence, was_settled,
	nws_grid_forecast, observed_running, forecast_temp_used,
	ecmwf_high, gfs_high, gem_high, icon_high, weatherapi_high,
	consensus_high, model_spread, std_dev_used, time_decay_multiplier,
	hourly_remaining_extreme, hourly_adjusted, ticker, market_date,
	resolution_date`

// AppendSignals writes one cycle's rows in a single transaction.
func (r *SQLiteRecorder) AppendSignals(rows []SignalRow) error {
	if len(rows) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO signals (` + signalColumns + `)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		_, err := stmt.Exec(
			row.Timestamp, row.City, row.MarketType, row.BucketLabel,
			row.KalshiPrice, row.NWSImplied, row.Gap, row.Direction,
			row.Confidence, row.WasSettled, row.GridForecast,
			row.ObservedRunning, row.ForecastTemp,
			row.ECMWF, row.GFS, row.GEM, row.ICON, row.WeatherAPI,
			row.Consensus, row.ModelSpread, row.StdDevUsed, row.TimeDecay,
			row.HourlyRemaining, row.HourlyAdjusted, row.Ticker,
			row.MarketDate, row.ResolutionDate,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("insert signal: %w", err)
		}
	}
	return tx.Commit()
}

// InsertPaperEntry records a freshly opened position with empty exit fields.
func (r *SQLiteRecorder) InsertPaperEntry(row PaperTradeRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO paper_trades
		(id, entry_time, exit_time, city, market_type, bucket_label, ticker,
		 direction, entry_price, exit_result, pnl_cents, gap_at_entry,
		 spread_at_entry, std_dev_at_entry, time_decay_at_entry,
		 nws_prob_at_entry, forecast_temp_at_entry, consensus_at_entry,
		 hourly_adjusted_at_entry)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		row.ID, row.EntryTime, row.ExitTime, row.City, row.MarketType,
		row.BucketLabel, row.Ticker, row.Direction, row.EntryPrice,
		row.ExitResult, row.PnLCents, row.GapAtEntry,
		row.SpreadAtEntry, row.StdDevAtEntry, row.TimeDecayAtEntry,
		row.NWSProbAtEntry, row.ForecastTempAtEntry, row.ConsensusAtEntry,
		row.HourlyAdjustedAtEntry,
	)
	if err != nil {
		return fmt.Errorf("insert paper entry: %w", err)
	}
	return nil
}

// CompletePaperTrade fills the exit fields of an open position row.
func (r *SQLiteRecorder) CompletePaperTrade(id, exitTime, result string, pnlCents int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.Exec(`UPDATE paper_trades
		SET exit_time = ?, exit_result = ?, pnl_cents = ?
		WHERE id = ?`,
		exitTime, result, pnlCents, id,
	)
	if err != nil {
		return fmt.Errorf("complete paper trade: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("complete paper trade: id %s not found", id)
	}
	return nil
}

// AppendResolutions writes one scorer run's rows.
func (r *SQLiteRecorder) AppendResolutions(rows []ResolutionRow) error {
	if len(rows) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO resolutions
		(date, city, market_type, bucket_label, ticker, direction,
		 kalshi_price, nws_implied, gap, result, resolved_correct, pnl_cents,
		 forecast_temp_used, actual_temp, forecast_error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		_, err := stmt.Exec(
			row.Date, row.City, row.MarketType, row.BucketLabel, row.Ticker,
			row.Direction, row.KalshiPrice, row.NWSImplied, row.Gap,
			row.Result, row.ResolvedCorrect, row.PnLCents, row.ForecastTemp,
			row.ActualTemp, row.ForecastError,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("insert resolution: %w", err)
		}
	}
	return tx.Commit()
}

// SignalsByResolutionDate returns recorded signals settling on the given
// "2006-01-02" date, in insertion order.
func (r *SQLiteRecorder) SignalsByResolutionDate(date string) ([]SignalRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT `+signalColumns+` FROM signals
		WHERE resolution_date = ? ORDER BY id`, date)
	if err != nil {
		return nil, fmt.Errorf("query signals: %w", err)
	}
	defer rows.Close()
	return scanSignals(rows)
}

// AllSignals dumps the signals table in insertion order.
func (r *SQLiteRecorder) AllSignals() ([]SignalRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT ` + signalColumns + ` FROM signals ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query signals: %w", err)
	}
	defer rows.Close()
	return scanSignals(rows)
}

func scanSignals(rows *sql.Rows) ([]SignalRow, error) {
	var out []SignalRow
	for rows.Next() {
		var row SignalRow
		err := rows.Scan(
			&row.Timestamp, &row.City, &row.MarketType, &row.BucketLabel,
			&row.KalshiPrice, &row.NWSImplied, &row.Gap, &row.Direction,
			&row.Confidence, &row.WasSettled, &row.GridForecast,
			&row.ObservedRunning, &row.ForecastTemp,
			&row.ECMWF, &row.GFS, &row.GEM, &row.ICON, &row.WeatherAPI,
			&row.Consensus, &row.ModelSpread, &row.StdDevUsed, &row.TimeDecay,
			&row.HourlyRemaining, &row.HourlyAdjusted, &row.Ticker,
			&row.MarketDate, &row.ResolutionDate,
		)
		if err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// AllPaperTrades dumps the paper_trades table in entry order.
func (r *SQLiteRecorder) AllPaperTrades() ([]PaperTradeRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT id, entry_time, exit_time, city,
		market_type, bucket_label, ticker, direction, entry_price,
		exit_result, pnl_cents, gap_at_entry, spread_at_entry,
		std_dev_at_entry, time_decay_at_entry, nws_prob_at_entry,
		forecast_temp_at_entry, consensus_at_entry, hourly_adjusted_at_entry
		FROM paper_trades ORDER BY entry_time, id`)
	if err != nil {
		return nil, fmt.Errorf("query paper trades: %w", err)
	}
	defer rows.Close()

	var out []PaperTradeRow
	for rows.Next() {
		var row PaperTradeRow
		err := rows.Scan(
			&row.ID, &row.EntryTime, &row.ExitTime, &row.City,
			&row.MarketType, &row.BucketLabel, &row.Ticker, &row.Direction,
			&row.EntryPrice, &row.ExitResult, &row.PnLCents, &row.GapAtEntry,
			&row.SpreadAtEntry, &row.StdDevAtEntry, &row.TimeDecayAtEntry,
			&row.NWSProbAtEntry, &row.ForecastTempAtEntry,
			&row.ConsensusAtEntry, &row.HourlyAdjustedAtEntry,
		)
		if err != nil {
			return nil, fmt.Errorf("scan paper trade: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// AllResolutions dumps the resolutions table in insertion order.
func (r *SQLiteRecorder) AllResolutions() ([]ResolutionRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT date, city, market_type, bucket_label,
		ticker, direction, kalshi_price, nws_implied, gap, result,
		resolved_correct, pnl_cents, forecast_temp_used, actual_temp,
		forecast_error
		FROM resolutions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query resolutions: %w", err)
	}
	defer rows.Close()

	var out []ResolutionRow
	for rows.Next() {
		var row ResolutionRow
		err := rows.Scan(
			&row.Date, &row.City, &row.MarketType, &row.BucketLabel,
			&row.Ticker, &row.Direction, &row.KalshiPrice, &row.NWSImplied,
			&row.Gap, &row.Result, &row.ResolvedCorrect, &row.PnLCents,
			&row.ForecastTemp, &row.ActualTemp, &row.ForecastError,
		)
		if err != nil {
			return nil, fmt.Errorf("scan resolution: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("Closing SQLite recorder")
	return r.db.Close()
}
