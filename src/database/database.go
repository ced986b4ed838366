package database

import (
	"database/sql"
	stdlog "log"

	"github.com/FExEVIL/tradeautopsy-sub003/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	logger.L.Info("Checking database migrations", "databasePath", databasePath)
	migrateLedgerTable()

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS import_jobs (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		dialect TEXT,
		confidence REAL,
		rows_total INTEGER,
		rows_rejected INTEGER,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS trade_ledger (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id TEXT NOT NULL,
		account_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		status TEXT NOT NULL,
		instrument_class TEXT,
		quantity REAL,
		trade_date TEXT,
		entry_date TEXT,
		entry_price REAL,
		exit_price REAL,
		gross_pnl REAL,
		charges REAL,
		net_pnl REAL,
		FOREIGN KEY(job_id) REFERENCES import_jobs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_trade_ledger_account
		ON trade_ledger(account_id, trade_date, symbol);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		logger.L.Error("failed to create tables", "error", err)
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	logger.L.Info("Database tables ensured/created.")
}

// migrateLedgerTable adds columns introduced after the first release to
// existing databases. New databases get them from the CREATE statement.
func migrateLedgerTable() {
	var tableName string
	err := DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='trade_ledger'").Scan(&tableName)
	if err != nil {
		if err == sql.ErrNoRows {
			logger.L.Info("trade_ledger table does not exist, no migration needed as table will be created.")
			return
		}
		logger.L.Error("Error checking for trade_ledger table", "error", err)
		return
	}

	rows, err := DB.Query("PRAGMA table_info(trade_ledger)")
	if err != nil {
		logger.L.Error("Error querying table schema for trade_ledger", "error", err)
		return
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}

		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			logger.L.Error("Error scanning column info for trade_ledger", "error", err)
			return
		}
		columnExists[name] = true
	}
	if err = rows.Err(); err != nil {
		logger.L.Error("Error iterating over column info for trade_ledger", "error", err)
		return
	}

	if _, ok := columnExists["instrument_class"]; !ok {
		if _, err := DB.Exec("ALTER TABLE trade_ledger ADD COLUMN instrument_class TEXT"); err != nil {
			logger.L.Error("Error adding instrument_class column", "error", err)
		} else {
			logger.L.Info("Added instrument_class column to trade_ledger table")
		}
	}
	if _, ok := columnExists["entry_date"]; !ok {
		if _, err := DB.Exec("ALTER TABLE trade_ledger ADD COLUMN entry_date TEXT"); err != nil {
			logger.L.Error("Error adding entry_date column", "error", err)
		} else {
			logger.L.Info("Added entry_date column to trade_ledger table")
		}
	}
}
