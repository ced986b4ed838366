package services

import (
	"database/sql"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/FExEVIL/tradeautopsy-sub003/src/database"
	"github.com/FExEVIL/tradeautopsy-sub003/src/logger"
	"github.com/FExEVIL/tradeautopsy-sub003/src/models"
	"github.com/FExEVIL/tradeautopsy-sub003/src/parsers"
	"github.com/FExEVIL/tradeautopsy-sub003/src/processors"
)

const (
	ckLatestResult = "res_latest_import_account_%s"
)

type reconcileServiceImpl struct {
	matcher     *processors.FIFOMatcher
	resultCache *cache.Cache

	// Queue order is sensitive to interleaving, so reconciliation runs for
	// the same account are serialized here instead of inside the matcher.
	accountLocks sync.Map // accountID -> *sync.Mutex
}

func NewReconcileService(matcher *processors.FIFOMatcher, resultCache *cache.Cache) ReconcileService {
	return &reconcileServiceImpl{
		matcher:     matcher,
		resultCache: resultCache,
	}
}

func (s *reconcileServiceImpl) lockAccount(accountID string) func() {
	mu, _ := s.accountLocks.LoadOrStore(accountID, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

func (s *reconcileServiceImpl) ProcessImport(file io.Reader, accountID, source string) (*ImportResult, error) {
	started := time.Now()
	logger.L.Info("ProcessImport START", "accountID", accountID, "source", source)

	parser, err := parsers.GetParser(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	outcome, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	result, err := s.reconcile(outcome.Legs, outcome.Mapping, outcome.Rejected, accountID)
	if err != nil {
		return nil, err
	}
	logger.L.Info("ProcessImport END", "accountID", accountID, "jobID", result.JobID, "duration", time.Since(started))
	return result, nil
}

func (s *reconcileServiceImpl) ProcessLegs(legs []models.TradeLeg, rejected []models.RejectedRow, accountID string) (*ImportResult, error) {
	mapping := models.ColumnMapping{
		Columns:    map[string]string{},
		Confidence: 100,
		Dialect:    "broker-api",
	}
	return s.reconcile(legs, mapping, rejected, accountID)
}

func (s *reconcileServiceImpl) PreviewMapping(file io.Reader) (*parsers.ImportOutcome, error) {
	parser, err := parsers.GetParser("csv")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}
	outcome, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}
	return outcome, nil
}

// reconcile is the single-threaded core run: match, aggregate, persist, cache.
func (s *reconcileServiceImpl) reconcile(legs []models.TradeLeg, mapping models.ColumnMapping, rejected []models.RejectedRow, accountID string) (*ImportResult, error) {
	unlock := s.lockAccount(accountID)
	defer unlock()

	ledger := s.matcher.Process(legs)
	summary := processors.Summarize(ledger)

	result := &ImportResult{
		JobID:     uuid.New().String(),
		AccountID: accountID,
		Mapping:   mapping,
		Ledger:    ledger,
		Rejected:  rejected,
		Summary:   summary,
	}

	if err := s.persist(result, len(legs)+len(rejected)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	s.InvalidateAccountCache(accountID)
	s.resultCache.Set(fmt.Sprintf(ckLatestResult, accountID), result, cache.DefaultExpiration)
	return result, nil
}

func (s *reconcileServiceImpl) persist(result *ImportResult, rowsTotal int) error {
	dbTx, err := database.DB.Begin()
	if err != nil {
		return fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	_, err = dbTx.Exec(
		`INSERT INTO import_jobs (id, account_id, dialect, confidence, rows_total, rows_rejected) VALUES (?, ?, ?, ?, ?, ?)`,
		result.JobID, result.AccountID, result.Mapping.Dialect, result.Mapping.Confidence, rowsTotal, len(result.Rejected),
	)
	if err != nil {
		return fmt.Errorf("error inserting import job: %w", err)
	}

	stmt, err := dbTx.Prepare(`INSERT INTO trade_ledger
		(job_id, account_id, symbol, status, instrument_class, quantity, trade_date, entry_date, entry_price, exit_price, gross_pnl, charges, net_pnl)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for _, rec := range result.Ledger {
		tradeDate := rec.ExitDate
		if tradeDate == "" {
			tradeDate = rec.EntryDate
		}
		_, err := stmt.Exec(
			result.JobID, result.AccountID, rec.Symbol, rec.Status, rec.InstrumentClass,
			rec.Quantity, tradeDate, rec.EntryDate, rec.EntryPrice, rec.ExitPrice,
			nullableFloat(rec.GrossPnL), rec.Charges, nullableFloat(rec.NetPnL),
		)
		if err != nil {
			return fmt.Errorf("error inserting ledger row (symbol: %s): %w", rec.Symbol, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("error committing ledger rows: %w", err)
	}
	return nil
}

func (s *reconcileServiceImpl) GetLedger(accountID string) ([]models.MatchedTrade, error) {
	if cached, found := s.resultCache.Get(fmt.Sprintf(ckLatestResult, accountID)); found {
		logger.L.Debug("Cache hit for latest import result", "accountID", accountID)
		return cached.(*ImportResult).Ledger, nil
	}

	logger.L.Info("Cache miss for ledger, reading from DB", "accountID", accountID)
	jobID, err := latestJobID(accountID)
	if err != nil {
		return nil, err
	}

	rows, err := database.DB.Query(`SELECT symbol, status, instrument_class, quantity, trade_date, entry_date, entry_price, exit_price, gross_pnl, charges, net_pnl
		FROM trade_ledger WHERE job_id = ? ORDER BY id`, jobID)
	if err != nil {
		return nil, fmt.Errorf("error querying ledger rows: %w", err)
	}
	defer rows.Close()

	var ledger []models.MatchedTrade
	for rows.Next() {
		var rec models.MatchedTrade
		var tradeDate string
		var gross, net sql.NullFloat64
		if err := rows.Scan(&rec.Symbol, &rec.Status, &rec.InstrumentClass, &rec.Quantity,
			&tradeDate, &rec.EntryDate, &rec.EntryPrice, &rec.ExitPrice, &gross, &rec.Charges, &net); err != nil {
			return nil, fmt.Errorf("error scanning ledger row: %w", err)
		}
		if rec.Status != models.StatusOpen {
			rec.ExitDate = tradeDate
		}
		if gross.Valid {
			g := gross.Float64
			rec.GrossPnL = &g
		}
		if net.Valid {
			n := net.Float64
			rec.NetPnL = &n
		}
		ledger = append(ledger, rec)
	}
	return ledger, rows.Err()
}

func (s *reconcileServiceImpl) GetSummary(accountID string) (models.Summary, error) {
	ledger, err := s.GetLedger(accountID)
	if err != nil {
		return models.Summary{}, err
	}
	return processors.Summarize(ledger), nil
}

func (s *reconcileServiceImpl) InvalidateAccountCache(accountID string) {
	s.resultCache.Delete(fmt.Sprintf(ckLatestResult, accountID))
	logger.L.Debug("Invalidated result cache for account", "accountID", accountID)
}

func latestJobID(accountID string) (string, error) {
	var jobID string
	err := database.DB.QueryRow(
		`SELECT id FROM import_jobs WHERE account_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		accountID,
	).Scan(&jobID)
	if err == sql.ErrNoRows {
		return "", ErrNoData
	}
	if err != nil {
		return "", fmt.Errorf("error querying latest import job: %w", err)
	}
	return jobID, nil
}

func nullableFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
