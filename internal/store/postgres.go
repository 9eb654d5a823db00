package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/predclubs/ledger-engine/internal/model"
)

// PostgresStore implements Store using PostgreSQL as the source of truth.
// Amounts are stored as BIGINT micro-units; seq is a BIGSERIAL that
// provides the global insertion order used to break created_at ties.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const entryColumns = `id, user_id, club_id, safe_address, COALESCE(round_id, ''), type, amount, created_at, seq`

func (s *PostgresStore) AppendEntry(ctx context.Context, e *model.LedgerEntry) error {
	return s.insertEntry(ctx, s.pool, e)
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (s *PostgresStore) insertEntry(ctx context.Context, q querier, e *model.LedgerEntry) error {
	roundID := any(nil)
	if e.RoundID != "" {
		roundID = e.RoundID
	}
	err := q.QueryRow(ctx,
		`INSERT INTO ledger_entries (id, user_id, club_id, safe_address, round_id, type, amount, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING seq`,
		e.ID, e.UserID, e.ClubID, e.SafeAddress, roundID, string(e.Type), int64(e.Amount), e.CreatedAt,
	).Scan(&e.Seq)
	if err != nil {
		return fmt.Errorf("append ledger entry %s: %w", e.ID, err)
	}
	return nil
}

func (s *PostgresStore) LedgerEntries(ctx context.Context, f model.EntryFilter) ([]model.LedgerEntry, error) {
	if f.UserID == "" && f.ClubID == "" {
		return nil, ErrInvalidFilter
	}

	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE 1=1`
	var args []any
	if f.UserID != "" {
		args = append(args, f.UserID)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if f.ClubID != "" {
		args = append(args, f.ClubID)
		query += fmt.Sprintf(" AND club_id = $%d", len(args))
	}
	if f.SafeAddress != "" {
		args = append(args, f.SafeAddress)
		query += fmt.Sprintf(" AND safe_address = $%d", len(args))
	}
	query += " ORDER BY created_at, seq"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows pgx.Rows) ([]model.LedgerEntry, error) {
	var entries []model.LedgerEntry
	for rows.Next() {
		var e model.LedgerEntry
		var typ string
		var amount int64
		if err := rows.Scan(&e.ID, &e.UserID, &e.ClubID, &e.SafeAddress, &e.RoundID,
			&typ, &amount, &e.CreatedAt, &e.Seq); err != nil {
			return nil, err
		}
		e.Type = model.EntryType(typ)
		e.Amount = model.Micros(amount)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *PostgresStore) CreateClub(ctx context.Context, c *model.Club, admin *model.ClubMember) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO clubs (id, name, safe_address, created_at) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, c.SafeAddress, c.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: club %s", ErrDuplicate, c.ID)
	}
	if err != nil {
		return fmt.Errorf("create club %s: %w", c.ID, err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO club_members (club_id, user_id, role, status, joined_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		admin.ClubID, admin.UserID, admin.Role, admin.Status, admin.JoinedAt,
	); err != nil {
		return fmt.Errorf("create club admin %s/%s: %w", admin.ClubID, admin.UserID, err)
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) GetClub(ctx context.Context, id string) (*model.Club, error) {
	var c model.Club
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, safe_address, created_at FROM clubs WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.SafeAddress, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: club %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get club %s: %w", id, err)
	}
	return &c, nil
}

func (s *PostgresStore) AddMember(ctx context.Context, m *model.ClubMember) error {
	// (club_id, user_id) carries a unique constraint.
	_, err := s.pool.Exec(ctx,
		`INSERT INTO club_members (club_id, user_id, role, status, joined_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		m.ClubID, m.UserID, m.Role, m.Status, m.JoinedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: member %s/%s", ErrDuplicate, m.ClubID, m.UserID)
	}
	return err
}

func (s *PostgresStore) GetMember(ctx context.Context, clubID, userID string) (*model.ClubMember, error) {
	var m model.ClubMember
	err := s.pool.QueryRow(ctx,
		`SELECT club_id, user_id, role, status, joined_at
		 FROM club_members WHERE club_id = $1 AND user_id = $2`, clubID, userID).
		Scan(&m.ClubID, &m.UserID, &m.Role, &m.Status, &m.JoinedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: member %s/%s", ErrNotFound, clubID, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("get member %s/%s: %w", clubID, userID, err)
	}
	return &m, nil
}

func (s *PostgresStore) CreateRound(ctx context.Context, round *model.PredictionRound, members []model.RoundMember, entries []model.LedgerEntry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO prediction_rounds (id, club_id, cohort_id, market_ref, market_title, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		round.ID, round.ClubID, round.CohortID, round.MarketRef, round.MarketTitle, round.Status, round.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: round %s", ErrDuplicate, round.ID)
	}
	if err != nil {
		return fmt.Errorf("create round %s: %w", round.ID, err)
	}

	for _, m := range members {
		if _, err := tx.Exec(ctx,
			`INSERT INTO round_members (round_id, user_id, commit_amount, payout_amount, pnl_amount)
			 VALUES ($1, $2, $3, 0, 0)`,
			round.ID, m.UserID, int64(m.CommitAmount),
		); err != nil {
			return fmt.Errorf("create round member %s/%s: %w", round.ID, m.UserID, err)
		}
	}

	for i := range entries {
		if err := s.insertEntry(ctx, tx, &entries[i]); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) SettleRound(ctx context.Context, roundID string, payouts []model.RoundMember, entries []model.LedgerEntry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Conditional flip serializes concurrent settlements: exactly one
	// transaction sees a row change, the other maps to Conflict.
	tag, err := tx.Exec(ctx,
		`UPDATE prediction_rounds SET status = $2 WHERE id = $1 AND status <> $2`,
		roundID, model.RoundSettled,
	)
	if err != nil {
		return fmt.Errorf("settle round %s: %w", roundID, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM prediction_rounds WHERE id = $1)`, roundID).
			Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: round %s", ErrNotFound, roundID)
		}
		return fmt.Errorf("%w: round %s already settled", ErrConflict, roundID)
	}

	for _, p := range payouts {
		if _, err := tx.Exec(ctx,
			`UPDATE round_members SET payout_amount = $3, pnl_amount = $4
			 WHERE round_id = $1 AND user_id = $2`,
			roundID, p.UserID, int64(p.PayoutAmount), int64(p.PnlAmount),
		); err != nil {
			return fmt.Errorf("settle round member %s/%s: %w", roundID, p.UserID, err)
		}
	}

	for i := range entries {
		if err := s.insertEntry(ctx, tx, &entries[i]); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) GetRound(ctx context.Context, id string) (*model.PredictionRound, error) {
	var r model.PredictionRound
	err := s.pool.QueryRow(ctx,
		`SELECT id, club_id, cohort_id, market_ref, market_title, status, created_at
		 FROM prediction_rounds WHERE id = $1`, id).
		Scan(&r.ID, &r.ClubID, &r.CohortID, &r.MarketRef, &r.MarketTitle, &r.Status, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: round %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get round %s: %w", id, err)
	}
	return &r, nil
}

func (s *PostgresStore) RoundsByClub(ctx context.Context, clubID string) ([]model.PredictionRound, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, club_id, cohort_id, market_ref, market_title, status, created_at
		 FROM prediction_rounds WHERE club_id = $1 ORDER BY created_at DESC`, clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rounds []model.PredictionRound
	for rows.Next() {
		var r model.PredictionRound
		if err := rows.Scan(&r.ID, &r.ClubID, &r.CohortID, &r.MarketRef, &r.MarketTitle, &r.Status, &r.CreatedAt); err != nil {
			return nil, err
		}
		rounds = append(rounds, r)
	}
	return rounds, rows.Err()
}

func (s *PostgresStore) RoundMembers(ctx context.Context, roundID string) ([]model.RoundMember, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT round_id, user_id, commit_amount, payout_amount, pnl_amount
		 FROM round_members WHERE round_id = $1`, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []model.RoundMember
	for rows.Next() {
		m, err := scanRoundMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func scanRoundMember(rows pgx.Rows) (model.RoundMember, error) {
	var m model.RoundMember
	var commit, payout, pnl int64
	if err := rows.Scan(&m.RoundID, &m.UserID, &commit, &payout, &pnl); err != nil {
		return m, err
	}
	m.CommitAmount = model.Micros(commit)
	m.PayoutAmount = model.Micros(payout)
	m.PnlAmount = model.Micros(pnl)
	return m, nil
}

const membershipQuery = `
	SELECT rm.round_id, rm.user_id, rm.commit_amount, rm.payout_amount, rm.pnl_amount,
	       r.club_id, r.created_at, r.status
	FROM round_members rm
	JOIN prediction_rounds r ON r.id = rm.round_id`

func (s *PostgresStore) MembershipsByClub(ctx context.Context, clubID string) ([]model.RoundMembership, error) {
	rows, err := s.pool.Query(ctx, membershipQuery+` WHERE r.club_id = $1`, clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMemberships(rows)
}

func (s *PostgresStore) MembershipsByUser(ctx context.Context, userID string) ([]model.RoundMembership, error) {
	rows, err := s.pool.Query(ctx, membershipQuery+` WHERE rm.user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMemberships(rows)
}

func scanMemberships(rows pgx.Rows) ([]model.RoundMembership, error) {
	var result []model.RoundMembership
	for rows.Next() {
		var m model.RoundMembership
		var commit, payout, pnl int64
		if err := rows.Scan(&m.RoundID, &m.UserID, &commit, &payout, &pnl,
			&m.ClubID, &m.RoundCreatedAt, &m.RoundStatus); err != nil {
			return nil, err
		}
		m.CommitAmount = model.Micros(commit)
		m.PayoutAmount = model.Micros(payout)
		m.PnlAmount = model.Micros(pnl)
		result = append(result, m)
	}
	return result, rows.Err()
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
