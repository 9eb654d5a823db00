package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/predclubs/ledger-engine/internal/model"
)

// CachedStore wraps the primary Store (PostgreSQL) with a Redis read-through
// cache for club and round records. Ledger entries, memberships, and every
// derived balance are deliberately passthrough: balances are refolded from
// the ledger on each read, never cached as counters.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

// --- Writes (to primary, then invalidate/populate) ---

func (s *CachedStore) AppendEntry(ctx context.Context, entry *model.LedgerEntry) error {
	return s.primary.AppendEntry(ctx, entry)
}

func (s *CachedStore) CreateClub(ctx context.Context, club *model.Club, admin *model.ClubMember) error {
	if err := s.primary.CreateClub(ctx, club, admin); err != nil {
		return err
	}
	s.cacheJSON(ctx, clubKey(club.ID), club)
	return nil
}

func (s *CachedStore) AddMember(ctx context.Context, m *model.ClubMember) error {
	return s.primary.AddMember(ctx, m)
}

func (s *CachedStore) CreateRound(ctx context.Context, round *model.PredictionRound, members []model.RoundMember, entries []model.LedgerEntry) error {
	if err := s.primary.CreateRound(ctx, round, members, entries); err != nil {
		return err
	}
	s.cacheJSON(ctx, roundKey(round.ID), round)
	return nil
}

func (s *CachedStore) SettleRound(ctx context.Context, roundID string, payouts []model.RoundMember, entries []model.LedgerEntry) error {
	if err := s.primary.SettleRound(ctx, roundID, payouts, entries); err != nil {
		return err
	}
	// Invalidate; next read re-populates with the settled state.
	s.rdb.Del(ctx, roundKey(roundID))
	return nil
}

// --- Read-through (check cache first) ---

func (s *CachedStore) GetClub(ctx context.Context, id string) (*model.Club, error) {
	if data, err := s.rdb.Get(ctx, clubKey(id)).Bytes(); err == nil {
		var c model.Club
		if json.Unmarshal(data, &c) == nil {
			return &c, nil
		}
	}

	c, err := s.primary.GetClub(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheJSON(ctx, clubKey(id), c)
	return c, nil
}

func (s *CachedStore) GetRound(ctx context.Context, id string) (*model.PredictionRound, error) {
	if data, err := s.rdb.Get(ctx, roundKey(id)).Bytes(); err == nil {
		var r model.PredictionRound
		if json.Unmarshal(data, &r) == nil {
			return &r, nil
		}
	}

	r, err := s.primary.GetRound(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheJSON(ctx, roundKey(id), r)
	return r, nil
}

// --- Passthrough (never cached) ---

func (s *CachedStore) LedgerEntries(ctx context.Context, f model.EntryFilter) ([]model.LedgerEntry, error) {
	return s.primary.LedgerEntries(ctx, f)
}

func (s *CachedStore) GetMember(ctx context.Context, clubID, userID string) (*model.ClubMember, error) {
	return s.primary.GetMember(ctx, clubID, userID)
}

func (s *CachedStore) RoundsByClub(ctx context.Context, clubID string) ([]model.PredictionRound, error) {
	return s.primary.RoundsByClub(ctx, clubID)
}

func (s *CachedStore) RoundMembers(ctx context.Context, roundID string) ([]model.RoundMember, error) {
	return s.primary.RoundMembers(ctx, roundID)
}

func (s *CachedStore) MembershipsByClub(ctx context.Context, clubID string) ([]model.RoundMembership, error) {
	return s.primary.MembershipsByClub(ctx, clubID)
}

func (s *CachedStore) MembershipsByUser(ctx context.Context, userID string) ([]model.RoundMembership, error) {
	return s.primary.MembershipsByUser(ctx, userID)
}

// --- Cache helpers ---

func (s *CachedStore) cacheJSON(ctx context.Context, key string, v any) {
	if data, err := json.Marshal(v); err == nil {
		s.rdb.Set(ctx, key, data, s.ttl)
	}
}

func clubKey(id string) string  { return fmt.Sprintf("club:%s", id) }
func roundKey(id string) string { return fmt.Sprintf("round:%s", id) }
