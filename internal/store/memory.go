package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/predclubs/ledger-engine/internal/model"
)

// MemoryStore implements Store with in-memory maps. Used for testing and
// development. Multi-row operations hold the single lock for their full
// duration, giving the same all-or-nothing visibility as a database
// transaction.
type MemoryStore struct {
	mu      sync.RWMutex
	seq     int64
	ledger  []model.LedgerEntry
	clubs   map[string]*model.Club
	members map[string]*model.ClubMember // key: clubID + "/" + userID
	rounds  map[string]*model.PredictionRound
	stakes  map[string][]model.RoundMember // roundID → members
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		clubs:   make(map[string]*model.Club),
		members: make(map[string]*model.ClubMember),
		rounds:  make(map[string]*model.PredictionRound),
		stakes:  make(map[string][]model.RoundMember),
	}
}

func memberKey(clubID, userID string) string { return clubID + "/" + userID }

// appendLocked assigns the insertion sequence and stores a copy.
// Caller must hold s.mu.
func (s *MemoryStore) appendLocked(entry *model.LedgerEntry) {
	s.seq++
	entry.Seq = s.seq
	s.ledger = append(s.ledger, *entry)
}

func (s *MemoryStore) AppendEntry(_ context.Context, entry *model.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.appendLocked(entry)
	return nil
}

func (s *MemoryStore) LedgerEntries(_ context.Context, f model.EntryFilter) ([]model.LedgerEntry, error) {
	if f.UserID == "" && f.ClubID == "" {
		return nil, ErrInvalidFilter
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.LedgerEntry
	for _, e := range s.ledger {
		if f.UserID != "" && e.UserID != f.UserID {
			continue
		}
		if f.ClubID != "" && e.ClubID != f.ClubID {
			continue
		}
		if f.SafeAddress != "" && e.SafeAddress != f.SafeAddress {
			continue
		}
		result = append(result, e)
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].Seq < result[j].Seq
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *MemoryStore) CreateClub(_ context.Context, club *model.Club, admin *model.ClubMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.clubs[club.ID]; exists {
		return fmt.Errorf("%w: club %s", ErrDuplicate, club.ID)
	}
	key := memberKey(admin.ClubID, admin.UserID)
	if _, exists := s.members[key]; exists {
		return fmt.Errorf("%w: member %s", ErrDuplicate, key)
	}

	cp := *club
	mp := *admin
	s.clubs[club.ID] = &cp
	s.members[key] = &mp
	return nil
}

func (s *MemoryStore) GetClub(_ context.Context, id string) (*model.Club, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clubs[id]
	if !ok {
		return nil, fmt.Errorf("%w: club %s", ErrNotFound, id)
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) AddMember(_ context.Context, m *model.ClubMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memberKey(m.ClubID, m.UserID)
	if _, exists := s.members[key]; exists {
		return fmt.Errorf("%w: member %s", ErrDuplicate, key)
	}
	cp := *m
	s.members[key] = &cp
	return nil
}

func (s *MemoryStore) GetMember(_ context.Context, clubID, userID string) (*model.ClubMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.members[memberKey(clubID, userID)]
	if !ok {
		return nil, fmt.Errorf("%w: member %s/%s", ErrNotFound, clubID, userID)
	}
	cp := *m
	return &cp, nil
}

func (s *MemoryStore) CreateRound(_ context.Context, round *model.PredictionRound, members []model.RoundMember, entries []model.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rounds[round.ID]; exists {
		return fmt.Errorf("%w: round %s", ErrDuplicate, round.ID)
	}

	cp := *round
	s.rounds[round.ID] = &cp
	s.stakes[round.ID] = append([]model.RoundMember(nil), members...)
	for i := range entries {
		s.appendLocked(&entries[i])
	}
	return nil
}

func (s *MemoryStore) SettleRound(_ context.Context, roundID string, payouts []model.RoundMember, entries []model.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rounds[roundID]
	if !ok {
		return fmt.Errorf("%w: round %s", ErrNotFound, roundID)
	}
	if r.Status == model.RoundSettled {
		return fmt.Errorf("%w: round %s already settled", ErrConflict, roundID)
	}

	byUser := make(map[string]model.RoundMember, len(payouts))
	for _, p := range payouts {
		byUser[p.UserID] = p
	}

	stakes := s.stakes[roundID]
	for i := range stakes {
		if p, ok := byUser[stakes[i].UserID]; ok {
			stakes[i].PayoutAmount = p.PayoutAmount
			stakes[i].PnlAmount = p.PnlAmount
		}
	}
	s.stakes[roundID] = stakes

	r.Status = model.RoundSettled
	for i := range entries {
		s.appendLocked(&entries[i])
	}
	return nil
}

func (s *MemoryStore) GetRound(_ context.Context, id string) (*model.PredictionRound, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rounds[id]
	if !ok {
		return nil, fmt.Errorf("%w: round %s", ErrNotFound, id)
	}
	cp := *r
	return &cp, nil
}

func (s *MemoryStore) RoundsByClub(_ context.Context, clubID string) ([]model.PredictionRound, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rounds []model.PredictionRound
	for _, r := range s.rounds {
		if r.ClubID == clubID {
			rounds = append(rounds, *r)
		}
	}
	sort.Slice(rounds, func(i, j int) bool {
		return rounds[i].CreatedAt.After(rounds[j].CreatedAt)
	})
	return rounds, nil
}

func (s *MemoryStore) RoundMembers(_ context.Context, roundID string) ([]model.RoundMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]model.RoundMember(nil), s.stakes[roundID]...), nil
}

func (s *MemoryStore) MembershipsByClub(_ context.Context, clubID string) ([]model.RoundMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.RoundMembership
	for roundID, stakes := range s.stakes {
		r := s.rounds[roundID]
		if r == nil || r.ClubID != clubID {
			continue
		}
		for _, m := range stakes {
			result = append(result, model.RoundMembership{
				RoundMember:    m,
				ClubID:         r.ClubID,
				RoundCreatedAt: r.CreatedAt,
				RoundStatus:    r.Status,
			})
		}
	}
	return result, nil
}

func (s *MemoryStore) MembershipsByUser(_ context.Context, userID string) ([]model.RoundMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.RoundMembership
	for roundID, stakes := range s.stakes {
		r := s.rounds[roundID]
		if r == nil {
			continue
		}
		for _, m := range stakes {
			if m.UserID == userID {
				result = append(result, model.RoundMembership{
					RoundMember:    m,
					ClubID:         r.ClubID,
					RoundCreatedAt: r.CreatedAt,
					RoundStatus:    r.Status,
				})
			}
		}
	}
	return result, nil
}
