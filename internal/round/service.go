// Package round provides the HTTP handlers and business logic for the
// prediction-round lifecycle: committing member funds into a round,
// settling payouts back, and serving the views derived from the ledger.
//
// Validation is strictly pre-commit: every failure path surfaces before a
// single ledger row is written, and multi-entry writes go through the
// store's atomic operations.
package round

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/predclubs/ledger-engine/internal/balance"
	"github.com/predclubs/ledger-engine/internal/cohort"
	"github.com/predclubs/ledger-engine/internal/events"
	"github.com/predclubs/ledger-engine/internal/exposure"
	"github.com/predclubs/ledger-engine/internal/ledger"
	"github.com/predclubs/ledger-engine/internal/limits"
	"github.com/predclubs/ledger-engine/internal/metrics"
	"github.com/predclubs/ledger-engine/internal/model"
	"github.com/predclubs/ledger-engine/internal/performance"
	"github.com/predclubs/ledger-engine/internal/store"
)

var (
	// ErrClubNotFound is returned when the target club does not exist.
	ErrClubNotFound = errors.New("round: club not found")

	// ErrForbidden is returned when the caller is not an active admin of
	// the owning club.
	ErrForbidden = errors.New("round: caller is not an active club admin")

	// ErrValidation covers malformed lifecycle requests: empty member
	// lists, unknown round members, bad identifiers or amounts.
	ErrValidation = errors.New("round: invalid request")
)

// userHeader carries the authenticated caller identity. The auth layer
// upstream validates credentials; this core trusts the header it sets.
const userHeader = "X-User-ID"

// Service handles the round lifecycle and the ledger-derived read views.
type Service struct {
	store    store.Store
	ledger   *ledger.Service
	balances *balance.Aggregator
	perf     *performance.Calculator
	limiter  *limits.CommitLimiter
	wsHub    *WSHub // optional WebSocket hub for real-time broadcasts
	events   events.Publisher
}

// NewService creates a round service. Pass nil for hub if WebSocket
// broadcasting is not needed; pass events.Noop{} when no broker is
// configured.
func NewService(st store.Store, limiter *limits.CommitLimiter, hub *WSHub, pub events.Publisher) *Service {
	if pub == nil {
		pub = events.Noop{}
	}
	return &Service{
		store:    st,
		ledger:   ledger.NewService(st),
		balances: balance.NewAggregator(st),
		perf:     performance.NewCalculator(st),
		limiter:  limiter,
		wsHub:    hub,
		events:   pub,
	}
}

// --- Request/Response types ---

// CreateClubRequest is the JSON body for club creation. The creator becomes
// the club's first active admin.
type CreateClubRequest struct {
	Name        string `json:"name"`
	SafeAddress string `json:"safe_address"`
}

// JoinClubRequest is the JSON body for adding a member.
type JoinClubRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"` // defaults to "member"
}

// MemberCommit is one member's stake in a round-creation request.
// Amount is a positive integer micro-unit string.
type MemberCommit struct {
	UserID string `json:"user_id"`
	Amount string `json:"amount"`
}

// CreateRoundRequest is the JSON body for POST /clubs/{clubID}/rounds.
type CreateRoundRequest struct {
	CohortID    string         `json:"cohort_id"` // bytes32 market reference
	MarketRef   string         `json:"market_ref"`
	MarketTitle string         `json:"market_title"`
	Members     []MemberCommit `json:"members"`
}

// MemberPayout is one member's payout in a settlement request.
// Amount is a non-negative integer micro-unit string.
type MemberPayout struct {
	UserID string `json:"user_id"`
	Amount string `json:"amount"`
}

// SettleRoundRequest is the JSON body for POST /rounds/{roundID}/settle.
type SettleRoundRequest struct {
	Payouts []MemberPayout `json:"payouts"`
}

// RoundResponse is a round with its member records.
type RoundResponse struct {
	model.PredictionRound
	Members []model.RoundMember `json:"members"`
}

// BalanceResponse reports one derived balance in both representations.
type BalanceResponse struct {
	UserID      string `json:"user_id"`
	ClubID      string `json:"club_id,omitempty"`
	SafeAddress string `json:"safe_address,omitempty"`
	Micros      int64  `json:"micros"`
	Balance     string `json:"balance"` // display decimal
}

// --- Lifecycle operations ---

// CreateRound validates and atomically creates a round with its members'
// COMMIT entries. The ledger is never touched on a failed validation path.
func (s *Service) CreateRound(ctx context.Context, callerID, clubID string, req CreateRoundRequest) (*RoundResponse, error) {
	club, err := s.store.GetClub(ctx, clubID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}

	member, err := s.store.GetMember(ctx, clubID, callerID)
	if err != nil || !member.IsActiveAdmin() {
		return nil, ErrForbidden
	}

	cohortID, err := cohort.ParseCohortID(req.CohortID)
	if err != nil {
		return nil, err
	}
	if len(req.Members) == 0 {
		return nil, errors.Join(ErrValidation, errors.New("member list is empty"))
	}

	roundID := uuid.New().String()
	now := time.Now().UTC()

	members := make([]model.RoundMember, 0, len(req.Members))
	entries := make([]model.LedgerEntry, 0, len(req.Members))
	seen := make(map[string]bool, len(req.Members))
	var pool model.Micros

	for _, mc := range req.Members {
		amount, err := cohort.ParsePositiveAmount(mc.Amount)
		if err != nil {
			return nil, err
		}
		if mc.UserID == "" {
			return nil, errors.Join(ErrValidation, errors.New("member user_id is empty"))
		}
		if seen[mc.UserID] {
			return nil, errors.Join(ErrValidation, errors.New("duplicate member "+mc.UserID))
		}
		seen[mc.UserID] = true

		active, err := s.activeCommitExposure(ctx, mc.UserID)
		if err != nil {
			return nil, err
		}
		if err := s.limiter.Check(clubID, amount, active); err != nil {
			metrics.LimitRejections.Inc()
			return nil, err
		}

		members = append(members, model.RoundMember{
			RoundID:      roundID,
			UserID:       mc.UserID,
			CommitAmount: amount,
		})
		entries = append(entries, *ledger.NewEntry(mc.UserID, clubID, club.SafeAddress, roundID, model.EntryCommit, amount))
		pool += amount
	}

	round := &model.PredictionRound{
		ID:          roundID,
		ClubID:      clubID,
		CohortID:    cohortID,
		MarketRef:   req.MarketRef,
		MarketTitle: req.MarketTitle,
		Status:      model.RoundOpen,
		CreatedAt:   now,
	}

	if err := s.store.CreateRound(ctx, round, members, entries); err != nil {
		return nil, err
	}

	metrics.RoundsCreated.Inc()
	metrics.LedgerEntriesTotal.WithLabelValues(string(model.EntryCommit)).Add(float64(len(entries)))

	slog.Info("round created",
		"round_id", roundID,
		"club", clubID,
		"cohort", cohortID,
		"members", len(members),
		"pool", pool.String(),
	)

	if s.wsHub != nil {
		s.wsHub.Broadcast(WSMessage{
			Type:        "round_created",
			ClubID:      clubID,
			RoundID:     roundID,
			CohortID:    cohortID,
			MarketTitle: req.MarketTitle,
			Amount:      pool.String(),
		})
	}
	s.publish(ctx, events.RoundCreated{
		RoundID:   roundID,
		ClubID:    clubID,
		CohortID:  cohortID,
		Members:   len(members),
		PoolTotal: pool.String(),
		CreatedAt: now.Format(time.RFC3339),
	})

	return &RoundResponse{PredictionRound: *round, Members: members}, nil
}

// SettleRound validates and atomically posts payouts for a round. The store
// serializes concurrent settlements: the loser surfaces store.ErrConflict
// and writes nothing.
func (s *Service) SettleRound(ctx context.Context, callerID, roundID string, req SettleRoundRequest) (*RoundResponse, error) {
	round, err := s.store.GetRound(ctx, roundID)
	if err != nil {
		return nil, err
	}

	member, err := s.store.GetMember(ctx, round.ClubID, callerID)
	if err != nil || !member.IsActiveAdmin() {
		return nil, ErrForbidden
	}

	club, err := s.store.GetClub(ctx, round.ClubID)
	if err != nil {
		return nil, err
	}

	stakes, err := s.store.RoundMembers(ctx, roundID)
	if err != nil {
		return nil, err
	}
	commitByUser := make(map[string]model.Micros, len(stakes))
	for _, m := range stakes {
		commitByUser[m.UserID] = m.CommitAmount
	}

	payouts := make([]model.RoundMember, 0, len(stakes))
	entries := make([]model.LedgerEntry, 0, len(stakes))
	paid := make(map[string]bool, len(req.Payouts))
	var total model.Micros

	for _, p := range req.Payouts {
		amount, err := cohort.ParseAmount(p.Amount)
		if err != nil {
			return nil, err
		}
		if amount < 0 {
			return nil, errors.Join(ErrValidation, errors.New("payout amount is negative"))
		}
		commit, ok := commitByUser[p.UserID]
		if !ok {
			return nil, errors.Join(ErrValidation, errors.New("payout for non-member "+p.UserID))
		}
		if paid[p.UserID] {
			return nil, errors.Join(ErrValidation, errors.New("duplicate payout for "+p.UserID))
		}
		paid[p.UserID] = true

		payouts = append(payouts, model.RoundMember{
			RoundID:      roundID,
			UserID:       p.UserID,
			PayoutAmount: amount,
			PnlAmount:    amount - commit,
		})
		entries = append(entries, *ledger.NewEntry(p.UserID, round.ClubID, club.SafeAddress, roundID, model.EntryPayout, amount))
		total += amount
	}

	// Members omitted from the payout list lost their full commit. Their
	// round record and zero PAYOUT entry are posted with the rest, so the
	// authoritative per-member pnl always matches the ledger fold.
	for _, m := range stakes {
		if paid[m.UserID] {
			continue
		}
		payouts = append(payouts, model.RoundMember{
			RoundID:      roundID,
			UserID:       m.UserID,
			PayoutAmount: 0,
			PnlAmount:    -m.CommitAmount,
		})
		entries = append(entries, *ledger.NewEntry(m.UserID, round.ClubID, club.SafeAddress, roundID, model.EntryPayout, 0))
	}

	start := time.Now()
	if err := s.store.SettleRound(ctx, roundID, payouts, entries); err != nil {
		if errors.Is(err, store.ErrConflict) {
			metrics.SettlementConflicts.Inc()
		}
		return nil, err
	}
	metrics.SettlementLatency.Observe(time.Since(start).Seconds())
	metrics.RoundsSettled.Inc()
	metrics.LedgerEntriesTotal.WithLabelValues(string(model.EntryPayout)).Add(float64(len(entries)))

	slog.Info("round settled",
		"round_id", roundID,
		"club", round.ClubID,
		"payouts", len(payouts),
		"total", total.String(),
	)

	if s.wsHub != nil {
		s.wsHub.Broadcast(WSMessage{
			Type:        "round_settled",
			ClubID:      round.ClubID,
			RoundID:     roundID,
			CohortID:    round.CohortID,
			MarketTitle: round.MarketTitle,
			Amount:      total.String(),
		})
	}
	s.publish(ctx, events.RoundSettled{
		RoundID:     roundID,
		ClubID:      round.ClubID,
		CohortID:    round.CohortID,
		PayoutTotal: total.String(),
		SettledAt:   time.Now().UTC().Format(time.RFC3339),
	})

	settled, err := s.store.GetRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	updated, err := s.store.RoundMembers(ctx, roundID)
	if err != nil {
		return nil, err
	}
	return &RoundResponse{PredictionRound: *settled, Members: updated}, nil
}

// activeCommitExposure derives a user's per-club active commit exposure
// from unsettled round memberships.
func (s *Service) activeCommitExposure(ctx context.Context, userID string) (map[string]model.Micros, error) {
	memberships, err := s.store.MembershipsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	active := make(map[string]model.Micros)
	for _, m := range memberships {
		if m.RoundStatus != model.RoundSettled {
			active[m.ClubID] += m.CommitAmount.Abs()
		}
	}
	return active, nil
}

func (s *Service) publish(ctx context.Context, event any) {
	if err := s.events.Publish(ctx, event); err != nil {
		metrics.PublishFailures.Inc()
		slog.Error("event publish failed", "err", err)
	}
}

// --- HTTP Handlers ---

// HandleCreateClub handles POST /api/v1/clubs.
func (s *Service) HandleCreateClub(w http.ResponseWriter, r *http.Request) {
	callerID := r.Header.Get(userHeader)
	if callerID == "" {
		writeError(w, "missing "+userHeader, http.StatusUnauthorized)
		return
	}

	var req CreateClubRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.SafeAddress == "" {
		writeError(w, "name and safe_address are required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()
	club := &model.Club{
		ID:          uuid.New().String(),
		Name:        req.Name,
		SafeAddress: req.SafeAddress,
		CreatedAt:   now,
	}
	admin := &model.ClubMember{
		ClubID:   club.ID,
		UserID:   callerID,
		Role:     model.RoleAdmin,
		Status:   model.MemberActive,
		JoinedAt: now,
	}
	if err := s.store.CreateClub(ctx, club, admin); err != nil {
		writeError(w, err.Error(), http.StatusConflict)
		return
	}

	slog.Info("club created", "id", club.ID, "name", club.Name, "admin", callerID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(club)
}

// HandleJoinClub handles POST /api/v1/clubs/{clubID}/members.
func (s *Service) HandleJoinClub(w http.ResponseWriter, r *http.Request) {
	clubID := chi.URLParam(r, "clubID")

	var req JoinClubRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	role := req.Role
	if role == "" {
		role = model.RoleMember
	}
	if role != model.RoleAdmin && role != model.RoleMember {
		writeError(w, "role must be admin or member", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if _, err := s.store.GetClub(ctx, clubID); err != nil {
		writeError(w, "club not found", http.StatusNotFound)
		return
	}

	m := &model.ClubMember{
		ClubID:   clubID,
		UserID:   req.UserID,
		Role:     role,
		Status:   model.MemberActive,
		JoinedAt: time.Now().UTC(),
	}
	if err := s.store.AddMember(ctx, m); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, "already a member", http.StatusConflict)
			return
		}
		writeError(w, "failed to add member", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(m)
}

// HandleDeposit handles POST /api/v1/wallet/deposit.
func (s *Service) HandleDeposit(w http.ResponseWriter, r *http.Request) {
	s.handleWalletEntry(w, r, model.EntryDeposit)
}

// HandleWithdraw handles POST /api/v1/wallet/withdraw.
// The amount may arrive as a magnitude; it is stored negative.
func (s *Service) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	s.handleWalletEntry(w, r, model.EntryWithdraw)
}

// HandleAdjustment handles POST /api/v1/wallet/adjust. Corrections are new
// signed ADJUSTMENT entries; existing entries are never mutated.
func (s *Service) HandleAdjustment(w http.ResponseWriter, r *http.Request) {
	s.handleWalletEntry(w, r, model.EntryAdjustment)
}

func (s *Service) handleWalletEntry(w http.ResponseWriter, r *http.Request, typ model.EntryType) {
	userID := r.Header.Get(userHeader)
	if userID == "" {
		writeError(w, "missing "+userHeader, http.StatusUnauthorized)
		return
	}

	var draft ledger.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	draft.UserID = userID
	draft.Type = string(typ)
	draft.RoundID = "" // wallet ops never reference a round

	entry, err := s.ledger.Append(r.Context(), draft)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	metrics.LedgerEntriesTotal.WithLabelValues(string(typ)).Inc()
	slog.Info("wallet entry appended",
		"entry_id", entry.ID,
		"user", entry.UserID,
		"club", entry.ClubID,
		"type", entry.Type,
		"amount", entry.Amount.String(),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(entry)
}

// HandleCreateRound handles POST /api/v1/clubs/{clubID}/rounds.
func (s *Service) HandleCreateRound(w http.ResponseWriter, r *http.Request) {
	callerID := r.Header.Get(userHeader)
	if callerID == "" {
		writeError(w, "missing "+userHeader, http.StatusUnauthorized)
		return
	}
	clubID := chi.URLParam(r, "clubID")

	var req CreateRoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := s.CreateRound(r.Context(), callerID, clubID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

// HandleGetRound handles GET /api/v1/rounds/{roundID}.
func (s *Service) HandleGetRound(w http.ResponseWriter, r *http.Request) {
	roundID := chi.URLParam(r, "roundID")
	ctx := r.Context()

	round, err := s.store.GetRound(ctx, roundID)
	if err != nil {
		writeError(w, "round not found", http.StatusNotFound)
		return
	}
	members, err := s.store.RoundMembers(ctx, roundID)
	if err != nil {
		writeError(w, "failed to load round members", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(RoundResponse{PredictionRound: *round, Members: members})
}

// HandleSettleRound handles POST /api/v1/rounds/{roundID}/settle.
func (s *Service) HandleSettleRound(w http.ResponseWriter, r *http.Request) {
	callerID := r.Header.Get(userHeader)
	if callerID == "" {
		writeError(w, "missing "+userHeader, http.StatusUnauthorized)
		return
	}
	roundID := chi.URLParam(r, "roundID")

	var req SettleRoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := s.SettleRound(r.Context(), callerID, roundID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// HandleGetBalance handles GET /api/v1/users/{userID}/balance.
// Optional ?club= or ?safe= scope the fold; otherwise the net balance.
func (s *Service) HandleGetBalance(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	clubID := r.URL.Query().Get("club")
	safe := r.URL.Query().Get("safe")
	ctx := r.Context()

	var (
		m   model.Micros
		err error
	)
	switch {
	case clubID != "":
		m, err = s.balances.UserClubBalance(ctx, userID, clubID)
	case safe != "":
		m, err = s.balances.UserSafeBalance(ctx, userID, safe)
	default:
		m, err = s.balances.UserNetBalance(ctx, userID)
	}
	if err != nil {
		writeError(w, "failed to compute balance", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(BalanceResponse{
		UserID:      userID,
		ClubID:      clubID,
		SafeAddress: safe,
		Micros:      int64(m),
		Balance:     m.String(),
	})
}

// HandleGetExposure handles GET /api/v1/users/{userID}/exposure.
// Returns the stacked wallet-vs-market series for charting.
func (s *Service) HandleGetExposure(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	entries, err := s.ledger.Query(r.Context(), model.EntryFilter{UserID: userID})
	if err != nil {
		writeError(w, "failed to load ledger history", http.StatusInternalServerError)
		return
	}

	points := exposure.BuildSeries(entries)
	if points == nil {
		points = []exposure.Point{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(points)
}

// HandleGetEntries handles GET /api/v1/users/{userID}/entries.
func (s *Service) HandleGetEntries(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	entries, err := s.ledger.Query(r.Context(), model.EntryFilter{
		UserID:      userID,
		ClubID:      r.URL.Query().Get("club"),
		SafeAddress: r.URL.Query().Get("safe"),
	})
	if err != nil {
		writeError(w, "failed to load ledger entries", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []model.LedgerEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

// HandleClubPerformance handles GET /api/v1/clubs/{clubID}/performance.
func (s *Service) HandleClubPerformance(w http.ResponseWriter, r *http.Request) {
	clubID := chi.URLParam(r, "clubID")

	res, err := s.perf.ClubPerformance(r.Context(), clubID, windowDays(r))
	if err != nil {
		writeError(w, "failed to compute performance", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// HandleUserPerformance handles GET /api/v1/users/{userID}/performance.
func (s *Service) HandleUserPerformance(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	res, err := s.perf.UserPerformance(r.Context(), userID, windowDays(r))
	if err != nil {
		writeError(w, "failed to compute performance", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// HandleActiveVolume handles GET /api/v1/clubs/{clubID}/volume.
// Returns the club's active (unsettled) commit volume.
func (s *Service) HandleActiveVolume(w http.ResponseWriter, r *http.Request) {
	clubID := chi.URLParam(r, "clubID")

	volumes, err := s.balances.ClubsActiveCommitVolume(r.Context(), []string{clubID})
	if err != nil {
		writeError(w, "failed to compute active volume", http.StatusInternalServerError)
		return
	}

	m := volumes[clubID]
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"club_id": clubID,
		"volume":  m.String(),
	})
}

// windowDays reads the trailing window from ?days=, defaulting to 30.
func windowDays(r *http.Request) int {
	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil || days <= 0 {
		return 30
	}
	return days
}

// writeServiceError maps domain sentinels onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cohort.ErrInvalidCohortID),
		errors.Is(err, cohort.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidEntry),
		errors.Is(err, ErrValidation):
		writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrForbidden):
		writeError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrClubNotFound), errors.Is(err, store.ErrNotFound):
		writeError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrDuplicate),
		errors.Is(err, limits.ErrClubLimitExceeded), errors.Is(err, limits.ErrTotalLimitExceeded):
		writeError(w, err.Error(), http.StatusConflict)
	default:
		writeError(w, "internal error", http.StatusInternalServerError)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
