package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"starbot/internal/models"
	"starbot/internal/providers"
	"starbot/internal/structures"
	"starbot/internal/week"
)

// ErrMissingUser is returned when a command that requires a user arrives
// without a user ID. No store mutation happens in that case.
var ErrMissingUser = errors.New("missing user id")

// RecordState is the outcome of one pass through the recording workflow.
// Controllers must switch over it exhaustively so the confirm/cancel branch
// cannot silently diverge from the recording branch.
type RecordState int

const (
	StateAnnounced RecordState = iota
	StateAwaitingConfirmation
	StateConfirmed
	StateCancelled
)

type RecordOutcome struct {
	State  RecordState
	UserID string
	Label  string
	DayKey string
	Count  int
}

type LeaderboardEntry struct {
	Label string
	Total int
}

type WeekRow struct {
	UserID string
	Label  string
	Counts [7]int
	Total  int
}

type WeekMatrix struct {
	DayKeys [7]string
	Rows    []WeekRow
}

type StarServiceInterface interface {
	RecordStar(userID, displayName, dayKey string) (*RecordOutcome, error)
	ConfirmStar(userID, displayName, dayKey string) (*RecordOutcome, error)
	CancelStar(userID, dayKey string) *RecordOutcome
	WeeklyTotal(userID string, now time.Time) (int, error)
	WeeklyLeaderboard(now time.Time) ([]LeaderboardEntry, error)
	WeeklyMatrix(now time.Time) (*WeekMatrix, error)
	ResolveDay(token string, now time.Time) string
	WeekLabel(now time.Time) string
	WeekLabelOfDay(dayKey string) string
	CountUsers() int
	CountStars() int
}

type StarService struct {
	store  models.StarStoreInterface
	logger providers.Logger
	loc    *time.Location
}

func NewStarService(conf *structures.Config, store models.StarStoreInterface, logger providers.Logger) (StarServiceInterface, error) {
	loc, err := time.LoadLocation(conf.Tracker.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", conf.Tracker.Timezone, err)
	}
	return &StarService{store: store, logger: logger, loc: loc}, nil
}

// RecordStar runs the recording workflow for one tap. The increment is
// optimistic: it happens before duplicate detection, and a repeat star keeps
// it while the confirmation prompt is pending.
func (ss *StarService) RecordStar(userID, displayName, dayKey string) (*RecordOutcome, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}

	ss.store.RegisterUser(userID, displayName)
	count, err := ss.store.IncrementStar(userID, dayKey)
	if err != nil {
		return nil, err
	}

	outcome := &RecordOutcome{
		UserID: userID,
		Label:  ss.labelFor(userID),
		DayKey: dayKey,
		Count:  count,
	}
	if count == 1 {
		outcome.State = StateAnnounced
	} else {
		outcome.State = StateAwaitingConfirmation
	}
	return outcome, nil
}

// ConfirmStar performs a real second increment for the confirmed day; it is
// not a no-op acknowledgment. Another tap on the same day afterwards routes
// through AwaitingConfirmation again.
func (ss *StarService) ConfirmStar(userID, displayName, dayKey string) (*RecordOutcome, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}

	ss.store.RegisterUser(userID, displayName)
	count, err := ss.store.IncrementStar(userID, dayKey)
	if err != nil {
		return nil, err
	}

	return &RecordOutcome{
		State:  StateConfirmed,
		UserID: userID,
		Label:  ss.labelFor(userID),
		DayKey: dayKey,
		Count:  count,
	}, nil
}

// CancelStar is terminal and mutates nothing. The optimistic increment from
// the original tap stays recorded: every tap is a real star, the confirmation
// only gates the public announcement.
func (ss *StarService) CancelStar(userID, dayKey string) *RecordOutcome {
	return &RecordOutcome{
		State:  StateCancelled,
		UserID: userID,
		Label:  ss.labelFor(userID),
		DayKey: dayKey,
	}
}

func (ss *StarService) WeeklyTotal(userID string, now time.Time) (int, error) {
	counts, err := ss.store.GetUserDayCounts(userID)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, day := range week.DayKeys(now, ss.loc) {
		total += counts[day]
	}
	return total, nil
}

// WeeklyLeaderboard ranks users by weekly total, descending, dropping zero
// totals. Ties keep registration order (stable sort).
func (ss *StarService) WeeklyLeaderboard(now time.Time) ([]LeaderboardEntry, error) {
	users, err := ss.store.ListUsers()
	if err != nil {
		return nil, err
	}
	names, err := ss.store.GetDisplayNames()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for _, id := range users {
		total, err := ss.WeeklyTotal(id, now)
		if err != nil {
			return nil, err
		}
		if total == 0 {
			continue
		}
		entries = append(entries, LeaderboardEntry{Label: displayLabel(id, names), Total: total})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Total > entries[j].Total
	})
	return entries, nil
}

// WeeklyMatrix includes one row per known user, all-zero weeks included,
// with counts positionally aligned to DayKeys.
func (ss *StarService) WeeklyMatrix(now time.Time) (*WeekMatrix, error) {
	users, err := ss.store.ListUsers()
	if err != nil {
		return nil, err
	}
	names, err := ss.store.GetDisplayNames()
	if err != nil {
		return nil, err
	}

	matrix := &WeekMatrix{
		DayKeys: week.DayKeys(now, ss.loc),
		Rows:    make([]WeekRow, 0, len(users)),
	}
	for _, id := range users {
		counts, err := ss.store.GetUserDayCounts(id)
		if err != nil {
			return nil, err
		}
		row := WeekRow{UserID: id, Label: displayLabel(id, names)}
		for i, day := range matrix.DayKeys {
			row.Counts[i] = counts[day]
			row.Total += counts[day]
		}
		matrix.Rows = append(matrix.Rows, row)
	}
	return matrix, nil
}

func (ss *StarService) ResolveDay(token string, now time.Time) string {
	return week.ParseDay(token, now, ss.loc)
}

func (ss *StarService) WeekLabel(now time.Time) string {
	return week.ISOLabel(now, ss.loc)
}

// WeekLabelOfDay derives the ISO label for an existing day key; malformed
// keys map to the key itself so cache invalidation still has a stable key.
func (ss *StarService) WeekLabelOfDay(dayKey string) string {
	t, err := time.ParseInLocation(week.DayKeyLayout, dayKey, ss.loc)
	if err != nil {
		return dayKey
	}
	return week.ISOLabel(t, ss.loc)
}

func (ss *StarService) CountUsers() int {
	return ss.store.CountUsers()
}

func (ss *StarService) CountStars() int {
	return ss.store.CountStars()
}

func (ss *StarService) labelFor(userID string) string {
	names, err := ss.store.GetDisplayNames()
	if err != nil {
		return userID
	}
	return displayLabel(userID, names)
}

func displayLabel(userID string, names map[string]string) string {
	if name, ok := names[userID]; ok && name != "" {
		return name
	}
	return userID
}
