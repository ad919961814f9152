package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/Dosada05/footmatch/models"
	"github.com/Dosada05/footmatch/repositories"
	"github.com/Dosada05/footmatch/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeStore backs every fake repository. Transactions snapshot it and restore
// the snapshot on error.
type fakeStore struct {
	mu   sync.Mutex
	txMu sync.Mutex
	now  func() time.Time

	matches       map[string]*models.Match
	operators     map[string]*models.Operator // by profile id
	registrations map[string][]*models.Registration
	results       map[string]*models.MatchResult
	stats         map[string][]models.MatchPlayerStat
	notifications []*models.Notification
	gamification  map[string]*models.PlayerGamification
	xp            []*models.XPTransaction
	badges        map[string]map[string]bool
	progress      map[string]models.BadgeProgress
	posts         []*models.Post
	media         []*models.PostMedia

	failStatsInsert error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		now:           time.Now,
		matches:       map[string]*models.Match{},
		operators:     map[string]*models.Operator{},
		registrations: map[string][]*models.Registration{},
		results:       map[string]*models.MatchResult{},
		stats:         map[string][]models.MatchPlayerStat{},
		gamification:  map[string]*models.PlayerGamification{},
		badges:        map[string]map[string]bool{},
		progress:      map[string]models.BadgeProgress{},
	}
}

type fakeSnapshot struct {
	matches       map[string]models.Match
	operators     map[string]models.Operator
	results       map[string]*models.MatchResult
	stats         map[string][]models.MatchPlayerStat
	notifications []*models.Notification
	gamification  map[string]models.PlayerGamification
	xp            []*models.XPTransaction
	badges        map[string]map[string]bool
	progress      map[string]models.BadgeProgress
	posts         []*models.Post
	media         []*models.PostMedia
}

func (s *fakeStore) snapshot() fakeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := fakeSnapshot{
		matches:       map[string]models.Match{},
		operators:     map[string]models.Operator{},
		results:       maps.Clone(s.results),
		stats:         maps.Clone(s.stats),
		notifications: append([]*models.Notification(nil), s.notifications...),
		gamification:  map[string]models.PlayerGamification{},
		xp:            append([]*models.XPTransaction(nil), s.xp...),
		badges:        map[string]map[string]bool{},
		progress:      maps.Clone(s.progress),
		posts:         append([]*models.Post(nil), s.posts...),
		media:         append([]*models.PostMedia(nil), s.media...),
	}
	for k, v := range s.matches {
		snap.matches[k] = *v
	}
	for k, v := range s.operators {
		snap.operators[k] = *v
	}
	for k, v := range s.gamification {
		g := *v
		g.CitiesPlayed = append([]string(nil), v.CitiesPlayed...)
		snap.gamification[k] = g
	}
	for k, v := range s.badges {
		snap.badges[k] = maps.Clone(v)
	}
	return snap
}

func (s *fakeStore) restore(snap fakeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range snap.matches {
		*s.matches[k] = v
	}
	for k, v := range snap.operators {
		*s.operators[k] = v
	}
	s.results = snap.results
	s.stats = snap.stats
	s.notifications = snap.notifications
	s.gamification = map[string]*models.PlayerGamification{}
	for k, v := range snap.gamification {
		g := v
		s.gamification[k] = &g
	}
	s.xp = snap.xp
	s.badges = snap.badges
	s.progress = snap.progress
	s.posts = snap.posts
	s.media = snap.media
}

type fakeTxRunner struct {
	store *fakeStore
}

func (r *fakeTxRunner) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	r.store.txMu.Lock()
	defer r.store.txMu.Unlock()
	snap := r.store.snapshot()
	if err := fn(nil); err != nil {
		r.store.restore(snap)
		return err
	}
	return nil
}

type fakeMatchRepo struct{ s *fakeStore }

func (r *fakeMatchRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id string) (*models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMatchRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id string) (*models.Match, error) {
	return r.GetByID(ctx, exec, id)
}

func (r *fakeMatchRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id string, status models.MatchStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Status = status
	return nil
}

func (r *fakeMatchRepo) StartDue(_ context.Context, now time.Time) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []string
	for id, m := range r.s.matches {
		if (m.Status == models.MatchStatusUpcoming || m.Status == models.MatchStatusFull) && !m.StartsAt.After(now) {
			m.Status = models.MatchStatusInProgress
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type fakeOperatorRepo struct{ s *fakeStore }

func (r *fakeOperatorRepo) GetByProfileID(_ context.Context, _ repositories.SQLExecutor, profileID string) (*models.Operator, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	op, ok := r.s.operators[profileID]
	if !ok {
		return nil, repositories.ErrOperatorNotFound
	}
	cp := *op
	return &cp, nil
}

func (r *fakeOperatorRepo) IncrementTotalMatches(_ context.Context, _ repositories.SQLExecutor, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, op := range r.s.operators {
		if op.ID == id {
			op.TotalMatches++
			return nil
		}
	}
	return repositories.ErrOperatorNotFound
}

type fakeRegistrationRepo struct{ s *fakeStore }

func (r *fakeRegistrationRepo) ListConfirmed(_ context.Context, _ repositories.SQLExecutor, matchID string) ([]*models.Registration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Registration, 0)
	for _, reg := range r.s.registrations[matchID] {
		if reg.Status == models.RegistrationConfirmed {
			out = append(out, reg)
		}
	}
	return out, nil
}

type fakeResultRepo struct{ s *fakeStore }

func (r *fakeResultRepo) Create(_ context.Context, _ repositories.SQLExecutor, res *models.MatchResult) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.results[res.MatchID]; exists {
		return repositories.ErrResultExists
	}
	res.ID = "result-" + res.MatchID
	res.SubmittedAt = r.s.now()
	res.UpdatedAt = res.SubmittedAt
	cp := *res
	r.s.results[res.MatchID] = &cp
	return nil
}

func (r *fakeResultRepo) ExistsForMatch(_ context.Context, _ repositories.SQLExecutor, matchID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.results[matchID]
	return ok, nil
}

func (r *fakeResultRepo) GetByMatchID(_ context.Context, _ repositories.SQLExecutor, matchID string) (*models.MatchResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.results[matchID]
	if !ok {
		return nil, repositories.ErrResultNotFound
	}
	cp := *res
	cp.PlayerStats = nil
	return &cp, nil
}

func (r *fakeResultRepo) SetReportKey(_ context.Context, _ repositories.SQLExecutor, resultID, key string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for matchID, res := range r.s.results {
		if res.ID == resultID {
			cp := *res
			cp.ReportKey = &key
			r.s.results[matchID] = &cp
			return nil
		}
	}
	return repositories.ErrResultNotFound
}

type fakePlayerStatsRepo struct{ s *fakeStore }

func (r *fakePlayerStatsRepo) CreateBatch(_ context.Context, _ repositories.SQLExecutor, stats []models.MatchPlayerStat) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failStatsInsert != nil {
		return r.s.failStatsInsert
	}
	for _, st := range stats {
		r.s.stats[st.MatchID] = append(r.s.stats[st.MatchID], st)
	}
	return nil
}

func (r *fakePlayerStatsRepo) ListByMatch(_ context.Context, _ repositories.SQLExecutor, matchID string) ([]models.MatchPlayerStat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]models.MatchPlayerStat{}, r.s.stats[matchID]...), nil
}

func (r *fakePlayerStatsRepo) CareerStats(_ context.Context, _ repositories.SQLExecutor, userID string) (*models.CareerStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var cs models.CareerStats
	var registered int
	perDay := map[string]int{}
	operators := map[string]bool{}
	for matchID, stats := range r.s.stats {
		for _, st := range stats {
			if st.UserID != userID {
				continue
			}
			registered++
			if !st.Attended {
				continue
			}
			cs.TotalMatches++
			cs.TotalGoals += st.Goals
			cs.TotalAssists += st.Assists
			if st.MVP {
				cs.TotalMVP++
			}
			if m, ok := r.s.matches[matchID]; ok {
				perDay[m.StartsAt.UTC().Format(time.DateOnly)]++
				operators[m.OperatorID] = true
			}
		}
	}
	if registered > 0 {
		cs.AttendanceRate = float64(cs.TotalMatches) / float64(registered)
	}
	for _, n := range perDay {
		cs.MaxMatchesInDay = max(cs.MaxMatchesInDay, n)
	}
	cs.DistinctOperators = len(operators)
	return &cs, nil
}

type fakeNotificationRepo struct{ s *fakeStore }

func (r *fakeNotificationRepo) CreateBatch(_ context.Context, _ repositories.SQLExecutor, ns []*models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.notifications = append(r.s.notifications, ns...)
	return nil
}

type fakeGamificationRepo struct{ s *fakeStore }

func (r *fakeGamificationRepo) Get(_ context.Context, _ repositories.SQLExecutor, userID string) (*models.PlayerGamification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.gamification[userID]
	if !ok {
		return nil, repositories.ErrGamificationNotFound
	}
	cp := *g
	cp.CitiesPlayed = append([]string(nil), g.CitiesPlayed...)
	return &cp, nil
}

func (r *fakeGamificationRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, g *models.PlayerGamification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *g
	cp.CitiesPlayed = append([]string(nil), g.CitiesPlayed...)
	r.s.gamification[g.UserID] = &cp
	return nil
}

func (r *fakeGamificationRepo) InsertXPTransaction(_ context.Context, _ repositories.SQLExecutor, tx *models.XPTransaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tx.CreatedAt = r.s.now()
	cp := *tx
	r.s.xp = append(r.s.xp, &cp)
	return nil
}

func (r *fakeGamificationRepo) CountSourceSince(_ context.Context, _ repositories.SQLExecutor, userID, source string, since time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, tx := range r.s.xp {
		if tx.UserID == userID && tx.Source == source && !tx.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *fakeGamificationRepo) UnlockedBadgeIDs(_ context.Context, _ repositories.SQLExecutor, userID string) (map[string]bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return maps.Clone(r.s.badges[userID]), nil
}

func (r *fakeGamificationRepo) UnlockBadge(_ context.Context, _ repositories.SQLExecutor, b *models.UserBadge) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.badges[b.UserID] == nil {
		r.s.badges[b.UserID] = map[string]bool{}
	}
	r.s.badges[b.UserID][b.BadgeID] = true
	return nil
}

func (r *fakeGamificationRepo) UpsertBadgeProgress(_ context.Context, _ repositories.SQLExecutor, progress []models.BadgeProgress) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range progress {
		r.s.progress[p.UserID+"/"+p.BadgeID] = p
	}
	return nil
}

type fakePostRepo struct{ s *fakeStore }

func (r *fakePostRepo) Create(_ context.Context, _ repositories.SQLExecutor, p *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = "post-" + p.AuthorID
	p.CreatedAt = r.s.now()
	r.s.posts = append(r.s.posts, p)
	return nil
}

func (r *fakePostRepo) AddMedia(_ context.Context, _ repositories.SQLExecutor, m *models.PostMedia) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.media = append(r.s.media, m)
	return nil
}

type fakeUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{objects: map[string][]byte{}}
}

func (u *fakeUploader) Upload(_ context.Context, key, _ string, r io.Reader) (*storage.UploadResult, error) {
	if u.err != nil {
		return nil, u.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	u.mu.Lock()
	u.objects[key] = data
	u.mu.Unlock()
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *fakeUploader) Delete(_ context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.objects, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	if key == "" {
		return ""
	}
	return "https://cdn.test/" + key
}

type recordingHook struct {
	mu    sync.Mutex
	calls []*CompletedMatch
	err   error
}

func (h *recordingHook) Name() string { return "recording" }

func (h *recordingHook) OnMatchCompleted(_ context.Context, c *CompletedMatch) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, c)
	return h.err
}

var errBoom = errors.New("boom")
