package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/JonMunkholm/overlap/internal/config"
	"github.com/JonMunkholm/overlap/internal/logging"
	"github.com/google/uuid"
)

// Service holds uploaded workbooks in memory for the length of a session and
// runs comparisons against them. Workbooks are never written anywhere; a
// session ends when it expires, is evicted, or is deleted.
type Service struct {
	ttl          time.Duration
	maxWorkbooks int
	defaultKey   KeyColumn
	workers      int
	limiter      *UploadLimiter
	now          func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session
}

type session struct {
	id       string
	label    string
	clientIP string
	workbook *Workbook
	created  time.Time
	lastUsed time.Time
}

// WorkbookInfo summarizes a workbook session.
type WorkbookInfo struct {
	ID        string        `json:"id"`
	Label     string        `json:"label"`
	ClientIP  string        `json:"-"`
	CreatedAt time.Time     `json:"created_at"`
	ExpiresAt time.Time     `json:"expires_at"`
	Datasets  []DatasetInfo `json:"datasets"`
}

// DatasetInfo summarizes one dataset of a workbook.
type DatasetInfo struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    int      `json:"rows"`
}

// NewService creates a Service from the session, upload and compare settings.
func NewService(cfg *config.Config) *Service {
	defaultKey := FirstColumn()
	if cfg.Compare.DefaultKeyColumn != "" {
		defaultKey = ColumnNamed(cfg.Compare.DefaultKeyColumn)
	}
	return &Service{
		ttl:          cfg.Session.TTL,
		maxWorkbooks: cfg.Session.MaxWorkbooks,
		defaultKey:   defaultKey,
		workers:      cfg.Compare.IndexWorkers,
		limiter:      NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		now:          time.Now,
		sessions:     make(map[string]*session),
	}
}

// DefaultKeyColumn returns the key column used when a request names none.
func (s *Service) DefaultKeyColumn() KeyColumn {
	return s.defaultKey
}

// LoadWorkbook runs parse under the upload limiter and stores the result.
func (s *Service) LoadWorkbook(ctx context.Context, label string, parse func(context.Context) (*Workbook, error)) (WorkbookInfo, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return WorkbookInfo{}, err
	}
	defer s.limiter.Release()

	start := time.Now()
	wb, err := parse(ctx)
	if err != nil {
		return WorkbookInfo{}, err
	}

	info := s.AddWorkbook(ctx, label, wb)
	logging.WithFields(ctx, "workbook_id", info.ID).Info("workbook loaded",
		"label", label,
		"datasets", wb.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return info, nil
}

// AddWorkbook stores an already-built workbook under a new session ID.
func (s *Service) AddWorkbook(ctx context.Context, label string, wb *Workbook) WorkbookInfo {
	now := s.now()
	sess := &session{
		id:       uuid.New().String(),
		label:    label,
		clientIP: ClientIPFromContext(ctx),
		workbook: wb,
		created:  now,
		lastUsed: now,
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	evicted := s.evictLocked()
	s.mu.Unlock()

	for _, id := range evicted {
		logging.FromContext(ctx).Info("workbook evicted", "workbook_id", id)
	}
	return s.info(sess)
}

// evictLocked drops least recently used sessions beyond maxWorkbooks.
func (s *Service) evictLocked() []string {
	if s.maxWorkbooks <= 0 || len(s.sessions) <= s.maxWorkbooks {
		return nil
	}
	all := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		all = append(all, sess)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].lastUsed.Before(all[j].lastUsed)
	})

	var evicted []string
	for _, sess := range all[:len(all)-s.maxWorkbooks] {
		delete(s.sessions, sess.id)
		evicted = append(evicted, sess.id)
	}
	return evicted
}

// Workbook returns the workbook of a live session and refreshes its TTL.
func (s *Service) Workbook(id string) (*Workbook, WorkbookInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || s.expired(sess) {
		return nil, WorkbookInfo{}, fmt.Errorf("%w: %s", ErrWorkbookNotFound, id)
	}
	sess.lastUsed = s.now()
	return sess.workbook, s.info(sess), nil
}

// DeleteWorkbook ends a session. Deleting an unknown session is an error.
func (s *Service) DeleteWorkbook(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrWorkbookNotFound, id)
	}
	delete(s.sessions, id)
	return nil
}

// ListWorkbooks returns the live sessions, newest first.
func (s *Service) ListWorkbooks() []WorkbookInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]WorkbookInfo, 0, len(s.sessions))
	for _, sess := range s.sessions {
		if !s.expired(sess) {
			out = append(out, s.info(sess))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Compare resolves and runs a comparison against a stored workbook.
func (s *Service) Compare(ctx context.Context, id string, req CompareRequest) (*Comparison, *Table, error) {
	wb, _, err := s.Workbook(id)
	if err != nil {
		return nil, nil, err
	}

	cmp, err := req.Resolve(wb, s.defaultKey)
	if err != nil {
		return nil, nil, err
	}
	cmp.Options.IndexWorkers = s.workers

	log := logging.WithFields(ctx,
		"workbook_id", id,
		"subject", cmp.Subject.Name,
		"policy", string(cmp.Options.Policy),
	)

	start := time.Now()
	table, err := cmp.Run(ctx)
	if err != nil {
		log.Warn("comparison failed", "error", err)
		return nil, nil, err
	}

	log.Debug("comparison completed",
		"references", len(cmp.References),
		"rows", table.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return cmp, table, nil
}

// Gaps runs gap detection against a stored workbook.
func (s *Service) Gaps(ctx context.Context, id string, req GapRequest) (*Table, error) {
	wb, _, err := s.Workbook(id)
	if err != nil {
		return nil, err
	}
	table, err := req.Run(wb, s.defaultKey)
	if err != nil {
		logging.WithFields(ctx, "workbook_id", id).Warn("gap detection failed", "error", err)
		return nil, err
	}
	logging.WithFields(ctx, "workbook_id", id).Debug("gap detection completed",
		"new", req.New,
		"canonical", req.Canonical,
		"gaps", table.Len(),
	)
	return table, nil
}

// Search reports which datasets of a stored workbook contain query.
func (s *Service) Search(ctx context.Context, id string, query string, keyCol *KeyColumnSpec) ([]string, error) {
	wb, _, err := s.Workbook(id)
	if err != nil {
		return nil, err
	}
	return Search(wb, keyCol.KeyColumn(s.defaultKey), query)
}

// UploadLimiterStatus returns the parse limiter state.
func (s *Service) UploadLimiterStatus() UploadLimiterStatus {
	return s.limiter.Status()
}

// WaitForUploads blocks until in-flight parses finish or ctx ends.
func (s *Service) WaitForUploads(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

func (s *Service) expired(sess *session) bool {
	return s.ttl > 0 && s.now().Sub(sess.lastUsed) > s.ttl
}

func (s *Service) info(sess *session) WorkbookInfo {
	datasets := sess.workbook.Datasets()
	info := WorkbookInfo{
		ID:        sess.id,
		Label:     sess.label,
		ClientIP:  sess.clientIP,
		CreatedAt: sess.created,
		ExpiresAt: sess.lastUsed.Add(s.ttl),
		Datasets:  make([]DatasetInfo, len(datasets)),
	}
	for i, ds := range datasets {
		info.Datasets[i] = DatasetInfo{
			Name:    ds.Name,
			Columns: append([]string(nil), ds.Columns...),
			Rows:    len(ds.Rows),
		}
	}
	return info
}
