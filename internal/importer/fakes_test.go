package importer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shiftboard/hours-import/internal/domain"
	"github.com/shiftboard/hours-import/internal/session"
)

type createWorkerCall struct {
	OrgID     int64
	FirstName string
	LastName  string
	Creds     *domain.PlaceholderCredentials
}

type fakeDirectory struct {
	mu        sync.Mutex
	entries   []domain.DirectoryEntry
	nextID    int64
	findErr   error
	createErr error
	created   []createWorkerCall
	// delay 让 FindActiveWorkers 变慢，用来制造并发提交的窗口
	delay time.Duration
}

func (d *fakeDirectory) FindActiveWorkers(_ context.Context, _ int64) ([]domain.DirectoryEntry, error) {
	d.mu.Lock()
	delay := d.delay
	d.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.findErr != nil {
		return nil, d.findErr
	}
	return append([]domain.DirectoryEntry(nil), d.entries...), nil
}

func (d *fakeDirectory) CreateWorker(_ context.Context, orgID int64, firstName, lastName string, creds *domain.PlaceholderCredentials) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.createErr != nil {
		return 0, d.createErr
	}
	d.nextID++
	d.created = append(d.created, createWorkerCall{OrgID: orgID, FirstName: firstName, LastName: lastName, Creds: creds})
	d.entries = append(d.entries, domain.DirectoryEntry{ID: d.nextID, FirstName: firstName, LastName: lastName})
	return d.nextID, nil
}

type recordHoursCall struct {
	UserID            int64
	OrgID             int64
	TotalHours        float64
	DerivedFromImport bool
}

type fakeAttendance struct {
	mu      sync.Mutex
	calls   []recordHoursCall
	failFor map[int64]error
}

func (a *fakeAttendance) RecordHours(_ context.Context, userID, orgID int64, totalHours float64, derivedFromImport bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err, ok := a.failFor[userID]; ok {
		return err
	}
	a.calls = append(a.calls, recordHoursCall{UserID: userID, OrgID: orgID, TotalHours: totalHours, DerivedFromImport: derivedFromImport})
	return nil
}

type notifyCall struct {
	OrgID int64
	Names []string
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
	err   error
}

func (n *fakeNotifier) NotifySupervisors(_ context.Context, orgID int64, names []string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notifyCall{OrgID: orgID, Names: names})
	return n.err
}

// countingStore 记录 ReclaimExpired 的调用次数
type countingStore struct {
	*session.MemoryStore
	mu       sync.Mutex
	reclaims int
}

func (s *countingStore) ReclaimExpired(ctx context.Context) (int, error) {
	s.mu.Lock()
	s.reclaims++
	s.mu.Unlock()
	return s.MemoryStore.ReclaimExpired(ctx)
}

var errDatabase = errors.New("database is down")

func fakeCredentials(name string) (*domain.PlaceholderCredentials, error) {
	return &domain.PlaceholderCredentials{
		Username:     "worker_000001",
		Email:        "worker_000001@placeholder.invalid",
		PasswordHash: "hash",
	}, nil
}
