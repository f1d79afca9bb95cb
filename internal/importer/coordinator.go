package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shiftboard/hours-import/internal/domain"
	"github.com/shiftboard/hours-import/internal/matcher"
	"github.com/shiftboard/hours-import/internal/session"
	"github.com/shiftboard/hours-import/internal/timesheet"
	"github.com/shopspring/decimal"
)

// ErrSessionNotFound 表示会话不存在、已过期、已提交或者不属于当前组织，调用方需要重新上传
var ErrSessionNotFound = errors.New("导入会话不存在或已过期，请重新上传文件")

// 自动创建员工时姓氏缺失使用的占位符
const placeholderLastName = "-"

type Directory interface {
	FindActiveWorkers(ctx context.Context, orgID int64) ([]domain.DirectoryEntry, error)
	CreateWorker(ctx context.Context, orgID int64, firstName, lastName string, creds *domain.PlaceholderCredentials) (int64, error)
}

type Attendance interface {
	RecordHours(ctx context.Context, userID, orgID int64, totalHours float64, derivedFromImport bool) error
}

type Notifier interface {
	NotifySupervisors(ctx context.Context, orgID int64, names []string) error
}

// CredentialsFunc 为自动创建的员工生成占位登录信息
type CredentialsFunc func(name string) (*domain.PlaceholderCredentials, error)

type Coordinator struct {
	directory   Directory
	attendance  Attendance
	notifier    Notifier
	sessions    session.Store
	credentials CredentialsFunc
	now         func() time.Time
}

func NewCoordinator(directory Directory, attendance Attendance, notifier Notifier, sessions session.Store, credentials CredentialsFunc) *Coordinator {
	return &Coordinator{
		directory:   directory,
		attendance:  attendance,
		notifier:    notifier,
		sessions:    sessions,
		credentials: credentials,
		now:         time.Now,
	}
}

type UploadRequest struct {
	Data           []byte
	FileName       string
	OrganizationID int64
	Overrides      map[string]int64
}

// Upload 解析上传的文件并与员工名录匹配，结果保存为一个新的会话
func (c *Coordinator) Upload(ctx context.Context, req UploadRequest) (*domain.ImportPreview, error) {
	// 过期会话只在上传时回收
	if removed, err := c.sessions.ReclaimExpired(ctx); err != nil {
		slog.Warn("回收过期导入会话失败", "error", err)
	} else if removed > 0 {
		slog.Info("已回收过期导入会话", "count", removed)
	}

	parsed, err := timesheet.Parse(req.Data, req.FileName)
	if err != nil {
		return nil, err
	}

	directory, err := c.directory.FindActiveWorkers(ctx, req.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("读取员工名录失败: %w", err)
	}

	workers := matcher.Match(parsed, directory, req.Overrides)
	preview := domain.ImportPreview{
		SessionID:      session.NewSessionID(),
		SourceFileName: req.FileName,
		Workers:        workers,
		Summary:        buildSummary(workers),
	}

	record := &domain.ImportSession{
		OrganizationID:   req.OrganizationID,
		Preview:          preview,
		RawParsedWorkers: parsed,
		CreatedAt:        c.now(),
	}
	if err := c.sessions.Put(ctx, preview.SessionID, record); err != nil {
		return nil, fmt.Errorf("保存导入会话失败: %w", err)
	}

	slog.Info("已创建导入预览",
		"organization_id", req.OrganizationID,
		"session_id", preview.SessionID,
		"file", req.FileName,
		"workers", preview.Summary.TotalWorkers,
		"unmatched", preview.Summary.Unmatched,
	)

	return &preview, nil
}

func (c *Coordinator) Preview(ctx context.Context, sessionID string, orgID int64) (*domain.ImportPreview, error) {
	record, err := c.loadSession(ctx, sessionID, orgID)
	if err != nil {
		return nil, err
	}
	return &record.Preview, nil
}

func (c *Coordinator) Discard(ctx context.Context, sessionID string, orgID int64) error {
	if _, err := c.loadSession(ctx, sessionID, orgID); err != nil {
		return err
	}
	return c.sessions.Delete(ctx, sessionID)
}

type ApplyRequest struct {
	SessionID      string
	OrganizationID int64
	Mapping        map[string]int64
}

// Apply 用最终确认的映射重新匹配并写入出勤记录，无法匹配的员工会被自动创建。
// 会话在写入前被原子地取出，同一个会话只能提交一次，并发的第二次提交会得到 ErrSessionNotFound。
// 单个员工失败不会中断整个批次。
func (c *Coordinator) Apply(ctx context.Context, req ApplyRequest) (*domain.ApplyResult, error) {
	// 先确认归属，避免其他组织的请求把会话取走
	if _, err := c.loadSession(ctx, req.SessionID, req.OrganizationID); err != nil {
		return nil, err
	}

	record, err := c.sessions.Take(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	directory, err := c.directory.FindActiveWorkers(ctx, req.OrganizationID)
	if err != nil {
		// 还没有写入任何数据，放回会话让用户可以重试
		if putErr := c.sessions.Put(ctx, req.SessionID, record); putErr != nil {
			slog.Error("恢复导入会话失败", "session_id", req.SessionID, "error", putErr)
		}
		return nil, fmt.Errorf("读取员工名录失败: %w", err)
	}

	workers := matcher.Match(record.RawParsedWorkers, directory, req.Mapping)

	result := &domain.ApplyResult{
		PerWorker:        make([]domain.ApplyWorkerResult, 0, len(workers)),
		NewlyProvisioned: make([]domain.ProvisionedWorker, 0),
	}
	for _, w := range workers {
		outcome := c.applyWorker(ctx, req.OrganizationID, w)
		if outcome.IsNew && outcome.DirectoryID != 0 {
			result.NewlyProvisioned = append(result.NewlyProvisioned, domain.ProvisionedWorker{ID: outcome.DirectoryID, Name: w.Name})
		}
		if outcome.Status == domain.ApplyStatusFailed {
			result.Failed++
			slog.Error("导入员工工时失败", "organization_id", req.OrganizationID, "session_id", req.SessionID, "name", w.Name, "error", outcome.Error)
		}
		result.PerWorker = append(result.PerWorker, outcome)
	}

	if len(result.NewlyProvisioned) > 0 {
		names := make([]string, 0, len(result.NewlyProvisioned))
		for _, p := range result.NewlyProvisioned {
			names = append(names, p.Name)
		}
		// 通知失败不影响已经写入的数据
		if err := c.notifier.NotifySupervisors(ctx, req.OrganizationID, names); err != nil {
			slog.Error("通知主管失败", "organization_id", req.OrganizationID, "session_id", req.SessionID, "error", err)
			result.NotificationError = err.Error()
		}
	}

	slog.Info("已提交导入",
		"organization_id", req.OrganizationID,
		"session_id", req.SessionID,
		"workers", len(result.PerWorker),
		"created", len(result.NewlyProvisioned),
		"failed", result.Failed,
	)

	return result, nil
}

func (c *Coordinator) applyWorker(ctx context.Context, orgID int64, w domain.MatchedWorker) domain.ApplyWorkerResult {
	outcome := domain.ApplyWorkerResult{
		Name:       w.Name,
		TotalHours: w.TotalHours,
		Status:     domain.ApplyStatusUpdated,
	}

	if w.MatchedDirectoryID != nil {
		outcome.DirectoryID = *w.MatchedDirectoryID
	} else {
		id, err := c.provision(ctx, orgID, w.Name)
		if err != nil {
			outcome.Status = domain.ApplyStatusFailed
			outcome.Error = err.Error()
			return outcome
		}
		outcome.DirectoryID = id
		outcome.IsNew = true
		outcome.Status = domain.ApplyStatusCreated
	}

	if err := c.attendance.RecordHours(ctx, outcome.DirectoryID, orgID, w.TotalHours, true); err != nil {
		outcome.Status = domain.ApplyStatusFailed
		outcome.Error = fmt.Sprintf("写入出勤记录失败: %v", err)
	}

	return outcome
}

func (c *Coordinator) provision(ctx context.Context, orgID int64, name string) (int64, error) {
	firstName, lastName := SplitName(name)

	creds, err := c.credentials(name)
	if err != nil {
		return 0, fmt.Errorf("生成占位账号失败: %w", err)
	}

	id, err := c.directory.CreateWorker(ctx, orgID, firstName, lastName, creds)
	if err != nil {
		return 0, fmt.Errorf("创建员工失败: %w", err)
	}
	return id, nil
}

func (c *Coordinator) loadSession(ctx context.Context, sessionID string, orgID int64) (*domain.ImportSession, error) {
	record, err := c.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	// 其他组织的会话当作不存在处理
	if record.OrganizationID != orgID {
		return nil, ErrSessionNotFound
	}
	return record, nil
}

// SplitName 第一个词作为名字，其余作为姓氏，没有姓氏时使用占位符
func SplitName(name string) (string, string) {
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return "", placeholderLastName
	case 1:
		return fields[0], placeholderLastName
	default:
		return fields[0], strings.Join(fields[1:], " ")
	}
}

func buildSummary(workers []domain.MatchedWorker) domain.ImportSummary {
	summary := domain.ImportSummary{TotalWorkers: len(workers)}
	total := decimal.Zero
	for _, w := range workers {
		if w.MatchStatus == domain.MatchStatusUnmatched {
			summary.Unmatched++
		} else {
			summary.Matched++
		}
		total = total.Add(decimal.NewFromFloat(w.TotalHours))
		summary.TotalShifts += len(w.Shifts)
	}
	summary.TotalHours = total.Round(2).InexactFloat64()
	return summary
}
