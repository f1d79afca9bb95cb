package domain

import "time"

type ParsedShift struct {
	DayMarker  string  `json:"dayMarker"`
	TotalHours float64 `json:"totalHours"`
	StartTime  string  `json:"startTime,omitempty"`
	EndTime    string  `json:"endTime,omitempty"`
}

type ParsedWorker struct {
	Name       string        `json:"name"`
	Shifts     []ParsedShift `json:"shifts"`
	TotalHours float64       `json:"totalHours"`
	Hours100   float64       `json:"hours100"`
	Hours125   float64       `json:"hours125"`
	Hours150   float64       `json:"hours150"`
	WorkDays   int           `json:"workDays"`
}

type MatchStatus string

const (
	MatchStatusMatched   MatchStatus = "matched"
	MatchStatusPartial   MatchStatus = "partial"
	MatchStatusUnmatched MatchStatus = "unmatched"
)

type MatchCandidate struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"displayName"`
}

type MatchedWorker struct {
	ParsedWorker
	MatchedDirectoryID *int64           `json:"matchedDirectoryID"` // 为空表示没有选中任何员工
	MatchedDisplayName string           `json:"matchedDisplayName,omitempty"`
	MatchStatus        MatchStatus      `json:"matchStatus"`
	Candidates         []MatchCandidate `json:"candidates"`
}

type ImportSummary struct {
	TotalWorkers int     `json:"totalWorkers"`
	Matched      int     `json:"matched"`
	Unmatched    int     `json:"unmatched"`
	TotalHours   float64 `json:"totalHours"`
	TotalShifts  int     `json:"totalShifts"`
}

type ImportPreview struct {
	SessionID      string          `json:"sessionID"`
	SourceFileName string          `json:"sourceFileName"`
	Workers        []MatchedWorker `json:"workers"`
	Summary        ImportSummary   `json:"summary"`
}

// ImportSession 保存一次上传解析后、尚未提交的结果
type ImportSession struct {
	OrganizationID   int64          `json:"organizationID"`
	Preview          ImportPreview  `json:"preview"`
	RawParsedWorkers []ParsedWorker `json:"rawParsedWorkers"` // 匹配前的原始数据，提交时用新的映射重新匹配
	CreatedAt        time.Time      `json:"createdAt"`
}

type ApplyStatus string

const (
	ApplyStatusUpdated ApplyStatus = "updated"
	ApplyStatusCreated ApplyStatus = "created"
	ApplyStatusFailed  ApplyStatus = "failed"
)

type ApplyWorkerResult struct {
	Name        string      `json:"name"`
	DirectoryID int64       `json:"directoryID"` // 失败且未创建员工时为 0
	TotalHours  float64     `json:"totalHours"`
	Status      ApplyStatus `json:"status"`
	IsNew       bool        `json:"isNew"`
	Error       string      `json:"error,omitempty"`
}

type ProvisionedWorker struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ApplyResult struct {
	PerWorker         []ApplyWorkerResult `json:"perWorker"`
	NewlyProvisioned  []ProvisionedWorker `json:"newlyProvisioned"`
	Failed            int                 `json:"failed"`
	NotificationError string              `json:"notificationError,omitempty"`
}
