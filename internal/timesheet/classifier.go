package timesheet

import (
	"strings"
)

type RowKind int

const (
	RowNoise RowKind = iota
	RowWorkerHeader
	RowShiftData
	RowSummary
)

func (k RowKind) String() string {
	switch k {
	case RowWorkerHeader:
		return "worker_header"
	case RowShiftData:
		return "shift_data"
	case RowSummary:
		return "summary"
	default:
		return "noise"
	}
}

// SummaryValues 汇总行中读到的数值，0 表示该项不存在
type SummaryValues struct {
	TotalHours float64
	Hours100   float64
	Hours125   float64
	Hours150   float64
}

type Classification struct {
	Kind      RowKind
	Name      string // 表头行中的员工姓名；无表头模式下数据行携带的姓名
	DayMarker string
	Summary   SummaryValues
}

// Classify 判断一行数据的类型。
// headerSeen 表示当前工作表中是否已经出现过员工表头，没有表头时带时间的数据行本身携带员工姓名。
// 判断顺序：员工表头 > 汇总行 > 班次数据 > 噪声。
func Classify(cells []string, headerSeen bool) Classification {
	if name, ok := workerHeaderName(cells); ok {
		if name == "" {
			return Classification{Kind: RowNoise}
		}
		return Classification{Kind: RowWorkerHeader, Name: name}
	}

	if isSummaryRow(cells) {
		return Classification{Kind: RowSummary, Summary: summaryValues(cells)}
	}

	day, hasDay := findWeekday(cells)

	if !headerSeen && hasTimeToken(cells) {
		if name := implicitWorkerName(cells); name != "" {
			return Classification{Kind: RowShiftData, Name: name, DayMarker: day}
		}
	}

	if hasDay {
		return Classification{Kind: RowShiftData, DayMarker: day}
	}

	return Classification{Kind: RowNoise}
}

// workerHeaderName 查找 "עובד:" 标记并取出姓名。
// 姓名依次取自：标记所在单元格冒号之后的内容、其后第一个像姓名的单元格、其前一个单元格。
// 导出文件是从右到左排版的，标签经常出现在姓名之后，所以最后才回看前一个单元格。
func workerHeaderName(cells []string) (string, bool) {
	for i, cell := range cells {
		idx := strings.Index(cell, workerHeaderMarker)
		if idx < 0 {
			continue
		}

		rest := strings.TrimSpace(cell[idx+len(workerHeaderMarker):])
		if isNameCandidate(rest) {
			return rest, true
		}

		for _, next := range cells[i+1:] {
			if isNameCandidate(next) {
				return strings.TrimSpace(next), true
			}
		}

		if i > 0 && isNameCandidate(cells[i-1]) {
			return strings.TrimSpace(cells[i-1]), true
		}

		return "", true
	}

	return "", false
}

func isSummaryRow(cells []string) bool {
	for _, cell := range cells {
		if containsSummaryLabel(cell) {
			return true
		}
	}
	return false
}

// summaryValues 读取汇总行：有百分比标记时，每个标记对应的值都取该行第一个正数；
// 没有任何百分比标记时，第一个正数就是总工时。
func summaryValues(cells []string) SummaryValues {
	first, ok := firstPositiveNumber(cells)
	if !ok {
		return SummaryValues{}
	}

	values := SummaryValues{}
	markerFound := false
	if rowContains(cells, "100%") {
		values.Hours100 = first
		markerFound = true
	}
	if rowContains(cells, "125%") {
		values.Hours125 = first
		markerFound = true
	}
	if rowContains(cells, "150%") {
		values.Hours150 = first
		markerFound = true
	}
	if !markerFound {
		values.TotalHours = first
	}

	return values
}

func firstPositiveNumber(cells []string) (float64, bool) {
	for _, cell := range cells {
		if v, ok := parseNumberCell(cell); ok && v > 0 {
			return v, true
		}
	}
	return 0, false
}

func rowContains(cells []string, s string) bool {
	for _, cell := range cells {
		if strings.Contains(cell, s) {
			return true
		}
	}
	return false
}

func implicitWorkerName(cells []string) string {
	for _, cell := range cells {
		if isPlausibleName(cell) {
			return strings.TrimSpace(cell)
		}
	}
	return ""
}
