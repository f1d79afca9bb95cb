package timesheet

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// 导出文件固定使用的标记，均来自打卡软件的希伯来语模板
const workerHeaderMarker = "עובד:"

var (
	// 一周七天对应的字母，从周日（א）到周六（ש）
	weekdayLetters = []string{"א", "ב", "ג", "ד", "ה", "ו", "ש"}

	summaryLabels = []string{`סה"כ`, "סה״כ", "סהכ", "total"}

	timeTokenPattern    = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::\d{2})?$`)
	decimalTokenPattern = regexp.MustCompile(`^\d+[.,]\d+$`)
)

type clockTime struct {
	hour   int
	minute int
}

func (c clockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.hour, c.minute)
}

func (c clockTime) hours() float64 {
	return float64(c.hour) + float64(c.minute)/60
}

func parseClockToken(token string) (clockTime, bool) {
	matches := timeTokenPattern.FindStringSubmatch(token)
	if matches == nil {
		return clockTime{}, false
	}
	hour, _ := strconv.Atoi(matches[1])
	minute, _ := strconv.Atoi(matches[2])
	if hour > 23 || minute > 59 {
		return clockTime{}, false
	}
	return clockTime{hour: hour, minute: minute}, true
}

// parseDecimalToken 只接受带小数分隔符的数字，例如 8.5 或 7,25
func parseDecimalToken(token string) (float64, bool) {
	if !decimalTokenPattern.MatchString(token) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.Replace(token, ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseNumberCell(cell string) (float64, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.Replace(cell, ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func isTimeCell(cell string) bool {
	_, ok := parseClockToken(strings.TrimSpace(cell))
	return ok
}

func weekdayToken(token string) (string, bool) {
	token = strings.TrimRight(strings.TrimSpace(token), "'׳")
	if slices.Contains(weekdayLetters, token) {
		return token, true
	}
	return "", false
}

func findWeekday(cells []string) (string, bool) {
	for _, cell := range cells {
		for _, token := range strings.Fields(cell) {
			if day, ok := weekdayToken(token); ok {
				return day, true
			}
		}
	}
	return "", false
}

func hasTimeToken(cells []string) bool {
	for _, cell := range cells {
		for _, token := range strings.Fields(cell) {
			if _, ok := parseClockToken(token); ok {
				return true
			}
		}
	}
	return false
}

func containsSummaryLabel(cell string) bool {
	cell = strings.ToLower(cell)
	for _, label := range summaryLabels {
		if strings.Contains(cell, label) {
			return true
		}
	}
	return false
}

// isNameCandidate 判断单元格能否作为员工姓名：非空、不是数字、不是时间
func isNameCandidate(cell string) bool {
	cell = strings.TrimSpace(cell)
	if cell == "" || isTimeCell(cell) {
		return false
	}
	if _, ok := parseNumberCell(cell); ok {
		return false
	}
	return true
}

// isPlausibleName 用于没有表头时从数据行中识别姓名，要求至少两个字母且不含数字
func isPlausibleName(cell string) bool {
	cell = strings.TrimSpace(cell)
	for _, token := range strings.Fields(cell) {
		if _, ok := weekdayToken(token); ok {
			return false
		}
	}
	if containsSummaryLabel(cell) || strings.Contains(cell, workerHeaderMarker) {
		return false
	}

	letters := 0
	for _, r := range cell {
		switch {
		case unicode.IsDigit(r):
			return false
		case unicode.IsLetter(r):
			letters++
		}
	}
	return letters >= 2
}
