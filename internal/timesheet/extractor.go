package timesheet

import (
	"strings"

	"github.com/shiftboard/hours-import/internal/domain"
)

const (
	maxDecimalDuration = 24.0
	minClockDuration   = 3.0
	maxClockDuration   = 18.0
)

// rtlTimePair 是打卡软件导出格式特有的规则：列按从右到左排列，
// 因此按列顺序扫描到的最后一个时间是上班时间，倒数第二个是下班时间。
func rtlTimePair(clocks []clockTime) (start, end clockTime) {
	return clocks[len(clocks)-1], clocks[len(clocks)-2]
}

// ExtractShift 从班次数据行中提取上下班时间和工时，没有正工时时返回 false
func ExtractShift(cells []string, dayMarker string) (domain.ParsedShift, bool) {
	var clocks []clockTime
	var decimals []float64

	for _, cell := range cells {
		for _, token := range strings.Fields(cell) {
			if c, ok := parseClockToken(token); ok {
				clocks = append(clocks, c)
				continue
			}
			if v, ok := parseDecimalToken(token); ok && v > 0 && v < maxDecimalDuration {
				decimals = append(decimals, v)
			}
		}
	}

	shift := domain.ParsedShift{DayMarker: dayMarker}

	var start, end *clockTime
	var durationClocks []clockTime
	switch {
	case len(clocks) >= 2:
		s, e := rtlTimePair(clocks)
		start, end = &s, &e
		durationClocks = clocks[:len(clocks)-2]
	case len(clocks) == 1:
		start = &clocks[0]
	}

	if start != nil {
		shift.StartTime = start.String()
	}
	if end != nil {
		shift.EndTime = end.String()
	}

	// 导出文件里的班次时长有时是小数，有时是 H:MM，两种都看，取最大值
	duration := 0.0
	for _, v := range decimals {
		duration = max(duration, v)
	}
	for _, c := range durationClocks {
		if h := c.hours(); h > minClockDuration && h < maxClockDuration {
			duration = max(duration, h)
		}
	}

	if duration == 0 && start != nil && end != nil {
		duration = spanAcrossMidnight(*start, *end)
	}

	shift.TotalHours = roundHours(duration)
	if shift.TotalHours <= 0 {
		return domain.ParsedShift{}, false
	}

	return shift, true
}
