package timesheet

import (
	"errors"

	"github.com/shiftboard/hours-import/internal/domain"
)

var ErrNoWorkerData = errors.New("文件中没有找到员工工时数据")

// Parse 解析上传的打卡导出文件，每个不同的员工姓名对应一条记录
func Parse(data []byte, fileName string) ([]domain.ParsedWorker, error) {
	sheets, err := ReadWorkbook(data, fileName)
	if err != nil {
		return nil, err
	}

	workers := ParseSheets(sheets)
	if len(workers) == 0 {
		return nil, ErrNoWorkerData
	}

	return workers, nil
}

// accumulator 保存扫描过程中的状态，同名员工只保留一条记录。
// 一个员工可能在文件里出现多段（跨工作表或被其他员工隔开），每段的汇总行只对本段有效。
type accumulator struct {
	order  []*domain.ParsedWorker
	byName map[string]*domain.ParsedWorker
	block  *block
}

// block 是同一员工连续的一段数据
type block struct {
	worker     *domain.ParsedWorker
	firstShift int
	summary    SummaryValues
}

func (a *accumulator) worker(name string) *domain.ParsedWorker {
	if w, exists := a.byName[name]; exists {
		return w
	}
	w := &domain.ParsedWorker{
		Name:   name,
		Shifts: make([]domain.ParsedShift, 0),
	}
	a.byName[name] = w
	a.order = append(a.order, w)
	return w
}

// startBlock 结束当前段并为 name 开始新的一段
func (a *accumulator) startBlock(name string) {
	a.closeBlock()
	w := a.worker(name)
	a.block = &block{worker: w, firstShift: len(w.Shifts)}
}

// closeBlock 把当前段计入员工合计：有汇总行时用汇总值，否则累加本段班次
func (a *accumulator) closeBlock() {
	b := a.block
	if b == nil {
		return
	}
	a.block = nil

	w := b.worker
	hours := b.summary.TotalHours
	if hours <= 0 {
		hours = sumShiftHours(w.Shifts[b.firstShift:])
	}
	w.TotalHours = addHours(w.TotalHours, hours)
	w.Hours100 = addHours(w.Hours100, b.summary.Hours100)
	w.Hours125 = addHours(w.Hours125, b.summary.Hours125)
	w.Hours150 = addHours(w.Hours150, b.summary.Hours150)
}

// ParseSheets 逐个工作表、逐行扫描，工作表之间互不影响
func ParseSheets(sheets []Sheet) []domain.ParsedWorker {
	acc := &accumulator{
		byName: make(map[string]*domain.ParsedWorker),
	}

	for _, sheet := range sheets {
		acc.closeBlock()
		headerSeen := false

		for _, row := range sheet.Rows {
			cls := Classify(row, headerSeen)

			switch cls.Kind {
			case RowWorkerHeader:
				headerSeen = true
				acc.startBlock(cls.Name)
			case RowShiftData:
				if cls.Name != "" && (acc.block == nil || acc.block.worker.Name != cls.Name) {
					acc.startBlock(cls.Name)
				}
				if acc.block == nil {
					continue
				}
				if shift, ok := ExtractShift(row, cls.DayMarker); ok {
					w := acc.block.worker
					w.Shifts = append(w.Shifts, shift)
				}
			case RowSummary:
				if acc.block == nil {
					continue
				}
				applySummary(&acc.block.summary, cls.Summary)
			}
		}
	}
	acc.closeBlock()

	workers := make([]domain.ParsedWorker, 0, len(acc.order))
	for _, w := range acc.order {
		// TODO: 汇总行里如果带有出勤天数，这里会被班次数量覆盖，需要确认导出文件中天数列的含义后再决定保留哪个
		w.WorkDays = len(w.Shifts)
		workers = append(workers, *w)
	}

	return workers
}

// applySummary 同一段内汇总行的数据比逐班累加更可信，大于 0 时直接覆盖
func applySummary(dst *SummaryValues, s SummaryValues) {
	if s.TotalHours > 0 {
		dst.TotalHours = roundHours(s.TotalHours)
	}
	if s.Hours100 > 0 {
		dst.Hours100 = roundHours(s.Hours100)
	}
	if s.Hours125 > 0 {
		dst.Hours125 = roundHours(s.Hours125)
	}
	if s.Hours150 > 0 {
		dst.Hours150 = roundHours(s.Hours150)
	}
}
