package timesheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var ErrUnsupportedFormat = errors.New("不支持的文件格式，仅支持 xlsx、xls 和 csv")

// Sheet 一个工作表的全部行，单元格均为显示文本
type Sheet struct {
	Name string
	Rows [][]string
}

type workbookFormat int

const (
	formatUnknown workbookFormat = iota
	formatXLSX
	formatXLS
	formatCSV
)

// detectFormat 先根据文件内容判断格式，内容无法判断时（例如 zip、纯文本）再看扩展名
func detectFormat(data []byte, fileName string) workbookFormat {
	mtype := mimetype.Detect(data)
	switch {
	case mtype.Is("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"):
		return formatXLSX
	case mtype.Is("application/vnd.ms-excel"):
		return formatXLS
	case mtype.Is("text/csv"):
		return formatCSV
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx":
		return formatXLSX
	case ".xls":
		return formatXLS
	case ".csv":
		return formatCSV
	}

	return formatUnknown
}

// ReadWorkbook 读取工作簿中的所有工作表
func ReadWorkbook(data []byte, fileName string) ([]Sheet, error) {
	switch detectFormat(data, fileName) {
	case formatXLSX:
		return readXLSX(data)
	case formatXLS:
		return readXLS(data)
	case formatCSV:
		return readCSV(data, fileName)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func readXLSX(data []byte) ([]Sheet, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = file.Close() }()

	sheets := make([]Sheet, 0)
	for _, name := range file.GetSheetList() {
		rows, err := file.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read rows from sheet %s: %w", name, err)
		}
		sheets = append(sheets, Sheet{Name: name, Rows: rows})
	}

	return sheets, nil
}

func readXLS(data []byte) ([]Sheet, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}

	sheets := make([]Sheet, 0, workbook.NumSheets())
	for i := 0; i < workbook.NumSheets(); i++ {
		ws := workbook.GetSheet(i)
		if ws == nil {
			continue
		}

		rows := make([][]string, 0, int(ws.MaxRow)+1)
		for r := 0; r <= int(ws.MaxRow); r++ {
			row := xlsRow(ws, r)
			if row == nil {
				rows = append(rows, nil)
				continue
			}
			// 没有 ROW 记录的文件 LastCol 为 0，只能逐列读到上限
			width := row.LastCol()
			if width <= 0 {
				width = xlsMaxColumns
			}
			cells := make([]string, width)
			for c := row.FirstCol(); c < width; c++ {
				cells[c] = row.Col(c)
			}
			rows = append(rows, trimTrailingEmpty(cells))
		}

		sheets = append(sheets, Sheet{Name: ws.Name, Rows: rows})
	}

	return sheets, nil
}

// readCSV 兼容带 BOM 的 UTF-8 和 UTF-16 文件，逗号和制表符分隔都支持
// BIFF8 每个工作表最多 256 列
const xlsMaxColumns = 256

// xlsRow 对空行返回 nil，xls 库的 Row 在行不存在时会解引用空指针
func xlsRow(ws *xls.WorkSheet, r int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return ws.Row(r)
}

func trimTrailingEmpty(cells []string) []string {
	end := len(cells)
	for end > 0 && strings.TrimSpace(cells[end-1]) == "" {
		end--
	}
	return cells[:end]
}

func readCSV(data []byte, fileName string) ([]Sheet, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), decoder))
	if err != nil {
		return nil, fmt.Errorf("decode csv: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.Comma = sniffDelimiter(decoded)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	name := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	return []Sheet{{Name: name, Rows: rows}}, nil
}

func sniffDelimiter(data []byte) rune {
	firstLine, _, _ := bytes.Cut(data, []byte("\n"))
	if bytes.Count(firstLine, []byte("\t")) > bytes.Count(firstLine, []byte(",")) {
		return '\t'
	}
	return ','
}
