// Package tabular 将上传的课表文件（CSV / TSV / XLSX）读成带表头的数据行。
package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"optimus/backend/internal/engine"
)

var (
	ErrUnsupportedFormat = errors.New("不支持的文件格式，仅支持 .csv / .tsv / .xlsx")
	ErrNoHeader          = errors.New("文件缺少表头行")
)

// utf8BOM Excel 另存为 CSV 时常带的字节序标记
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Format 文件格式
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat 按扩展名判断格式
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".tsv":
		return FormatTSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	}
	return "", ErrUnsupportedFormat
}

// Source 已读入内存的文件，首次调用 Rows 时才解析
type Source struct {
	Name   string
	Format Format
	data   []byte
}

// Open 读取整个文件并按扩展名选择解析器
func Open(name string, r io.Reader) (*Source, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("读取文件失败: %w", err)
	}
	return &Source{Name: name, Format: format, data: data}, nil
}

// Rows 实现 engine.RowSource
func (s *Source) Rows() ([]engine.Row, error) {
	var (
		records [][]string
		err     error
	)
	switch s.Format {
	case FormatXLSX:
		records, err = readXLSX(s.data)
	case FormatTSV:
		records, err = readDelimited(s.data, '\t')
	default:
		records, err = readDelimited(s.data, ',')
	}
	if err != nil {
		return nil, err
	}
	return toRows(records)
}

var _ engine.RowSource = (*Source)(nil)

func readDelimited(data []byte, comma rune) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("解析 CSV 失败: %w", err)
	}
	return records, nil
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("无法解析Excel文件: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	records, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}
	return records, nil
}

// toRows 第一个非空行作为表头；跳过全空行，短行补空串，多出的列丢弃
func toRows(records [][]string) ([]engine.Row, error) {
	headerIdx := -1
	for i, rec := range records {
		if !blank(rec) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, ErrNoHeader
	}

	header := make([]string, len(records[headerIdx]))
	for i, h := range records[headerIdx] {
		header[i] = strings.TrimSpace(h)
	}

	rows := make([]engine.Row, 0, len(records)-headerIdx-1)
	for _, rec := range records[headerIdx+1:] {
		if blank(rec) {
			continue
		}
		row := make(engine.Row, len(header))
		for i, h := range header {
			row[i] = engine.Column{Header: h}
			if i < len(rec) {
				row[i].Value = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
