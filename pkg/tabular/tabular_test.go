package tabular

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"optimus/backend/internal/engine"
)

func TestDetectFormat(t *testing.T) {
	tests := map[string]Format{
		"cs.csv":         FormatCSV,
		"CS.CSV":         FormatCSV,
		"math.tsv":       FormatTSV,
		"Spring 24.xlsx": FormatXLSX,
	}
	for name, want := range tests {
		got, err := DetectFormat(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := DetectFormat("timetable.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestCSV_BOMBlankLinesAndRaggedRows(t *testing.T) {
	data := "\xEF\xBB\xBFCourse No,Instructor,Room\n" +
		"\n" +
		"CS 101,Smith,R1\n" +
		",,\n" +
		"CS 102,Lee\n" +
		"CS 103,Kim,R3,extra\n"

	src, err := Open("cs.csv", strings.NewReader(data))
	require.NoError(t, err)
	rows, err := src.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Course No", rows[0][0].Header, "BOM 应被去除")
	assert.Equal(t, "CS 101", rows[0][0].Value)
	assert.Equal(t, engine.Column{Header: "Room", Value: ""}, rows[1][2], "短行补空串")
	assert.Len(t, rows[2], 3, "多出的列丢弃")
}

func TestTSV(t *testing.T) {
	src, err := Open("x.tsv", strings.NewReader("Code\tDays/ H\nEE 200\tM 2 3\n"))
	require.NoError(t, err)
	rows, err := src.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "M 2 3", rows[0][1].Value)
}

func TestNoHeader(t *testing.T) {
	src, err := Open("empty.csv", strings.NewReader("\n , \n"))
	require.NoError(t, err)
	_, err = src.Rows()
	assert.True(t, errors.Is(err, ErrNoHeader))
}

func TestXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Course No", "Course Title", "Days/ H"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"MATH 100", "Calculus", "T TH 4"}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]interface{}{"MATH 200", "Algebra"}))
	buf := new(bytes.Buffer)
	require.NoError(t, f.Write(buf))
	require.NoError(t, f.Close())

	src, err := Open("math.xlsx", buf)
	require.NoError(t, err)
	rows, err := src.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Calculus", rows[0][1].Value)
	assert.Equal(t, "", rows[1][2].Value)

	records, report, err := engine.NewNormalizer().NormalizeFrom(src, "math.xlsx")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Kept)
	assert.Len(t, records[0].Slots, 2)
}

func TestXLSX_Corrupt(t *testing.T) {
	src, err := Open("bad.xlsx", strings.NewReader("not a zip"))
	require.NoError(t, err)

	_, _, err = engine.NewNormalizer().NormalizeFrom(src, "bad.xlsx")
	assert.ErrorIs(t, err, engine.ErrParseFailure)
}
