package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	termA = "COURSE NO,Course Title,Instructor Name,Room,DAYS/ H\n" +
		"CSE 101,Intro,Alice,R1,M 2\n" +
		"nan,Broken,Dave,R9,F 1\n"
	termB = "Course Code,Course Name,Faculty,Room No,Timing\n" +
		"MATH 201,Calculus,\"Alice, Bob\",R2,M 2\n" +
		"PHY 110,Physics,Carol,R1,M 2\n"
)

func writeFixtures(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	require.NoError(t, os.WriteFile(a, []byte(termA), 0o600))
	require.NoError(t, os.WriteFile(b, []byte(termB), 0o600))
	return a, b
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), err
}

func TestNormalize(t *testing.T) {
	a, b := writeFixtures(t)

	out, err := run(t, "normalize", a, b)
	require.NoError(t, err)

	var records []recordOutput
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 3)

	assert.Equal(t, "rec-1", records[0].ID)
	assert.Equal(t, "a.csv", records[0].SourceFile)
	assert.Equal(t, "CSE", records[0].Dept)
	require.Len(t, records[0].Slots, 1)
	assert.Equal(t, 540, records[0].Slots[0].Start)
	assert.Equal(t, 590, records[0].Slots[0].End)

	assert.Equal(t, "b.csv", records[2].SourceFile)
	assert.Equal(t, "PHY 110", records[2].CourseCode)
	assert.Contains(t, out, `"day": "Monday"`)
}

func TestNormalize_MissingFile(t *testing.T) {
	_, err := run(t, "normalize", filepath.Join(t.TempDir(), "none.csv"))
	require.Error(t, err)
}

func TestNormalize_RequiresFile(t *testing.T) {
	_, err := run(t, "normalize")
	require.Error(t, err)
}

func TestConflicts(t *testing.T) {
	a, b := writeFixtures(t)

	out, err := run(t, "conflicts", a, b)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.True(t, strings.HasPrefix(lines[0], "KIND"))
	assert.Contains(t, lines[1], "INSTRUCTOR")
	assert.Contains(t, lines[1], "Alice")
	assert.Contains(t, lines[2], "ROOM")
	assert.Contains(t, lines[2], "R1")
	assert.Contains(t, out, "2 shown (instructor 1, room 1)")
}

func TestConflicts_Filters(t *testing.T) {
	a, b := writeFixtures(t)

	out, err := run(t, "conflicts", "--kind", "room", a, b)
	require.NoError(t, err)
	assert.NotContains(t, out, "INSTRUCTOR  ")
	assert.Contains(t, out, "1 shown (instructor 1, room 1)")

	// 整体比较时 "Alice" 与 "Alice, Bob" 不相同
	out, err = run(t, "--match", "verbatim", "conflicts", a, b)
	require.NoError(t, err)
	assert.Contains(t, out, "1 shown (instructor 0, room 1)")

	_, err = run(t, "conflicts", "--kind", "desk", a, b)
	require.Error(t, err)
}

func TestFree(t *testing.T) {
	a, b := writeFixtures(t)

	out, err := run(t, "free", "--people", "Alice", "--days", "Monday", a, b)
	require.NoError(t, err)
	assert.Equal(t, "Monday 08:00-09:00\nMonday 10:00-19:00\n", out)

	out, err = run(t, "free", "--people", "Bob,Carol", "--days", "Monday",
		"--start-hour", "9", "--end-hour", "10", "--hourly", a, b)
	require.NoError(t, err)
	assert.Equal(t, "Monday 10:00-11:00\n", out)
}

func TestFree_Validation(t *testing.T) {
	a, _ := writeFixtures(t)

	_, err := run(t, "free", a)
	require.Error(t, err)

	_, err = run(t, "free", "--people", "Alice", "--days", "Funday", a)
	require.Error(t, err)

	_, err = run(t, "free", "--people", "Alice", "--start-hour", "12", "--end-hour", "9", a)
	require.Error(t, err)
}

func TestInvalidLogLevel(t *testing.T) {
	a, _ := writeFixtures(t)
	_, err := run(t, "--log-level", "loud", "normalize", a)
	require.Error(t, err)
}
