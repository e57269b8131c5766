package mockdata

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "week-planner/pkg/errors"
)

func TestEmbedded_AllRecordsLoad(t *testing.T) {
	ctx := context.Background()
	s := NewEmbedded()

	emp, err := s.Employee(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Jordan", emp.FirstName)

	cal, err := s.Calendar(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, cal.Events)

	m, err := s.CompetencyMatrix(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"L3", "L4", "L5"}, m.LevelNames())

	prs, err := s.PullRequests(ctx)
	require.NoError(t, err)
	assert.Len(t, prs.Items, 4)

	for _, name := range []string{FileTechSpec, FileGoals, FileUpdates} {
		doc, err := s.Document(ctx, name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, doc)
	}
}

func TestStore_MissingRecordIsNotFound(t *testing.T) {
	s := NewStore(fstest.MapFS{})
	_, err := s.Employee(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))

	_, err = s.Document(context.Background(), FileGoals)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestStore_MalformedRecord(t *testing.T) {
	s := NewStore(fstest.MapFS{FileEmployee: {Data: []byte("{not json")}})
	_, err := s.Employee(context.Background())
	require.Error(t, err)
	assert.False(t, pkgerrors.IsNotFound(err))
}

func TestStore_ReadsFreshEachTime(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileEmployee)
	require.NoError(t, os.WriteFile(path, []byte(`{"first_name":"Ana"}`), 0644))

	s, err := Open(dir)
	require.NoError(t, err)
	emp, err := s.Employee(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ana", emp.FirstName)

	require.NoError(t, os.WriteFile(path, []byte(`{"first_name":"Bo"}`), 0644))
	emp, err = s.Employee(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bo", emp.FirstName)
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file.json")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0644))
	_, err = Open(file)
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidArg)

	s, err := Open("")
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestEmployee_ContextString(t *testing.T) {
	e := &Employee{
		FirstName: "Jordan", LastName: "Rivera", Title: "Software Engineer II", Level: "L4",
		Team: "Platform Reliability", Manager: "Priya Natarajan", Location: "New York, NY",
		Timezone: "America/New_York", GitHubHandle: "jrivera-dev",
	}
	assert.Equal(t,
		"The user is Jordan Rivera, a Software Engineer II (level L4) on the Platform Reliability team. "+
			"They report to Priya Natarajan. They work from New York, NY (America/New_York). "+
			"Their GitHub handle is jrivera-dev.",
		e.ContextString())

	assert.Equal(t, "The user is Ana.", (&Employee{FirstName: "Ana"}).ContextString())
}

func TestEventTime(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	allDay := EventTime{Date: "2024-11-15"}
	assert.True(t, allDay.AllDay())
	ts, err := allDay.Time(loc)
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 11, 15, 0, 0, 0, 0, loc).Equal(ts))

	timed := EventTime{DateTime: "2024-11-12T14:00:00Z"}
	assert.False(t, timed.AllDay())
	ts, err = timed.Time(loc)
	require.NoError(t, err)
	assert.Equal(t, 9, ts.Hour())

	_, err = EventTime{}.Time(loc)
	assert.Error(t, err)
}

func TestCompetencyMatrix_FindLevel(t *testing.T) {
	m := &CompetencyMatrix{Levels: []CompetencyLevel{{Level: "L4"}, {Level: "Senior"}}}
	got, ok := m.FindLevel(" l4 ")
	assert.True(t, ok)
	assert.Equal(t, "L4", got)
	got, ok = m.FindLevel("SENIOR")
	assert.True(t, ok)
	assert.Equal(t, "Senior", got)
	_, ok = m.FindLevel("L9")
	assert.False(t, ok)
}
