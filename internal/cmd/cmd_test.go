package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QwQ3213/ACELimiter/internal/config"
	"github.com/QwQ3213/ACELimiter/internal/events"
	"github.com/QwQ3213/ACELimiter/internal/limiter"
	"github.com/QwQ3213/ACELimiter/internal/logging"
	"github.com/QwQ3213/ACELimiter/internal/privilege"
	"github.com/QwQ3213/ACELimiter/internal/process"
	"github.com/QwQ3213/ACELimiter/internal/testutil"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	root := NewRootCommand()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "scan", "limit", "info", "create-config", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestParsePIDs(t *testing.T) {
	pids, err := parsePIDs([]string{"100", "4242"})
	require.NoError(t, err)
	assert.Equal(t, []uint32{100, 4242}, pids)

	for _, bad := range []string{"0", "-1", "abc", "4294967296"} {
		_, err := parsePIDs([]string{bad})
		assert.Error(t, err, "input %q", bad)
	}
}

func TestLimitCommandArgs(t *testing.T) {
	root := NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	root.SetArgs([]string{"limit"})
	assert.Error(t, root.Execute())

	root.SetArgs([]string{"limit", "--all", "100"})
	assert.Error(t, root.Execute())
}

func TestPrintRecordsJSON(t *testing.T) {
	var buf bytes.Buffer
	records := []process.Record{
		{Name: "SGuard64.exe", PID: 100, Adjusted: true},
		{Name: "PID:7", PID: 7, Error: "cannot open process 7: access is denied"},
	}

	require.NoError(t, printRecords(&buf, records, true))

	var decoded []process.Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, records, decoded)
	assert.NotContains(t, strings.SplitN(buf.String(), "}", 2)[0], `"error"`)
}

func TestPrintRecordsTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printRecords(&buf, []process.Record{{Name: "SGuardSvc64.exe", PID: 101, Adjusted: true}}, false))
	assert.Contains(t, buf.String(), "SGuardSvc64.exe")
	assert.Contains(t, buf.String(), "101")

	buf.Reset()
	require.NoError(t, printRecords(&buf, nil, false))
	assert.Equal(t, "No ACE processes found\n", buf.String())
}

func TestSystemInfoOutput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, limiter.SystemInfo{CPUCount: 8, LastCoreIndex: 7}))
	assert.JSONEq(t, `{"cpu_count":8,"last_core_index":7}`, buf.String())

	text := formatSystemInfo(limiter.SystemInfo{CPUCount: 8, LastCoreIndex: 7})
	assert.Contains(t, text, "0x80")
}

func TestCreateConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "acelimiter.toml")

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"create-config", path})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), path)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestRunModelRefreshesFromCycleRecords(t *testing.T) {
	api := testutil.NewMockProcessAPI(8)
	api.AddProcess(100, testutil.GuardImagePath)
	api.AddProcess(200, testutil.ServiceImagePath)
	svc := limiter.New(api, testutil.NewMockElevator(privilege.Granted), limiter.Options{
		Logger: testutil.SetupTestLogger(),
	})

	svc.Cycle(context.Background())
	require.Equal(t, 1, api.EnumCalls)

	m := initialRunModel(svc, time.Second)
	updated, cmd := m.Update(busEventMsg{name: events.ProcessUpdated})
	model := updated.(runModel)

	assert.Nil(t, cmd)
	assert.Equal(t, 1, api.EnumCalls, "an event must not trigger another enumeration")
	require.Len(t, model.records, 2)
	assert.True(t, model.records[0].Adjusted)
	assert.True(t, model.records[1].Adjusted)
	assert.Contains(t, model.message, "2 limited this session")

	updated, _ = model.Update(busEventMsg{name: events.ScanCompleted})
	assert.Equal(t, 1, api.EnumCalls)
	assert.Len(t, updated.(runModel).records, 2)
}

func TestRunModelShowsJournalActivity(t *testing.T) {
	svc := limiter.New(testutil.NewMockProcessAPI(4), testutil.NewMockElevator(privilege.Granted), limiter.Options{
		Logger: testutil.SetupTestLogger(),
	})

	m := initialRunModel(svc, time.Second)
	updated, _ := m.Update(journalMsg{event: logging.JournalEvent{
		Timestamp:   time.Date(2024, 1, 1, 12, 30, 5, 0, time.Local),
		EventType:   logging.EventProcessLimited,
		ProcessName: "SGuard64.exe",
		ProcessID:   100,
		Message:     "Process limited",
	}})
	model := updated.(runModel)

	assert.Equal(t, "12:30:05 PROCESS_LIMITED SGuard64.exe (PID 100): Process limited", model.activity)
	assert.Contains(t, model.View(), "Last activity: ")
}

func TestJournalListenerFeedsActivity(t *testing.T) {
	dir, cleanup := testutil.CreateTempDir(t)
	defer cleanup()
	journal, err := logging.NewJournal(filepath.Join(dir, "journal.log"), testutil.SetupTestLogger())
	require.NoError(t, err)
	defer journal.Close()

	received := make(chan journalMsg, 1)
	journal.AddListener(func(event logging.JournalEvent) {
		received <- journalMsg{event: event}
	})
	journal.LogLimit("SGuardSvc64.exe", 200, false, "set priority class: access is denied")

	select {
	case msg := <-received:
		assert.Contains(t, formatActivity(msg.event), "LIMIT_FAILED SGuardSvc64.exe (PID 200): set priority class: access is denied")
	case <-time.After(2 * time.Second):
		t.Fatal("journal listener was not called")
	}
}
