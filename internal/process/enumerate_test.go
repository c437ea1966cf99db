package process_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aceerrors "github.com/QwQ3213/ACELimiter/internal/errors"
	"github.com/QwQ3213/ACELimiter/internal/process"
	"github.com/QwQ3213/ACELimiter/internal/testutil"
)

func TestIsTarget(t *testing.T) {
	assert.True(t, process.IsTarget("SGuard64.exe"))
	assert.True(t, process.IsTarget("sguardsvc64.EXE"))
	assert.False(t, process.IsTarget("SGuard64.exe.bak"))
	assert.False(t, process.IsTarget("SGuard64"))
	assert.False(t, process.IsTarget(""))
	assert.Equal(t, "PID:42", process.PlaceholderName(42))
}

func TestScanMatchesTargets(t *testing.T) {
	api := testutil.NewMockProcessAPI(4)
	api.AddProcess(4, testutil.OtherImagePath)
	api.AddProcess(100, testutil.GuardImagePath)
	api.AddProcess(101, `D:\games\ACE\SGUARDSVC64.EXE`)
	api.ListPID(0)
	api.ListPID(100)

	records := process.NewEnumerator(api, testutil.SetupTestLogger()).Scan()

	assert.Equal(t, []process.Record{
		{Name: "SGuard64.exe", PID: 100},
		{Name: "SGUARDSVC64.EXE", PID: 101},
	}, records)
	assert.NoError(t, api.VerifyHandlesReleased())
}

func TestScanSkipsExitedAndUnreadable(t *testing.T) {
	api := testutil.NewMockProcessAPI(4)
	api.ListPID(555)
	api.AddProcess(100, testutil.GuardImagePath)
	api.AddProcess(102, testutil.ServiceImagePath)
	api.ImagePathFails[102] = true
	api.ModuleNameFails[102] = true

	records := process.NewEnumerator(api, testutil.SetupTestLogger()).Scan()

	assert.Equal(t, []process.Record{{Name: "SGuard64.exe", PID: 100}}, records)
	assert.NoError(t, api.VerifyHandlesReleased())
}

func TestScanEnumerationFailure(t *testing.T) {
	api := testutil.NewMockProcessAPI(4)
	api.AddProcess(100, testutil.GuardImagePath)
	api.EnumError = testutil.ErrMockEnumeration

	assert.Empty(t, process.NewEnumerator(api, testutil.SetupTestLogger()).Scan())
}

func TestScanTruncatesAtCapacity(t *testing.T) {
	api := testutil.NewMockProcessAPI(4)
	api.AddProcess(4, testutil.OtherImagePath)
	api.AddProcess(5, testutil.OtherImagePath)
	api.AddProcess(100, testutil.GuardImagePath)

	records := process.NewEnumerator(api, testutil.SetupTestLogger()).WithCapacity(2).Scan()
	assert.Empty(t, records)
}

func TestResolveNameFallsBackToModuleName(t *testing.T) {
	api := testutil.NewMockProcessAPI(4)
	api.AddProcess(100, testutil.GuardImagePath)
	api.ImagePathFails[100] = true

	name, err := process.NewEnumerator(api, testutil.SetupTestLogger()).ResolveName(100)
	require.NoError(t, err)
	assert.Equal(t, "SGuard64.exe", name)
	assert.Equal(t, []process.Access{
		process.AccessQueryLimitedInformation,
		process.AccessQueryInformation | process.AccessVMRead,
	}, api.OpenedAccess)
	assert.NoError(t, api.VerifyHandlesReleased())
}

func TestResolveNameAllStrategiesFail(t *testing.T) {
	api := testutil.NewMockProcessAPI(4)
	api.AddProcess(100, testutil.GuardImagePath)
	api.DenyAccess(100, process.AccessQueryLimitedInformation)
	api.ModuleNameFails[100] = true

	_, err := process.NewEnumerator(api, testutil.SetupTestLogger()).ResolveName(100)
	require.Error(t, err)
	assert.Equal(t, aceerrors.CodeNameResolution, aceerrors.CodeOf(err))
	assert.Contains(t, err.Error(), "image path: open")
	assert.Contains(t, err.Error(), "module base name")
	assert.NoError(t, api.VerifyHandlesReleased())
}

func TestLogicalCPUCount(t *testing.T) {
	assert.GreaterOrEqual(t, process.LogicalCPUCount(), 1)
}
