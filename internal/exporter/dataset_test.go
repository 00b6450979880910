package exporter

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "icwfixtures/internal/errors"
	"icwfixtures/internal/rng"
	"icwfixtures/internal/shared/testutil"
	"icwfixtures/internal/synth"
	"icwfixtures/pkg/contracts/domain"
)

const smallDatasetShortest = `var1,var2,dataset_id,obs_id,treat_status
-0.32,1.46,0,0,1
0.09,3.2,0,1,0
-0.16,-0.29,0,2,1
2.03,-0.0,0,3,1
-0.48,1.22,0,4,1
-0.16,-0.33,0,5,0
-0.01,0.02,0,6,1
0.75,-0.08,0,7,0
0.07,-0.33,0,8,0
-1.56,-1.26,1,0,0
2.4,-0.37,1,1,0
-0.14,0.42,1,2,1
-0.41,-1.71,1,3,1
-1.88,0.47,1,4,1
0.41,-0.21,1,5,1
-1.93,-1.58,1,6,0
-1.3,-1.02,1,7,0
-0.69,1.91,2,0,1
0.69,1.05,2,1,0
-0.08,1.73,2,2,0
0.77,1.99,2,3,0
1.99,-0.65,2,4,1
`

func generate(t *testing.T, p synth.Params) *domain.Dataset {
	t.Helper()
	ds, err := synth.New(p).Generate(context.Background(), rng.New(p.Seed))
	require.NoError(t, err)
	return ds
}

func smallParams() synth.Params {
	return synth.Params{Seed: 7, Panels: 3, Vars: 2, MinObs: 5, MaxObs: 10, ControlFloor: 3}
}

func TestWriteDataset_Small(t *testing.T) {
	writer, tempDir := setupTestEnv(t)
	logger, handler := testutil.NewTestLogger(t)

	dw := NewDatasetWriter(writer, FloatStyleShortest, logger, nil)
	result, err := dw.WriteDataset(context.Background(), "small.csv", generate(t, smallParams()))
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(tempDir, "small.csv"))
	require.NoError(t, err)
	assert.Equal(t, smallDatasetShortest, string(content))

	assert.Equal(t, 22, result.Rows)
	assert.Equal(t, int64(len(smallDatasetShortest)), result.Bytes)
	assert.Equal(t, filepath.Join(tempDir, "small.csv"), result.Path)

	testutil.AssertLogAttr(t, handler, "component", "exporter")
	testutil.AssertLogAttr(t, handler, "rows", int64(22))
}

func TestWriteDataset_Fixed(t *testing.T) {
	writer, tempDir := setupTestEnv(t)

	dw := NewDatasetWriter(writer, FloatStyleFixed, nil, nil)
	_, err := dw.WriteDataset(context.Background(), "fixed.csv", generate(t, smallParams()))
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(tempDir, "fixed.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
	require.Len(t, lines, 23)
	assert.Equal(t, "var1,var2,dataset_id,obs_id,treat_status", lines[0])
	assert.Equal(t, "0.09,3.20,0,1,0", lines[2])
	assert.Equal(t, "2.03,-0.00,0,3,1", lines[4])
	assert.Equal(t, "-1.30,-1.02,1,7,0", lines[17])
}

func TestWriteDataset_ReferenceFile(t *testing.T) {
	if testing.Short() {
		t.Skip("writes the full reference dataset")
	}
	writer, tempDir := setupTestEnv(t)

	dw := NewDatasetWriter(writer, FloatStyleShortest, nil, nil)
	result, err := dw.WriteDataset(context.Background(), "test_datasets.csv", generate(t, synth.DefaultParams()))
	require.NoError(t, err)
	assert.Equal(t, 122444, result.Rows)

	content, err := os.ReadFile(filepath.Join(tempDir, "test_datasets.csv"))
	require.NoError(t, err)

	sum := sha256.Sum256(content)
	assert.Equal(t, "960f1397aadacc4e9be60f957fca4f50a4af109467cb6948653a6b3960e420bf", hex.EncodeToString(sum[:]))

	scanner := bufio.NewScanner(strings.NewReader(string(content)))
	var first []string
	var last string
	negZero, integral := 0, 0
	for scanner.Scan() {
		line := scanner.Text()
		if len(first) < 4 {
			first = append(first, line)
		}
		last = line
		if strings.HasPrefix(line, "var1") {
			continue
		}
		for _, v := range strings.Split(line, ",")[:5] {
			if v == "-0.0" {
				negZero++
			}
			if strings.HasSuffix(v, ".0") {
				integral++
			}
		}
	}
	require.NoError(t, scanner.Err())

	assert.Equal(t, []string{
		"var1,var2,var3,var4,var5,dataset_id,obs_id,treat_status",
		"-0.55,0.52,0.47,1.37,-0.92,0,0,1",
		"-0.12,-2.01,-0.49,0.39,-0.93,0,1,0",
		"0.08,-0.16,0.02,-0.43,-0.53,0,2,0",
	}, first)
	assert.Equal(t, "-0.63,1.08,-0.23,1.21,1.55,99,605,1", last)
	assert.Equal(t, 1219, negZero)
	assert.Equal(t, 6053, integral)
	assert.NotContains(t, string(content), "\r")
}

func TestWriteDataset_StorageError(t *testing.T) {
	writer, tempDir := setupTestEnv(t)
	blocker := filepath.Join(tempDir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	dw := NewDatasetWriter(writer, FloatStyleShortest, nil, nil)
	_, err := dw.WriteDataset(context.Background(), filepath.Join(blocker, "x.csv"), generate(t, smallParams()))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}

func TestWriteDataset_Cancelled(t *testing.T) {
	writer, _ := setupTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dw := NewDatasetWriter(writer, FloatStyleShortest, nil, nil)
	_, err := dw.WriteDataset(ctx, "cancelled.csv", generate(t, smallParams()))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSummarizePanels(t *testing.T) {
	summaries := SummarizePanels(generate(t, smallParams()))

	assert.Equal(t, []PanelSummary{
		{DatasetID: 0, NObs: 9, NControl: 4, NTreat: 5, FirstRow: 1, LastRow: 9},
		{DatasetID: 1, NObs: 8, NControl: 4, NTreat: 4, FirstRow: 10, LastRow: 17},
		{DatasetID: 2, NObs: 5, NControl: 3, NTreat: 2, FirstRow: 18, LastRow: 22},
	}, summaries)
	assert.Equal(t, []string{"1", "8", "4", "4", "10", "17"}, summaries[1].Row())
}

func TestExportPanelSummary(t *testing.T) {
	writer, tempDir := setupTestEnv(t)

	require.NoError(t, writer.ExportPanelSummary(SummarizePanels(generate(t, smallParams())), "summary.csv"))

	content, err := os.ReadFile(filepath.Join(tempDir, "summary.csv"))
	require.NoError(t, err)
	assert.Equal(t, "\xEF\xBB\xBFdataset_id,n_obs,n_control,n_treat,first_row,last_row\n"+
		"0,9,4,5,1,9\n1,8,4,4,10,17\n2,5,3,2,18,22\n", string(content))
}
