package hrv_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wisefido-stress/internal/hrv"
)

func TestBPMToIBI(t *testing.T) {
	ibis, err := hrv.BPMToIBI([]float64{60, 120, 100})
	require.NoError(t, err)
	require.Len(t, ibis, 3)

	// 60000/bpm
	assert.InDelta(t, 1000.0, ibis[0], 1e-9)
	assert.InDelta(t, 500.0, ibis[1], 1e-9)
	assert.InDelta(t, 600.0, ibis[2], 1e-9)
}

func TestBPMToIBI_InvalidSample(t *testing.T) {
	_, err := hrv.BPMToIBI([]float64{60, 0, 100})
	require.ErrorIs(t, err, hrv.ErrInvalidSample)

	_, err = hrv.BPMToIBI([]float64{-5})
	require.ErrorIs(t, err, hrv.ErrInvalidSample)

	// 空序列合法
	ibis, err := hrv.BPMToIBI(nil)
	require.NoError(t, err)
	assert.Empty(t, ibis)
}

func TestSDNN_PopulationStdDev(t *testing.T) {
	// 已知序列：均值900，总体方差 ((100^2)*2)/4 = 5000
	ibis := []float64{800, 1000, 800, 1000}
	expected := math.Sqrt(10000) // 每个点偏差都是100

	assert.InDelta(t, expected, hrv.SDNN(ibis), 1e-9)
}

func TestSDNN_InsufficientData(t *testing.T) {
	assert.Equal(t, 0.0, hrv.SDNN(nil))
	assert.Equal(t, 0.0, hrv.SDNN([]float64{1000}))
}

func TestRMSSD_KnownValues(t *testing.T) {
	// 差值：+200, -200, +200 → mean(sq)=40000 → rmssd=200
	ibis := []float64{800, 1000, 800, 1000}
	assert.InDelta(t, 200.0, hrv.RMSSD(ibis), 1e-9)

	assert.Equal(t, 0.0, hrv.RMSSD([]float64{1000}))
}

func TestPNN50(t *testing.T) {
	// 差值：60, 10, 70 → 2/3 超过 50ms
	ibis := []float64{900, 960, 970, 1040}
	assert.InDelta(t, 100.0*2.0/3.0, hrv.PNN50(ibis), 1e-9)
}

func TestPNN50_Bounds(t *testing.T) {
	// 所有差值都超过50ms → 100
	assert.InDelta(t, 100.0, hrv.PNN50([]float64{800, 1000, 800}), 1e-9)
	// 没有差值超过50ms → 0
	assert.InDelta(t, 0.0, hrv.PNN50([]float64{1000, 1010, 1020}), 1e-9)
	assert.Equal(t, 0.0, hrv.PNN50([]float64{1000}))
}

func TestComputeMetrics_EqualBPMYieldsZeroVariability(t *testing.T) {
	// 10个相同的BPM → sdnn=rmssd=pnn50=0
	bpms := make([]float64, 10)
	for i := range bpms {
		bpms[i] = 60
	}

	metrics, err := hrv.CalculateFromHeartRates(bpms)
	require.NoError(t, err)

	assert.Equal(t, 0.0, metrics.SDNN)
	assert.Equal(t, 0.0, metrics.RMSSD)
	assert.Equal(t, 0.0, metrics.PNN50)
	assert.Equal(t, 10, metrics.SampleCount)
	assert.True(t, metrics.Reliable())
}

func TestComputeMetrics_SetsComputedAt(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	metrics := hrv.ComputeMetrics([]float64{1000, 900}, at)

	assert.Equal(t, at, metrics.ComputedAt)
	assert.Equal(t, 2, metrics.SampleCount)
}

func TestCalculateFromHeartRates_PropagatesInvalidSample(t *testing.T) {
	_, err := hrv.CalculateFromHeartRates([]float64{70, -1})
	require.ErrorIs(t, err, hrv.ErrInvalidSample)
}
