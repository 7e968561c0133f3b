package monitor

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Force TrueColor output in tests so rendering is deterministic
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestFindMinMax(t *testing.T) {
	tests := []struct {
		name          string
		data          []float64
		wantMin       float64
		wantMax       float64
		wantIsPercent bool
	}{
		{
			name:          "empty data returns percentage defaults",
			data:          []float64{},
			wantMin:       0,
			wantMax:       100,
			wantIsPercent: true,
		},
		{
			name:          "percentage data uses fixed range",
			data:          []float64{10, 50, 90},
			wantMin:       0,
			wantMax:       100,
			wantIsPercent: true,
		},
		{
			name:          "non-percentage data uses actual range",
			data:          []float64{-50, 200, 500},
			wantMin:       -50,
			wantMax:       500,
			wantIsPercent: false,
		},
		{
			name:          "rate data above 100 scales to itself",
			data:          []float64{1024, 4096, 512},
			wantMin:       512,
			wantMax:       4096,
			wantIsPercent: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotMin, gotMax, gotIsPercent := findMinMax(tt.data)
			assert.Equal(t, tt.wantMin, gotMin)
			assert.Equal(t, tt.wantMax, gotMax)
			assert.Equal(t, tt.wantIsPercent, gotIsPercent)
		})
	}
}

func TestNormalizeValue(t *testing.T) {
	assert.Equal(t, 0.0, normalizeValue(0, 0, 100))
	assert.Equal(t, 0.5, normalizeValue(50, 0, 100))
	assert.Equal(t, 1.0, normalizeValue(100, 0, 100))
	// Degenerate range lands in the middle
	assert.Equal(t, 0.5, normalizeValue(42, 42, 42))
}

func TestRenderBrailleSparkline(t *testing.T) {
	t.Run("empty data renders nothing", func(t *testing.T) {
		assert.Empty(t, RenderBrailleSparkline(nil, 20, 2, ActiveTheme().Graph))
	})

	t.Run("zero width renders nothing", func(t *testing.T) {
		assert.Empty(t, RenderBrailleSparkline([]float64{1, 2}, 0, 2, ActiveTheme().Graph))
	})

	t.Run("produces requested rows and columns", func(t *testing.T) {
		data := []float64{10, 20, 30, 40, 50, 60, 70, 80}
		out := RenderBrailleSparkline(data, 10, 2, ActiveTheme().Graph)
		rows := strings.Split(out, "\n")
		require.Len(t, rows, 2)
		for _, row := range rows {
			assert.Equal(t, 10, lipgloss.Width(row))
		}
	})

	t.Run("sparse data fills from the right", func(t *testing.T) {
		// 4 points on a 10-char graph occupy the last 2 columns;
		// everything to the left stays blank braille.
		data := []float64{90, 90, 90, 90}
		out := RenderBrailleSparkline(data, 10, 1, ActiveTheme().Graph)
		row := strings.Split(out, "\n")[0]

		cells := []rune{}
		for _, r := range row {
			if r >= brailleBase && r <= brailleBase+255 {
				cells = append(cells, r)
			}
		}
		require.Len(t, cells, 10)
		for _, r := range cells[:8] {
			assert.Equal(t, brailleBase, r, "left columns should be empty")
		}
		for _, r := range cells[8:] {
			assert.NotEqual(t, brailleBase, r, "right columns should carry the data")
		}
	})

	t.Run("long series is downsampled to fit", func(t *testing.T) {
		data := make([]float64, 500)
		for i := range data {
			data[i] = float64(i % 100)
		}
		out := RenderBrailleSparkline(data, 12, 2, ActiveTheme().Graph)
		rows := strings.Split(out, "\n")
		require.Len(t, rows, 2)
		assert.Equal(t, 12, lipgloss.Width(rows[0]))
	})
}

func TestRenderMiniSparkline(t *testing.T) {
	t.Run("empty data renders nothing", func(t *testing.T) {
		assert.Empty(t, RenderMiniSparkline(nil, 10))
	})

	t.Run("one block per column", func(t *testing.T) {
		out := RenderMiniSparkline([]float64{0, 25, 50, 75, 100}, 5)
		assert.Equal(t, 5, len([]rune(out)))
	})

	t.Run("low and high map to extreme blocks", func(t *testing.T) {
		out := []rune(RenderMiniSparkline([]float64{0, 100}, 2))
		require.Len(t, out, 2)
		assert.Equal(t, sparklineBlocks[0], out[0])
		assert.Equal(t, sparklineBlocks[len(sparklineBlocks)-1], out[1])
	})
}

func TestRenderColoredMiniSparkline(t *testing.T) {
	out := RenderColoredMiniSparkline([]float64{10, 90}, 2, lipgloss.Color("#FF00FF"))
	assert.NotEmpty(t, out)
	// Colored variant still carries the same block glyphs.
	assert.Contains(t, out, string(sparklineBlocks[0]))

	assert.Empty(t, RenderColoredMiniSparkline(nil, 4, lipgloss.Color("#FF00FF")))
}

func TestRenderGradientBar(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		percent    float64
		wantFilled int
	}{
		{"empty", 10, 0, 0},
		{"half", 10, 50, 5},
		{"full", 10, 100, 10},
		{"overflow clamps", 10, 130, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := RenderGradientBar(tt.width, tt.percent)
			assert.Equal(t, tt.wantFilled, strings.Count(bar, "█"))
			assert.Equal(t, tt.width-tt.wantFilled, strings.Count(bar, "░"))
		})
	}
}

func TestResampleData(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		assert.Nil(t, resampleData(nil, 10))
	})

	t.Run("same size passes through", func(t *testing.T) {
		data := []float64{1, 2, 3}
		assert.Equal(t, data, resampleData(data, 3))
	})

	t.Run("downsampling preserves spikes", func(t *testing.T) {
		// A single spike buried in a long flat series must survive
		// max-based bucketing.
		data := make([]float64, 100)
		data[57] = 99
		out := resampleData(data, 10)
		require.Len(t, out, 10)

		var peak float64
		for _, v := range out {
			if v > peak {
				peak = v
			}
		}
		assert.Equal(t, 99.0, peak)
	})

	t.Run("upsampling interpolates endpoints", func(t *testing.T) {
		out := resampleData([]float64{0, 100}, 5)
		require.Len(t, out, 5)
		assert.Equal(t, 0.0, out[0])
		assert.Equal(t, 100.0, out[4])
		assert.InDelta(t, 50.0, out[2], 0.001)
	})

	t.Run("single value repeats", func(t *testing.T) {
		out := resampleData([]float64{7}, 4)
		assert.Equal(t, []float64{7, 7, 7, 7}, out)
	})
}
