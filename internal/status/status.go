package status

import (
	"math"
	"strconv"
	"strings"

	"github.com/guidoenr/bloomer/internal/params"
)

// Help is the overlay drawn over every frame.
const Help = "Use F1 - F8 for settings and left mouse button + drag for bloom threshold"

// Format renders the one-line status shown in the window title.
func Format(st params.State, fps float64) string {
	var builder strings.Builder
	builder.Grow(128)
	builder.WriteString("BloomFilter Preset: ")
	builder.WriteString(st.Preset.String())
	builder.WriteString(" with ")
	builder.WriteString(strconv.Itoa(st.DownsamplePasses))
	builder.WriteString(" Passes | Threshold: ")
	appendFloat(&builder, math.Round(st.Threshold*100)/100, -1)
	builder.WriteString(" | Half res: ")
	builder.WriteString(strconv.FormatBool(st.HalfResolution))
	builder.WriteString(" | Streaks: ")
	builder.WriteString(strconv.Itoa(st.StreakLength))
	builder.WriteString(" | FPS: ")
	appendFloat(&builder, fps, 1)
	return builder.String()
}

func appendFloat(builder *strings.Builder, value float64, precision int) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		value = 0
	}
	var buf [32]byte
	builder.Write(strconv.AppendFloat(buf[:0], value, 'f', precision, 64))
}
