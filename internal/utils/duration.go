package utils

import (
	"fmt"
	"time"
)

const clockDurationTemplateConstant = "%dh %dm %ds"

// FormatClockDuration renders whole seconds of a duration as "Xh Ym Zs".
func FormatClockDuration(duration time.Duration) string {
	if duration < 0 {
		duration = 0
	}
	totalSeconds := int64(duration / time.Second)
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	return fmt.Sprintf(clockDurationTemplateConstant, hours, minutes, seconds)
}
