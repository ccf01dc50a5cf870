package hardware

import (
	"sync"

	"smartcomfort/internal/logger"
)

// DisplayLines is the number of text lines on the panel.
const DisplayLines = 2

// LogDisplay keeps the panel contents in memory and echoes every update to the log.
type LogDisplay struct {
	mu    sync.Mutex
	lines [DisplayLines]string
	log   *logger.Logger
}

// NewLogDisplay returns an empty display writing to log.
func NewLogDisplay(log *logger.Logger) *LogDisplay {
	return &LogDisplay{log: log}
}

// ShowMessage replaces one line. Out-of-range lines go to the last line.
func (d *LogDisplay) ShowMessage(text string, line int) {
	if line < 0 {
		line = 0
	}
	if line >= DisplayLines {
		line = DisplayLines - 1
	}
	d.mu.Lock()
	d.lines[line] = text
	d.mu.Unlock()
	if d.log != nil {
		d.log.Infow("display", "line", line, "text", text)
	}
}

// Lines returns a copy of the panel contents.
func (d *LogDisplay) Lines() [DisplayLines]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lines
}
