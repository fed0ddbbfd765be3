package checkpointer

import (
	"fmt"
	"time"
)

// timeLayout is the layout of times in FileTimer filenames. Times are
// written in UTC with nanoseconds so that filenames sort by time.
const timeLayout = "20060102T150405.000000000"

// FileTimer returns a function which will append to a filename the
// time at which the function is called
func FileTimer(filename, extension string) func() string {
	return func() string {
		return fmt.Sprintf("%v-%v%v", filename,
			time.Now().UTC().Format(timeLayout), extension)
	}
}
