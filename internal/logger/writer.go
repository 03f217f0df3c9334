package logger

import (
	"io"

	"github.com/ramux/ra-multiplex/internal/metrics"
	"github.com/rs/zerolog/diode"
)

// DefaultQueueCapacity is the number of records the file queue holds before
// unread records are overwritten.
const DefaultQueueCapacity = 128_000

// newQueueWriter puts a diode in front of out.  Write copies the record and
// returns without touching out; one goroutine drains records into out in
// order.  Records overwritten before the goroutine reaches them are counted
// as dropped.  Close drains what is left and closes out.
func newQueueWriter(out io.WriteCloser, capacity int) *diode.Writer {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	w := diode.NewWriter(meteredWriter{out}, capacity, 0, func(missed int) {
		metrics.LogRecordsDropped.Add(float64(missed))
	})
	return &w
}

// meteredWriter counts the records that reach the file.  The diode discards
// write errors, so they are only visible here.
type meteredWriter struct {
	io.WriteCloser
}

func (m meteredWriter) Write(p []byte) (int, error) {
	n, err := m.WriteCloser.Write(p)
	if err != nil {
		metrics.LogWriteErrors.Inc()
		return n, err
	}
	metrics.LogRecordsWritten.Inc()
	return n, nil
}
