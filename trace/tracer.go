package trace

import (
	"github.com/sirupsen/logrus"

	"github.com/auxoncorp/renode-infrastructure/peripherals"
)

// Tracer adapts a Writer to the bus tracing hook. Append failures are
// logged once per sticky error rather than interrupting emulation.
type Tracer struct {
	w      *Writer
	log    logrus.FieldLogger
	failed bool
}

// NewTracer wraps w. A nil log uses the logrus standard logger.
func NewTracer(w *Writer, log logrus.FieldLogger) *Tracer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Tracer{w: w, log: log.WithField("module", "trace")}
}

func (t *Tracer) Trace(a peripherals.Access) {
	err := t.w.Append(Record{
		Kind:    a.Kind,
		Width:   a.Width,
		Addr:    a.Addr,
		Value:   a.Value,
		Handled: a.Handled,
	})
	if err != nil && !t.failed {
		t.failed = true
		t.log.WithError(err).Error("trace capture stopped")
	}
}
