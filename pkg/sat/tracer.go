package sat

import (
	"fmt"
	"io"
)

type SearchPosition interface {
	Assumptions() []Proposition
	Conflicts() []Handle
}

type Tracer interface {
	Trace(p SearchPosition)
}

type DefaultTracer struct{}

func (DefaultTracer) Trace(_ SearchPosition) {
}

type LoggingTracer struct {
	Writer io.Writer
}

func (t LoggingTracer) Trace(p SearchPosition) {
	fmt.Fprintf(t.Writer, "---\nAssumptions:\n")
	for _, a := range p.Assumptions() {
		fmt.Fprintf(t.Writer, "- %s\n", a)
	}
	fmt.Fprintf(t.Writer, "Conflicts:\n")
	for _, h := range p.Conflicts() {
		fmt.Fprintf(t.Writer, "- handle %d\n", h)
	}
}
