package term

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/mikey/email-threat-widget/internal/widget"
)

// Width of the drawn indicator track in characters. The 0-130 offset scale
// is mapped onto it.
const trackWidth = 27

// Presenter draws view models to a terminal: a threat indicator track with
// a position marker, followed by the message.
type Presenter struct {
	out io.Writer
	mu  sync.Mutex
}

// NewPresenter creates a new terminal presenter
func NewPresenter(out io.Writer) *Presenter {
	return &Presenter{out: out}
}

// Present draws one view model. Successive calls overwrite nothing; each
// render is appended, so the last one printed is the one left visible.
func (p *Presenter) Present(vm widget.ViewModel) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pos := vm.IndicatorOffset * (trackWidth - 1) / widget.IndicatorHigh
	if pos < 0 {
		pos = 0
	}
	if pos > trackWidth-1 {
		pos = trackWidth - 1
	}

	track := []byte(strings.Repeat("-", trackWidth))
	track[pos] = '#'

	fmt.Fprintf(p.out, "\n  safe [%s] phishing\n  %s\n", track, vm.Message)
}
