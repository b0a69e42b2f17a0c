package experiment

import (
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ProgressPrinter returns a Progress that writes one line per finished step
// to w, with grouped digits.
func ProgressPrinter(w io.Writer, total int) Progress {
	p := message.NewPrinter(language.English)
	done := 0
	return func(s Step) {
		done++
		p.Fprintf(w, "[%d/%d] step %d: %d messages, %d trials, %d recalls, pe_guided %.4f pe_blind %.4f\n",
			done, total, s.Index, s.Messages, s.Trials, s.Recalls, s.GuidedRate(), s.BlindRate())
	}
}
