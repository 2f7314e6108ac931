package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pzl/tui"
	"github.com/pzl/tui/ansi"

	"github.com/pzl/doorbee/internal/watch"
	"github.com/pzl/doorbee/pkg/eco"
)

// printer writes human output, coloured only when stdout is a terminal.
type printer struct {
	out io.Writer
	tty bool
}

func newPrinter(f *os.File) printer {
	return printer{out: f, tty: tui.IsTTY(f.Fd())}
}

func (p printer) color(codes ...fmt.Stringer) string {
	if !p.tty {
		return ""
	}
	var b strings.Builder
	for _, c := range codes {
		b.WriteString(c.String())
	}
	return b.String()
}

func (p printer) revision(r eco.Revision, running []string) {
	conn := p.color(ansi.Green) + "connected" + p.color(ansi.Reset)
	if !r.Connected {
		conn = p.color(ansi.Magenta) + "disconnected" + p.color(ansi.Reset)
	}
	fmt.Fprintf(p.out, "%s%s%s %s (%s)\n", p.color(ansi.Bold, ansi.Magenta), r.ThermostatName, p.color(ansi.Reset), r.ThermostatID, conn)
	fmt.Fprintf(p.out, "  thermostat: %s  alerts: %s  runtime: %s%s%s  interval: %s\n",
		r.ThermostatRevision, r.AlertsRevision, p.color(ansi.Cyan), r.RuntimeRevision, p.color(ansi.Reset), r.IntervalRevision)
	if len(running) > 0 {
		fmt.Fprintf(p.out, "  running: %s\n", strings.Join(running, ", "))
	}
}

func (p printer) sensor(s eco.Sensor, latest watch.Reading, ok bool, watched bool) {
	mark := " "
	if watched {
		mark = p.color(ansi.Bold, ansi.Blue) + "*" + p.color(ansi.Reset)
	}
	value := "no data"
	if ok {
		value = fmt.Sprintf("%s%s%s at %s %s", p.color(ansi.Bold), latest.Value, p.color(ansi.Reset), latest.Date, latest.Time)
		if s.Type == eco.SensorDryContact {
			value += " (" + watch.StateOf(latest.Value).String() + ")"
		}
	}
	fmt.Fprintf(p.out, "%s %s [%s, %s]: %s\n", mark, s.Name, s.Type, s.ID, value)
}

// spinner animates after msg until the returned func is called. It prints
// msg alone when not on a terminal.
func (p printer) spinner(msg string) func(ok bool) {
	fmt.Fprint(p.out, msg)
	if !p.tty {
		return func(bool) { fmt.Fprintln(p.out) }
	}

	w := ansi.NewWriter(os.Stdout)
	w.CursorHide()
	fmt.Fprint(p.out, " ")
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		spin(done, w)
		close(stopped)
	}()

	return func(ok bool) {
		close(done)
		<-stopped
		w.Left(1)
		if ok {
			fmt.Fprintf(p.out, "%s%s✔%s\n", ansi.Bold, ansi.Green, ansi.Reset)
		} else {
			fmt.Fprintf(p.out, "%s%s✘%s\n", ansi.Bold, ansi.Magenta, ansi.Reset)
		}
		w.CursorShow()
	}
}

func spin(done chan struct{}, w *ansi.Writer) {
	boxes := []rune(`⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏`)
	blen := len(boxes)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for i := 0; true; i++ {
		select {
		case <-done:
			return
		case <-tick.C:
			w.Left(1)
			fmt.Printf("%c", boxes[i%blen])
		}
	}
}
