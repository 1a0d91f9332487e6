// Package report prints a committed settlement to a terminal: the phases with
// their routes, the structure counts and the final bookkeeping.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/muesli/termenv"

	"github.com/IlikeChooros/go-settlement/pkg/settlement"
)

type Printer struct {
	out *termenv.Output
}

// Printer detecting the color support of 'w'
func NewPrinter(w io.Writer) *Printer {
	return &Printer{out: termenv.NewOutput(w)}
}

// Printer with a fixed color profile, termenv.Ascii prints plain text
func NewPrinterWithProfile(w io.Writer, profile termenv.Profile) *Printer {
	return &Printer{out: termenv.NewOutput(w, termenv.WithProfile(profile))}
}

func (p *Printer) title(s string) termenv.Style {
	return p.out.String(s).Bold().Underline()
}

func (p *Printer) good(s string) termenv.Style {
	return p.out.String(s).Foreground(p.out.Color("2"))
}

func (p *Printer) bad(s string) termenv.Style {
	return p.out.String(s).Foreground(p.out.Color("1"))
}

func (p *Printer) faint(s string) termenv.Style {
	return p.out.String(s).Faint()
}

// Print the whole report
func (p *Printer) Print(snap settlement.Snapshot) {
	p.Summary(snap)
	p.Phases(snap)
	p.Structures(snap)
	p.Bookkeeping(snap.Totals, nil)
}

func (p *Printer) Summary(snap settlement.Snapshot) {
	kind := snap.Type
	if kind == "" {
		kind = "default"
	}
	fmt.Fprintf(p.out, "%s %s\n", p.title("Settlement"), p.faint(snap.ID.String()))
	fmt.Fprintf(p.out, "  type %s, area %v, %d structures, %d connections\n\n",
		kind, snap.Area, len(snap.Nodes), len(snap.Edges))
}

func (p *Printer) Phases(snap settlement.Snapshot) {
	fmt.Fprintf(p.out, "%s\n", p.title("Phases"))
	for _, ph := range snap.Phases {
		state := p.bad("stopped")
		if ph.Terminal {
			state = p.good("terminal")
		}
		fmt.Fprintf(p.out, "  %-12s +%-3d reward %10.2f  %s  %d cycles (%s)\n",
			ph.Name, ph.Added, ph.Reward, state, ph.Cycles, ph.StopReason)

		names := make([]string, len(ph.Nodes))
		for i, id := range ph.Nodes {
			names[i] = fmt.Sprintf("%s#%d", snap.Nodes[id].Structure, id)
		}
		fmt.Fprintf(p.out, "    %s\n", p.faint(strings.Join(names, " -> ")))
	}
	fmt.Fprintln(p.out)
}

// Count of each structure name, most common first
func (p *Printer) Structures(snap settlement.Snapshot) {
	counts := make(map[string]int)
	for _, n := range snap.Nodes {
		counts[n.Structure]++
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})

	fmt.Fprintf(p.out, "%s\n", p.title("Structures"))
	for _, name := range names {
		fmt.Fprintf(p.out, "  %3d  %s\n", counts[name], name)
	}
	fmt.Fprintln(p.out)
}

// Bookkeeping values in key order. With requirements, met values are green and
// missing ones red
func (p *Printer) Bookkeeping(totals map[string]float64, required map[string]float64) {
	fmt.Fprintf(p.out, "%s\n", p.title("Bookkeeping"))
	for _, k := range settlement.Keys() {
		name := k.String()
		value := totals[name]
		req, ok := required[name]
		if !ok {
			fmt.Fprintf(p.out, "  %-16s %g\n", name, value)
			continue
		}

		style := p.good(fmt.Sprintf("%g/%g", value, req))
		if value < req {
			style = p.bad(fmt.Sprintf("%g/%g", value, req))
		}
		fmt.Fprintf(p.out, "  %-16s %s\n", name, style)
	}
}
