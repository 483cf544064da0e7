package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"

	taskbountyv1 "github.com/kazz187/taskbounty/internal/api/taskbountyv1"
	"github.com/kazz187/taskbounty/internal/eventbus"
	"github.com/kazz187/taskbounty/pkg/color"
)

type printer struct {
	w      io.Writer
	format string
}

func newPrinter(w io.Writer, format string) *printer {
	return &printer{w: w, format: format}
}

func (p *printer) encode(v any) (bool, error) {
	switch p.format {
	case "json":
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		defer enc.Close()
		return true, enc.Encode(v)
	default:
		return false, nil
	}
}

func (p *printer) Session(s *taskbountyv1.Session) error {
	if ok, err := p.encode(s); ok {
		return err
	}
	if !s.Connected {
		_, err := fmt.Fprintln(p.w, "Wallet: not connected")
		return err
	}
	tab := s.Tab
	if tab == "" {
		tab = "(none)"
	}
	_, err := fmt.Fprintf(p.w, "Wallet: %s\nTab:    %s\nTasks:  %d (generation %d)\n",
		color.Address(s.Address), tab, s.TaskCount, s.Generation)
	return err
}

func (p *printer) Receipt(r *taskbountyv1.Receipt) error {
	if ok, err := p.encode(r); ok {
		return err
	}
	_, err := fmt.Fprintf(p.w, "Confirmed %s in block %d (gas %d)\n", r.TxHash, r.BlockNumber, r.GasUsed)
	return err
}

func (p *printer) Tasks(title string, tasks []*taskbountyv1.Task) error {
	if ok, err := p.encode(tasks); ok {
		return err
	}
	return p.taskTable(title, tasks)
}

func (p *printer) Views(v *taskbountyv1.Views) error {
	if ok, err := p.encode(v); ok {
		return err
	}
	for _, section := range []struct {
		title string
		tasks []*taskbountyv1.Task
	}{
		{"Open Bounties", v.OpenBounties},
		{"In Progress", v.InProgress},
		{"Completed", v.Completed},
	} {
		if err := p.taskTable(section.title, section.tasks); err != nil {
			return err
		}
	}
	return nil
}

func (p *printer) taskTable(title string, tasks []*taskbountyv1.Task) error {
	color.Bold.Fprintf(p.w, "%s\n", title)
	if len(tasks) == 0 {
		color.Faint.Fprintln(p.w, "  (none)")
		return nil
	}
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  ID\tREWARD\tCREATOR\tPARTICIPANTS\tDONE\tDESCRIPTION")
	for _, t := range tasks {
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, formatReward(t.Reward), color.Address(t.Creator),
			formatParticipants(t.Participants), yesNo(t.Completed), t.Description)
	}
	return tw.Flush()
}

// Diff prints a unified diff of the YAML rendering of two view sets.
func (p *printer) Diff(before, after *taskbountyv1.Views) error {
	a, err := yaml.Marshal(before)
	if err != nil {
		return err
	}
	b, err := yaml.Marshal(after)
	if err != nil {
		return err
	}
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a)),
		B:        difflib.SplitLines(string(b)),
		FromFile: "generation " + strconv.FormatUint(before.Generation, 10),
		ToFile:   "generation " + strconv.FormatUint(after.Generation, 10),
		Context:  2,
	})
	if err != nil {
		return err
	}
	if text == "" {
		_, err := fmt.Fprintln(p.w, "No changes.")
		return err
	}
	_, err = io.WriteString(p.w, text)
	return err
}

func (p *printer) Event(ev *taskbountyv1.Event) error {
	if ok, err := p.encode(ev); ok {
		return err
	}
	ts := ev.CreatedAt.Local().Format(time.TimeOnly)
	if ev.Type == string(eventbus.EventNotification) {
		sev := ev.Metadata["severity"]
		_, err := fmt.Fprintf(p.w, "%s %s\n", color.Faint.Sprint(ts), color.Severity(sev).Sprint(ev.Payload))
		return err
	}
	line := fmt.Sprintf("%s %s", color.Faint.Sprint(ts), ev.Type)
	if ev.ResourceID != "" {
		line += " " + ev.ResourceID
	}
	if ev.Payload != "" {
		line += " " + ev.Payload
	}
	_, err := fmt.Fprintln(p.w, line)
	return err
}

func formatReward(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64) + " HBAR"
}

func formatParticipants(ps []string) string {
	if len(ps) == 0 {
		return "None"
	}
	colored := make([]string, len(ps))
	for i, addr := range ps {
		colored[i] = color.Address(addr)
	}
	return strings.Join(colored, ",")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
