package jobs

import (
	"fmt"
	"io"
	"sort"
	"time"

	apijobs "github.com/designsafe-ci/dapi/api-types/jobs"
	"github.com/designsafe-ci/dapi/api-types/misc/tapistime"
	"github.com/designsafe-ci/dapi/pkg/log"
	"github.com/elliotchance/orderedmap/v2"
	"go.uber.org/zap"
)

// StageTotal is the name of the pseudo stage spanning first to last event.
const StageTotal = "TOTAL"

// Summary is time spent in each stage of a job.
type Summary struct {
	// history events having a valid timestamp, in time order.
	Events []apijobs.HistoryEvent

	// stage name -> duration, in order of first appearance.
	Stages *orderedmap.OrderedMap[string, time.Duration]

	Total time.Duration
}

type timedEvent struct {
	apijobs.HistoryEvent
	at time.Time
}

// Summarize computes durations of stages from history events.
//
// The stage of an event is its eventDetail, and lasts until the next event.
// Events with unparsable timestamps are ignored.
func Summarize(history []apijobs.HistoryEvent) *Summary {
	logger := log.Named(log.Jobs)

	events := make([]timedEvent, 0, len(history))
	for _, ev := range history {
		at, err := tapistime.Parse(ev.Created)
		if err != nil {
			logger.Warn("history event with broken timestamp", zap.String("created", ev.Created), zap.Error(err))
			continue
		}
		events = append(events, timedEvent{HistoryEvent: ev, at: at})
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].at.Before(events[j].at) })

	s := &Summary{
		Events: make([]apijobs.HistoryEvent, 0, len(events)),
		Stages: orderedmap.NewOrderedMap[string, time.Duration](),
	}
	for i, ev := range events {
		s.Events = append(s.Events, ev.HistoryEvent)
		if i+1 == len(events) || ev.EventDetail == "" {
			continue
		}
		d := events[i+1].at.Sub(ev.at)
		current, _ := s.Stages.Get(ev.EventDetail)
		s.Stages.Set(ev.EventDetail, current+d)
	}
	if 0 < len(events) {
		s.Total = events[len(events)-1].at.Sub(events[0].at)
	}
	return s
}

// Stage returns the duration of the stage.
func (s *Summary) Stage(name string) (time.Duration, bool) {
	if name == StageTotal {
		return s.Total, true
	}
	return s.Stages.Get(name)
}

// Render writes the summary on w.
//
// When verbose, each history event is listed before the summary.
func (s *Summary) Render(w io.Writer, verbose bool) error {
	if _, err := fmt.Fprintln(w, "\nRuntime Summary\n---------------"); err != nil {
		return err
	}
	if verbose {
		fmt.Fprintln(w, "Detailed Job History:")
		for _, ev := range s.Events {
			fmt.Fprintf(w, "  Event: %s, Detail: %s, Time: %s\n", ev.Event, ev.EventDetail, ev.Created)
		}
		fmt.Fprintln(w, "\nSummary:")
	}

	for el := s.Stages.Front(); el != nil; el = el.Next() {
		fmt.Fprintf(w, "%-15s time: %s\n", el.Key, FormatDuration(el.Value))
	}
	_, err := fmt.Fprintf(w, "%-15s time: %s\n---------------\n", StageTotal, FormatDuration(s.Total))
	return err
}

// FormatDuration formats d as "HH:MM:SS", truncating fraction of second.
//
// Hours are not wrapped by days.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", sec/3600, (sec%3600)/60, sec%60)
}
