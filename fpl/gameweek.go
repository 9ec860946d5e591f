package fpl

import "time"

// CurrentGameweek picks the gameweek transfers should be planned for:
// the current event while its deadline has not passed, otherwise the
// next event, otherwise the first unfinished one. Returns nil when the
// season has no usable event.
func CurrentGameweek(events []Event, now time.Time) *Event {
	for i := range events {
		ev := &events[i]
		if !ev.IsCurrent {
			continue
		}
		deadline, err := time.Parse(time.RFC3339, ev.DeadlineTime)
		if err == nil && now.Before(deadline) {
			return ev
		}
		break
	}
	for i := range events {
		if events[i].IsNext {
			return &events[i]
		}
	}
	for i := range events {
		if !events[i].Finished {
			return &events[i]
		}
	}
	return nil
}

// EventByID finds a gameweek by number.
func EventByID(events []Event, id int) *Event {
	for i := range events {
		if events[i].ID == id {
			return &events[i]
		}
	}
	return nil
}
