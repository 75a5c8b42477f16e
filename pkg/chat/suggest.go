package chat

import (
	"cmp"
	"slices"
	"time"

	"github.com/theapemachine/taskagent/pkg/tasks"
)

// Bucket names why a task was suggested.
type Bucket string

const (
	BucketOverdue Bucket = "overdue"
	BucketUrgent  Bucket = "urgent"
	BucketToday   Bucket = "today"
	BucketHigh    Bucket = "high"
	BucketOther   Bucket = "other"
)

/*
Suggestion is the outcome of ranking the open tasks.  Counts holds the size
of every bucket so the reply can summarize the backlog.
*/
type Suggestion struct {
	Task   tasks.Task
	Bucket Bucket
	Counts map[Bucket]int
	Open   int
}

// compareDue orders by due date, missing dates last.
func compareDue(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}

	return a.Compare(*b)
}

/*
SuggestNext ranks the active tasks of snapshot.  Tasks fall into the first
matching bucket of overdue, due today, urgent, high and other; the pick
then takes the first non-empty bucket in the order overdue, urgent, today,
high, other.  It returns false when nothing is left to do.
*/
func SuggestNext(snapshot []tasks.Task, now time.Time, loc *time.Location) (Suggestion, bool) {
	open := tasks.Filter(snapshot, tasks.Task.IsActive)

	if len(open) == 0 {
		return Suggestion{}, false
	}

	buckets := map[Bucket][]tasks.Task{}

	for _, task := range open {
		switch {
		case task.IsOverdue(now, loc):
			buckets[BucketOverdue] = append(buckets[BucketOverdue], task)
		case task.IsDueToday(now, loc):
			buckets[BucketToday] = append(buckets[BucketToday], task)
		case task.Priority == tasks.PriorityUrgent:
			buckets[BucketUrgent] = append(buckets[BucketUrgent], task)
		case task.Priority == tasks.PriorityHigh:
			buckets[BucketHigh] = append(buckets[BucketHigh], task)
		default:
			buckets[BucketOther] = append(buckets[BucketOther], task)
		}
	}

	byDue := func(a, b tasks.Task) int {
		return compareDue(a.DueDate, b.DueDate)
	}

	orderings := map[Bucket]func(a, b tasks.Task) int{
		BucketOverdue: func(a, b tasks.Task) int {
			return cmp.Or(byDue(a, b), cmp.Compare(a.Priority.Rank(), b.Priority.Rank()))
		},
		BucketUrgent: byDue,
		BucketToday: func(a, b tasks.Task) int {
			return cmp.Or(cmp.Compare(a.Priority.Rank(), b.Priority.Rank()), byDue(a, b))
		},
		BucketHigh: byDue,
		BucketOther: func(a, b tasks.Task) int {
			return compareDue(a.CreatedAt, b.CreatedAt)
		},
	}

	counts := map[Bucket]int{}

	for bucket, members := range buckets {
		counts[bucket] = len(members)
	}

	for _, bucket := range []Bucket{BucketOverdue, BucketUrgent, BucketToday, BucketHigh, BucketOther} {
		members := buckets[bucket]

		if len(members) == 0 {
			continue
		}

		slices.SortStableFunc(members, orderings[bucket])

		return Suggestion{Task: members[0], Bucket: bucket, Counts: counts, Open: len(open)}, true
	}

	return Suggestion{Task: open[0], Bucket: BucketOther, Counts: counts, Open: len(open)}, true
}
