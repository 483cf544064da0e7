package task

// Visibility is the single tab a task shows up in for a given wallet.
type Visibility string

const (
	VisibilityOpen           Visibility = "open"
	VisibilityInProgressMine Visibility = "in_progress_mine"
	VisibilityCompletedMine  Visibility = "completed_mine"
	VisibilityInvisible      Visibility = "invisible"
)

// Tab is one of the fixed session tabs.
type Tab string

const (
	TabNone         Tab = ""
	TabOpenBounties Tab = "open_bounties"
	TabCreateTask   Tab = "create_task"
	TabCompleteTask Tab = "complete_task"
)

// Tabs lists the selectable tabs in display order.
var Tabs = []Tab{TabOpenBounties, TabCreateTask, TabCompleteTask}

func (t Tab) Valid() bool {
	for _, tab := range Tabs {
		if t == tab {
			return true
		}
	}
	return false
}

// Views are the three disjoint display sets derived from one snapshot.
type Views struct {
	Wallet       string  `json:"wallet"`
	Generation   uint64  `json:"generation"`
	OpenBounties []*Task `json:"open_bounties"`
	InProgress   []*Task `json:"in_progress"`
	Completed    []*Task `json:"completed"`
}

// Classify places t in exactly one visibility bucket for wallet. Completed
// tasks created by someone else are invisible in every tab.
func Classify(t *Task, wallet string) Visibility {
	mine := t.IsCreator(wallet)
	switch {
	case !mine && !t.Completed:
		return VisibilityOpen
	case mine && !t.Completed:
		return VisibilityInProgressMine
	case mine && t.Completed:
		return VisibilityCompletedMine
	default:
		return VisibilityInvisible
	}
}

// OpenBounties returns tasks created by someone else that are not completed.
func OpenBounties(tasks []*Task, wallet string) []*Task {
	return filter(tasks, wallet, VisibilityOpen)
}

// MyInProgress returns the wallet's own tasks that are not completed.
func MyInProgress(tasks []*Task, wallet string) []*Task {
	return filter(tasks, wallet, VisibilityInProgressMine)
}

// MyCompleted returns the wallet's own completed tasks.
func MyCompleted(tasks []*Task, wallet string) []*Task {
	return filter(tasks, wallet, VisibilityCompletedMine)
}

// IsParticipant reports whether wallet already registered for t.
func IsParticipant(t *Task, wallet string) bool {
	return t.HasParticipant(wallet)
}

// Partition derives all three views in a single pass, preserving registry order.
func Partition(tasks []*Task, wallet string) Views {
	v := Views{
		Wallet:       wallet,
		OpenBounties: []*Task{},
		InProgress:   []*Task{},
		Completed:    []*Task{},
	}
	for _, t := range tasks {
		switch Classify(t, wallet) {
		case VisibilityOpen:
			v.OpenBounties = append(v.OpenBounties, t)
		case VisibilityInProgressMine:
			v.InProgress = append(v.InProgress, t)
		case VisibilityCompletedMine:
			v.Completed = append(v.Completed, t)
		}
	}
	return v
}

// PartitionSnapshot partitions snap and stamps the result with its generation.
func PartitionSnapshot(snap *Snapshot, wallet string) Views {
	v := Partition(snap.Tasks, wallet)
	v.Generation = snap.Generation
	return v
}

// ForTab narrows views to what tab displays. The complete-task tab shows the
// wallet's in-progress tasks followed by its completed ones.
func (v Views) ForTab(tab Tab) []*Task {
	switch tab {
	case TabOpenBounties:
		return v.OpenBounties
	case TabCompleteTask:
		out := make([]*Task, 0, len(v.InProgress)+len(v.Completed))
		out = append(out, v.InProgress...)
		return append(out, v.Completed...)
	default:
		return []*Task{}
	}
}

func filter(tasks []*Task, wallet string, want Visibility) []*Task {
	out := []*Task{}
	for _, t := range tasks {
		if Classify(t, wallet) == want {
			out = append(out, t)
		}
	}
	return out
}
