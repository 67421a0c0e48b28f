package model

import "time"

// Todo is a single item owned by one user.
type Todo struct {
	ID          string    `json:"_id"`
	Text        string    `json:"text"`
	Completed   bool      `json:"completed"`
	CompletedAt *int64    `json:"completedAt"` // epoch millis, null unless completed
	OwnerID     string    `json:"_creator"`
	CreatedAt   time.Time `json:"-"`
}

// TodoPatch holds the mutable fields of a todo. Nil means unchanged.
type TodoPatch struct {
	Text      *string
	Completed *bool
}

// Apply updates t in place. completedAt is stamped with nowMillis only on a
// false to true transition and cleared whenever completed is false. A patch
// without completed keeps the current completion state.
func (p TodoPatch) Apply(t *Todo, nowMillis int64) {
	if p.Text != nil {
		t.Text = *p.Text
	}
	if p.Completed == nil {
		return
	}
	switch {
	case !*p.Completed:
		t.Completed = false
		t.CompletedAt = nil
	case !t.Completed || t.CompletedAt == nil:
		t.Completed = true
		ts := nowMillis
		t.CompletedAt = &ts
	}
}

// NowMillis returns the current time in epoch milliseconds.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
