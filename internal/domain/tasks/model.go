package tasks

import "time"

// Task — объявление от руководства, видимое всем сотрудникам.
type Task struct {
	ID        int64
	Text      string
	Active    bool
	CreatedAt time.Time
}
