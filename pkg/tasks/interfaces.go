package tasks

import "github.com/hibiken/asynq"

// TaskEnqueuer hands tasks to the asynq worker process. *asynq.Client satisfies it; the control
// surface holds a nil TaskEnqueuer when Redis is not configured.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}
