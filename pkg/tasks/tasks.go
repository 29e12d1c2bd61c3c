package tasks

import (
	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"
)

const (
	TypeRunPost        = "post:run"
	TypeReconcilePosts = "posts:reconcile"
)

type RunPostTaskPayload struct {
	JobID int64
}

func NewRunPostTask(jobID int64) (*asynq.Task, error) {
	payload, err := json.Marshal(RunPostTaskPayload{JobID: jobID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeRunPost, payload), nil
}

func ParseRunPostTask(t *asynq.Task) (RunPostTaskPayload, error) {
	var p RunPostTaskPayload
	err := json.Unmarshal(t.Payload(), &p)
	return p, err
}

func NewReconcilePostsTask() (*asynq.Task, error) {
	return asynq.NewTask(TypeReconcilePosts, nil), nil
}
