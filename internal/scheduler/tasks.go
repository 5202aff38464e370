package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskSyncPending = "crm:sync_pending"

const TaskResyncLead = "crm:resync_lead"

type ResyncLeadPayload struct {
	LeadID string `json:"leadId"`
}

func NewSyncPendingTask() *asynq.Task {
	return asynq.NewTask(TaskSyncPending, nil)
}

func NewResyncLeadTask(payload ResyncLeadPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskResyncLead, data), nil
}

func ParseResyncLeadPayload(task *asynq.Task) (ResyncLeadPayload, error) {
	var payload ResyncLeadPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ResyncLeadPayload{}, err
	}
	return payload, nil
}
