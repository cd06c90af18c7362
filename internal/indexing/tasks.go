package indexing

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskIndexListing = "listings.index"

type IndexListingPayload struct {
	ListingID string `json:"listingId"`
}

func NewIndexListingTask(payload IndexListingPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIndexListing, data), nil
}

func ParseIndexListingPayload(task *asynq.Task) (IndexListingPayload, error) {
	var payload IndexListingPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return IndexListingPayload{}, err
	}
	return payload, nil
}
