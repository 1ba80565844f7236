package tasks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TypeMirrorRepair = "mirror:repair"

// MirrorRepairPayload re-applies a user-side membership mirror write that
// failed inline.
type MirrorRepairPayload struct {
	UserID   uint   `json:"user_id"`
	RoomID   uint   `json:"room_id"`
	Relation string `json:"relation"`
}

// Client enqueues background tasks. It satisfies services.MirrorRepairer.
type Client struct {
	client *asynq.Client
}

func NewClient(redisAddr, redisPassword string) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr, Password: redisPassword}),
	}
}

func (c *Client) EnqueueMirrorRepair(ctx context.Context, userID, roomID uint, relation string) error {
	payload, err := json.Marshal(MirrorRepairPayload{UserID: userID, RoomID: roomID, Relation: relation})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeMirrorRepair, payload)
	_, err = c.client.EnqueueContext(ctx, task,
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
	)
	return err
}

func (c *Client) Close() error {
	return c.client.Close()
}
