package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"roomloop-backend/models"
	"roomloop-backend/repository"
	"roomloop-backend/tasks"
)

// Worker consumes background tasks. Its only job today is repairing
// user-side membership mirrors that failed inline.
type Worker struct {
	server *asynq.Server
	users  repository.UserRepository
}

func New(redisAddr, redisPassword string, users repository.UserRepository) *Worker {
	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr, Password: redisPassword},
		asynq.Config{Concurrency: 5},
	)
	return &Worker{server: server, users: users}
}

// Start runs the task server in its own goroutines until Shutdown.
func (w *Worker) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeMirrorRepair, w.handleMirrorRepair)
	return w.server.Start(mux)
}

func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

func (w *Worker) handleMirrorRepair(ctx context.Context, task *asynq.Task) error {
	var payload tasks.MirrorRepairPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode mirror repair payload: %w", err)
	}

	logCtx := logrus.WithFields(logrus.Fields{
		"user_id":  payload.UserID,
		"room_id":  payload.RoomID,
		"relation": payload.Relation,
	})

	var err error
	switch payload.Relation {
	case models.RelationJoined:
		err = w.users.MarkJoined(ctx, payload.UserID, payload.RoomID)
	case models.RelationCreated, models.RelationInvited:
		err = w.users.AddRoomRelation(ctx, payload.UserID, payload.RoomID, payload.Relation)
	default:
		logCtx.Warn("Dropping mirror repair task with unknown relation")
		return nil
	}
	if err != nil {
		logCtx.WithError(err).Warn("Mirror repair attempt failed, will retry")
		return err
	}

	logCtx.Info("Mirror repaired")
	return nil
}
