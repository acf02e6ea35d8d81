package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"github.com/yourusername/code-editor/internal/config"
)

const (
	taskTypeSnapshot = "workspace:snapshot"
	queueSnapshot    = "snapshot"
)

// Manager はスナップショットジョブの投入と状態管理を担います。
type Manager struct {
	cfg      *config.Config
	client   *asynq.Client
	server   *asynq.Server
	mux      *asynq.ServeMux
	store    *Store
	archiver *Archiver
	logger   *log.Logger
}

// TaskPayload はスナップショットジョブのペイロードです。
type TaskPayload struct {
	JobID string `json:"jobId"`
}

// NewManager は Manager を初期化します。
func NewManager(cfg *config.Config, archiver *Archiver, store *Store, logger *log.Logger) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if archiver == nil {
		return nil, errors.New("archiver is nil")
	}
	if store == nil {
		return nil, errors.New("store is nil")
	}
	opt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := asynq.NewClient(opt)
	server := asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				queueSnapshot: 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	manager := &Manager{
		cfg:      cfg,
		client:   client,
		server:   server,
		mux:      mux,
		store:    store,
		archiver: archiver,
		logger:   logger,
	}
	mux.HandleFunc(taskTypeSnapshot, manager.handleSnapshotTask)
	return manager, nil
}

// StartWorkers は Asynq サーバーをバックグラウンドで起動します。
func (m *Manager) StartWorkers() {
	go func() {
		if err := m.server.Run(m.mux); err != nil && err != asynq.ErrServerClosed {
			if m.logger != nil {
				m.logger.Printf("asynq server stopped with error: %v", err)
			} else {
				log.Printf("asynq server stopped with error: %v", err)
			}
		}
	}()
}

// Shutdown はサーバーとクライアントを閉じます。
func (m *Manager) Shutdown(ctx context.Context) error {
	m.server.Shutdown()
	m.client.Close()
	return nil
}

// Enqueue はスナップショットジョブをキューに投入します。
func (m *Manager) Enqueue(ctx context.Context, payload *TaskPayload) (string, error) {
	if payload == nil {
		return "", fmt.Errorf("payload is nil")
	}
	if payload.JobID == "" {
		return "", fmt.Errorf("payload.JobID is required")
	}

	record := &Record{
		JobID:  payload.JobID,
		Status: StatusQueued,
		Progress: ProgressInfo{
			Percent: 0,
			Stage:   "queued",
		},
	}
	if err := m.store.Upsert(ctx, record); err != nil {
		return "", err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	task := asynq.NewTask(taskTypeSnapshot, data)
	info, err := m.client.EnqueueContext(ctx, task, asynq.Queue(queueSnapshot))
	if err != nil {
		return "", fmt.Errorf("failed to enqueue snapshot task: %w", err)
	}
	return info.ID, nil
}

// GetRecord はジョブの現在状態を返します。
func (m *Manager) GetRecord(ctx context.Context, jobID string) (*Record, error) {
	return m.store.Get(ctx, jobID)
}

func (m *Manager) handleSnapshotTask(ctx context.Context, task *asynq.Task) error {
	var payload TaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}

	if err := m.store.UpdateProgress(ctx, payload.JobID, ProgressInfo{
		Percent: 10,
		Stage:   "archiving",
	}); err != nil {
		return err
	}

	result, err := m.archiver.Snapshot(payload.JobID)
	if err != nil {
		if markErr := m.store.MarkFailed(ctx, payload.JobID, &ErrorInfo{
			Code:    "SNAPSHOT_FAILED",
			Message: err.Error(),
		}); markErr != nil && m.logger != nil {
			m.logger.Printf("failed to mark job %s failed: %v", payload.JobID, markErr)
		}
		return err
	}

	return m.store.MarkDone(ctx, payload.JobID, result.ArchivePath, result.ArchiveSize, result.FileCount)
}
