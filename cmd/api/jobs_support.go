package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/code-editor/internal/config"
	"github.com/yourusername/code-editor/internal/jobs"
)

func setupJobs(cfg *config.Config) (*jobs.Manager, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	redisClient := redis.NewClient(opt)
	ttlMinutes := cfg.SnapshotExpireMinutes
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	store := jobs.NewStore(redisClient, time.Duration(ttlMinutes)*time.Minute)
	archiver := jobs.NewArchiver(cfg.WorkspaceRoot, cfg.SnapshotDir)
	manager, err := jobs.NewManager(cfg, archiver, store, log.Default())
	if err != nil {
		return nil, err
	}
	return manager, nil
}

func snapshotEnqueueHandler(manager *jobs.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID := uuid.NewString()
		if _, err := manager.Enqueue(c.Request.Context(), &jobs.TaskPayload{JobID: jobID}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "スナップショットの投入に失敗しました。",
			})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"jobId": jobID})
	}
}

func snapshotStatusHandler(manager *jobs.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID := c.Param("id")
		if strings.TrimSpace(jobID) == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "jobId を指定してください。",
			})
			return
		}

		record, err := manager.GetRecord(c.Request.Context(), jobID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "ジョブ情報の取得に失敗しました。",
			})
			return
		}
		if record == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    "JOB_NOT_FOUND",
				"message": "指定されたジョブは存在しません。",
			})
			return
		}

		c.JSON(http.StatusOK, record)
	}
}
