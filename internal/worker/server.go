package worker

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/hibiken/asynq"

	"github.com/mchic/setlist/internal/service"
)

// NewServer builds the asynq server and mux processing snapshot tasks.
func NewServer(opt asynq.RedisClientOpt, w *SnapshotWorker, logger *log.Logger) (*asynq.Server, *asynq.ServeMux) {
	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: 1,
		Queues: map[string]int{
			service.QueueSnapshots: 1,
		},
		Logger:   asynqLogger{logger},
		LogLevel: asynqLogLevel(logger.GetLevel()),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(service.TaskTypeSnapshot, w.ProcessTask)

	return srv, mux
}

func asynqLogLevel(level log.Level) asynq.LogLevel {
	switch {
	case level <= log.DebugLevel:
		return asynq.DebugLevel
	case level == log.WarnLevel:
		return asynq.WarnLevel
	case level >= log.ErrorLevel:
		return asynq.ErrorLevel
	default:
		return asynq.InfoLevel
	}
}

// asynqLogger adapts the structured logger to asynq's variadic interface.
type asynqLogger struct {
	l *log.Logger
}

func (a asynqLogger) Debug(args ...interface{}) { a.l.Debug(fmt.Sprint(args...)) }
func (a asynqLogger) Info(args ...interface{})  { a.l.Info(fmt.Sprint(args...)) }
func (a asynqLogger) Warn(args ...interface{})  { a.l.Warn(fmt.Sprint(args...)) }
func (a asynqLogger) Error(args ...interface{}) { a.l.Error(fmt.Sprint(args...)) }
func (a asynqLogger) Fatal(args ...interface{}) { a.l.Fatal(fmt.Sprint(args...)) }
