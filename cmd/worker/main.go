package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/ushuru-digital/app-tsp/internal/config"
	"github.com/ushuru-digital/app-tsp/internal/logging"
	"github.com/ushuru-digital/app-tsp/internal/observability"
	"github.com/ushuru-digital/app-tsp/internal/services"
	"go.uber.org/zap"
)

func main() {
	if err := logging.InitLogger(); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	if err := config.LoadConfig(); err != nil {
		logging.Logger.Fatal("failed to load config", zap.Error(err))
	}

	observability.InitTracer()
	defer observability.ShutdownTracer()

	config.InitRedis()

	workerCount, err := strconv.Atoi(os.Getenv("NOTIFY_WORKER_COUNT"))
	if err != nil || workerCount < 1 {
		workerCount = 2
	}

	logging.Logger.Info("starting notification workers", zap.Int("count", workerCount))

	workers := make([]*services.NotificationWorker, workerCount)
	for i := range workers {
		workers[i] = services.NewDefaultNotificationWorker(i)
		go workers[i].Start()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Logger.Info("shutting down notification workers...")
	for _, w := range workers {
		w.Stop()
	}
	logging.Logger.Info("workers exited gracefully")
}
