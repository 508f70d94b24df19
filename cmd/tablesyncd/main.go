package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"tablesync/internal/authn"
	"tablesync/internal/concurrency"
	"tablesync/internal/config"
	"tablesync/internal/coordinator"
	"tablesync/internal/eventlog"
	"tablesync/internal/presence"
	"tablesync/internal/sheet"
	"tablesync/internal/snapshotstore"
	"tablesync/internal/transport/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("init config failed: %v", err)
	}
	log.Printf("config: %+v", cfg)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer rdb.Close()
	tracker := presence.NewRedisTracker(rdb)

	snapStore, err := snapshotstore.Open(cfg.Mysql.DSN)
	if err != nil {
		log.Fatalf("failed to connect to mysql: %v", err)
	}

	kafkaCfg := sarama.NewConfig()
	kafkaCfg.Producer.Return.Successes = true
	kafkaCfg.Producer.RequiredAcks = sarama.WaitForLocal
	producer, err := sarama.NewSyncProducer(cfg.Kafka.Brokers, kafkaCfg)
	if err != nil {
		log.Fatalf("failed to connect kafka: %v", err)
	}
	defer producer.Close()

	eventSem := concurrency.NewSemaphore(concurrency.DefaultMax)
	dispatcher := eventlog.NewDispatcher(producer, cfg.Kafka.Topic, eventSem, eventlog.DefaultOptions())
	recorder := eventlog.NewRecorder(dispatcher)

	coord := coordinator.New()
	coord.OnAccepted(recorder.Accepted)
	coord.OnRejected(recorder.Rejected)
	coord.OnConnect(func(id sheet.ClientID) {
		if err := tracker.Join(context.Background(), "default", id, "", 10*time.Minute); err != nil {
			log.Printf("presence: join failed for %s: %v", id, err)
		}
	})

	if cfg.Coordinator.DelayMillis > 0 {
		stop := coord.StartScheduledDrain(time.Duration(cfg.Coordinator.DelayMillis) * time.Millisecond)
		defer stop()
	}

	go snapshotLoop(coord, snapStore)

	hub := ws.NewHub()
	wsSem := concurrency.NewSemaphore(concurrency.DefaultMax)
	gateway := ws.NewGateway(hub, coord, wsSem)

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	table := r.Group("/table")
	table.Use(authn.RequireToken())
	table.GET("/ws", gateway.Handle)
	table.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "ok", "version": coord.CurrentVersion()})
	})

	port := cfg.Running.Port
	_ = r.Run(fmt.Sprintf(":%d", port))
}

// snapshotLoop periodically persists the coordinator's current accepted
// table on a timer, since there is no client-triggered save operation in
// this update taxonomy.
func snapshotLoop(coord *coordinator.Coordinator, store *snapshotstore.Store) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		version := coord.CurrentVersion()
		content, err := coord.Snapshot()
		if err != nil {
			log.Printf("snapshot: serialize failed: %v", err)
			continue
		}
		if err := store.Save(context.Background(), "default", version, content); err != nil {
			log.Printf("snapshot: save failed: %v", err)
		}
	}
}
