package config

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ushuru-digital/app-tsp/internal/logging"
	"github.com/ushuru-digital/app-tsp/internal/redisclient"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
	"go.uber.org/zap"
)

var (
	// MongoDB database handle
	MongoDB *mongo.Database
	// Redis client (traced wrapper)
	Redis *redisclient.Client
)

// InitMongoDB initializes the MongoDB connection
func InitMongoDB() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(AppConfig.MongoURI).
		SetMonitor(otelmongo.NewMonitor()).
		SetMaxPoolSize(100).
		SetMinPoolSize(10).
		SetMaxConnIdleTime(5 * time.Minute).
		SetRetryWrites(true).
		SetRetryReads(true)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		logging.Logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		logging.Logger.Fatal("failed to ping MongoDB", zap.Error(err))
	}

	MongoDB = client.Database(AppConfig.MongoDatabase)

	if err := ensureIndexes(ctx); err != nil {
		logging.Logger.Error("failed to ensure indexes on startup", zap.Error(err))
	}

	logging.Logger.Info("Connected to MongoDB",
		zap.String("uri", maskMongoURI(AppConfig.MongoURI)),
		zap.String("database", AppConfig.MongoDatabase),
	)
}

// ensureIndexes creates the indexes the filing and auxiliary collections rely on
func ensureIndexes(ctx context.Context) error {
	attempts := MongoDB.Collection(AppConfig.FilingAttemptCollection)
	_, err := attempts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "idempotency_key", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "pin", Value: 1},
				{Key: "obligation", Value: 1},
				{Key: "period", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "msisdn", Value: 1}},
		},
	})
	if err != nil {
		return err
	}

	countries := MongoDB.Collection(AppConfig.VisitedCountriesCollection)
	_, err = countries.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "msisdn", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	invoices := MongoDB.Collection(AppConfig.InvoiceCollection)
	_, err = invoices.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "msisdn", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}

// InitRedis initializes the Redis connection
func InitRedis() {
	client := redis.NewClient(&redis.Options{
		Addr:         AppConfig.RedisURI,
		Password:     AppConfig.RedisPassword,
		DB:           AppConfig.RedisDB,
		PoolSize:     50,
		MinIdleConns: 10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	Redis = redisclient.NewClient(client)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Redis.Ping(ctx).Err(); err != nil {
		logging.Logger.Fatal("failed to ping Redis", zap.Error(err))
	}

	logging.Logger.Info("Connected to Redis",
		zap.String("addr", AppConfig.RedisURI),
		zap.Int("db", AppConfig.RedisDB),
	)
}

// maskMongoURI hides credentials embedded in a MongoDB connection string
func maskMongoURI(uri string) string {
	at := strings.LastIndex(uri, "@")
	if at == -1 {
		return uri
	}
	scheme := strings.Index(uri, "://")
	if scheme == -1 {
		return uri
	}
	return uri[:scheme+3] + "***:***" + uri[at:]
}
