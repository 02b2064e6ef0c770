package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"chess_insight/internal/bootstrap"
	domain "chess_insight/internal/domain/analysis"
	ierrors "chess_insight/internal/errors"
)

const (
	reportsCollection = "reports"
	reportCacheTTL    = 24 * time.Hour
	evalCacheTTL      = 7 * 24 * time.Hour
)

// ReportRepository persists finished game reports in Mongo and keeps a
// Redis cache in front of it, plus a per-position eval cache so
// re-analysis of known positions skips the engine.
type ReportRepository struct {
	cfg   bootstrap.Config
	log   *zap.SugaredLogger
	redis *redis.Client
	mongo *mongo.Database
}

func NewReportRepository(cfg bootstrap.Config, log *zap.SugaredLogger, redis *redis.Client, mongo *mongo.Database) *ReportRepository {
	return &ReportRepository{
		cfg:   cfg,
		log:   log,
		redis: redis,
		mongo: mongo,
	}
}

type reportDocument struct {
	GameID    string            `bson:"game_id"`
	Report    domain.GameReport `bson:"report"`
	UpdatedAt time.Time         `bson:"updated_at"`
}

func (r *ReportRepository) SaveReport(ctx context.Context, gameID string, report domain.GameReport) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	collection := r.mongo.Collection(reportsCollection)
	filter := bson.M{"game_id": gameID}
	doc := reportDocument{
		GameID:    gameID,
		Report:    report,
		UpdatedAt: time.Now().UTC(),
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := collection.ReplaceOne(ctx, filter, doc, opts); err != nil {
		r.log.Errorf("failed to save report for game %s: %v", gameID, err)
		return err
	}

	if err := r.cacheReport(ctx, gameID, report); err != nil {
		// cache misses are survivable, the mongo copy is the source of truth
		r.log.Warnf("failed to cache report for game %s: %v", gameID, err)
	}

	r.log.Infof("report saved for game %s", gameID)
	return nil
}

func (r *ReportRepository) GetReport(ctx context.Context, gameID string) (domain.GameReport, error) {
	if report, err := r.cachedReport(ctx, gameID); err == nil {
		return report, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	collection := r.mongo.Collection(reportsCollection)
	var doc reportDocument
	err := collection.FindOne(ctx, bson.M{"game_id": gameID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.GameReport{}, ierrors.ErrReportNotFound
	}
	if err != nil {
		return domain.GameReport{}, err
	}
	return doc.Report, nil
}

func (r *ReportRepository) cacheReport(ctx context.Context, gameID string, report domain.GameReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return r.redis.Set(ctx, reportKey(gameID), data, reportCacheTTL).Err()
}

func (r *ReportRepository) cachedReport(ctx context.Context, gameID string) (domain.GameReport, error) {
	val, err := r.redis.Get(ctx, reportKey(gameID)).Result()
	if err != nil {
		return domain.GameReport{}, err
	}
	var report domain.GameReport
	if err := json.Unmarshal([]byte(val), &report); err != nil {
		return domain.GameReport{}, err
	}
	return report, nil
}

// CacheEval stores one engine evaluation keyed by position and depth.
func (r *ReportRepository) CacheEval(ctx context.Context, fen string, depth int, res domain.EngineResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return r.redis.Set(ctx, evalKey(fen, depth), data, evalCacheTTL).Err()
}

// CachedEval returns a previously stored evaluation, or false.
func (r *ReportRepository) CachedEval(ctx context.Context, fen string, depth int) (domain.EngineResult, bool) {
	val, err := r.redis.Get(ctx, evalKey(fen, depth)).Result()
	if err != nil {
		return domain.EngineResult{}, false
	}
	var res domain.EngineResult
	if err := json.Unmarshal([]byte(val), &res); err != nil {
		return domain.EngineResult{}, false
	}
	return res, true
}

func reportKey(gameID string) string {
	return fmt.Sprintf("report:%s", gameID)
}

func evalKey(fen string, depth int) string {
	return fmt.Sprintf("eval:%d:%s", depth, fen)
}
