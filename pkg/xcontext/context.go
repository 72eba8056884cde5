package xcontext

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/campus-events/backend/config"
	"github.com/campus-events/backend/pkg/authenticator"
	"github.com/campus-events/backend/pkg/logger"
	"gorm.io/gorm"
)

type (
	configsKey       struct{}
	loggerKey        struct{}
	dbKey            struct{}
	httpRequestKey   struct{}
	httpWriterKey    struct{}
	requestUserIDKey struct{}
	tokenEngineKey   struct{}
	snowflakeKey     struct{}
	startTimeKey     struct{}
	responseKey      struct{}
	errorKey         struct{}
)

func WithConfigs(ctx context.Context, cfg config.Configs) context.Context {
	return context.WithValue(ctx, configsKey{}, cfg)
}

func Configs(ctx context.Context) config.Configs {
	cfg, _ := ctx.Value(configsKey{}).(config.Configs)
	return cfg
}

func WithLogger(ctx context.Context, l logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// Logger returns the request logger. A context without logger gets a silent
// one so callers never need a nil check.
func Logger(ctx context.Context) logger.Logger {
	l, ok := ctx.Value(loggerKey{}).(logger.Logger)
	if !ok {
		return logger.NewLogger(logger.SILENCE)
	}

	return l
}

func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

// DB returns the database handle bound to ctx. Inside WithDBTransaction it is
// the transaction.
func DB(ctx context.Context) *gorm.DB {
	db, _ := ctx.Value(dbKey{}).(*gorm.DB)
	if db == nil {
		return nil
	}

	return db.WithContext(ctx)
}

// WithDBTransaction begins a transaction and binds it to the returned context.
// Every repository call made with that context joins the transaction.
func WithDBTransaction(ctx context.Context) context.Context {
	return WithDB(ctx, DB(ctx).Begin())
}

func WithCommitDBTransaction(ctx context.Context) error {
	return DB(ctx).Commit().Error
}

// WithRollbackDBTransaction is safe to defer after a commit.
func WithRollbackDBTransaction(ctx context.Context) {
	DB(ctx).Rollback()
}

func WithHTTPRequest(ctx context.Context, req *http.Request) context.Context {
	return context.WithValue(ctx, httpRequestKey{}, req)
}

func HTTPRequest(ctx context.Context) *http.Request {
	req, _ := ctx.Value(httpRequestKey{}).(*http.Request)
	return req
}

func WithHTTPWriter(ctx context.Context, w http.ResponseWriter) context.Context {
	return context.WithValue(ctx, httpWriterKey{}, w)
}

func HTTPWriter(ctx context.Context) http.ResponseWriter {
	w, _ := ctx.Value(httpWriterKey{}).(http.ResponseWriter)
	return w
}

func WithRequestUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestUserIDKey{}, id)
}

func RequestUserID(ctx context.Context) string {
	id, _ := ctx.Value(requestUserIDKey{}).(string)
	return id
}

func WithTokenEngine(ctx context.Context, engine authenticator.TokenEngine) context.Context {
	return context.WithValue(ctx, tokenEngineKey{}, engine)
}

func TokenEngine(ctx context.Context) authenticator.TokenEngine {
	engine, _ := ctx.Value(tokenEngineKey{}).(authenticator.TokenEngine)
	return engine
}

func WithSnowFlake(ctx context.Context, node *snowflake.Node) context.Context {
	return context.WithValue(ctx, snowflakeKey{}, node)
}

func SnowFlake(ctx context.Context) *snowflake.Node {
	node, _ := ctx.Value(snowflakeKey{}).(*snowflake.Node)
	return node
}

func WithStartTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, startTimeKey{}, t)
}

func StartTime(ctx context.Context) time.Time {
	t, _ := ctx.Value(startTimeKey{}).(time.Time)
	return t
}
