// Package app 负责启动期装配：读取配置、加载 schema / 特征表 / 模型、构造推荐服务与 HTTP 路由。
// 任何一步失败都返回 core.StartupError，进程不应开始服务。
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/feedrank/api"
	"github.com/rushteam/feedrank/config"
	"github.com/rushteam/feedrank/core"
	"github.com/rushteam/feedrank/feast"
	"github.com/rushteam/feedrank/feature"
	"github.com/rushteam/feedrank/logging"
	"github.com/rushteam/feedrank/metrics"
	"github.com/rushteam/feedrank/model"
	"github.com/rushteam/feedrank/recommend"
	"github.com/rushteam/feedrank/store"
	"github.com/rushteam/feedrank/store/duckdb"
	"github.com/rushteam/feedrank/store/postgres"
)

// App 持有启动后只读的全部依赖
type App struct {
	Config  *config.Config
	Repo    core.Repository
	Schema  *feature.Schema
	Table   *feature.Table
	Scorer  model.Scorer
	Service *recommend.Service

	readyChecks map[string]api.ReadyCheck
	closers     []func() error
}

// Build 按配置装配服务。repo 为 nil 时连接 Postgres 作为用户 / 帖子 / 交互数据源。
func Build(ctx context.Context, cfg *config.Config, repo core.Repository) (*App, error) {
	a := &App{Config: cfg, readyChecks: map[string]api.ReadyCheck{}}

	var db *postgres.DB
	if repo == nil || cfg.Features.Source == config.SourcePostgres {
		start := time.Now()
		var err error
		db, err = postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, core.NewStartupError("database", err)
		}
		a.closers = append(a.closers, func() error { db.Close(); return nil })
		a.readyChecks["postgres"] = db.Ping
		metrics.RecordStartupLoad("database", time.Since(start))
	}
	if repo == nil {
		repo = postgres.NewRepository(db)
	}
	a.Repo = repo

	loader, err := a.tableLoader(ctx, db, repo)
	if err != nil {
		_ = a.Close()
		return nil, core.NewStartupError("feature_table", err)
	}

	if err := a.load(ctx, loader); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// load 并行加载 schema 与特征表，再加载模型并构造推荐服务
func (a *App) load(ctx context.Context, loader feature.TableLoader) error {
	cfg := a.Config

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		schema, err := feature.NewSchemaLoader(cfg.Schema.Source, cfg.Schema.Timeout).Load(gctx, cfg.Schema.Source)
		if err != nil {
			return core.NewStartupError("schema", err)
		}
		a.Schema = schema
		metrics.RecordStartupLoad("schema", time.Since(start))
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		lctx := gctx
		if cfg.Features.LoadTimeout > 0 {
			var cancel context.CancelFunc
			lctx, cancel = context.WithTimeout(gctx, cfg.Features.LoadTimeout)
			defer cancel()
		}
		table, err := feature.LoadTable(lctx, loader)
		if err != nil {
			return err
		}
		a.Table = table
		metrics.RecordStartupLoad("feature_table", time.Since(start))
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	start := time.Now()
	scorer, err := model.Load(ctx, cfg.Model, a.Schema)
	if err != nil {
		return err
	}
	a.Scorer = scorer
	if c, ok := scorer.(interface{ Close() error }); ok {
		a.closers = append(a.closers, c.Close)
	}
	if h, ok := scorer.(interface{ Health(context.Context) error }); ok {
		a.readyChecks["model"] = h.Health
	}
	metrics.RecordStartupLoad("model", time.Since(start))

	var opts []feature.AssemblerOption
	if cfg.Features.Workers > 0 {
		opts = append(opts, feature.WithWorkers(cfg.Features.Workers))
	}
	if cfg.Features.ChunkSize > 0 {
		opts = append(opts, feature.WithChunkSize(cfg.Features.ChunkSize))
	}
	asm, err := feature.NewAssembler(a.Schema, a.Table, opts...)
	if err != nil {
		return core.NewStartupError("feature_table", err)
	}

	svc, err := recommend.New(a.Repo, asm, scorer,
		recommend.WithRequestTimeout(cfg.Recommend.RequestTimeout),
		recommend.WithFilterExpr(cfg.Recommend.FilterExpr),
		recommend.WithObserver(metrics.PipelineObserver{}),
	)
	if err != nil {
		return err
	}
	a.Service = svc

	metrics.FeatureTableRows.Set(float64(a.Table.Len()))
	metrics.ModelInfo.WithLabelValues(scorer.Name(), a.Schema.Version).Set(1)
	logging.Info().
		Str("schema_version", a.Schema.Version).
		Int("feature_columns", len(a.Schema.FeatureColumns)).
		Str("feature_source", loader.Name()).
		Int("posts", a.Table.Len()).
		Str("scorer", scorer.Name()).
		Msg("startup complete")
	return nil
}

func (a *App) tableLoader(ctx context.Context, db *postgres.DB, repo core.Repository) (feature.TableLoader, error) {
	cfg := a.Config
	switch cfg.Features.Source {
	case config.SourcePostgres:
		return postgres.NewFeatureLoader(db, cfg.Features.Table, cfg.Features.Columns), nil
	case config.SourceParquet:
		return duckdb.NewParquetLoader(cfg.Features.Path, cfg.Features.Columns), nil
	case config.SourceRedis:
		kv, err := store.NewRedisStore(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, kv.Close)
		return feature.NewStoreTableLoader(kv, cfg.Features.KeyPrefix, cfg.Features.Columns), nil
	case config.SourceFeast:
		var opts []feast.ClientOption
		if cfg.Feast.Timeout > 0 {
			opts = append(opts, feast.WithTimeout(cfg.Feast.Timeout))
		}
		if cfg.Feast.Token != "" {
			opts = append(opts, feast.WithAuth(&feast.AuthConfig{Type: "static", Token: cfg.Feast.Token}))
		}
		client, err := feast.NewClient(cfg.Feast.Endpoint, cfg.Feast.Project, opts...)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return feature.NewFeastTableLoader(client, repo, cfg.Feast.Features, cfg.Feast.EntityKey), nil
	default:
		return nil, fmt.Errorf("unknown feature source %q", cfg.Features.Source)
	}
}

// Handler 构造 HTTP 路由
func (a *App) Handler() http.Handler {
	h := api.NewHandler(a.Repo, a.Service, a.readyChecks)
	return api.NewRouter(h, api.RouterConfig{
		RequestTimeout:    a.Config.Recommend.RequestTimeout,
		RateLimitRequests: a.Config.Server.RateLimitRequests,
		RateLimitWindow:   a.Config.Server.RateLimitWindow,
		EnableMetrics:     a.Config.Server.EnableMetrics,
	})
}

// Serve 启动 HTTP 服务，ctx 结束后优雅退出
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         a.Config.Server.Addr(),
		Handler:      a.Handler(),
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// Close 释放外部连接，按打开的逆序关闭
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
