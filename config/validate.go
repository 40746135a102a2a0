package config

import (
	"errors"
	"fmt"

	"github.com/rushteam/feedrank/logging"
	"github.com/rushteam/feedrank/model"
	"github.com/rushteam/feedrank/service"
)

// Validate 检查配置的取值范围与组合
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}
	if c.Server.RateLimitRequests > 0 && c.Server.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("server.rate_limit_window must be positive when rate limiting is enabled"))
	}
	if !logging.ValidLevel(c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level %q is not a valid level", c.Log.Level))
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		errs = append(errs, fmt.Errorf("log.format %q must be json or console", c.Log.Format))
	}

	switch c.Features.Source {
	case SourcePostgres:
		if c.Features.Table == "" {
			errs = append(errs, errors.New("features.table is required for the postgres source"))
		}
	case SourceParquet:
		if c.Features.Path == "" {
			errs = append(errs, errors.New("features.path is required for the parquet source"))
		}
	case SourceRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("redis.addr is required for the redis source"))
		}
	case SourceFeast:
		if c.Feast.Endpoint == "" || c.Feast.Project == "" {
			errs = append(errs, errors.New("feast.endpoint and feast.project are required for the feast source"))
		}
		if len(c.Feast.Features) == 0 {
			errs = append(errs, errors.New("feast.features is required for the feast source"))
		}
	default:
		errs = append(errs, fmt.Errorf("features.source %q is not one of postgres, parquet, redis, feast", c.Features.Source))
	}
	if c.Features.LoadTimeout <= 0 {
		errs = append(errs, errors.New("features.load_timeout must be positive"))
	}
	if c.Features.Workers < 0 || c.Features.ChunkSize < 0 {
		errs = append(errs, errors.New("features.workers and features.chunk_size must not be negative"))
	}

	if c.Schema.Source == "" {
		errs = append(errs, errors.New("schema.source is required"))
	}

	switch c.Model.Type {
	case model.TypeLR:
		if c.Model.Path == "" {
			errs = append(errs, errors.New("model.path is required for the lr model"))
		}
	case model.TypeRPC, model.TypeKServe:
		if c.Model.Endpoint == "" {
			errs = append(errs, fmt.Errorf("model.endpoint is required for the %s model", c.Model.Type))
		}
		if c.Model.Type == model.TypeKServe && c.Model.Name == "" {
			errs = append(errs, errors.New("model.name is required for the kserve model"))
		}
		if c.Model.Protocol != "" && c.Model.Protocol != service.KServeV1 && c.Model.Protocol != service.KServeV2 {
			errs = append(errs, fmt.Errorf("model.protocol %q must be v1 or v2", c.Model.Protocol))
		}
	default:
		errs = append(errs, fmt.Errorf("model.type %q is not one of lr, rpc, kserve", c.Model.Type))
	}
	if c.Model.Timeout <= 0 {
		errs = append(errs, errors.New("model.timeout must be positive"))
	}

	if c.Recommend.RequestTimeout <= 0 {
		errs = append(errs, errors.New("recommend.request_timeout must be positive"))
	}
	return errors.Join(errs...)
}
