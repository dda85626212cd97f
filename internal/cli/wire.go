package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"forge3d/internal/catalog"
	"forge3d/internal/config"
	"forge3d/internal/genapi"
	"forge3d/internal/generation"
	"forge3d/internal/history"
	"forge3d/internal/kv"
	"forge3d/internal/modelstore"
)

// stores groups the persistent side of the client.
type stores struct {
	kv      kv.Store
	files   *modelstore.Store
	history *history.Store
}

// openKV selects the history backend.
func openKV(ctx context.Context, h config.HistoryConfig) (kv.Store, error) {
	switch h.Backend {
	case config.BackendSQLite:
		return kv.NewSQLite(h.Path)
	case config.BackendRedis:
		return kv.NewRedis(ctx, kv.RedisOptions{
			Addr:     h.RedisAddr,
			Password: h.RedisPassword,
			DB:       h.RedisDB,
		})
	default:
		return kv.NewFile(h.Path)
	}
}

// openStores opens the kv backend, model directory and history, loading the
// history and seeding it with bundled samples on first run.
func openStores(ctx context.Context, cfg config.Config, log zerolog.Logger) (*stores, error) {
	kvs, err := openKV(ctx, cfg.History)
	if err != nil {
		return nil, fmt.Errorf("open %s history backend: %w", cfg.History.Backend, err)
	}
	files, err := modelstore.New(cfg.Storage.ModelsDir, cfg.Storage.BundledDir, cfg.Storage.ModelExt)
	if err != nil {
		_ = kvs.Close()
		return nil, err
	}
	h, err := history.New(history.Config{
		KV:         kvs,
		Files:      files,
		Key:        cfg.History.Key,
		MaxEntries: cfg.History.MaxEntries,
		Logger:     log,
	})
	if err != nil {
		_ = kvs.Close()
		return nil, err
	}
	if err := h.Load(ctx); err != nil {
		_ = kvs.Close()
		return nil, err
	}
	samples, err := catalog.LoadDir(cfg.Storage.BundledDir)
	if err != nil {
		log.Warn().Err(err).Str("dir", cfg.Storage.BundledDir).Msg("bundled catalog unavailable")
	} else if _, err := h.Seed(ctx, samples); err != nil {
		_ = kvs.Close()
		return nil, err
	}
	return &stores{kv: kvs, files: files, history: h}, nil
}

// Close waits for background file deletions and releases the backend.
func (s *stores) Close() error {
	s.history.Wait()
	return s.kv.Close()
}

func newClient(cfg config.Config) *genapi.Client {
	return genapi.New(genapi.Config{
		BaseURL:         cfg.Remote.BaseURL,
		APIKey:          cfg.Remote.APIKey,
		RequestTimeout:  cfg.Remote.RequestTimeout.Std(),
		ResourceTimeout: cfg.Remote.ResourceTimeout.Std(),
	})
}

func newManager(base context.Context, cfg config.Config, api generation.API, s *stores, log zerolog.Logger) (*generation.Manager, error) {
	g := cfg.Generation
	return generation.NewWithConfig(generation.ManagerConfig{
		API:               api,
		Results:           s.files,
		History:           s.history,
		PollInterval:      g.PollInterval.Std(),
		MaxPromptLength:   g.MaxPromptLength,
		MaxImageBytes:     g.MaxImageBytes,
		ImageMaxDimension: g.ImageMaxDimension,
		JPEGQuality:       g.JPEGQuality,
		Logger:            log,
		BaseContext:       base,
	})
}
