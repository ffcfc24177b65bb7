package main

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"campus_catalog/internal/adapters/observability"
	redisad "campus_catalog/internal/adapters/redis"
	"campus_catalog/internal/adapters/registrar"
	"campus_catalog/internal/app"
	"campus_catalog/internal/shared"
	mysqlrepo "campus_catalog/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("base", cfg.RegistrarBase).
		Str("term", cfg.Term).
		Int("workers", cfg.Workers).
		Int("courses", len(cfg.CourseCodes)).
		Msg("ingestor starting")

	if len(cfg.CourseCodes) == 0 {
		log.Fatal().Msg("INGEST_COURSE_CODES is empty; nothing to ingest")
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	client, err := registrar.New(cfg.RegistrarBase, cfg.RegistrarKey, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize registrar client")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	ing := app.NewIngestionService(client, repo, cache)
	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for _, code := range cfg.CourseCodes {
		code := code

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(courseCode string) {
			defer wg.Done()
			defer sem.Release(int64(1))

			if err := ing.IngestCourse(ctx, courseCode, cfg.Term); err != nil {
				log.Warn().Str("course", courseCode).Err(err).Msg("ingest failed")
				return
			}
			log.Info().Str("course", courseCode).Msg("ingest ok")
		}(code)
	}

	wg.Wait()
	log.Info().Msg("ingestion completed")
}
