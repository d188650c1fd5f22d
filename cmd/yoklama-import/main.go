package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/yoklama-api/internal/repository"
	"github.com/noah-isme/yoklama-api/internal/service"
	"github.com/noah-isme/yoklama-api/pkg/config"
	"github.com/noah-isme/yoklama-api/pkg/logger"
)

func main() {
	var (
		departments string
		terms       string
		lessons     string
		dryRun      bool
		timeout     time.Duration
	)

	flag.StringVar(&departments, "departments", "", "CSV with code,name")
	flag.StringVar(&terms, "terms", "", "CSV with id,departmentId,classNo,term,year")
	flag.StringVar(&lessons, "lessons", "", "CSV with termId,id,courseCode,title,day,startTime,endTime,room,instructor,instructorId,section")
	flag.BoolVar(&dryRun, "dry-run", false, "Validate rows without writing")
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "Overall import timeout")
	flag.Parse()

	if departments == "" && terms == "" && lessons == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	handle, err := repository.OpenDocumentStore(ctx, cfg)
	if err != nil {
		logr.Fatal("failed to open document store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer handle.Close() //nolint:errcheck

	importer := service.NewImportService(handle.Store, logr, dryRun)

	// Parents first so lesson paths point at existing term groups.
	steps := []struct {
		kind service.ImportKind
		path string
	}{
		{service.ImportDepartments, departments},
		{service.ImportTermGroups, terms},
		{service.ImportLessons, lessons},
	}
	failed := false
	for _, step := range steps {
		if step.path == "" {
			continue
		}
		if err := importFile(ctx, importer, step.kind, step.path); err != nil {
			logr.Error("import failed", zap.String("kind", string(step.kind)), zap.String("file", step.path), zap.Error(err))
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func importFile(ctx context.Context, importer *service.ImportService, kind service.ImportKind, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = importer.Import(ctx, kind, f)
	return err
}
