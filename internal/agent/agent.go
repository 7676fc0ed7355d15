package agent

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/mwantia/fabric/pkg/container"
	config "github.com/mwantia/godrive/internal/config/server"
	"github.com/mwantia/godrive/internal/drive"
	"github.com/mwantia/godrive/pkg/db/store"
	"github.com/mwantia/godrive/pkg/log"
	"github.com/mwantia/godrive/pkg/objectstore"
)

// GoDriveAgent wires the metadata store, the object store and the drive services.
type GoDriveAgent struct {
	mutex sync.RWMutex
	wait  sync.WaitGroup

	cfg *config.BaseServerConfig
	sc  *container.ServiceContainer
	log log.LoggerService

	metadata *store.SQLiteStore
	objects  objectstore.ObjectStore
	folders  *drive.FolderService
	files    *drive.FileService
	sweeper  *drive.OrphanSweeper
}

func NewAgent(cfg *config.BaseServerConfig) *GoDriveAgent {
	return &GoDriveAgent{
		cfg: cfg,
		sc:  container.NewServiceContainer(),
		log: log.NewLoggerService("godrive", cfg.Log),
	}
}

func (gda *GoDriveAgent) setupStores(ctx context.Context) error {
	metadata, err := store.NewSQLiteStore(store.SQLiteConfig{
		Path:     gda.cfg.Metadata.SQLite.Path,
		LogLevel: store.ParseLogLevel(gda.cfg.Metadata.SQLite.LogLevel),
	})
	if err != nil {
		return err
	}
	if err := metadata.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect metadata store: %w", err)
	}
	if err := metadata.Migrate(ctx); err != nil {
		metadata.Close()
		return fmt.Errorf("failed to migrate metadata store: %w", err)
	}
	gda.metadata = metadata

	objects, err := objectstore.New(ctx, gda.cfg.Storage)
	if err != nil {
		metadata.Close()
		return fmt.Errorf("failed to open object store: %w", err)
	}
	gda.objects = objects

	gda.log.Info("Using %s object store with bucket '%s'", gda.cfg.Storage.Type, objects.Bucket())
	return nil
}

func (gda *GoDriveAgent) setupServices(ctx context.Context) error {
	errs := container.Errors{}

	gda.log.Debug("Registering 'LoggerService'...")
	errs.Add(container.Register[log.LoggerServiceImpl](gda.sc,
		container.With[log.LoggerService](),
		container.WithInstance(gda.log)))

	gda.log.Debug("Registering 'MetadataStore'...")
	errs.Add(container.Register[store.SQLiteStore](gda.sc,
		container.With[store.MetadataStore](),
		container.WithInstance(gda.metadata)))

	gda.log.Debug("Registering 'ObjectStore'...")
	switch objects := gda.objects.(type) {
	case *objectstore.LocalStore:
		errs.Add(container.Register[objectstore.LocalStore](gda.sc,
			container.With[objectstore.ObjectStore](),
			container.WithInstance(objects)))
	case *objectstore.MinioStore:
		errs.Add(container.Register[objectstore.MinioStore](gda.sc,
			container.With[objectstore.ObjectStore](),
			container.WithInstance(objects)))
	}

	if err := errs.Errors(); err != nil {
		return err
	}

	logger, err := log.ResolveLogger(ctx, gda.sc, "logger:drive")
	if err != nil {
		return err
	}

	paging := drive.Paging{
		DefaultLimit: gda.cfg.Pagination.DefaultLimit,
		MaxLimit:     gda.cfg.Pagination.MaxLimit,
	}

	gda.folders = drive.NewFolderService(gda.metadata, paging, logger)
	gda.files = drive.NewFileService(gda.metadata, gda.objects, gda.folders, paging, logger)
	gda.sweeper = drive.NewOrphanSweeper(gda.metadata, gda.objects, gda.cfg.Cleanup.BatchSize, logger)

	gda.log.Debug("Registering 'FolderService'...")
	errs.Add(container.Register[drive.FolderService](gda.sc,
		container.WithInstance(gda.folders)))

	gda.log.Debug("Registering 'FileService'...")
	errs.Add(container.Register[drive.FileService](gda.sc,
		container.WithInstance(gda.files)))

	gda.log.Debug("Registering 'OrphanSweeper'...")
	errs.Add(container.Register[drive.OrphanSweeper](gda.sc,
		container.WithInstance(gda.sweeper)))

	return errs.Errors()
}

// Open prepares stores and services without starting background work.
func (gda *GoDriveAgent) Open(ctx context.Context) error {
	gda.mutex.Lock()
	defer gda.mutex.Unlock()

	if err := gda.setupStores(ctx); err != nil {
		return err
	}
	if err := gda.setupServices(ctx); err != nil {
		gda.closeStores()
		return err
	}
	return nil
}

func (gda *GoDriveAgent) Folders() *drive.FolderService {
	gda.mutex.RLock()
	defer gda.mutex.RUnlock()

	return gda.folders
}

func (gda *GoDriveAgent) Files() *drive.FileService {
	gda.mutex.RLock()
	defer gda.mutex.RUnlock()

	return gda.files
}

func (gda *GoDriveAgent) Sweeper() *drive.OrphanSweeper {
	gda.mutex.RLock()
	defer gda.mutex.RUnlock()

	return gda.sweeper
}

// Serve runs the orphan sweeper until interrupted and shuts down afterwards.
func (gda *GoDriveAgent) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	if err := gda.Open(ctx); err != nil {
		return err
	}

	if gda.cfg.Cleanup.Enabled {
		interval, err := time.ParseDuration(gda.cfg.Cleanup.Interval)
		if err != nil || interval <= 0 {
			gda.log.Warn("Invalid cleanup interval '%s', using 5m", gda.cfg.Cleanup.Interval)
			interval = 5 * time.Minute
		}

		gda.wait.Add(1)
		go func() {
			defer gda.wait.Done()
			gda.sweeper.Run(ctx, interval)
		}()
	}

	gda.log.Info("Agent started")
	<-ctx.Done()
	gda.log.Info("Shutting down agent...")

	timeout, err := time.ParseDuration(gda.cfg.ShutdownTimeout)
	if err != nil {
		// Set default of 60 seconds if error
		timeout = 60 * time.Second
	}

	shutdown, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := waitGroup(shutdown, &gda.wait); err != nil {
		gda.log.Warn("Background workers did not stop within %s", timeout)
	}
	return gda.Close(shutdown)
}

// waitGroup waits for wg or returns ctx.Err once ctx is done.
func waitGroup(ctx context.Context, wg *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the container and all opened stores.
func (gda *GoDriveAgent) Close(ctx context.Context) error {
	gda.mutex.Lock()
	defer gda.mutex.Unlock()

	if err := gda.sc.Cleanup(ctx); err != nil {
		return fmt.Errorf("failed to complete service container cleanup: %w", err)
	}

	err := gda.closeStores()
	if closer, ok := gda.log.(io.Closer); ok {
		closer.Close()
	}
	return err
}

func (gda *GoDriveAgent) closeStores() error {
	errs := container.Errors{}
	if gda.objects != nil {
		errs.Add(gda.objects.Close())
		gda.objects = nil
	}
	if gda.metadata != nil {
		errs.Add(gda.metadata.Close())
		gda.metadata = nil
	}
	return errs.Errors()
}
