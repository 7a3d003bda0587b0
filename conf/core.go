package conf

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/zeptools/docforge/clientconf"
	"github.com/zeptools/docforge/db/kvdb"
	"github.com/zeptools/docforge/db/kvdb/impls/redis"
	"github.com/zeptools/docforge/db/sqldb"
	"github.com/zeptools/docforge/pdfs"
	"github.com/zeptools/docforge/raster"
	"github.com/zeptools/docforge/schedjobs"
	"github.com/zeptools/docforge/sec"
	"github.com/zeptools/docforge/storages"
	"github.com/zeptools/docforge/svc"
	"github.com/zeptools/docforge/throttle"
	"github.com/zeptools/docforge/web"

	// register sqldb client factories
	_ "github.com/zeptools/docforge/db/sqldb/impls/mysql"
	_ "github.com/zeptools/docforge/db/sqldb/impls/pgsql"
)

type RenderConf struct {
	PoolSize         int    `json:"pool_size"`          // rasterizer handles; also the batch concurrency cap
	FontFile         string `json:"font_file"`          // filename under fonts_dir
	FontURL          string `json:"font_url"`           // remote fallback source
	BatchDeadlineMin int    `json:"batch_deadline_min"` // wall-clock cap per batch run
}

type AuthConf struct {
	Enabled        bool   `json:"enabled"`
	JWTSecret      string `json:"jwt_secret"`
	DownloadKey    string `json:"download_key"` // 32 bytes, download token cipher
	DownloadTTLMin int    `json:"download_ttl_min"`
}

type ThrottleConf struct {
	Burst     int `json:"burst"`
	Increment int `json:"increment"`
	PeriodSec int `json:"period_sec"`
}

type RetentionConf struct {
	Days int `json:"days"` // generated output older than this is removed nightly; 0 keeps forever
}

// Core - common app config
// B = Throttle BucketID Type _ e.g. string, int64, etc
type Core[B comparable] struct {
	AppName         string        `json:"app_name"`
	Listen          string        `json:"listen"` // HTTP Server Listen IP:PORT Address
	Host            string        `json:"host"`   // HTTP Host. Can be used to generate public url endpoints
	ConfigStoreType string        `json:"config_store"` // memory, kvdb, sqldb
	Render          RenderConf    `json:"render"`
	Auth            AuthConf      `json:"auth"`
	Throttle        ThrottleConf  `json:"throttle"`
	Retention       RetentionConf `json:"retention"`

	AppRoot             string                   `json:"-"` // Filled from compiled paths
	RootCtx             context.Context          `json:"-"` // Global Context with RootCancel
	RootCancel          context.CancelFunc       `json:"-"` // CancelFunc for RootCtx
	JobScheduler        *schedjobs.Scheduler     `json:"-"` // PrepareJobScheduler
	WebService          *web.Service             `json:"-"` // PrepareWebService
	ThrottleBucketStore *throttle.BucketStore[B] `json:"-"` // PrepareThrottleBucketStore
	ActionLocks         *sync.Map                `json:"-"` // map[string]struct{}
	StorageConf         storages.Conf            `json:"-"` // LoadStorageConf
	KVDBConf            kvdb.Conf                `json:"-"` // loadKVDBConf
	BackendKVDBClient   kvdb.Client              `json:"-"` // prepareKVDBClient
	SQLDBConf           sqldb.Conf               `json:"-"` // loadSQLDBConf
	BackendSQLDBClient  sqldb.Client             `json:"-"` // prepareSQLDBClient

	ConfigStore    clientconf.Store               `json:"-"` // PrepareConfigStore
	TemplateStore  *pdfs.TemplateStore            `json:"-"` // PrepareRenderPipeline
	RasterPool     *raster.Pool                   `json:"-"` // PrepareRenderPipeline
	Composer       *pdfs.Composer                 `json:"-"` // PrepareRenderPipeline
	DownloadCipher *sec.XChaCha20Poly1305Cipher   `json:"-"` // PrepareDownloadCipher

	services []svc.Service // Services to Manage
	done     chan error
}

// BaseInit - 1st step for initialization
// 1. set AppRoot
// 2. load config/.core.json file
// 3. prepare base fields
// 4. Start ShutdownSignalListener
func (c *Core[B]) BaseInit(appRoot string, rootCtx context.Context, rootCancel context.CancelFunc) error {
	c.AppRoot = appRoot
	envFilePath := filepath.Join(appRoot, "config", ".core.json")
	envBytes, err := os.ReadFile(envFilePath)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(envBytes, c); err != nil {
		return err
	}
	c.RootCtx = rootCtx
	c.RootCancel = rootCancel
	c.prepareDefaultFeatures()
	c.startShutdownSignalListener()
	return nil
}

func (c *Core[B]) prepareDefaultFeatures() {
	c.ActionLocks = &sync.Map{}
}

func (c *Core[B]) AddService(s svc.Service) {
	log.Printf("[INFO] adding service: %s", s.Name())
	c.services = append(c.services, s)
	log.Printf("[INFO] total services: %d", len(c.services))
}

func (c *Core[B]) StartServices() error {
	c.done = make(chan error, len(c.services))
	for _, s := range c.services {
		err := s.Start()
		if err != nil {
			return err
		}
		go func(s svc.Service) {
			err := <-s.Done()
			c.done <- err
		}(s) // pass the loop var to the param. otherwise, they are captured inside goroutine lazily
	}
	return nil
}

func (c *Core[B]) WaitServicesDone() error {
	for i := 0; i < len(c.services); i++ {
		if err := <-c.done; err != nil {
			return err
		}
	}
	return nil
}

func (c *Core[B]) StopServices() {
	for _, s := range c.services {
		s.Stop()
	}
}

var once sync.Once

func (c *Core[B]) startShutdownSignalListener() {
	once.Do(func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			sig := <-sigs
			log.Printf("[INFO] got signal [%s]. shutting down app [%s] ...", sig, c.AppName)
			c.RootCancel() // broadcast to all child services via Context.Done()
		}()
	})
	log.Printf("[INFO][CORE] shutdown signal listener started")
}

func (c *Core[B]) PrepareJobScheduler() {
	c.JobScheduler = schedjobs.NewScheduler(c.RootCtx)
	c.AddService(c.JobScheduler)
}

func (c *Core[B]) PrepareWebService(addr string, router http.Handler) {
	c.WebService = web.NewService(c.RootCtx, addr, router)
	c.AddService(c.WebService)
}

func (c *Core[B]) PrepareThrottleBucketStore(cleanupCycle time.Duration, cleanupOlderThan time.Duration) {
	c.ThrottleBucketStore = throttle.NewBucketStore[B](c.RootCtx, cleanupCycle, cleanupOlderThan)
	c.AddService(c.ThrottleBucketStore)
}

func (c *Core[B]) LoadStorageConf() error {
	confFilePath := filepath.Join(c.AppRoot, "config", ".storages.json")
	confBytes, err := os.ReadFile(confFilePath)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(confBytes, &c.StorageConf); err != nil {
		return err
	}
	return nil
}

func (c *Core[B]) loadKVDBConf() error {
	confFilePath := filepath.Join(c.AppRoot, "config", ".kv-databases.json")
	confBytes, err := os.ReadFile(confFilePath)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(confBytes, &c.KVDBConf); err != nil {
		return err
	}
	return nil
}

func (c *Core[B]) prepareKVDBClient() error {
	switch c.KVDBConf.Type {
	case "redis":
		c.BackendKVDBClient = &redis.Client{Conf: &c.KVDBConf}
		if err := c.BackendKVDBClient.Init(); err != nil {
			return err
		}
	// case "memcached"
	default:
		return errors.New("unsupported key-value database type")
	}
	return nil
}

func (c *Core[B]) loadSQLDBConf() error {
	confFilePath := filepath.Join(c.AppRoot, "config", ".sql-databases.json")
	confBytes, err := os.ReadFile(confFilePath)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(confBytes, &c.SQLDBConf); err != nil {
		return err
	}
	return nil
}

// PrepareConfigStore builds the client-configuration store named by
// config_store. The kvdb and sqldb backings load their own conf files and
// init their clients here.
func (c *Core[B]) PrepareConfigStore() error {
	switch c.ConfigStoreType {
	case "", "memory":
		c.ConfigStore = clientconf.NewMemStore()
	case "kvdb":
		if err := c.loadKVDBConf(); err != nil {
			return err
		}
		if err := c.prepareKVDBClient(); err != nil {
			return err
		}
		c.ConfigStore = clientconf.NewKVStore(c.BackendKVDBClient)
	case "sqldb":
		if err := c.loadSQLDBConf(); err != nil {
			return err
		}
		dbClient, err := sqldb.New(c.SQLDBConf.Type, &c.SQLDBConf)
		if err != nil {
			return err
		}
		c.BackendSQLDBClient = dbClient
		store := clientconf.NewSQLStore(dbClient)
		if err = store.EnsureSchema(c.RootCtx); err != nil {
			return err
		}
		c.ConfigStore = store
	default:
		return fmt.Errorf("unsupported config store type: %s", c.ConfigStoreType)
	}
	log.Printf("[INFO][CORE] config store ready (%s)", c.ConfigStoreType)
	return nil
}

// PrepareRenderPipeline builds the template store, the rasterizer pool and
// the compositor.
// Prerequisite: LoadStorageConf
func (c *Core[B]) PrepareRenderPipeline() error {
	if c.StorageConf.TemplatesDir == "" {
		return errors.New("storage conf not loaded")
	}
	c.TemplateStore = pdfs.NewTemplateStore(c.StorageConf.TemplatesDir)

	provider := &raster.FontProvider{
		RemoteURL: c.Render.FontURL,
	}
	if c.Render.FontFile != "" {
		provider.LocalPath = filepath.Join(c.StorageConf.FontsDir, c.Render.FontFile)
	}
	pool, err := raster.NewPool(c.RootCtx, c.Render.PoolSize, provider)
	if err != nil {
		return err
	}
	c.RasterPool = pool
	c.Composer = pdfs.NewComposer(pool)
	log.Printf("[INFO][CORE] render pipeline ready (pool=%d)", c.Render.PoolSize)
	return nil
}

// PrepareDownloadCipher builds the sealed download token cipher.
func (c *Core[B]) PrepareDownloadCipher() error {
	cipher, err := sec.NewXChaCha20Poly1305CipherBase64([]byte(c.Auth.DownloadKey))
	if err != nil {
		return fmt.Errorf("NewXChaCha20Poly1305Cipher: %v", err)
	}
	c.DownloadCipher = cipher
	return nil
}

// RegisterRetentionJob schedules the nightly sweep that removes generated
// output older than Retention.Days from the output root. Retention.Days 0
// disables the sweep.
// Prerequisite: PrepareJobScheduler, LoadStorageConf
func (c *Core[B]) RegisterRetentionJob() {
	if c.Retention.Days <= 0 {
		log.Println("[INFO][CORE] output retention disabled")
		return
	}
	job := schedjobs.NewEveryMinEmptyCronJob("output-retention")
	job.Minutes = schedjobs.BitsFromMinutes([]int{0})
	job.Hours = schedjobs.BitsFromHours([]int{3})
	outputDir := c.StorageConf.OutputDir
	maxAge := time.Duration(c.Retention.Days) * 24 * time.Hour
	job.Task = func() error {
		return SweepOldOutput(outputDir, maxAge, time.Now())
	}
	c.JobScheduler.AddCronJob(job)
	log.Printf("[INFO][CORE] output retention job registered (%d days)", c.Retention.Days)
}

func (c *Core[B]) ResourceCleanUp() {
	log.Println("[INFO] App Resource Cleaning Up...")
	if c.BackendKVDBClient != nil {
		if err := c.BackendKVDBClient.Close(); err != nil {
			log.Println("[ERROR] Failed to close KV database client")
		}
	}
	if c.BackendSQLDBClient != nil {
		if err := c.BackendSQLDBClient.Close(); err != nil {
			log.Println("[ERROR] Failed to close SQL database client")
		}
	}
	log.Println("[INFO] App Resource Cleanup Complete")
}
