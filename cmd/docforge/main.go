package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/zeptools/docforge/conf"
	"github.com/zeptools/docforge/handlers"
	"github.com/zeptools/docforge/routing"
	"github.com/zeptools/docforge/throttle"
)

func main() {
	appRoot, err := resolveAppRoot()
	if err != nil {
		log.Fatalf("[ERROR] resolving app root: %v", err)
	}

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	core := &conf.Core[string]{}
	if err = core.BaseInit(appRoot, rootCtx, rootCancel); err != nil {
		log.Fatalf("[ERROR] core init: %v", err)
	}
	if err = core.LoadStorageConf(); err != nil {
		log.Fatalf("[ERROR] storage conf: %v", err)
	}
	if err = core.PrepareConfigStore(); err != nil {
		log.Fatalf("[ERROR] config store: %v", err)
	}
	if err = core.PrepareRenderPipeline(); err != nil {
		log.Fatalf("[ERROR] render pipeline: %v", err)
	}
	if err = core.PrepareDownloadCipher(); err != nil {
		log.Fatalf("[ERROR] download cipher: %v", err)
	}

	core.PrepareJobScheduler()
	core.RegisterRetentionJob()
	core.PrepareThrottleBucketStore(10*time.Minute, time.Hour)
	core.ThrottleBucketStore.SetBucketGroup("render", &throttle.BucketConf{
		Burst:     core.Throttle.Burst,
		Increment: core.Throttle.Increment,
		Period:    time.Duration(core.Throttle.PeriodSec) * time.Second,
	})

	api := &handlers.API{
		Templates:      core.TemplateStore,
		Configs:        core.ConfigStore,
		Composer:       core.Composer,
		OutputDir:      core.StorageConf.OutputDir,
		ActionLocks:    core.ActionLocks,
		DownloadCipher: core.DownloadCipher,
		DownloadTTL:    time.Duration(core.Auth.DownloadTTLMin) * time.Minute,
		BatchDeadline:  time.Duration(core.Render.BatchDeadlineMin) * time.Minute,
	}

	router := &routing.BaseRouter{ServeMux: http.NewServeMux()}
	api.RegisterRoutes(router,
		&handlers.AuthWrapper{Secret: []byte(core.Auth.JWTSecret), Enabled: core.Auth.Enabled},
		&handlers.ThrottleWrapper{Store: core.ThrottleBucketStore, GroupID: "render"},
	)
	core.PrepareWebService(core.Listen, router)

	if err = core.StartServices(); err != nil {
		log.Fatalf("[ERROR] starting services: %v", err)
	}
	log.Printf("[INFO] %s up", core.AppName)

	err = core.WaitServicesDone()
	core.StopServices()
	core.ResourceCleanUp()
	if err != nil {
		log.Fatalf("[ERROR] service failure: %v", err)
	}
	log.Printf("[INFO] %s shut down cleanly", core.AppName)
}

func resolveAppRoot() (string, error) {
	if root := os.Getenv("DOCFORGE_ROOT"); root != "" {
		return root, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}
