package web

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/zeptools/docforge/svc"
)

const shutdownTimeout = 15 * time.Second

type Service struct {
	Ctx    context.Context    // Service Context
	cancel context.CancelFunc // Service Context CancelFunc
	state  int                // internal service state
	done   chan error         // Shutdown Error Channel
	Server *http.Server
}

// Ensure web.Service implements svc.Service
var _ svc.Service = (*Service)(nil)

func NewService(parentCtx context.Context, addr string, router http.Handler) *Service {
	svcCtx, svcCancel := context.WithCancel(parentCtx)
	return &Service{
		Ctx:    svcCtx,
		cancel: svcCancel,
		state:  svc.StateREADY,
		done:   make(chan error, 1),
		Server: &http.Server{
			Addr:    addr,
			Handler: router,
		},
	}
}

func (s *Service) Name() string {
	return "WebService"
}

func (s *Service) Start() error {
	if s.state != svc.StateREADY {
		return errors.New("cannot start. not ready")
	}
	s.state = svc.StateRUNNING
	go func() {
		log.Printf("[INFO][Web] listening on %s ...", s.Server.Addr)
		if err := s.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.done <- err
			return
		}
		s.done <- nil
	}()
	go func() {
		// Server Shutdown on service context cancellation
		// Stops accepting new requests immediately;
		// requests already being processed get shutdownTimeout to finish
		<-s.Ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := s.Server.Shutdown(shutdownCtx); err != nil {
			log.Printf("[ERROR][Web] server shutdown failed: %v", err)
		}
	}()
	return nil
}

func (s *Service) Stop() {
	if s.state != svc.StateRUNNING {
		log.Println("[ERROR][Web] cannot stop. not running")
		return
	}
	s.cancel()
	s.state = svc.StateSTOPPED
	log.Println("[INFO][Web] service stopped")
}

func (s *Service) Done() <-chan error {
	return s.done
}
