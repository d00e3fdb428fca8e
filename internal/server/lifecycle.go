// Package server provides application lifecycle management for the simulation
// daemon: ordered startup, signal handling, and reverse-order shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is a long-running component of the daemon.
type Service interface {
	// Start runs the service and blocks until it stops or fails.
	Start() error
	// Stop requests a graceful stop; Start must return shortly after.
	Stop()
}

// FuncService adapts a start/stop function pair into a Service.
type FuncService struct {
	StartFn func() error
	StopFn  func()
}

// Start implements Service.
func (f *FuncService) Start() error { return f.StartFn() }

// Stop implements Service.
func (f *FuncService) Stop() { f.StopFn() }

// Lifecycle starts registered services in order, waits for a termination
// signal or a service failure, and stops services in reverse order.
type Lifecycle struct {
	mu       sync.Mutex
	log      *zap.Logger
	services []namedService
}

type namedService struct {
	name string
	svc  Service
}

// NewLifecycle creates a Lifecycle.
//
// Precondition: log must not be nil.
func NewLifecycle(log *zap.Logger) *Lifecycle {
	if log == nil {
		panic("server.NewLifecycle: log must not be nil")
	}
	return &Lifecycle{log: log}
}

// Add registers a named service. Services start in registration order and
// stop in reverse order.
//
// Precondition: name must be non-empty; svc must not be nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services = append(l.services, namedService{name: name, svc: svc})
}

// Run starts every service and blocks until SIGINT/SIGTERM, context
// cancellation, or the first service failure, then shuts everything down.
//
// Postcondition: every service's Stop has been called when Run returns.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	failures := make(chan error, len(l.services))
	for _, ns := range l.services {
		ns := ns
		go func() {
			l.log.Info("starting service", zap.String("service", ns.name))
			if err := ns.svc.Start(); err != nil {
				failures <- fmt.Errorf("service %s: %w", ns.name, err)
				cancel()
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		l.log.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case runErr = <-failures:
		l.log.Error("service failed, shutting down", zap.Error(runErr))
	case <-ctx.Done():
		l.log.Info("context cancelled, shutting down")
	}

	for i := len(l.services) - 1; i >= 0; i-- {
		ns := l.services[i]
		stopStart := time.Now()
		ns.svc.Stop()
		l.log.Info("service stopped",
			zap.String("service", ns.name),
			zap.Duration("elapsed", time.Since(stopStart)),
		)
	}

	l.log.Info("shutdown complete", zap.Duration("uptime", time.Since(start)))
	return runErr
}
