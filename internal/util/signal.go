package util

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/QwQ3213/ACELimiter/internal/logging"
)

// ShutdownHandler manages graceful application shutdown
type ShutdownHandler struct {
	shutdownFuncs []func() error
	timeout       time.Duration
	logger        *logging.Logger
	once          sync.Once
	mu            sync.Mutex
	shutdownChan  chan os.Signal
	done          chan struct{}

	// Exit is called after the shutdown functions ran; nil leaves the process running
	Exit func(code int)
}

// NewShutdownHandler creates a new shutdown handler
func NewShutdownHandler(logger *logging.Logger, timeout time.Duration) *ShutdownHandler {
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &ShutdownHandler{
		shutdownFuncs: make([]func() error, 0),
		timeout:       timeout,
		logger:        logger,
		shutdownChan:  make(chan os.Signal, 1),
		done:          make(chan struct{}),
	}
}

// RegisterShutdownFunc registers a function to be called during shutdown.
// Functions run in reverse registration order.
func (h *ShutdownHandler) RegisterShutdownFunc(f func() error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shutdownFuncs = append(h.shutdownFuncs, f)
}

// HandleShutdown starts handling OS signals for graceful shutdown
func (h *ShutdownHandler) HandleShutdown() {
	signal.Notify(h.shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-h.shutdownChan:
			h.logger.Infof("Received signal %v, initiating graceful shutdown", sig)
			h.Shutdown()
		case <-h.done:
		}
	}()
}

// Done is closed once Shutdown has finished
func (h *ShutdownHandler) Done() <-chan struct{} {
	return h.done
}

// Shutdown executes all registered shutdown functions with a timeout.
// Only the first call has any effect.
func (h *ShutdownHandler) Shutdown() {
	h.once.Do(func() {
		signal.Stop(h.shutdownChan)

		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()

		h.mu.Lock()
		funcs := append([]func() error(nil), h.shutdownFuncs...)
		h.mu.Unlock()

		finished := make(chan struct{})
		go func() {
			for i := len(funcs) - 1; i >= 0; i-- {
				if err := funcs[i](); err != nil {
					h.logger.Errorf("Error during shutdown: %v", err)
				}
			}
			close(finished)
		}()

		select {
		case <-finished:
			h.logger.Info("Graceful shutdown completed")
		case <-ctx.Done():
			h.logger.Warn("Shutdown timed out")
		}

		close(h.done)

		if h.Exit != nil {
			h.Exit(0)
		}
	})
}
