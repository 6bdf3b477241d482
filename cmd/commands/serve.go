package commands

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/jlewi/qline/pkg/appconfig"
	"github.com/jlewi/qline/pkg/controller"
	"github.com/jlewi/qline/pkg/dispatcher"
	"github.com/jlewi/qline/pkg/eventqueue"
	ghprovider "github.com/jlewi/qline/pkg/provider/github"
	"github.com/jlewi/qline/pkg/webhook"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// queueCapacity bounds how many unprocessed events the webhook receiver
// will buffer before returning 503 (spec.md §9's backpressure decision).
const queueCapacity = 256

// NewServeCmd starts the webhook receiver and the Dispatcher loop. It
// enqueues an Initialize event (clone every repository the installation can
// see) before binding, so those clones run before any webhook event is
// processed; the HTTP server itself starts accepting requests right away
// (spec.md §4.8).
func NewServeCmd() *cobra.Command {
	var addr string
	var baseDir string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the qline webhook receiver",
		Run: func(cmd *cobra.Command, args []string) {
			log := zapr.NewLogger(zap.L())
			if err := serve(addr, baseDir, log); err != nil {
				log.Error(err, "server aborted with error")
				os.Exit(1)
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Address to bind; defaults to the QLINE_ADDRESS env var or :8080")
	cmd.Flags().StringVar(&baseDir, "base-dir", "/tmp/qline", "Directory working copies are cloned into")
	return cmd
}

func serve(addr, baseDir string, log logr.Logger) error {
	appCfg, err := appconfig.Load(os.Getenv)
	if err != nil {
		return errors.Wrap(err, "failed to load app configuration")
	}
	if addr != "" {
		appCfg.Address = addr
	}

	adapter, err := ghprovider.New(appCfg.AppID, appCfg.InstallationID, appCfg.PrivateKey, log)
	if err != nil {
		return errors.Wrap(err, "failed to build GitHub provider")
	}

	ctrl := controller.New(adapter, adapter.Token, baseDir, log)
	queue := eventqueue.New(queueCapacity)
	disp := dispatcher.New(queue, ctrl, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := disp.Run(ctx); err != nil && err != context.Canceled {
			log.Error(err, "dispatcher loop exited with error")
		}
	}()

	if !queue.TryPush(queue.Initialize("startup")) {
		log.Info("event queue was full at startup, skipping initial clone")
	}

	handler := webhook.NewHandler(queue, adapter, log)
	router := webhook.NewRouter(handler, appCfg.WebhookSecret, queue, log)
	httpServer := &http.Server{Addr: appCfg.Address, Handler: router}

	trapInterrupt(httpServer, queue, cancel, log)

	log.Info("binding", "addr", appCfg.Address)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "server aborted with error")
	}
	return nil
}

// trapInterrupt shuts the HTTP server down and stops the dispatcher loop
// once the operator sends SIGINT, mirroring the teacher's own signal
// handling in pkg/ghapp/server.go.
func trapInterrupt(srv *http.Server, queue *eventqueue.Queue, cancel context.CancelFunc, log logr.Logger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigs
		log.Info("received shutdown signal", "signal", sig.String())
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error(err, "error shutting down HTTP server")
		}
		queue.TryPush(queue.Stop("shutdown"))
		cancel()
	}()
}
