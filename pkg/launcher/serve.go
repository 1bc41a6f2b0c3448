package launcher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/schardosin/docqa/pkg/api"
	"github.com/schardosin/docqa/pkg/config"
	"github.com/schardosin/docqa/pkg/document"
	"github.com/schardosin/docqa/pkg/knowledge"
	"github.com/schardosin/docqa/pkg/provider"
	"github.com/schardosin/docqa/pkg/rag"
)

// completionTimeout bounds each call to the language model
const completionTimeout = 30 * time.Second

// ServeConfig contains configuration for the document QA backend
type ServeConfig struct {
	AppConfig *config.AppConfig
	// Port overrides server.port when non-zero
	Port int
}

// NewRouter wires the processor, store and answer engine into an API router
func NewRouter(cfg *config.AppConfig) (*mux.Router, error) {
	srv := cfg.Server

	llm, err := provider.NewClient(srv.Provider, cfg, completionTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize provider: %w", err)
	}
	model, err := provider.ResolveModel(srv.Provider, srv.Model)
	if err != nil {
		return nil, err
	}

	store, err := knowledge.NewStore(srv.KnowledgeBaseDir)
	if err != nil {
		return nil, err
	}

	engine := rag.NewEngine(llm, model, rag.WithTopK(srv.TopK))
	handler, err := api.NewHandler(
		document.NewProcessor(srv.ChunkSize, srv.ChunkOverlap),
		store,
		engine,
		srv.UploadDir,
		int64(srv.MaxUploadMB)<<20,
	)
	if err != nil {
		return nil, err
	}

	router := mux.NewRouter()
	handler.RegisterRoutes(router)

	log.Printf("backend using %s (model: %s)", provider.GetProviderDisplayName(srv.Provider), model)
	return router, nil
}

// RunServe starts the backend and blocks until ctx is cancelled or the
// listener fails
func RunServe(ctx context.Context, cfg *ServeConfig) error {
	config.SetupAllProviderEnv(cfg.AppConfig)

	router, err := NewRouter(cfg.AppConfig)
	if err != nil {
		return err
	}

	port := cfg.Port
	if port == 0 {
		port = cfg.AppConfig.Server.Port
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	fmt.Printf("\n")
	fmt.Printf("  📄 DocQA backend is running!\n")
	fmt.Printf("\n")
	fmt.Printf("  ➜  Local:   http://localhost:%d\n", port)
	fmt.Printf("\n")
	fmt.Printf("  Press Ctrl+C to stop\n")
	fmt.Printf("\n")

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
