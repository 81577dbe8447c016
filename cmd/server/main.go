package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/leon37/RizalLamp/internal/api"
	"github.com/leon37/RizalLamp/internal/api/controller"
	"github.com/leon37/RizalLamp/internal/config"
	"github.com/leon37/RizalLamp/internal/infrastructure/database"
	"github.com/leon37/RizalLamp/internal/infrastructure/embedding"
	"github.com/leon37/RizalLamp/internal/infrastructure/llm"
	"github.com/leon37/RizalLamp/internal/infrastructure/vectordb"
	"github.com/leon37/RizalLamp/internal/logging"
	"github.com/leon37/RizalLamp/internal/metrics"
	"github.com/leon37/RizalLamp/internal/model"
	"github.com/leon37/RizalLamp/internal/repository"
	"github.com/leon37/RizalLamp/internal/service"
)

func main() {
	// .env 不存在也没关系，线上直接用环境变量
	_ = godotenv.Load()

	conf, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	// 缺 key 或集合名直接退出，不等到第一次请求才报错
	if err := conf.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	// 1. 初始化 Logger
	logging.Setup(conf.Log)
	slog.Info("RizalLamp starting", "memory_backend", conf.Memory.Backend, "llm_provider", conf.LLM.Provider)

	metrics.SetEnabled(conf.Metrics.Enabled)
	if conf.Metrics.Enabled {
		metrics.Register()
	}

	// 2. Infra Initialization
	var embedder embedding.Provider = embedding.NewOpenAIClient(conf.Embedding.APIKey, conf.Embedding.BaseURL, conf.Embedding.Model)
	if conf.Embedding.CacheSize > 0 {
		cached, err := embedding.NewCachedProvider(embedder, conf.Embedding.Model, conf.Embedding.CacheSize)
		if err != nil {
			log.Fatalf("failed to init embedding cache: %v", err)
		}
		defer cached.Close()
		embedder = cached
	}

	llmClient, err := llm.New(conf.LLM.Provider, conf.LLM.APIKey, conf.LLM.BaseURL)
	if err != nil {
		log.Fatalf("failed to init llm client: %v", err)
	}

	var memoryRepo repository.MemoryRepo
	switch conf.Memory.Backend {
	case config.BackendChromem:
		db, err := vectordb.NewChromemDB(conf.Chromem.Path, conf.Chromem.Compress)
		if err != nil {
			log.Fatalf("failed to init chromem: %v", err)
		}
		memoryRepo, err = vectordb.NewChromemRepository(db, conf.Memory.CollectionName)
		if err != nil {
			log.Fatalf("failed to init chromem collection: %v", err)
		}
	default:
		vecClient, err := vectordb.NewQdrantClient(vectordb.QdrantOptions{
			Host:   conf.Qdrant.Host,
			Port:   conf.Qdrant.Port,
			APIKey: conf.Qdrant.APIKey,
			UseTLS: conf.Qdrant.UseTLS,
		})
		if err != nil {
			log.Fatalf("failed to init vector db: %v", err)
		}
		defer vecClient.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = vecClient.InitCollection(ctx, conf.Memory.CollectionName, conf.Memory.VectorSize)
		cancel()
		if err != nil {
			// 集合建不起来直接退出，防止后续请求全部失败
			log.Fatalf("failed to init qdrant collection: %v", err)
		}
		memoryRepo = vectordb.NewQdrantRepository(vecClient, conf.Memory.CollectionName)
	}

	var exchanges repository.ExchangeRepo = repository.NopExchangeRepo{}
	if conf.Database.DSN != "" {
		db, err := database.NewConnection(conf.Database.Driver, conf.Database.DSN, conf.Server.Mode == gin.DebugMode)
		if err != nil {
			log.Fatalf("failed to connect database: %v", err)
		}
		exchanges = repository.NewExchangeRepo(db)
	}

	persona := model.DefaultPersona()
	if conf.Persona.Name != "" || conf.Persona.ScriptFile != "" {
		persona, err = model.LoadPersona(conf.Persona.Name, conf.Persona.ScriptFile)
		if err != nil {
			log.Fatalf("failed to load persona: %v", err)
		}
	}

	// 3. Layer Wiring (依赖注入)
	responder := service.NewPersonaResponder(llmClient, persona, service.ResponderOptions{
		Model:       conf.LLM.Model,
		Temperature: conf.LLM.Temperature,
		MaxTokens:   conf.LLM.MaxTokens,
	})
	gate := service.NewRelevanceGate(llmClient, persona, service.GateOptions{
		Model:     conf.LLM.GateModel,
		MaxTokens: conf.LLM.GateMaxTokens,
	})
	svc := service.NewConversationService(embedder, memoryRepo, responder, gate, exchanges, persona, service.ConversationOptions{
		TopK:           conf.Memory.TopK,
		Mode:           service.PersistMode(conf.Memory.PersistMode),
		PersistTimeout: conf.Memory.PersistTimeout,
	})

	// 4. Server Start
	gin.SetMode(conf.Server.Mode)
	r := api.NewEngine()
	api.RegisterRoutes(r, controller.NewChatController(svc))

	srv := &http.Server{
		Addr:         conf.Server.Port,
		Handler:      r,
		ReadTimeout:  conf.Server.ReadTimeout,
		WriteTimeout: conf.Server.WriteTimeout,
	}

	go func() {
		slog.Info("RizalLamp web server listening", "port", conf.Server.Port, "persona", persona.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
	// 等后台的记忆写入落盘
	svc.Wait()
	slog.Info("server exited")
}
