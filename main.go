package main

import (
	"log"

	api "motelaudit-backend/cmd/api"
	chatDelivery "motelaudit-backend/internal/chat/delivery"
	chatUsecase "motelaudit-backend/internal/chat/usecase"
	reportDelivery "motelaudit-backend/internal/report/delivery"
	"motelaudit-backend/internal/report/domain"
	"motelaudit-backend/internal/report/parser"
	"motelaudit-backend/internal/report/repository"
	reportUsecase "motelaudit-backend/internal/report/usecase"
	"motelaudit-backend/pkg/chroma"
	"motelaudit-backend/pkg/config"
	"motelaudit-backend/pkg/database"
	"motelaudit-backend/pkg/gmail"
	"motelaudit-backend/pkg/openai"
	"motelaudit-backend/pkg/textract"
	"motelaudit-backend/pkg/whitelist"
)

func main() {
	cfg := config.Load()

	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&domain.Motel{},
		&domain.Report{},
		&domain.VacantDirtyRoom{},
		&domain.OutOfOrderRoom{},
		&domain.CompRoom{},
		&domain.Incident{},
		&domain.TokenUsage{},
		&domain.IngestRun{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Repositories
	reportRepo := repository.NewReportRepository(db)
	motelRepo := repository.NewMotelRepository(db)
	usageRepo := repository.NewUsageRepository(db)
	runRepo := repository.NewIngestRunRepository(db)

	// Mailbox reading with sender trust filtering
	wl := whitelist.New(cfg.WhitelistPath)
	gmailService := gmail.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GmailTokenPath, wl)

	// Model client; the regex parser keeps ingestion working without a key
	var openaiService *openai.Service
	var reportParser parser.Parser = parser.NewRegexParser()
	if cfg.OpenAIAPIKey != "" {
		openaiService = openai.NewService(cfg.OpenAIAPIKey)
		reportParser = parser.NewOpenAIParser(openaiService, usageRepo)
	} else {
		log.Println("Warning: OPENAI_API_KEY not set. Using regex parsing; OCR and chat are disabled.")
	}

	var ocrClient *textract.OCRClient
	if openaiService != nil {
		ocrClient = textract.NewOCRClient(openaiService, usageRepo)
	}
	extractor := textract.NewExtractor(ocrClient)

	// Vector index is optional; ingestion and reads work without it
	var indexUsecase *reportUsecase.IndexUsecase
	var chatUc *chatUsecase.ChatUsecase
	if cfg.ChromaAPIKey != "" && openaiService != nil {
		chromaClient, err := chroma.NewClient(cfg)
		if err != nil {
			log.Printf("Warning: Failed to initialize Chroma client: %v. Indexing and chat will not be available.", err)
		} else {
			indexUsecase = reportUsecase.NewIndexUsecase(chromaClient, openaiService, usageRepo, reportRepo, cfg.ReindexBatchSize, cfg.ReindexBatchDelay)
			chatUc = chatUsecase.NewChatUsecase(chromaClient, openaiService, openaiService, usageRepo)
			log.Println("Chroma client initialized successfully")
		}
	} else {
		log.Println("Warning: CHROMA_API_KEY or OPENAI_API_KEY not set. Indexing and chat will not be available.")
	}

	ingestUsecase := reportUsecase.NewIngestUsecase(
		gmailService,
		extractor,
		reportParser,
		reportRepo,
		runRepo,
		indexUsecase,
		cfg.IndexOnIngest,
	)

	reportHandler := reportDelivery.NewReportHandler(ingestUsecase, indexUsecase, reportRepo, motelRepo, usageRepo, runRepo)
	chatHandler := chatDelivery.NewChatHandler(chatUc)

	handler := api.NewHandler(cfg, reportHandler, chatHandler)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
