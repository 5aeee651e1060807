package main

import (
	"log"

	"pitch-backend/internal/llm/openai"
	"pitch-backend/internal/pitch"
	"pitch-backend/internal/shared/config"
	"pitch-backend/internal/shared/server"
	"pitch-backend/internal/transcribe"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	client, err := openai.NewClient(openai.Config{
		Endpoint:        cfg.AzureOpenAIEndpoint,
		APIKey:          cfg.AzureOpenAIKey,
		Deployment:      cfg.AzureOpenAIDeployment,
		APIVersion:      cfg.AzureOpenAIAPIVersion,
		TranscribeURL:   cfg.TranscribeURL,
		TranscribeKey:   cfg.OpenAIAPIKey,
		TranscribeModel: cfg.TranscribeModel,
	})
	if err != nil {
		log.Fatalf("llm client: %v", err)
	}

	r := server.NewRouter(server.RouterDeps{
		Config:     cfg,
		Pitch:      pitch.NewHandler(client),
		Transcribe: transcribe.NewHandler(client),
	})

	addr := server.Addr(cfg.Port)
	log.Printf("Starting API server on %s", addr)

	if err := r.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
