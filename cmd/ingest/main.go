package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"travel-assistant-be/internal/config"
	"travel-assistant-be/internal/entity"
	"travel-assistant-be/internal/model"
	"travel-assistant-be/internal/repository/implementation"
	"travel-assistant-be/pkg/database"
	"travel-assistant-be/pkg/embedding"
	"travel-assistant-be/pkg/utils"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// Offline ingestion tool: reads a plain-text policy manual (pages separated
// by form feed), chunks, embeds and stores everything synchronously. Meant
// for seeding the corpus before the service goes live.
func main() {
	filePath := flag.String("file", "", "path to the policy manual text file")
	sourceFile := flag.String("source", "", "source name stored with each chunk (defaults to file name)")
	section := flag.String("section", "", "section label applied to all pages (default: detected per page)")
	replace := flag.Bool("replace", false, "delete previously ingested chunks of this source first")
	flag.Parse()

	if *filePath == "" {
		log.Fatal("Error: -file is required")
	}
	if *sourceFile == "" {
		*sourceFile = filepath.Base(*filePath)
	}

	cfg := config.Load()

	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		log.Fatal("Error: Failed to ensure pgvector extension:", err)
	}
	if err := db.AutoMigrate(&model.PolicyChunk{}); err != nil {
		log.Fatal("Error: Failed to migrate policy_chunks:", err)
	}

	var embedder embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embedder = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	} else {
		embedder = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
	}

	repo := implementation.NewPolicyChunkRepository(db)
	ctx := context.Background()

	raw, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatal("Error: Failed to read file:", err)
	}

	if *replace {
		if err := repo.DeleteBySourceFile(ctx, *sourceFile); err != nil {
			log.Fatal("Error: Failed to delete previous chunks:", err)
		}
		color.Yellow("Removed previously ingested chunks of %s", *sourceFile)
	}

	pages := strings.Split(string(raw), "\f")
	color.Cyan("Ingesting %s: %d page(s)", *sourceFile, len(pages))

	totalChunks := 0
	for pageIdx, page := range pages {
		page = strings.TrimSpace(page)
		if page == "" {
			continue
		}

		pageNumber := pageIdx + 1
		pageSection := *section
		if pageSection == "" {
			pageSection = detectSection(page)
		}
		chunks := utils.SplitText(page, cfg.Rag.ChunkSize, cfg.Rag.ChunkOverlap)

		entities := make([]*entity.PolicyChunk, 0, len(chunks))
		for i, chunk := range chunks {
			res, err := embedder.Generate(ctx, chunk, "RETRIEVAL_DOCUMENT")
			if err != nil {
				log.Fatalf("Error: Failed to embed page %d chunk %d: %v", pageNumber, i, err)
			}

			entities = append(entities, &entity.PolicyChunk{
				Id:         uuid.New(),
				Content:    chunk,
				Embedding:  res.Embedding.Values,
				SourceFile: *sourceFile,
				Page:       pageNumber,
				Section:    pageSection,
				ChunkIndex: i,
				CreatedAt:  time.Now(),
			})
		}

		if err := repo.CreateBulk(ctx, entities); err != nil {
			log.Fatalf("Error: Failed to store page %d: %v", pageNumber, err)
		}

		totalChunks += len(entities)
		color.Green("  page %d: %d chunk(s) stored", pageNumber, len(entities))
	}

	color.Green("✅ Done: %d chunk(s) ingested from %s", totalChunks, *sourceFile)
}

// detectSection takes the first short non-table line of a page as its
// section heading. Table rows (pipe-delimited) and long paragraphs do not
// qualify.
func detectSection(page string) string {
	for _, line := range strings.Split(page, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, "|") {
			continue
		}
		if len([]rune(line)) <= 80 {
			return line
		}
		return ""
	}
	return ""
}
