package dto

type HealthResponse struct {
	Status         string `json:"status"`
	RedisConnected bool   `json:"redis_connected"`
	CorpusLoaded   bool   `json:"corpus_loaded"`
	Version        string `json:"version"`
}
