package dto

import "time"

type ChatRequest struct {
	Message  string `json:"message"`
	Language string `json:"language"`
}

type ChatResponse struct {
	Response    string    `json:"response"`
	Images      []string  `json:"images,omitempty"`
	Suggestions []string  `json:"suggestions,omitempty"`
	Topic       string    `json:"topic,omitempty"`
	Language    string    `json:"language"`
	Timestamp   time.Time `json:"timestamp"`
}

type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
	Topic       string   `json:"topic"`
	Language    string   `json:"language"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
