package main

//go:generate swag init -g cmd/server/main.go -o docs

// @title           GrowDash API
// @version         1.0.0
// @description     Tradebook ingestion, performance analytics, and the AI copilot.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
