package main

import (
	"log"

	"go.uber.org/zap"
)

func main() {
	srv, err := NewServer()
	if err != nil {
		log.Fatalf("server init failed: %v", err)
	}

	if err := srv.Run(); err != nil {
		srv.Logger.Fatal("server run error", zap.Error(err))
	}
}
