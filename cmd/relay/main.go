package main

import (
	"context"

	"github.com/DikaaDK/Chronos-sub000/internal/server"
	"github.com/DikaaDK/Chronos-sub000/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	server.NewApp(cfg).Run(ctx)

}
