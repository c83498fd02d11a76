package main

import (
	"context"
	"log"

	"github.com/sugarloaf/cakecart/internal/app/api"
)

func main() {
	if err := api.Run(context.Background()); err != nil {
		log.Fatalf("cart API exited: %v", err)
	}
}
