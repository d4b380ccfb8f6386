package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/gradekeeper/internal/server"
)

func main() {

	ctx := context.Background()

	if err := server.Main(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}
