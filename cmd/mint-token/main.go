package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/raushankrgupta/product-page-generator/config"
	"github.com/raushankrgupta/product-page-generator/utils"
)

func main() {
	subject := flag.String("subject", "admin", "token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	token, err := utils.GenerateToken(cfg.JWTSecret, *subject, *ttl)
	if err != nil {
		log.Fatalf("Failed to mint token: %v", err)
	}
	fmt.Println(token)
}
