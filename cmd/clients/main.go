package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/letsco/splithub/db"
	"github.com/letsco/splithub/lib/logging"
	"github.com/letsco/splithub/lib/service"
)

// creates an API client and prints its credentials once
func main() {
	clientID := flag.String("client-id", "", "login of the new API client")
	secret := flag.String("secret", "", "secret of the new API client, generated when empty")
	flag.Parse()

	c := &service.Config{}

	err := godotenv.Load(".env")
	if err != nil {
		fmt.Println("Failed to load .env file")
	}
	err = envconfig.Process("", c)
	if err != nil {
		log.Fatalf("Error loading environment variables: %v", err)
	}

	logger := logging.Logger(c.LogFilePath)

	ledger, _, err := db.OpenStore(c)
	if err != nil {
		logger.Fatalf("Error initializing db connection: %v", err)
	}
	defer ledger.Close()

	svc := service.NewSplithubService(c, ledger, nil, logger)
	client, plainSecret, err := svc.CreateClient(context.Background(), *clientID, *secret)
	if err != nil {
		logger.Fatalf("Error creating client: %v", err)
	}

	fmt.Printf("client id:     %s\n", client.ClientID)
	fmt.Printf("client secret: %s\n", plainSecret)
}
