package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/DriftwoodCreative/pulsetrack-go/internal/application/startup"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/security"
)

func main() {
	generateSecret := flag.Bool("generate-secret", false, "print a fresh JWT_SECRET value and exit")
	flag.Parse()

	if *generateSecret {
		secret, err := security.GenerateSecureKey(64)
		if err != nil {
			log.Fatalf("Failed to generate secret: %v", err)
		}
		fmt.Printf("JWT_SECRET=%s\n", secret)
		os.Exit(0)
	}

	if err := startup.Initialize(); err != nil {
		log.Fatalf("Application startup failed: %v", err)
	}

	log.Println("Application has shut down gracefully.")
}
