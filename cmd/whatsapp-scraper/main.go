package main

import (
	"fmt"
	"os"

	"github.com/tattle-made/whatsapp-scraper/internal/logger"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		logger.Close()
		os.Exit(1)
	}
	logger.Close()
}
