package main

import (
	"log"

	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ appstore failed to start: %v", err)
	}
}
