// stafftoken выпускает JWT для сотрудника кассы. Вход по паролю в сервисе
// не реализован, токены выдаются этой утилитой.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/linemk/pos-orders/internal/config"
	security "github.com/linemk/pos-orders/internal/jwt-new"
)

func main() {
	var staffID string
	var ttl time.Duration
	flag.StringVar(&staffID, "staff", "", "staff identifier written to the sub claim")
	flag.DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	_ = godotenv.Load()
	path := config.ResolvePath(configPath)
	if path == "" {
		log.Fatal("config path is not set: use -config or CONFIG_PATH")
	}
	cfg := config.MustLoadByPath(path)

	token, err := security.NewStaffToken(staffID, cfg.JWT.Secret, ttl)
	if err != nil {
		log.Fatalf("failed to issue token: %v", err)
	}
	fmt.Println(token)
}
