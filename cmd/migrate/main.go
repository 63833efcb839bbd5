package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"conectaloja/config"
	"conectaloja/internal/pkg/database"
	"conectaloja/internal/pkg/logger"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)
	if envErr != nil {
		log.Warn("Arquivo .env não encontrado. Usando apenas variáveis do ambiente.", nil)
	}

	var migrationsDir string
	flag.StringVar(&migrationsDir, "dir", "./sql", "diretório com os arquivos de migração")
	flag.Parse()

	db, err := database.NewPostgresDB(context.Background(), cfg.DatabaseURL, database.PoolConfig{MaxOpenConns: 1, MaxIdleConns: 1}, cfg.DBTimeout, log)
	if err != nil {
		log.Fatal("goose: falha ao conectar ao banco.", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal("goose: dialeto não suportado.", err)
	}
	goose.SetLogger(goose.NopLogger())

	arguments := flag.Args()
	if len(arguments) == 0 {
		arguments = []string{"up"}
	}
	command, args := arguments[0], arguments[1:]

	if err := goose.Run(command, db, migrationsDir, args...); err != nil {
		log.Fatal(fmt.Sprintf("goose %s falhou.", command), err)
	}

	log.Info("Migração concluída.", map[string]interface{}{"command": command, "dir": migrationsDir})
}
