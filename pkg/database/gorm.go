package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tigernone/corpusqa/internal/model"
)

type GormConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func getLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  true,
		},
	)
}

func configureConnectionPool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return nil
}

func NewGormDB(cfg GormConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.DBName, cfg.Port, cfg.SSLMode)
	return NewGormDBFromDSN(dsn)
}

func NewGormDBFromDSN(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: getLogger(),
	})
	if err != nil {
		return nil, err
	}

	if err := configureConnectionPool(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate prepares the schema: the pgvector extension, the tables, the
// generated 'simple'-configuration tsvector column, and the GIN and IVFFlat
// indexes the retrieval levels query through.
func Migrate(db *gorm.DB) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("creating vector extension: %w", err)
	}

	if err := db.AutoMigrate(&model.Document{}, &model.Sentence{}); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}

	// The generated column uses 'simple' so stopwords survive indexing;
	// phrase matches on function words ("heaven is") depend on it.
	stmts := []string{
		`ALTER TABLE sentences DROP COLUMN IF EXISTS search_vector`,
		`ALTER TABLE sentences ADD COLUMN search_vector tsvector
			GENERATED ALWAYS AS (to_tsvector('simple', content)) STORED`,
		`CREATE INDEX IF NOT EXISTS idx_sentences_search_vector
			ON sentences USING gin (search_vector)`,
		`CREATE INDEX IF NOT EXISTS idx_sentences_embedding
			ON sentences USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("preparing search indexes: %w", err)
		}
	}
	return nil
}
