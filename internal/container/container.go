package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/medli/medli-api/config"
	"github.com/medli/medli-api/internal/application"
	"github.com/medli/medli-api/internal/infrastructure/archive"
	pginfra "github.com/medli/medli-api/internal/infrastructure/postgres"
	"github.com/medli/medli-api/internal/infrastructure/search"
	"github.com/medli/medli-api/pkg/helpers"
	mailtpl "github.com/medli/medli-api/pkg/mailer/templates"
)

// Container carries the constructed infrastructure the router wires modules from.
// Rabbit, ES and GCS are optional and stay nil when their backend is not configured.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	DB     pginfra.DB
	Redis  *redis.Client
	JWT    *helpers.JWTManager

	Rabbit *helpers.RabbitPublisher
	ES     *elasticsearch.Client
	GCS    *storage.Client
}

// Publisher returns the email job publisher, or nil when RabbitMQ is off.
func (c *Container) Publisher() application.Publisher {
	if c.Rabbit == nil {
		return nil
	}
	return c.Rabbit
}

// RecordingIndex returns the Elasticsearch recording index, or nil when ES is off.
func (c *Container) RecordingIndex() application.RecordingIndex {
	if c.ES == nil {
		return nil
	}
	return search.NewRecordingIndex(c.ES, c.Config.ESRecordingsIndex)
}

// ExportArchiver returns the GCS export archiver, or nil when no bucket is configured.
func (c *Container) ExportArchiver() application.ExportArchiver {
	if c.GCS == nil || c.Config.GCSBucket == "" {
		return nil
	}
	return archive.NewGCSExportArchiver(c.GCS, c.Config.GCSBucket)
}

// Brand is the sender identity rendered into notification emails.
func (c *Container) Brand() mailtpl.Brand {
	return mailtpl.Brand{
		AppName:        "Medli",
		CompanyName:    c.Config.CompanyName,
		CompanyAddress: c.Config.CompanyAddress,
		LogoURL:        c.Config.LogoURL,
		SupportURL:     c.Config.SupportURL,
	}
}
