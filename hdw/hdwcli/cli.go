package hdwcli

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/hcanalytics/hdw-app/conf"
	"github.com/hcanalytics/hdw-app/hdw/constants"
	"github.com/hcanalytics/hdw-app/hdw/database"
	"github.com/hcanalytics/hdw-app/hdw/extract"
	"github.com/hcanalytics/hdw-app/hdw/load"
	"github.com/hcanalytics/hdw-app/hdw/models"
	"github.com/hcanalytics/hdw-app/hdw/models/postgres"
	"github.com/hcanalytics/hdw-app/hdw/quality"
	"github.com/hcanalytics/hdw-app/hdw/report"
	"github.com/hcanalytics/hdw-app/hdw/store"
	"github.com/hcanalytics/hdw-app/hdw/transform"
	"github.com/hcanalytics/hdw-app/log"
)

// App Name and usage.  Edit them here to prevent breaking tests
const Name = "hdw"
const Usage = "Healthcare Data Warehouse ETL CLI"

// db is the warehouse connection shared by the database-backed commands.
// Tests inject their own connection here.
var db *sql.DB

func GetApp() *cli.App {
	return setUpApp()
}

func setUpApp() *cli.App {
	app := cli.NewApp()
	app.Name = Name
	app.Usage = Usage
	app.Version = constants.Version
	var dataDir, sourceDir, fixtureDir, migrationsDir string
	app.Commands = []cli.Command{
		{
			Name:  "run-pipeline",
			Usage: "Run the full ETL pipeline: extract, transform, load, quality-check, report",
			Flags: []cli.Flag{
				dataDirFlag(&dataDir),
				sourceDirFlag(&sourceDir),
			},
			Action: func(c *cli.Context) error {
				return runPipeline(app, dataDir, sourceDir)
			},
		},
		{
			Name:     "extract",
			Category: "Pipeline steps",
			Usage:    "Extract raw entity datasets into the bronze store",
			Flags: []cli.Flag{
				dataDirFlag(&dataDir),
				sourceDirFlag(&sourceDir),
			},
			Action: func(c *cli.Context) error {
				counts, err := runExtract(dataDir, sourceDir)
				if err != nil {
					return err
				}
				for _, entity := range models.AllEntities {
					fmt.Fprintf(app.Writer, "%s: extracted %d records\n", entity, counts[entity])
				}
				return nil
			},
		},
		{
			Name:     "transform",
			Category: "Pipeline steps",
			Usage:    "Clean and enrich bronze datasets into the silver store",
			Flags: []cli.Flag{
				dataDirFlag(&dataDir),
			},
			Action: func(c *cli.Context) error {
				counts, err := runTransform(dataDir)
				if err != nil {
					return err
				}
				for _, entity := range models.AllEntities {
					fmt.Fprintf(app.Writer, "%s: transformed %d records\n", entity, counts[entity])
				}
				return nil
			},
		},
		{
			Name:     "load",
			Category: "Pipeline steps",
			Usage:    "Load silver datasets into the warehouse",
			Flags: []cli.Flag{
				dataDirFlag(&dataDir),
			},
			Action: func(c *cli.Context) error {
				result, err := runLoad(dataDir)
				for entity, res := range result {
					if res.Err != nil {
						fmt.Fprintf(app.Writer, "%s: load failed: %s\n", entity, res.Err)
						continue
					}
					fmt.Fprintf(app.Writer, "%s: loaded %d rows\n", entity, res.Rows)
				}
				return err
			},
		},
		{
			Name:     "quality-check",
			Category: "Pipeline steps",
			Usage:    "Run post-load data quality checks against the warehouse",
			Action: func(c *cli.Context) error {
				checks, err := runQualityChecks()
				for _, check := range checks {
					status := "PASS"
					if !check.Passed {
						status = "FAIL"
					}
					fmt.Fprintf(app.Writer, "%s %s (%s)\n", status, check.Name, check.Detail)
				}
				return err
			},
		},
		{
			Name:     "report",
			Category: "Pipeline steps",
			Usage:    "Generate analytics reports from the warehouse views",
			Action: func(c *cli.Context) error {
				summary, err := runReports()
				if err != nil {
					return err
				}
				encoded, err := json.MarshalIndent(summary, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintf(app.Writer, "%s\n", encoded)
				return nil
			},
		},
		{
			Name:     "verify",
			Category: "Database tools",
			Usage:    "Verify warehouse row counts after a load",
			Flags: []cli.Flag{
				dataDirFlag(&dataDir),
			},
			Action: func(c *cli.Context) error {
				counts, err := runVerify(dataDir)
				if err != nil {
					return err
				}
				for _, entity := range models.AllEntities {
					fmt.Fprintf(app.Writer, "%s: %d rows\n", entity, counts[entity])
				}
				return nil
			},
		},
		{
			Name:     "ensure-schema",
			Category: "Database tools",
			Usage:    "Apply warehouse schema migrations",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:        "migrations-dir",
					Usage:       "Directory holding the migration files",
					Value:       "db/migrations",
					Destination: &migrationsDir,
				},
			},
			Action: func(c *cli.Context) error {
				databaseURL := conf.GetEnv("DATABASE_URL")
				if databaseURL == "" {
					return errors.New("DATABASE_URL must be set")
				}
				if err := load.EnsureSchema(databaseURL, migrationsDir); err != nil {
					return err
				}
				fmt.Fprintf(app.Writer, "Warehouse schema is up to date\n")
				return nil
			},
		},
		{
			Name:     "generate-fixtures",
			Category: "Development tools",
			Usage:    "Write deterministic sample CSVs for each entity",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:        "directory",
					Usage:       "Directory to write the fixture CSVs to",
					Value:       "fixtures",
					Destination: &fixtureDir,
				},
			},
			Action: func(c *cli.Context) error {
				paths, err := generateFixtures(fixtureDir)
				if err != nil {
					return err
				}
				for _, p := range paths {
					fmt.Fprintf(app.Writer, "%s\n", p)
				}
				return nil
			},
		},
	}
	return app
}

func runPipeline(app *cli.App, dataDir, sourceDir string) error {
	steps := []struct {
		name string
		run  func() error
	}{
		{"extract", func() error {
			_, err := runExtract(dataDir, sourceDir)
			return err
		}},
		{"transform", func() error {
			_, err := runTransform(dataDir)
			return err
		}},
		{"load", func() error {
			_, err := runLoad(dataDir)
			return err
		}},
		{"quality-check", func() error {
			_, err := runQualityChecks()
			return err
		}},
		{"report", func() error {
			_, err := runReports()
			return err
		}},
	}

	fmt.Fprintf(app.Writer, "%s\n", "Starting hdw pipeline...")
	for _, step := range steps {
		if err := step.run(); err != nil {
			log.Pipeline.WithField("step", step.name).
				WithField("status", constants.StepFailure).Error(err)
			return errors.Wrapf(err, "pipeline stopped at step %s", step.name)
		}
		log.Pipeline.WithField("step", step.name).
			WithField("status", constants.StepSuccess).Info("Pipeline step finished")
	}
	fmt.Fprintf(app.Writer, "%s\n", "Pipeline completed")
	return nil
}

func runExtract(dataDir, sourceDir string) (map[models.EntityType]int, error) {
	bronze, err := bronzeStore(dataDir)
	if err != nil {
		return nil, err
	}
	extractor := extract.NewExtractor(log.Extract, bronze)
	envelopes, err := extractor.ExtractAll(context.Background(), entitySources(sourceDir))
	if err != nil {
		return nil, err
	}
	counts := make(map[models.EntityType]int, len(envelopes))
	for entity, env := range envelopes {
		counts[entity] = len(env.Rows)
	}
	return counts, nil
}

func runTransform(dataDir string) (map[models.EntityType]int, error) {
	bronze, err := bronzeStore(dataDir)
	if err != nil {
		return nil, err
	}
	silver, err := silverStore(dataDir)
	if err != nil {
		return nil, err
	}
	return transform.NewTransformer(log.Transform, bronze, silver).TransformAll()
}

func runLoad(dataDir string) (load.LoadResult, error) {
	ctx := context.Background()
	silver, err := silverStore(dataDir)
	if err != nil {
		return nil, err
	}
	conn, err := warehouseConnection()
	if err != nil {
		return nil, err
	}
	if err := load.EnsureSchema(conf.GetEnv("DATABASE_URL"), migrationsPath()); err != nil {
		return nil, err
	}

	loader := load.NewLoader(log.Load, silver, conn)
	if conf.GetEnv("HDW_USE_COPY") == "true" {
		cfg, err := database.LoadConfig()
		if err != nil {
			return nil, err
		}
		pool, err := database.ConnectPgxPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		defer pool.Close()
		loader.Copier = postgres.NewCopyRepository(pool)
	}
	return loader.LoadAll(ctx)
}

// migrationsPath resolves the migrations directory applied before a load.
// HDW_MIGRATIONS_DIR overrides the in-repo default for deployments that
// install migrations elsewhere.
func migrationsPath() string {
	if dir := conf.GetEnv("HDW_MIGRATIONS_DIR"); dir != "" {
		return dir
	}
	return "db/migrations"
}

func runQualityChecks() ([]quality.Check, error) {
	conn, err := warehouseConnection()
	if err != nil {
		return nil, err
	}
	return quality.NewChecker(log.Quality, conn).RunAll(context.Background())
}

func runReports() (*report.Summary, error) {
	conn, err := warehouseConnection()
	if err != nil {
		return nil, err
	}
	return report.NewReporter(log.Report, conn).GenerateAll(context.Background())
}

func runVerify(dataDir string) (map[models.EntityType]int, error) {
	silver, err := silverStore(dataDir)
	if err != nil {
		return nil, err
	}
	conn, err := warehouseConnection()
	if err != nil {
		return nil, err
	}
	return load.NewLoader(log.Load, silver, conn).VerifyDataIntegrity(context.Background())
}

func generateFixtures(dir string) ([]string, error) {
	if err := os.MkdirAll(filepath.Clean(dir), 0750); err != nil {
		return nil, errors.Wrap(err, "could not create fixture directory")
	}
	generator := extract.NewGenerator()
	var paths []string
	for _, entity := range models.AllEntities {
		columns, rows := generator.Generate(entity)
		path := filepath.Join(dir, string(entity)+".csv")
		if err := writeCSV(path, columns, rows); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeCSV(path string, columns []string, rows []models.RawRecord) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return errors.Wrapf(err, "could not create fixture %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func bronzeStore(dataDir string) (*store.Store, error) {
	if dataDir == "" {
		if p := conf.GetEnv("BRONZE_PATH"); p != "" {
			return store.New(p)
		}
	}
	return store.New(filepath.Join(resolveDataDir(dataDir), constants.StageBronze))
}

func silverStore(dataDir string) (*store.Store, error) {
	if dataDir == "" {
		if p := conf.GetEnv("SILVER_PATH"); p != "" {
			return store.New(p)
		}
	}
	return store.New(filepath.Join(resolveDataDir(dataDir), constants.StageSilver))
}

func resolveDataDir(dataDir string) string {
	if dataDir != "" {
		return dataDir
	}
	if env := conf.GetEnv("HDW_DATA_DIR"); env != "" {
		return env
	}
	return "data"
}

// entitySources maps each entity to its configured source. Per-entity env
// vars (e.g. HDW_CLAIMS_SOURCE) win over the --source-dir convention of
// <dir>/<entity>.csv; an empty source means the extractor falls back to the
// synthetic generator.
func entitySources(sourceDir string) map[models.EntityType]string {
	sources := make(map[models.EntityType]string, len(models.AllEntities))
	for _, entity := range models.AllEntities {
		key := fmt.Sprintf("HDW_%s_SOURCE", strings.ToUpper(string(entity)))
		if v := conf.GetEnv(key); v != "" {
			sources[entity] = v
			continue
		}
		if sourceDir != "" {
			sources[entity] = filepath.Join(sourceDir, string(entity)+".csv")
		}
	}
	return sources
}

func warehouseConnection() (*sql.DB, error) {
	if db != nil {
		return db, nil
	}
	cfg, err := database.LoadConfig()
	if err != nil {
		return nil, err
	}
	db, err = database.Connect(cfg)
	return db, err
}

func dataDirFlag(dest *string) cli.Flag {
	return cli.StringFlag{
		Name:        "data-dir",
		Usage:       "Directory holding the bronze and silver artifact stores",
		Destination: dest,
	}
}

func sourceDirFlag(dest *string) cli.Flag {
	return cli.StringFlag{
		Name:        "source-dir",
		Usage:       "Directory holding per-entity source CSVs (<dir>/<entity>.csv)",
		Destination: dest,
	}
}
