// Package load moves silver artifacts into the PostgreSQL warehouse.
// Dimensions (patients, providers) are replaced wholesale inside a single
// transaction; facts (claims, prescriptions) are replaced then appended in
// batches. Every entity is attempted even when an earlier one fails, and the
// provider aggregates are recomputed only after a fully successful load.
package load

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/hcanalytics/hdw-app/hdw/constants"
	ers "github.com/hcanalytics/hdw-app/hdw/errors"
	"github.com/hcanalytics/hdw-app/hdw/models"
	"github.com/hcanalytics/hdw-app/hdw/models/postgres"
	"github.com/hcanalytics/hdw-app/hdw/store"
	"github.com/hcanalytics/hdw-app/hdw/utils"
)

// FactCopier bulk-loads the fact tables over the COPY protocol.
// postgres.CopyRepository is the production implementation.
type FactCopier interface {
	CopyClaims(ctx context.Context, claims []models.Claim) (int64, error)
	CopyPrescriptions(ctx context.Context, prescriptions []models.Prescription) (int64, error)
}

var _ FactCopier = (*postgres.CopyRepository)(nil)

type Loader struct {
	Logger logrus.FieldLogger
	Silver *store.Store
	DB     *sql.DB

	// Copier, when set, bulk-loads the fact tables over the COPY protocol
	// instead of batched INSERTs.
	Copier    FactCopier
	BatchSize int
}

func NewLoader(logger logrus.FieldLogger, silver *store.Store, db *sql.DB) *Loader {
	return &Loader{
		Logger:    logger,
		Silver:    silver,
		DB:        db,
		BatchSize: utils.GetEnvInt("HDW_LOAD_BATCH_SIZE", constants.DefaultBatchSize),
	}
}

// EntityResult is the per-entity outcome of a load. UnmappedMedications is
// only populated for prescriptions: the count of rows that fell back to the
// sentinel medication id because their name had no reference entry.
type EntityResult struct {
	Rows                int
	UnmappedMedications int
	Err                 error
}

// LoadResult maps each entity to its outcome so callers can tell exactly
// which tables are safely queryable after a partial failure.
type LoadResult map[models.EntityType]EntityResult

// LoadAll loads every entity in dependency order. Entities that fail leave
// their error in the result; the remaining entities still run. The provider
// metrics update only happens when all four entities loaded.
func (l *Loader) LoadAll(ctx context.Context) (LoadResult, error) {
	l.Logger.Info("Starting data load...")

	results := make(LoadResult, len(models.AllEntities))
	var failed []string
	for _, entity := range models.AllEntities {
		result := l.loadEntity(ctx, entity)
		results[entity] = result
		if result.Err != nil {
			l.Logger.WithField("entity", entity).Errorf("Load failed: %s", result.Err)
			failed = append(failed, entity.String())
			continue
		}
		l.Logger.WithFields(logrus.Fields{"entity": entity, "rows": result.Rows}).Info("Load complete")
	}

	if len(failed) > 0 {
		return results, &ers.PartialLoadError{FailedEntities: failed}
	}

	affected, err := postgres.NewRepository(l.DB).UpdateProviderMetrics(ctx)
	if err != nil {
		return results, errors.Wrap(err, "failed to update provider metrics")
	}
	l.Logger.WithField("providers", affected).Info("Provider metrics updated")

	l.Logger.Info("Data load completed successfully")
	return results, nil
}

func (l *Loader) loadEntity(ctx context.Context, entity models.EntityType) EntityResult {
	var result EntityResult
	switch entity {
	case models.EntityPatients:
		result = l.loadPatients(ctx)
	case models.EntityProviders:
		result = l.loadProviders(ctx)
	case models.EntityClaims:
		result = l.loadClaims(ctx)
	case models.EntityPrescriptions:
		result = l.loadPrescriptions(ctx)
	}
	if result.Err != nil {
		result.Err = &ers.EntityLoadError{Err: result.Err, Entity: entity.String()}
	}
	return result
}

func (l *Loader) loadPatients(ctx context.Context) EntityResult {
	env, err := store.Load[models.Patient](l.Silver, store.CleanName(models.EntityPatients))
	if err != nil {
		return EntityResult{Err: err}
	}

	err = l.inTransaction(ctx, models.EntityPatients, func(repo *postgres.Repository) error {
		for _, batch := range chunks(env.Rows, l.BatchSize) {
			if err := repo.InsertPatients(ctx, batch); err != nil {
				return err
			}
		}
		return nil
	})
	return EntityResult{Rows: len(env.Rows), Err: err}
}

func (l *Loader) loadProviders(ctx context.Context) EntityResult {
	env, err := store.Load[models.Provider](l.Silver, store.CleanName(models.EntityProviders))
	if err != nil {
		return EntityResult{Err: err}
	}

	err = l.inTransaction(ctx, models.EntityProviders, func(repo *postgres.Repository) error {
		for _, batch := range chunks(env.Rows, l.BatchSize) {
			if err := repo.InsertProviders(ctx, batch); err != nil {
				return err
			}
		}
		return nil
	})
	return EntityResult{Rows: len(env.Rows), Err: err}
}

func (l *Loader) loadClaims(ctx context.Context) EntityResult {
	env, err := store.Load[models.Claim](l.Silver, store.CleanName(models.EntityClaims))
	if err != nil {
		return EntityResult{Err: err}
	}

	if l.Copier != nil {
		if err := postgres.NewRepository(l.DB).DeleteEntityRows(ctx, models.EntityClaims); err != nil {
			return EntityResult{Err: err}
		}
		copied, err := l.Copier.CopyClaims(ctx, env.Rows)
		return EntityResult{Rows: int(copied), Err: err}
	}

	err = l.inTransaction(ctx, models.EntityClaims, func(repo *postgres.Repository) error {
		for _, batch := range chunks(env.Rows, l.BatchSize) {
			if err := repo.InsertClaims(ctx, batch); err != nil {
				return err
			}
		}
		return nil
	})
	return EntityResult{Rows: len(env.Rows), Err: err}
}

func (l *Loader) loadPrescriptions(ctx context.Context) EntityResult {
	env, err := store.Load[models.Prescription](l.Silver, store.CleanName(models.EntityPrescriptions))
	if err != nil {
		return EntityResult{Err: err}
	}

	medications, err := postgres.NewRepository(l.DB).GetMedicationMap(ctx)
	if err != nil {
		return EntityResult{Err: err}
	}

	unmapped := l.resolveMedications(env.Rows, medications)

	if l.Copier != nil {
		if err := postgres.NewRepository(l.DB).DeleteEntityRows(ctx, models.EntityPrescriptions); err != nil {
			return EntityResult{UnmappedMedications: unmapped, Err: err}
		}
		copied, err := l.Copier.CopyPrescriptions(ctx, env.Rows)
		return EntityResult{Rows: int(copied), UnmappedMedications: unmapped, Err: err}
	}

	err = l.inTransaction(ctx, models.EntityPrescriptions, func(repo *postgres.Repository) error {
		for _, batch := range chunks(env.Rows, l.BatchSize) {
			if err := repo.InsertPrescriptions(ctx, batch); err != nil {
				return err
			}
		}
		return nil
	})
	return EntityResult{Rows: len(env.Rows), UnmappedMedications: unmapped, Err: err}
}

// resolveMedications fills each prescription's medication_id from the
// reference map. Names without an entry keep the reserved sentinel id and
// are counted as referential gaps; the rows still load.
func (l *Loader) resolveMedications(rows []models.Prescription, medications map[string]int) int {
	unmapped := 0
	for i := range rows {
		id, ok := medications[rows[i].MedicationName]
		if !ok {
			id = constants.UnresolvedMedicationID
			unmapped++
		}
		rows[i].MedicationID = id
	}
	if unmapped > 0 {
		l.Logger.WithFields(logrus.Fields{
			"entity": models.EntityPrescriptions,
			"rows":   unmapped,
		}).Warn("Prescriptions reference medications missing from the reference table, loaded with sentinel id")
	}
	return unmapped
}

// inTransaction clears the entity's table and runs fn against a
// transaction-scoped repository, committing only if everything succeeded.
func (l *Loader) inTransaction(ctx context.Context, entity models.EntityType, fn func(*postgres.Repository) error) error {
	tx, err := l.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	repo := postgres.NewRepositoryTx(tx)
	if err := repo.DeleteEntityRows(ctx, entity); err != nil {
		return err
	}
	if err := fn(repo); err != nil {
		return err
	}
	return tx.Commit()
}

// VerifyDataIntegrity reports the row count of every warehouse table for
// post-load auditing.
func (l *Loader) VerifyDataIntegrity(ctx context.Context) (map[models.EntityType]int, error) {
	counts, err := postgres.NewRepository(l.DB).GetRowCounts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to verify data integrity")
	}
	for _, entity := range models.AllEntities {
		l.Logger.WithFields(logrus.Fields{"entity": entity, "rows": counts[entity]}).Info("Verified table")
	}
	return counts, nil
}

func chunks[T any](rows []T, size int) [][]T {
	if size <= 0 {
		size = constants.DefaultBatchSize
	}
	var out [][]T
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		out = append(out, rows[start:end])
	}
	return out
}
