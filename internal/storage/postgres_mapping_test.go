package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/apperrors"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/model"
)

const (
	mappingUpsert = `INSERT INTO "id_mappings" ("id","source_system","source_id","target_system","target_id","created_at","updated_at") VALUES ($1,$2,$3,$4,$5,$6,$7) ON CONFLICT ("source_system","source_id","target_system") DO UPDATE SET "target_id"="excluded"."target_id","updated_at"="excluded"."updated_at"`
	mappingSelect = `SELECT * FROM "id_mappings" WHERE source_system = $1 AND source_id = $2 AND target_system = $3 ORDER BY "id_mappings"."id" LIMIT $4`
)

func TestPostgresRepo_PutMapping_New(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := context.Background()
	mapping := model.IDMapping{
		SourceSystem: model.SystemHubspot,
		SourceID:     "hs-2001",
		TargetSystem: model.SystemFwdCRM,
		TargetID:     "CUST-AAAA0001",
	}

	mock.ExpectExec(mappingUpsert).
		WithArgs(sqlmock.AnyArg(), mapping.SourceSystem, mapping.SourceID, mapping.TargetSystem, mapping.TargetID, AnyTime{}, AnyTime{}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.PutMapping(ctx, mapping)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_PutMapping_OverwriteKeepsSingleRow(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := context.Background()
	mapping := model.IDMapping{
		SourceSystem: model.SystemHubspot,
		SourceID:     "hs-2001",
		TargetSystem: model.SystemFwdCRM,
		TargetID:     "CUST-BBBB0002",
	}

	// Second write for the same triple lands on the conflict branch, still
	// one statement and one affected row.
	mock.ExpectExec(mappingUpsert).
		WithArgs(sqlmock.AnyArg(), mapping.SourceSystem, mapping.SourceID, mapping.TargetSystem, mapping.TargetID, AnyTime{}, AnyTime{}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.PutMapping(ctx, mapping)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_PutMapping_RejectsEmptyFields(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := context.Background()

	err := repo.PutMapping(ctx, model.IDMapping{SourceSystem: model.SystemHubspot})
	assert.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_PutMapping_ConstraintViolation(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := context.Background()
	mapping := model.IDMapping{
		SourceSystem: model.SystemFwdCRM,
		SourceID:     "CUST-AAAA0001",
		TargetSystem: model.SystemNetsuite,
		TargetID:     "NS-3001",
	}

	mock.ExpectExec(mappingUpsert).
		WillReturnError(&pgconn.PgError{Code: "23502", ColumnName: "target_id"})

	err := repo.PutMapping(ctx, mapping)
	assert.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_GetMapping(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := context.Background()
	now := time.Now()

	t.Run("Found", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "source_system", "source_id", "target_system", "target_id", "created_at", "updated_at"}).
			AddRow("MAP-AAAA0001", model.SystemHubspot, "hs-2001", model.SystemFwdCRM, "CUST-AAAA0001", now, now)
		mock.ExpectQuery(mappingSelect).
			WithArgs(model.SystemHubspot, "hs-2001", model.SystemFwdCRM, 1).
			WillReturnRows(rows)

		mapping, err := repo.GetMapping(ctx, model.SystemHubspot, "hs-2001", model.SystemFwdCRM)
		require.NoError(t, err)
		assert.Equal(t, "CUST-AAAA0001", mapping.TargetID)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery(mappingSelect).
			WithArgs(model.SystemHubspot, "hs-9999", model.SystemFwdCRM, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.GetMapping(ctx, model.SystemHubspot, "hs-9999", model.SystemFwdCRM)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_ListMappingsBySource(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := context.Background()
	now := time.Now()

	listQuery := `SELECT * FROM "id_mappings" WHERE source_system = $1 AND source_id = $2 ORDER BY target_system`
	rows := sqlmock.NewRows([]string{"id", "source_system", "source_id", "target_system", "target_id", "created_at", "updated_at"}).
		AddRow("MAP-AAAA0001", model.SystemHubspot, "hs-2001", model.SystemFwdCRM, "CUST-AAAA0001", now, now).
		AddRow("MAP-AAAA0002", model.SystemHubspot, "hs-2001", model.SystemNetsuite, "NS-3001", now, now)
	mock.ExpectQuery(listQuery).
		WithArgs(model.SystemHubspot, "hs-2001").
		WillReturnRows(rows)

	mappings, err := repo.ListMappingsBySource(ctx, model.SystemHubspot, "hs-2001")
	require.NoError(t, err)
	require.Len(t, mappings, 2)
	assert.Equal(t, model.SystemFwdCRM, mappings[0].TargetSystem)
	assert.NoError(t, mock.ExpectationsWereMet())
}
