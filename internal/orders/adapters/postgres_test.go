package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"storefront/internal/orders/domain"
	"storefront/pkg/db"
	"storefront/pkg/errors"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return gdb, mock
}

var productColumns = []string{"id", "name", "price", "stock", "status"}

const (
	conditionalStockUpdate = `UPDATE "products" SET "stock"=stock \+ \$1 WHERE id = \$2 AND stock \+ \$3 >= 0`
	selectProduct          = `SELECT \* FROM "products" WHERE "products"."id" = \$1`
)

func TestAdjustStock_ConditionalUpdate(t *testing.T) {
	gdb, mock := newMockDB(t)
	catalog := NewPostgresProductCatalog(gdb)

	mock.ExpectExec(conditionalStockUpdate).
		WithArgs(-2, 1, -2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(selectProduct).
		WillReturnRows(sqlmock.NewRows(productColumns).AddRow(1, "Áo thun", "600000.00", 3, "active"))

	p, err := catalog.AdjustStock(context.Background(), 1, -2)

	require.NoError(t, err)
	assert.Equal(t, 3, p.Stock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustStock_ZeroRowsIsInsufficientStock(t *testing.T) {
	gdb, mock := newMockDB(t)
	catalog := NewPostgresProductCatalog(gdb)
	tx := db.NewTransactor(gdb)

	mock.ExpectBegin()
	mock.ExpectExec(conditionalStockUpdate).
		WithArgs(-3, 1, -3).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(selectProduct).
		WillReturnRows(sqlmock.NewRows(productColumns).AddRow(1, "Áo thun", "600000.00", 1, "active"))
	mock.ExpectRollback()

	err := tx.RunInTx(context.Background(), func(ctx context.Context) error {
		_, err := catalog.AdjustStock(ctx, 1, -3)
		return err
	})

	assert.True(t, errors.HasReason(err, domain.ReasonInsufficientStock), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustStock_MissingProduct(t *testing.T) {
	gdb, mock := newMockDB(t)
	catalog := NewPostgresProductCatalog(gdb)

	mock.ExpectExec(conditionalStockUpdate).
		WithArgs(4, 9, 4).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(selectProduct).
		WillReturnRows(sqlmock.NewRows(productColumns))

	_, err := catalog.AdjustStock(context.Background(), 9, 4)

	assert.True(t, errors.HasReason(err, domain.ReasonProductNotFound), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNextOrderNumber_UpsertsYearRow(t *testing.T) {
	gdb, mock := newMockDB(t)
	counter := NewPostgresOrderCounter(gdb)

	mock.ExpectQuery(`INSERT INTO order_counters \(year, value\) VALUES \(\$1, 1\)\s+ON CONFLICT \(year\) DO UPDATE`).
		WithArgs(2024).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(7))

	n, err := counter.NextOrderNumber(context.Background(), 2024)

	require.NoError(t, err)
	assert.Equal(t, "ORD-2024-000007", n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func savedOrder(t *testing.T) *domain.Order {
	t.Helper()
	o := sampleOrder(t)
	o.Timeline = domain.NewTimeline([]domain.TimelineEntry{{
		ID:        10,
		Status:    domain.OrderStatusPending,
		Note:      "Order created",
		ActorID:   11,
		CreatedAt: o.CreatedAt,
	}})
	return o
}

func TestSaveStatus_AppendsTimelineRow(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewPostgresOrderRepository(gdb)
	order := savedOrder(t)
	shippedAt := time.Date(2024, 5, 3, 9, 0, 0, 0, time.UTC)
	require.NoError(t, order.SetStatus(domain.OrderStatusShipped, 1, "", shippedAt))

	mock.ExpectExec(`UPDATE "orders" SET .+ WHERE id = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "order_timeline"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectQuery(`SELECT \* FROM "order_timeline" WHERE order_id = \$1 ORDER BY id ASC`).
		WithArgs(21).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "status", "note", "actor_id", "created_at"}).
			AddRow(10, 21, "pending", "Order created", 11, order.CreatedAt).
			AddRow(11, 21, "shipped", "Status updated to shipped", 1, shippedAt))

	err := repo.SaveStatus(context.Background(), order)

	require.NoError(t, err)
	require.Equal(t, 2, order.Timeline.Len())
	last, _ := order.Timeline.Last()
	assert.Equal(t, uint(11), last.ID)
	assert.Empty(t, order.Timeline.Unsaved())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveStatus_MissingOrder(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewPostgresOrderRepository(gdb)
	order := savedOrder(t)
	require.NoError(t, order.SetStatus(domain.OrderStatusConfirmed, 1, "", time.Now()))

	mock.ExpectExec(`UPDATE "orders" SET .+ WHERE id = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SaveStatus(context.Background(), order)

	assert.True(t, errors.HasReason(err, domain.ReasonOrderNotFound), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetForUpdate_LocksRow(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewPostgresOrderRepository(gdb)

	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetForUpdate(context.Background(), 42)

	assert.True(t, errors.HasReason(err, domain.ReasonOrderNotFound), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
