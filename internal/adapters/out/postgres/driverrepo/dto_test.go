package driverrepo_test

import (
	"context"
	"sync"
	"testing"

	"fulfillment/internal/adapters/out/postgres/driverrepo"
	"fulfillment/internal/core/domain/model/driver"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

func TestDriverDTO_SchemaParses(t *testing.T) {
	parsed, err := schema.Parse(&driverrepo.DriverDTO{}, &sync.Map{}, schema.NamingStrategy{})

	require.NoError(t, err)
	for _, name := range []string{"DeliveryAreas", "AcceptedPaymentMethods"} {
		field := parsed.LookUpField(name)
		require.NotNil(t, field, name)
		assert.NotEmpty(t, field.DataType, name)
	}
}

func TestDriverDTO_MigratesAndRoundTripsTagsOnSQLite(t *testing.T) {
	// Given
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&driverrepo.DriverDTO{}))

	location, err := kernel.NewGeoPoint(-25.9660, 32.5790)
	require.NoError(t, err)
	d, err := driver.NewDriver(kernel.NewUUID(), kernel.NewUUID(), location, true,
		[]string{"Baixa", "Polana Cimento"}, []string{"cash", "m-pesa"}, registeredAt)
	require.NoError(t, err)
	repository := driverrepo.NewGormDriverRepository(db)

	// When
	require.NoError(t, repository.Add(context.Background(), d))
	stored, err := repository.Get(context.Background(), d.ID())

	// Then
	require.NoError(t, err)
	assert.Equal(t, []string{"Baixa", "Polana Cimento"}, stored.DeliveryAreas())
	assert.Equal(t, []string{"cash", "m-pesa"}, stored.AcceptedPaymentMethods())
}
