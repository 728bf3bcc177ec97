package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRetriesPing(t *testing.T) {
	_, mock, err := sqlmock.NewWithDSN("ledger_retry", sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing().WillReturnError(errors.New("not yet"))
	mock.ExpectPing()

	o := DefaultOptions()
	o.RetryBackoff = 0
	db, err := openDriver(context.Background(), "sqlmock", "ledger_retry", o)
	require.NoError(t, err)
	defer db.Close()
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenGivesUp(t *testing.T) {
	_, mock, err := sqlmock.NewWithDSN("ledger_down", sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		mock.ExpectPing().WillReturnError(errors.New("down"))
	}

	o := DefaultOptions()
	o.Retries = 1
	o.RetryBackoff = 0
	_, err = openDriver(context.Background(), "sqlmock", "ledger_down", o)
	assert.Error(t, err)
}
