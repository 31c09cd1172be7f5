package order

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"

	"bloom/internal/config"
	outboxrepo "bloom/internal/notification/repository"
	"bloom/internal/order/service"
)

func TestOutboxFor(t *testing.T) {
	db := &sql.DB{}

	disabled := &config.Config{Rabbit: config.RabbitConfig{Enabled: false}}
	assert.IsType(t, service.DiscardOutbox{}, outboxFor(db, disabled))

	enabled := &config.Config{Rabbit: config.RabbitConfig{Enabled: true}}
	assert.IsType(t, &outboxrepo.MySQLOutboxRepository{}, outboxFor(db, enabled))
}
