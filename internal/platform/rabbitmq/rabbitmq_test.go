package rabbitmq

import (
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

type recordingDeclarer struct {
	name    string
	durable bool
	err     error
}

func (d *recordingDeclarer) QueueDeclare(name string, durable, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	d.name = name
	d.durable = durable
	return amqp.Queue{Name: name}, d.err
}

func TestDeclareQueueIsDurable(t *testing.T) {
	d := &recordingDeclarer{}
	assert.NoError(t, DeclareQueue(d, "study.file.ingest"))
	assert.Equal(t, "study.file.ingest", d.name)
	assert.True(t, d.durable)
}

func TestDeclareQueueWrapsError(t *testing.T) {
	brokerErr := errors.New("access refused")
	err := DeclareQueue(&recordingDeclarer{err: brokerErr}, "jobs")
	assert.ErrorIs(t, err, brokerErr)
	assert.ErrorContains(t, err, "declare queue jobs failed")
}
