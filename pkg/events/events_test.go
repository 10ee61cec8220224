package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiaorakahi/marketplace/pkg/mq"
)

func TestDecode(t *testing.T) {
	o, err := Decode[Order]([]byte(`{"order_id":"o1","order_number":"ORD-20261017-ABC123","amount":1500}`))
	require.NoError(t, err)
	assert.Equal(t, "o1", o.OrderID)
	assert.Equal(t, int64(1500), o.Amount)

	_, err = Decode[Order]([]byte(`{not json`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, mq.ErrPoison))
}
