package telegram

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseCommandFirstToken(t *testing.T) {
	assert.Equal(t, "/signal", parseCommand("/signal"))
	assert.Equal(t, "/signal", parseCommand("/signal now"))
	assert.Equal(t, "/zones", parseCommand("  /zones   btcusdt  "))
}

func TestParseCommandStripsBotName(t *testing.T) {
	assert.Equal(t, "/signal", parseCommand("/signal@bspa_bot"))
	assert.Equal(t, "/zones", parseCommand("/Zones@bspa_bot сейчас"))
}

func TestParseCommandEmptyText(t *testing.T) {
	assert.Equal(t, "", parseCommand(""))
	assert.Equal(t, "", parseCommand("   "))
}

func TestNewClientPollTimeoutExceedsLongPoll(t *testing.T) {
	// HTTP-таймаут long-poll клиента обязан превышать серверный timeout,
	// иначе каждый getUpdates обрывался бы на стороне клиента
	client := NewClient("token", 60)

	assert.Equal(t, 65*time.Second, client.pollClient.Timeout)
}

func TestNewClientPollTimeoutDefault(t *testing.T) {
	client := NewClient("token", 0)

	assert.Equal(t, 35*time.Second, client.pollClient.Timeout)
}
