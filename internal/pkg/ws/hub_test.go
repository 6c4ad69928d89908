package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewHub(t *testing.T) {
	hub := NewHub()

	assert.NotNil(t, hub)
	assert.Equal(t, 0, hub.ConnectionCount())
}

func TestHub_IsOnline_NoConnections(t *testing.T) {
	hub := NewHub()

	assert.False(t, hub.IsOnline(123))
}

func TestHub_SendToUser_UserNotOnline(t *testing.T) {
	hub := NewHub()

	msg := &Message{
		Type: "copy_progress",
		Data: map[string]interface{}{"step": "dataset"},
	}

	// 用户不在线时不报错，消息直接丢弃
	err := hub.SendToUser(123, msg)
	assert.NoError(t, err)
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()

	c1 := &Client{UserID: 1}
	c2 := &Client{UserID: 1}

	hub.Register(c1)
	hub.Register(c2)
	assert.True(t, hub.IsOnline(1))
	assert.Equal(t, 2, hub.ConnectionCount())

	hub.Unregister(c1)
	assert.True(t, hub.IsOnline(1))

	hub.Unregister(c2)
	assert.False(t, hub.IsOnline(1))
	assert.Equal(t, 0, hub.ConnectionCount())
}
